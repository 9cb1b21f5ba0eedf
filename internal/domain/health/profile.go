// Package health turns stints into synthetic tyre-health curves.
package health

import (
	"github.com/pitwall/tyretrace/internal/domain/model"
)

// DefaultExpectedLife is used for compounds missing from the profile.
const DefaultExpectedLife = 25

// Profile is the static per-compound configuration table.
type Profile struct {
	expectedLife map[model.Compound]int
	defaultLife  int

	// Seconds lost per lap by compound. Configured alongside expected life
	// but not consumed by the shipped curve formula; kept so operators can
	// tune both tables in one place.
	degradationRates map[model.Compound]float64
}

// Option applies a configuration option to the Profile.
type Option func(*Profile)

// WithExpectedLife sets the per-compound expected-life table.
func WithExpectedLife(life map[model.Compound]int) Option {
	return func(p *Profile) {
		if len(life) > 0 {
			p.expectedLife = life
		}
	}
}

// WithDefaultLife sets the fallback expected life for unknown compounds.
func WithDefaultLife(laps int) Option {
	return func(p *Profile) {
		if laps > 0 {
			p.defaultLife = laps
		}
	}
}

// WithDegradationRates sets the per-compound seconds-per-lap table.
func WithDegradationRates(rates map[model.Compound]float64) Option {
	return func(p *Profile) {
		if len(rates) > 0 {
			p.degradationRates = rates
		}
	}
}

// NewProfile creates a profile with the stock compound tables.
func NewProfile(opts ...Option) *Profile {
	p := &Profile{
		expectedLife: map[model.Compound]int{
			model.CompoundSoft:         20,
			model.CompoundMedium:       25,
			model.CompoundHard:         30,
			model.CompoundIntermediate: 18,
			model.CompoundWet:          22,
		},
		defaultLife: DefaultExpectedLife,
		degradationRates: map[model.Compound]float64{
			model.CompoundSoft:         0.0179,
			model.CompoundMedium:       0.015,
			model.CompoundHard:         0.0179,
			model.CompoundIntermediate: 0.02,
			model.CompoundWet:          0.012,
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// FromNamedTables builds the compound-keyed maps from name-keyed config
// tables, dropping unrecognized names.
func FromNamedTables(life map[string]int, defaultLife int, rates map[string]float64) *Profile {
	byCompoundLife := make(map[model.Compound]int, len(life))
	for name, laps := range life {
		if c, ok := model.CompoundFromName(name); ok && laps > 0 {
			byCompoundLife[c] = laps
		}
	}
	byCompoundRate := make(map[model.Compound]float64, len(rates))
	for name, rate := range rates {
		if c, ok := model.CompoundFromName(name); ok && rate > 0 {
			byCompoundRate[c] = rate
		}
	}
	return NewProfile(
		WithExpectedLife(byCompoundLife),
		WithDefaultLife(defaultLife),
		WithDegradationRates(byCompoundRate),
	)
}

// ExpectedLife returns the configured expected life for c, falling back to
// the default for unknown compounds.
func (p *Profile) ExpectedLife(c model.Compound) int {
	if life, ok := p.expectedLife[c]; ok {
		return life
	}
	return p.defaultLife
}

// DegradationRate returns the configured seconds-per-lap rate for c.
func (p *Profile) DegradationRate(c model.Compound) (float64, bool) {
	rate, ok := p.degradationRates[c]
	return rate, ok
}
