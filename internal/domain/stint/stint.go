// Package stint partitions a driver's ordered sample history into tyre
// stints. Segmentation is a pure function of the input history; identical
// input always yields identical stints.
package stint

import (
	"github.com/pitwall/tyretrace/internal/domain/model"
)

// LapPoint is one (tyre_age, race_lap) observation inside a stint.
type LapPoint struct {
	TyreAge int
	RaceLap int
}

// Stint is a maximal contiguous run of samples sharing one tyre fitment.
type Stint struct {
	Compound model.Compound
	StartAge int // tyre age of the first sample in the run
	StartLap int // race lap of the first sample in the run
	Laps     []LapPoint
}

// Segment splits history into stints. A new stint starts when:
//
//	(a) this is the first sample, or
//	(b) the compound differs from the current stint's compound, or
//	(c) the tyre age is strictly below the immediately preceding sample's
//	    (a pit stop onto a fresh set of the same compound).
//
// Rule (b) is checked before (c). The age comparison in (c) looks only at
// the immediately previous sample, so a single out-of-order sample splits a
// stint; monotonic arrival order is assumed upstream.
//
// Every sample lands in exactly one stint and output order matches input
// order. Empty input yields an empty slice.
func Segment(history []model.Sample) []Stint {
	var (
		stints  []Stint
		current *Stint
		prevAge int
	)

	for i, s := range history {
		isNew := current == nil ||
			current.Compound != s.Compound ||
			(i > 0 && s.TyreAge < prevAge)

		if isNew {
			stints = append(stints, Stint{
				Compound: s.Compound,
				StartAge: s.TyreAge,
				StartLap: s.RaceLap,
				Laps:     []LapPoint{{TyreAge: s.TyreAge, RaceLap: s.RaceLap}},
			})
			current = &stints[len(stints)-1]
		} else {
			current.Laps = append(current.Laps, LapPoint{TyreAge: s.TyreAge, RaceLap: s.RaceLap})
		}

		prevAge = s.TyreAge
	}

	return stints
}
