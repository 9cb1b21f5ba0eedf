// Package view assembles the plottable view model served to renderers.
// Building a view is a pure projection over a store snapshot; repeated
// calls with unchanged input return identical models.
package view

import (
	"sort"

	"github.com/pitwall/tyretrace/internal/domain/health"
	"github.com/pitwall/tyretrace/internal/domain/model"
	"github.com/pitwall/tyretrace/internal/domain/stint"
)

// Selection identifies whose curves to render. The empty selection renders
// every driver.
type Selection string

// All selects every driver with plottable data.
const All Selection = ""

// IsAll reports whether the selection covers all drivers.
func (s Selection) IsAll() bool { return s == All }

// paletteSize bounds the colour index so renderers can cycle a fixed
// ten-colour palette.
const paletteSize = 10

// titlePrefix heads every view title; the suffix names the selection.
const titlePrefix = "Tyre Degradation Analysis - "

// placeholderMessage is shown while no telemetry has arrived.
const placeholderMessage = "Waiting for telemetry data..."

// Series is one driver's health curve plus its stable colour slot.
type Series struct {
	Driver     string         `json:"driver"`
	Points     []health.Point `json:"points"`
	ColorIndex int            `json:"color_index"`
}

// Model is the complete plottable state for one refresh tick.
type Model struct {
	Title       string   `json:"title"`
	Placeholder bool     `json:"placeholder"`
	Message     string   `json:"message,omitempty"`
	XMin        int      `json:"x_min"`
	XMax        int      `json:"x_max"`
	StintCount  int      `json:"stint_count"`
	Series      []Series `json:"series"`
}

// Build assembles the view model for the given snapshot and selection.
// With no telemetry at all it returns an explicit placeholder so the
// renderer can show a waiting indicator instead of empty axes.
func Build(snapshot map[string][]model.Sample, sel Selection, profile *health.Profile) Model {
	if !hasSamples(snapshot) {
		return Model{
			Title:       title(sel),
			Placeholder: true,
			Message:     placeholderMessage,
			XMin:        0,
			XMax:        1,
		}
	}

	maxLap := 0
	for _, history := range snapshot {
		for _, s := range history {
			if s.RaceLap > maxLap {
				maxLap = s.RaceLap
			}
		}
	}

	m := Model{
		Title: title(sel),
		XMin:  0,
		XMax:  maxLap + 1,
	}

	if !sel.IsAll() {
		points, stints := driverCurve(snapshot[string(sel)], profile)
		m.StintCount = stints
		if len(points) > 0 {
			m.Series = []Series{{Driver: string(sel), Points: points, ColorIndex: 0}}
		}
		return m
	}

	codes := make([]string, 0, len(snapshot))
	for code := range snapshot {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for idx, code := range codes {
		points, stints := driverCurve(snapshot[code], profile)
		m.StintCount += stints
		if len(points) == 0 {
			continue
		}
		m.Series = append(m.Series, Series{
			Driver:     code,
			Points:     points,
			ColorIndex: idx % paletteSize,
		})
	}

	return m
}

// driverCurve concatenates the health curves of a driver's stints in stint
// order, returning the points and the stint count.
func driverCurve(history []model.Sample, profile *health.Profile) ([]health.Point, int) {
	stints := stint.Segment(history)
	var points []health.Point
	for _, s := range stints {
		points = append(points, health.Curve(s, profile)...)
	}
	return points, len(stints)
}

func hasSamples(snapshot map[string][]model.Sample) bool {
	for _, history := range snapshot {
		if len(history) > 0 {
			return true
		}
	}
	return false
}

func title(sel Selection) string {
	if sel.IsAll() {
		return titlePrefix + "All Drivers"
	}
	return titlePrefix + string(sel)
}
