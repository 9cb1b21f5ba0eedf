package health

import (
	"github.com/pitwall/tyretrace/internal/domain/stint"
)

const fullHealth = 100.0

// Point is one (race_lap, health_percent) pair. Health is deliberately
// unclamped: values below zero mark tyres run past their expected life.
type Point struct {
	RaceLap int     `json:"race_lap"`
	Health  float64 `json:"health"`
}

// Curve maps a stint to its health series. Health starts at 100% for a
// fresh tyre (lower if the tyre was already worn at stint start) and falls
// linearly, reaching 0% when the effective progress hits expected life - 1.
//
// With an expected life of 1 or less the slope is undefined, so every
// sample reports full health.
func Curve(s stint.Stint, profile *Profile) []Point {
	expected := profile.ExpectedLife(s.Compound)

	points := make([]Point, 0, len(s.Laps))
	for _, lap := range s.Laps {
		lapsInStint := lap.RaceLap - s.StartLap
		if lapsInStint < 0 {
			lapsInStint = 0
		}
		progress := (s.StartAge - 1) + lapsInStint
		if progress < 0 {
			progress = 0
		}

		h := fullHealth
		if expected > 1 {
			h = fullHealth - float64(progress)/float64(expected-1)*fullHealth
		}
		points = append(points, Point{RaceLap: lap.RaceLap, Health: h})
	}

	return points
}
