package health_test

import (
	"testing"

	"github.com/pitwall/tyretrace/internal/domain/health"
	"github.com/pitwall/tyretrace/internal/domain/model"
	"github.com/pitwall/tyretrace/internal/domain/stint"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

func TestCurve(t *testing.T) {
	Convey("Given the stock profile", t, func() {
		profile := health.NewProfile()

		Convey("When a fresh soft stint runs one sample per lap for 20 laps", func() {
			s := stint.Stint{Compound: model.CompoundSoft, StartAge: 1, StartLap: 10}
			for i := 0; i < 20; i++ {
				s.Laps = append(s.Laps, stint.LapPoint{TyreAge: 1 + i, RaceLap: 10 + i})
			}

			points := health.Curve(s, profile)

			Convey("Then health decreases linearly from 100 to 0", func() {
				So(points, ShouldHaveLength, 20)
				for i, p := range points {
					want := 100 - float64(i)*100/19
					So(p.Health, ShouldAlmostEqual, want, tolerance)
					So(p.RaceLap, ShouldEqual, 10+i)
				}
				So(points[0].Health, ShouldAlmostEqual, 100, tolerance)
				So(points[19].Health, ShouldAlmostEqual, 0, tolerance)
			})
		})

		Convey("When the tyre was already worn at stint start", func() {
			s := stint.Stint{
				Compound: model.CompoundSoft,
				StartAge: 6,
				StartLap: 30,
				Laps:     []stint.LapPoint{{TyreAge: 6, RaceLap: 30}},
			}

			Convey("Then the curve starts below 100", func() {
				points := health.Curve(s, profile)
				So(points, ShouldHaveLength, 1)
				So(points[0].Health, ShouldAlmostEqual, 100-5*100.0/19, tolerance)
			})
		})

		Convey("When a stint runs past its expected life", func() {
			s := stint.Stint{Compound: model.CompoundIntermediate, StartAge: 1, StartLap: 0}
			for i := 0; i < 25; i++ {
				s.Laps = append(s.Laps, stint.LapPoint{TyreAge: 1 + i, RaceLap: i})
			}

			Convey("Then health continues below zero unclamped", func() {
				points := health.Curve(s, profile)
				So(points[len(points)-1].Health, ShouldBeLessThan, 0)
			})
		})

		Convey("When the compound is unknown", func() {
			s := stint.Stint{
				Compound: model.Compound(9),
				StartAge: 1,
				StartLap: 0,
				Laps:     []stint.LapPoint{{TyreAge: 1, RaceLap: 0}, {TyreAge: 25, RaceLap: 24}},
			}

			Convey("Then the default expected life of 25 applies", func() {
				points := health.Curve(s, profile)
				So(points[0].Health, ShouldAlmostEqual, 100, tolerance)
				So(points[1].Health, ShouldAlmostEqual, 0, tolerance)
			})
		})

		Convey("When a degenerate stint has a single sample", func() {
			s := stint.Stint{
				Compound: model.CompoundWet,
				StartAge: 1,
				StartLap: 3,
				Laps:     []stint.LapPoint{{TyreAge: 1, RaceLap: 3}},
			}

			Convey("Then one point is still produced", func() {
				So(health.Curve(s, profile), ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given a profile where a compound lasts a single lap", t, func() {
		profile := health.NewProfile(
			health.WithExpectedLife(map[model.Compound]int{model.CompoundSoft: 1}),
		)

		Convey("Then health is pinned at 100 regardless of age or lap", func() {
			s := stint.Stint{
				Compound: model.CompoundSoft,
				StartAge: 7,
				StartLap: 2,
				Laps: []stint.LapPoint{
					{TyreAge: 7, RaceLap: 2},
					{TyreAge: 8, RaceLap: 3},
					{TyreAge: 40, RaceLap: 60},
				},
			}
			for _, p := range health.Curve(s, profile) {
				So(p.Health, ShouldEqual, 100)
			}
		})
	})
}

func TestProfile(t *testing.T) {
	Convey("Given a profile built from named config tables", t, func() {
		profile := health.FromNamedTables(
			map[string]int{"soft": 15, "bogus": 99},
			30,
			map[string]float64{"soft": 0.02, "bogus": 0.5},
		)

		Convey("Then recognized names are mapped to compound codes", func() {
			So(profile.ExpectedLife(model.CompoundSoft), ShouldEqual, 15)
			rate, ok := profile.DegradationRate(model.CompoundSoft)
			So(ok, ShouldBeTrue)
			So(rate, ShouldEqual, 0.02)
		})

		Convey("And unknown compounds fall back to the default life", func() {
			So(profile.ExpectedLife(model.CompoundHard), ShouldEqual, 30)
		})

		Convey("And unrecognized names are dropped", func() {
			_, ok := profile.DegradationRate(model.Compound(42))
			So(ok, ShouldBeFalse)
		})
	})
}
