package simrace

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pitwall/tyretrace/internal/domain/model"
	"github.com/pitwall/tyretrace/pkg/logger"
)

// Grid of driver codes used to seed the simulation. A run with more
// drivers than the grid generates synthetic codes beyond it.
var gridCodes = []string{
	"VER", "PER", "HAM", "RUS", "LEC", "SAI", "NOR", "PIA", "ALO", "STR",
	"GAS", "OCO", "ALB", "SAR", "TSU", "RIC", "BOT", "ZHO", "MAG", "HUL",
}

// Stint planning bounds.
const (
	minStintLaps    = 8
	stintLapsJitter = 10
	maxStints       = 4
	usedTyreChance  = 4 // one in N drivers starts a stint on used tyres
	maxUsedTyreAge  = 6
)

// compoundOrder is the pool pit stops draw from.
var compoundOrder = []model.Compound{
	model.CompoundSoft,
	model.CompoundMedium,
	model.CompoundHard,
}

// stintPlan is one driver's tyre strategy for the race.
type stintPlan struct {
	startLap int
	compound model.Compound
	startAge int
}

// buildRaceScript plans every driver's strategy, then expands the plans
// into the per-frame telemetry the feed will submit.
func buildRaceScript(ctx context.Context, config *Config, stats *Stats) []model.Frame {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	runID := uuid.New().String()
	logger.Get().Info(ctx, "building race script",
		logger.String("runID", runID),
		logger.Int64("seed", seed),
		logger.Int("drivers", config.Drivers),
		logger.Int("laps", config.Laps))

	codes := driverCodes(config.Drivers)
	plans := make(map[string][]stintPlan, len(codes))
	for _, code := range codes {
		plans[code] = planStints(rng, config.Laps)
	}

	frames := make([]model.Frame, 0, config.Laps*config.FramesPerLap)
	frameIndex := int64(0)
	for lap := 1; lap <= config.Laps; lap++ {
		for f := 0; f < config.FramesPerLap; f++ {
			frame := model.Frame{
				FrameIndex: frameIndex,
				Drivers:    make(map[string]model.DriverTelemetry, len(codes)),
			}
			for _, code := range codes {
				frame.Drivers[code] = telemetryAt(plans[code], lap)
			}
			frames = append(frames, frame)
			frameIndex++
		}
	}

	stats.FramesGenerated = len(frames)
	stats.DriversOnGrid = len(codes)
	logger.Get().Info(ctx, "race script ready",
		logger.Int("frames", len(frames)),
		logger.Int("drivers", len(codes)))
	return frames
}

// driverCodes returns n codes, extending the grid with numbered entries
// when n exceeds it.
func driverCodes(n int) []string {
	if n <= len(gridCodes) {
		return gridCodes[:n]
	}
	codes := make([]string, 0, n)
	codes = append(codes, gridCodes...)
	for i := len(gridCodes); i < n; i++ {
		codes = append(codes, "D"+string(rune('A'+(i-len(gridCodes))%26))+string(rune('A'+i%26)))
	}
	return codes
}

// planStints produces a pit strategy covering the whole race distance.
func planStints(rng *rand.Rand, laps int) []stintPlan {
	plans := make([]stintPlan, 0, maxStints)
	lap := 1
	for len(plans) < maxStints && lap <= laps {
		compound := compoundOrder[rng.Intn(len(compoundOrder))]
		startAge := 1
		if rng.Intn(usedTyreChance) == 0 {
			startAge = 1 + rng.Intn(maxUsedTyreAge)
		}
		plans = append(plans, stintPlan{startLap: lap, compound: compound, startAge: startAge})
		lap += minStintLaps + rng.Intn(stintLapsJitter)
	}
	return plans
}

// telemetryAt evaluates a driver's plan at a race lap: the active stint is
// the last one starting at or before the lap, and tyre age grows one lap
// at a time from the stint's starting age.
func telemetryAt(plans []stintPlan, lap int) model.DriverTelemetry {
	active := plans[0]
	for _, p := range plans[1:] {
		if p.startLap <= lap {
			active = p
		}
	}
	return model.DriverTelemetry{
		Tyre:     int(active.compound),
		TyreLife: active.startAge + (lap - active.startLap),
		Lap:      lap,
	}
}
