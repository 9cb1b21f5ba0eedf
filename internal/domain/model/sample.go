// Package model contains domain models passed between layers.
package model

// Compound is a small-integer tyre compound code as supplied by the
// telemetry feed.
type Compound int

// Known compound codes.
const (
	CompoundSoft Compound = iota
	CompoundMedium
	CompoundHard
	CompoundIntermediate
	CompoundWet
)

// String returns the lowercase compound name, or "unknown" for codes
// outside the known range.
func (c Compound) String() string {
	switch c {
	case CompoundSoft:
		return "soft"
	case CompoundMedium:
		return "medium"
	case CompoundHard:
		return "hard"
	case CompoundIntermediate:
		return "intermediate"
	case CompoundWet:
		return "wet"
	default:
		return "unknown"
	}
}

// CompoundFromName resolves a compound name to its code. The second return
// value is false for unrecognized names.
func CompoundFromName(name string) (Compound, bool) {
	switch name {
	case "soft":
		return CompoundSoft, true
	case "medium":
		return CompoundMedium, true
	case "hard":
		return CompoundHard, true
	case "intermediate":
		return CompoundIntermediate, true
	case "wet":
		return CompoundWet, true
	default:
		return 0, false
	}
}

// Sample is one telemetry observation for a driver. Samples are immutable
// once recorded.
type Sample struct {
	SequenceIndex int64    // monotonic arrival order
	Compound      Compound // tyre compound code
	TyreAge       int      // laps since the tyre was fitted
	RaceLap       int      // current race lap
}

// DriverTelemetry carries the per-driver fields of an inbound frame.
// Missing fields decode to zero values, which is the defined default for
// absent data.
type DriverTelemetry struct {
	Tyre     int `json:"tyre"`
	TyreLife int `json:"tyre_life"`
	Lap      int `json:"lap"`
}

// Frame is one inbound telemetry event covering all drivers.
type Frame struct {
	FrameIndex int64                      `json:"frame_index"`
	Drivers    map[string]DriverTelemetry `json:"drivers"`
}

// Sample converts one driver entry of the frame into a store sample.
func (f Frame) Sample(driver string) Sample {
	t := f.Drivers[driver]
	return Sample{
		SequenceIndex: f.FrameIndex,
		Compound:      Compound(t.Tyre),
		TyreAge:       t.TyreLife,
		RaceLap:       t.Lap,
	}
}
