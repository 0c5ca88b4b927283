package adventure

import (
	"fmt"
	"math"
)

// Bit layout of an encoded GameSeed, low bits first:
//
//	bits  0-9   max stat
//	bits 10-19  min stat
//	bit  20     axis (1 = hp, 0 = diplomacy)
//	bits 21-29  always zero
//	bits 30-63  origin id bits 30-63, unchanged
//
// Changing any of these constants changes every historical encounter's RNG.
const (
	timestampShift = 30
	axisShift      = 20
	minShift       = 10
	statMask       = 1<<10 - 1

	// MaxStat is the largest min/max stat a GameSeed can carry.
	MaxStat = statMask
)

// GameSeed binds an encounter's origin identifier (a snowflake-style id whose
// high bits carry a timestamp) to the StatRange its monster was drawn from.
// The pair packs into one integer usable as an RNG seed.
type GameSeed struct {
	OriginID uint64
	Range    StatRange
}

// NewGameSeed returns the seed for an encounter started by originID.
func NewGameSeed(originID uint64, r StatRange) GameSeed {
	return GameSeed{OriginID: originID, Range: r}
}

// Uint64 encodes s.
//
// Min and Max are truncated and clamped into [0, MaxStat]; out-of-range values
// are never allowed to wrap into neighbouring fields. The low 30 bits of
// OriginID are discarded.
func (s GameSeed) Uint64() uint64 {
	out := s.OriginID >> timestampShift << timestampShift
	if s.Range.Axis == AxisHP {
		out |= 1 << axisShift
	}
	out |= clampStat(s.Range.Min) << minShift
	out |= clampStat(s.Range.Max)
	return out
}

// Timestamp returns the origin id bits that survive encoding, shifted down.
func (s GameSeed) Timestamp() uint64 {
	return s.OriginID >> timestampShift
}

// String renders s in a form suitable for operator logs.
func (s GameSeed) String() string {
	return fmt.Sprintf("%d (%s %d-%d)", s.Uint64(), s.Range.Axis, clampStat(s.Range.Min), clampStat(s.Range.Max))
}

// DecodeGameSeed inverts GameSeed.Uint64.
//
// Postcondition: the result is always structurally valid. OriginID carries only
// the high bits of the original id; WinRate is zero since it is not encoded.
func DecodeGameSeed(n uint64) GameSeed {
	axis := AxisDiplomacy
	if n>>axisShift&1 == 1 {
		axis = AxisHP
	}
	return GameSeed{
		OriginID: n >> timestampShift << timestampShift,
		Range: StatRange{
			Axis: axis,
			Min:  float64(n >> minShift & statMask),
			Max:  float64(n & statMask),
		},
	}
}

func clampStat(v float64) uint64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= MaxStat:
		return MaxStat
	}
	return uint64(v)
}
