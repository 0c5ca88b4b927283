// Package adventure holds the deterministic seed codec and the adaptive
// difficulty history used to pick monsters for group encounters.
package adventure

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRange is returned by StatRange.Validate for ranges that cannot be
// encoded into a GameSeed without clamping.
var ErrInvalidRange = errors.New("adventure: invalid stat range")

// Axis is the stat dimension a monster challenge is weighted toward.
type Axis uint8

const (
	// AxisDiplomacy prefers monsters that must be talked down.
	AxisDiplomacy Axis = 0
	// AxisHP prefers monsters that must be fought.
	AxisHP Axis = 1
)

// String returns the persisted name of the axis.
func (a Axis) String() string {
	if a == AxisHP {
		return "hp"
	}
	return "dipl"
}

// ParseAxis maps "hp" or "dipl" (also "diplomacy") to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "hp":
		return AxisHP, nil
	case "dipl", "diplomacy":
		return AxisDiplomacy, nil
	}
	return AxisHP, fmt.Errorf("adventure: unknown axis %q", s)
}

// StatRange is the closed range of monster power an encounter should draw from.
//
// Invariant: once validated, 0 <= Min <= Max <= MaxStat and WinRate is in [0,1].
type StatRange struct {
	Axis    Axis
	Min     float64
	Max     float64
	WinRate float64
}

// IsNeutral reports whether r is the "no history, use defaults" range.
func (r StatRange) IsNeutral() bool {
	return r.Min == 0 && r.Max == 0
}

// Validate checks that r can be encoded losslessly.
//
// Postcondition: returns nil iff Min and Max are finite, inside [0, MaxStat],
// Min <= Max, and WinRate is inside [0,1].
func (r StatRange) Validate() error {
	var errs []string
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsNaN(r.WinRate) {
		errs = append(errs, "NaN field")
	}
	if r.Min < 0 || r.Min > MaxStat {
		errs = append(errs, fmt.Sprintf("min %.2f outside [0,%d]", r.Min, MaxStat))
	}
	if r.Max < 0 || r.Max > MaxStat {
		errs = append(errs, fmt.Sprintf("max %.2f outside [0,%d]", r.Max, MaxStat))
	}
	if r.Min > r.Max {
		errs = append(errs, fmt.Sprintf("min %.2f > max %.2f", r.Min, r.Max))
	}
	if r.WinRate < 0 || r.WinRate > 1 {
		errs = append(errs, fmt.Sprintf("win rate %.2f outside [0,1]", r.WinRate))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRange, errs)
	}
	return nil
}

// Clamped returns a copy of r with Min and Max truncated to whole stats inside
// [0, MaxStat] and Min <= Max. WinRate is forced into [0,1].
func (r StatRange) Clamped() StatRange {
	out := r
	out.Min = float64(clampStat(r.Min))
	out.Max = float64(clampStat(r.Max))
	if out.Min > out.Max {
		out.Min = out.Max
	}
	switch {
	case math.IsNaN(r.WinRate) || r.WinRate < 0:
		out.WinRate = 0
	case r.WinRate > 1:
		out.WinRate = 1
	}
	return out
}
