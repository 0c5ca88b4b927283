// Package dice rolls dice expressions against a pluggable randomness source.
// Encounter scaling rolls against an adventure.Random so replaying a GameSeed
// replays its rolls.
package dice

import (
	"fmt"
	"strings"
)

// Source supplies randomness for rolls. adventure.Random satisfies it.
type Source interface {
	// Intn returns a value in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// RollResult is one evaluated expression. Dice holds only the kept dice.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the kept dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "2d6+3: 4+5+3 = 12".
func (r RollResult) String() string {
	parts := make([]string, 0, len(r.Dice)+1)
	for _, d := range r.Dice {
		parts = append(parts, fmt.Sprint(d))
	}
	sum := strings.Join(parts, "+")
	switch {
	case r.Modifier > 0:
		sum += fmt.Sprintf("+%d", r.Modifier)
	case r.Modifier < 0:
		sum += fmt.Sprintf("%d", r.Modifier)
	}
	return fmt.Sprintf("%s: %s = %d", r.Expression, sum, r.Total())
}
