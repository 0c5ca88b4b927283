package character

import (
	"errors"
	"fmt"
)

// ErrNoSkillPoints is returned when allocating more points than the pool holds.
var ErrNoSkillPoints = errors.New("not enough unspent skill points")

// Skills are the points a character has invested on top of equipment.
type Skills struct {
	Pool         int `json:"pool"`
	Attack       int `json:"att"`
	Diplomacy    int `json:"cha"`
	Intelligence int `json:"int"`
}

// Allocate moves points from the pool into the named skill ("att", "cha"
// or "int").
//
// Precondition: points > 0.
// Postcondition: on error the skills are unchanged.
func (s *Skills) Allocate(skill string, points int) error {
	if points <= 0 {
		return fmt.Errorf("allocating %d points: must be positive", points)
	}
	if points > s.Pool {
		return fmt.Errorf("allocating %d points with %d unspent: %w", points, s.Pool, ErrNoSkillPoints)
	}
	switch skill {
	case "att":
		s.Attack += points
	case "cha":
		s.Diplomacy += points
	case "int":
		s.Intelligence += points
	default:
		return fmt.Errorf("unknown skill %q", skill)
	}
	s.Pool -= points
	return nil
}

// Reset returns every invested point to the pool.
//
// Postcondition: Attack, Diplomacy and Intelligence are zero; Pool holds their former sum.
func (s *Skills) Reset() {
	s.Pool += s.Attack + s.Diplomacy + s.Intelligence
	s.Attack, s.Diplomacy, s.Intelligence = 0, 0, 0
}

// SkillName returns the short display label for a skill field.
func SkillName(field string) string {
	names := map[string]string{
		"att": "ATT",
		"cha": "DPL",
		"int": "INT",
	}
	if n, ok := names[field]; ok {
		return n
	}
	return fmt.Sprintf("<%s>", field)
}

// NextLevelExp returns the experience needed to reach the level after lvl.
func NextLevelExp(lvl int) int64 {
	n := int64(lvl + 1)
	return n * n * n * n
}
