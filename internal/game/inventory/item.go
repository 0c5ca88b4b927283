// Package inventory defines items, their rarity markup, and the containers a
// character keeps them in: equipment slots, the backpack, and loadouts.
package inventory

import (
	"errors"
	"fmt"
)

// Stats are the combat attributes an item grants while equipped.
type Stats struct {
	Attack    int
	Diplomacy int
	Dexterity int
	Luck      int
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Attack:    s.Attack + o.Attack,
		Diplomacy: s.Diplomacy + o.Diplomacy,
		Dexterity: s.Dexterity + o.Dexterity,
		Luck:      s.Luck + o.Luck,
	}
}

// Item is one piece of equipment or material. Owned counts identical copies
// held in a backpack; an equipped item always represents a single copy.
type Item struct {
	Name   string
	Slots  []Slot
	Stats  Stats
	Rarity Rarity
	Owned  int
}

// IsTwoHanded reports whether the item occupies both hands.
func (i *Item) IsTwoHanded() bool {
	return len(i.Slots) == 2
}

// Group returns the backpack display group: the slot name, or TwoHanded.
func (i *Item) Group() string {
	if i.IsTwoHanded() {
		return TwoHanded
	}
	if len(i.Slots) == 0 {
		return ""
	}
	return i.Slots[0].String()
}

// Occupies reports whether the item attaches to slot s.
func (i *Item) Occupies(s Slot) bool {
	for _, own := range i.Slots {
		if own == s {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of i with Owned set to owned.
func (i *Item) Clone(owned int) *Item {
	out := *i
	out.Slots = append([]Slot(nil), i.Slots...)
	out.Owned = owned
	return &out
}

// String renders the item's display name with rarity markup.
func (i *Item) String() string {
	return Render(i)
}

// Validate checks the item's structural invariants.
//
// Postcondition: returns nil iff Name is non-empty, Slots is a single valid
// slot or exactly [left right], Rarity is known, and Owned >= 1.
func (i *Item) Validate() error {
	var errs []error
	if i.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	switch len(i.Slots) {
	case 1:
		if !i.Slots[0].Valid() {
			errs = append(errs, fmt.Errorf("invalid slot %d", int(i.Slots[0])))
		}
	case 2:
		if i.Slots[0] != SlotLeft || i.Slots[1] != SlotRight {
			errs = append(errs, fmt.Errorf("two-slot item must occupy [left right], got %v", i.Slots))
		}
	default:
		errs = append(errs, fmt.Errorf("item must occupy 1 or 2 slots, got %d", len(i.Slots)))
	}
	if !i.Rarity.Valid() {
		errs = append(errs, fmt.Errorf("unknown rarity %q", i.Rarity))
	}
	if i.Owned < 1 {
		errs = append(errs, fmt.Errorf("owned must be >= 1, got %d", i.Owned))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q validation failed: %v", i.Name, errs)
	}
	return nil
}
