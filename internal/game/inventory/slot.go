package inventory

import (
	"fmt"
	"strings"
)

// Slot identifies one of the fixed equipment attachment points on a character.
type Slot int

const (
	SlotHead Slot = iota
	SlotNeck
	SlotChest
	SlotGloves
	SlotBelt
	SlotLegs
	SlotBoots
	SlotLeft
	SlotRight
	SlotRing
	SlotCharm

	// SlotCount is the number of equipment slots.
	SlotCount
)

// TwoHanded is the synthetic group name for items occupying left and right.
const TwoHanded = "two handed"

var slotNames = [SlotCount]string{
	"head", "neck", "chest", "gloves", "belt", "legs", "boots", "left", "right", "ring", "charm",
}

// groupOrder is the canonical display order of slot groups.
var groupOrder = []string{
	"head", "neck", "chest", "gloves", "belt", "legs", "boots", "left", "right", TwoHanded, "ring", "charm",
}

// AllSlots returns every slot in canonical order.
func AllSlots() []Slot {
	out := make([]Slot, SlotCount)
	for i := range out {
		out[i] = Slot(i)
	}
	return out
}

// Valid reports whether s names a real slot.
func (s Slot) Valid() bool {
	return s >= 0 && s < SlotCount
}

// String returns the persisted slot name.
func (s Slot) String() string {
	if !s.Valid() {
		return fmt.Sprintf("slot(%d)", int(s))
	}
	return slotNames[s]
}

// ParseSlot maps a persisted slot name to a Slot.
func ParseSlot(name string) (Slot, error) {
	for i, n := range slotNames {
		if n == name {
			return Slot(i), nil
		}
	}
	return 0, fmt.Errorf("inventory: unknown slot %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Slot) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("inventory: invalid slot %d", int(s))
	}
	return []byte(slotNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Slot) UnmarshalText(b []byte) error {
	parsed, err := ParseSlot(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// GroupIndex returns the canonical display position of a slot group, or
// len(groupOrder) for an unknown group.
func GroupIndex(group string) int {
	for i, g := range groupOrder {
		if g == group {
			return i
		}
	}
	return len(groupOrder)
}

// GroupDisplayName renders a group as a title, e.g. "Two Handed".
func GroupDisplayName(group string) string {
	words := strings.Fields(group)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
