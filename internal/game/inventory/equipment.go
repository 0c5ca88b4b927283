package inventory

// Equipment is the fixed set of slots a character wears items in.
//
// Invariant (maintained by the character aggregate): a two-handed item in
// SlotLeft is the same *Item as the one in SlotRight.
type Equipment struct {
	slots [SlotCount]*Item
}

// NewEquipment returns Equipment with every slot empty.
func NewEquipment() *Equipment {
	return &Equipment{}
}

// Get returns the item in s, or nil when s is empty or invalid.
func (e *Equipment) Get(s Slot) *Item {
	if !s.Valid() {
		return nil
	}
	return e.slots[s]
}

// Set places item in s; a nil item empties the slot.
//
// Precondition: s.Valid().
func (e *Equipment) Set(s Slot, item *Item) {
	e.slots[s] = item
}

// Clear empties s.
func (e *Equipment) Clear(s Slot) {
	e.Set(s, nil)
}

// Distinct returns every equipped item once, in slot order. A two-handed item
// filling both hands appears a single time.
func (e *Equipment) Distinct() []*Item {
	out := make([]*Item, 0, SlotCount)
	seen := make(map[*Item]bool, SlotCount)
	for _, item := range e.slots {
		if item == nil || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// Totals sums the stats of Distinct().
func (e *Equipment) Totals() Stats {
	var total Stats
	for _, item := range e.Distinct() {
		total = total.Add(item.Stats)
	}
	return total
}

// SlotsHolding returns every slot whose item has the given name.
func (e *Equipment) SlotsHolding(name string) []Slot {
	var out []Slot
	for s, item := range e.slots {
		if item != nil && item.Name == name {
			out = append(out, Slot(s))
		}
	}
	return out
}
