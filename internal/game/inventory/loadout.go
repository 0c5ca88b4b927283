package inventory

// Loadout is a named snapshot of which item occupied each slot. Entries are
// detached copies taken at save time; applying a loadout re-resolves them by
// name against the backpack, so an entry may name an item that no longer exists.
type Loadout [SlotCount]*Item

// SnapshotOf copies every item in e; empty slots stay nil. Both hands of a
// two-handed item share one copy.
func SnapshotOf(e *Equipment) Loadout {
	var l Loadout
	copies := make(map[*Item]*Item)
	for _, s := range AllSlots() {
		item := e.Get(s)
		if item == nil {
			continue
		}
		if _, ok := copies[item]; !ok {
			copies[item] = item.Clone(1)
		}
		l[s] = copies[item]
	}
	return l
}

// Name returns the plain item name recorded for s, and false when the slot
// was empty.
func (l Loadout) Name(s Slot) (string, bool) {
	if !s.Valid() || l[s] == nil {
		return "", false
	}
	return l[s].Name, true
}

// Rendered returns the display name recorded for s, or "" when empty.
func (l Loadout) Rendered(s Slot) string {
	if !s.Valid() || l[s] == nil {
		return ""
	}
	return Render(l[s])
}

// Empty reports whether every slot of the snapshot is empty.
func (l Loadout) Empty() bool {
	for _, item := range l {
		if item != nil {
			return false
		}
	}
	return true
}
