package character

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/inventory"
)

// Equip puts item into every slot it occupies. Each distinct item already in
// those slots is unequipped to the backpack first, exactly once, so a
// two-handed item displaced from both hands is credited a single time. When
// fromBackpack is set and the backpack holds an item of that name, one copy is
// taken from it.
//
// Equipping an item that is already worn is a no-op. An invalid item is
// logged and ignored.
//
// Postcondition: derived totals reflect the new equipment.
func (c *Character) Equip(item *inventory.Item, fromBackpack bool) {
	if item == nil {
		return
	}
	if err := item.Validate(); err != nil {
		c.anomaly("refusing to equip invalid item", zap.String("item", item.Name), zap.Error(err))
		return
	}
	if c.wearing(item) {
		return
	}

	displaced := make([]*inventory.Item, 0, 2)
	for _, s := range item.Slots {
		cur := c.equipment.Get(s)
		if cur == nil || contains(displaced, cur) {
			continue
		}
		displaced = append(displaced, cur)
	}
	for _, cur := range displaced {
		c.unequip(cur)
	}

	worn := item.Clone(1)
	if fromBackpack {
		if taken, ok := c.backpack.Take(item.Name); ok {
			worn = taken
		}
	}
	for _, s := range worn.Slots {
		c.equipment.Set(s, worn)
	}
	c.recompute()
}

// EquipFromBackpack equips one copy of the named backpack item. name may be
// the plain name or the rendered display name, e.g. "[Iron Helm]".
//
// Postcondition: returns ErrItemNotFound, with no state change, when the
// backpack has no such entry.
func (c *Character) EquipFromBackpack(name string) error {
	item, ok := lookupByName(name, c.backpack.Get)
	if !ok {
		return fmt.Errorf("equip %q: %w", name, ErrItemNotFound)
	}
	c.Equip(item, true)
	return nil
}

// Unequip returns the worn item with item's name to the backpack, merging with
// an existing entry, and clears every slot holding it. It reports false, after
// logging, when no such item is worn.
func (c *Character) Unequip(item *inventory.Item) bool {
	if item == nil {
		return false
	}
	worn, ok := c.EquippedNamed(item.Name)
	if !ok {
		c.anomaly("unequip of item that is not worn", zap.String("item", item.Name))
		return false
	}
	c.unequip(worn)
	c.recompute()
	return true
}

// UnequipSlot unequips whatever is in s, including the other hand of a
// two-handed item. It reports false when s is empty.
func (c *Character) UnequipSlot(s inventory.Slot) bool {
	cur := c.equipment.Get(s)
	if cur == nil {
		return false
	}
	c.unequip(cur)
	c.recompute()
	return true
}

// lookupByName resolves name as a plain name first, then as a rendered
// display name whose markup must match the found item's rarity.
func lookupByName(name string, get func(string) (*inventory.Item, bool)) (*inventory.Item, bool) {
	if item, ok := get(name); ok {
		return item, true
	}
	plain, rarity := inventory.ParseName(name)
	if plain == name {
		return nil, false
	}
	item, ok := get(plain)
	if !ok || item.Rarity != rarity {
		return nil, false
	}
	return item, true
}

// unequip moves worn to the backpack and clears each slot referencing it.
// It does not recompute totals.
func (c *Character) unequip(worn *inventory.Item) {
	for _, s := range c.equipment.SlotsHolding(worn.Name) {
		if c.equipment.Get(s) == worn {
			c.equipment.Clear(s)
		}
	}
	c.backpack.Add(worn.Clone(1))
}

// wearing reports whether every slot of item already holds an item of the
// same name.
func (c *Character) wearing(item *inventory.Item) bool {
	for _, s := range item.Slots {
		cur := c.equipment.Get(s)
		if cur == nil || cur.Name != item.Name {
			return false
		}
	}
	return true
}

// AddLoot stores a new item in the backpack, merging with an existing entry
// of the same name. Invalid items are rejected.
func (c *Character) AddLoot(item *inventory.Item) error {
	if item == nil {
		return fmt.Errorf("add loot: nil item")
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("add loot: %w", err)
	}
	c.backpack.Add(item)
	return nil
}

// SaveLoadout records the current equipment under name, replacing any
// loadout already saved under it.
//
// Postcondition: Loadout(name) returns the snapshot.
func (c *Character) SaveLoadout(name string) (inventory.Loadout, error) {
	if name == "" {
		return inventory.Loadout{}, ErrInvalidLoadoutName
	}
	l := inventory.SnapshotOf(c.equipment)
	c.loadouts[name] = l
	return l, nil
}

// DeleteLoadout removes a saved loadout.
func (c *Character) DeleteLoadout(name string) error {
	if _, ok := c.loadouts[name]; !ok {
		return fmt.Errorf("delete loadout %q: %w", name, ErrLoadoutNotFound)
	}
	delete(c.loadouts, name)
	return nil
}

// ApplyLoadout re-equips the named loadout slot by slot. Each snapshot entry
// is resolved by name: a slot already wearing that item is left alone, a slot
// wearing something else is unequipped, and the item is then equipped from the
// backpack. An entry whose item is neither worn nor in the backpack leaves the
// slot empty; an empty entry empties the slot.
//
// Precondition: name refers to a saved loadout.
// Postcondition: returns ErrLoadoutNotFound with no state change otherwise.
func (c *Character) ApplyLoadout(name string) error {
	l, ok := c.loadouts[name]
	if !ok {
		return fmt.Errorf("apply loadout %q: %w", name, ErrLoadoutNotFound)
	}

	for _, s := range inventory.AllSlots() {
		want, wanted := l.Name(s)
		cur := c.equipment.Get(s)
		if cur != nil && wanted && cur.Name == want {
			continue
		}
		if cur != nil {
			c.unequip(cur)
		}
		if !wanted {
			continue
		}
		item, ok := c.backpack.Get(want)
		if !ok {
			c.anomaly("loadout item no longer owned, slot left empty",
				zap.String("loadout", name), zap.String("slot", s.String()), zap.String("item", want))
			continue
		}
		if !item.Occupies(s) {
			c.anomaly("loadout item does not fit its slot, slot left empty",
				zap.String("loadout", name), zap.String("slot", s.String()), zap.String("item", want))
			continue
		}
		c.Equip(item, true)
	}
	c.recompute()
	return nil
}

func contains(items []*inventory.Item, item *inventory.Item) bool {
	for _, i := range items {
		if i == item {
			return true
		}
	}
	return false
}
