// Package character models an adventurer: equipped items, backpack, saved
// loadouts, progression and the persisted blob they round-trip through.
//
// A Character is not safe for concurrent use. Callers serialize mutations per
// character (see internal/adventurer).
package character

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/inventory"
)

var (
	// ErrLoadoutNotFound is returned when a named loadout does not exist.
	ErrLoadoutNotFound = errors.New("loadout not found")
	// ErrItemNotFound is returned when a named item is neither equipped nor in the backpack.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidLoadoutName is returned when saving a loadout under an empty name.
	ErrInvalidLoadoutName = errors.New("loadout name must not be empty")
)

// Character is the aggregate root for one adventurer.
//
// Attack, Diplomacy, Dexterity and Luck are derived from the distinct equipped
// items and recomputed after every equipment change; they are never stored.
type Character struct {
	ID string

	Exp      float64
	Level    int
	Treasure inventory.Treasure
	Skills   Skills

	// HeroClass is carried through persistence untouched.
	HeroClass []byte

	// Balance is attached from the economy service; it is not persisted with the blob.
	Balance int64

	equipment *inventory.Equipment
	backpack  *inventory.Backpack
	loadouts  map[string]inventory.Loadout
	totals    inventory.Stats

	anomalies int
	logger    *zap.Logger
}

// New returns a level 1 Hero with nothing equipped.
//
// Precondition: id is non-empty.
// Postcondition: a nil logger is replaced with a no-op logger.
func New(id string, logger *zap.Logger) *Character {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Character{
		ID:        id,
		Level:     1,
		HeroClass: append([]byte(nil), defaultHeroClass...),
		equipment: inventory.NewEquipment(),
		backpack:  inventory.NewBackpack(),
		loadouts:  make(map[string]inventory.Loadout),
		logger:    logger.With(zap.String("character", id)),
	}
}

// Attack returns the summed attack of the distinct equipped items.
func (c *Character) Attack() int { return c.totals.Attack }

// Diplomacy returns the summed diplomacy of the distinct equipped items.
func (c *Character) Diplomacy() int { return c.totals.Diplomacy }

// Dexterity returns the summed dexterity of the distinct equipped items.
func (c *Character) Dexterity() int { return c.totals.Dexterity }

// Luck returns the summed luck of the distinct equipped items.
func (c *Character) Luck() int { return c.totals.Luck }

// Totals returns all derived stats at once.
func (c *Character) Totals() inventory.Stats { return c.totals }

// Equipped returns the item in slot s, or nil.
func (c *Character) Equipped(s inventory.Slot) *inventory.Item {
	return c.equipment.Get(s)
}

// EquippedItems returns each equipped item once, in slot order.
func (c *Character) EquippedItems() []*inventory.Item {
	return c.equipment.Distinct()
}

// EquippedNamed returns the equipped item with the given plain or rendered
// name.
func (c *Character) EquippedNamed(name string) (*inventory.Item, bool) {
	return lookupByName(name, c.wornNamed)
}

func (c *Character) wornNamed(name string) (*inventory.Item, bool) {
	for _, item := range c.equipment.Distinct() {
		if item.Name == name {
			return item, true
		}
	}
	return nil, false
}

// Backpack returns the character's backpack. Callers must not add or remove
// entries directly; use AddLoot, Equip and Unequip.
func (c *Character) Backpack() *inventory.Backpack {
	return c.backpack
}

// Loadout returns the named loadout snapshot.
func (c *Character) Loadout(name string) (inventory.Loadout, bool) {
	l, ok := c.loadouts[name]
	return l, ok
}

// LoadoutNames returns the saved loadout names sorted alphabetically.
func (c *Character) LoadoutNames() []string {
	names := make([]string, 0, len(c.loadouts))
	for name := range c.loadouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Anomalies returns how many data anomalies were recovered from since the
// character was created or decoded.
func (c *Character) Anomalies() int {
	return c.anomalies
}

func (c *Character) recompute() {
	c.totals = c.equipment.Totals()
}

// holds reports whether item is still referenced by any of its own slots.
func (c *Character) holds(item *inventory.Item) bool {
	for _, s := range item.Slots {
		if c.equipment.Get(s) == item {
			return true
		}
	}
	return false
}

func (c *Character) anomaly(msg string, fields ...zap.Field) {
	c.anomalies++
	c.logger.Warn(msg, fields...)
}

// Heal detects and repairs equipment invariant violations, returning the
// number of repairs made:
//   - an item sitting in a slot it does not occupy is removed from it, and
//     returned to the backpack unless it is still worn elsewhere;
//   - a two-handed item found in one hand is extended to the other, moving any
//     item held there to the backpack;
//   - an equipped item that aliases a backpack entry is detached from it.
//
// Postcondition: derived totals are recomputed.
func (c *Character) Heal() int {
	repairs := 0
	for _, s := range inventory.AllSlots() {
		item := c.equipment.Get(s)
		if item == nil || item.Occupies(s) {
			continue
		}
		c.equipment.Clear(s)
		if !c.holds(item) {
			c.backpack.Add(item.Clone(1))
		}
		c.anomaly("item in foreign slot removed",
			zap.String("slot", s.String()), zap.String("item", item.Name))
		repairs++
	}

	for _, pair := range [][2]inventory.Slot{
		{inventory.SlotLeft, inventory.SlotRight},
		{inventory.SlotRight, inventory.SlotLeft},
	} {
		item, other := c.equipment.Get(pair[0]), c.equipment.Get(pair[1])
		if item == nil || !item.IsTwoHanded() || other == item {
			continue
		}
		c.equipment.Set(pair[1], item)
		if other != nil && other.Name != item.Name && !c.holds(other) {
			c.backpack.Add(other.Clone(1))
		}
		c.anomaly("two-handed item repaired across both hands",
			zap.String("slot", pair[0].String()), zap.String("item", item.Name))
		repairs++
	}

	for _, item := range c.equipment.Distinct() {
		stored, ok := c.backpack.Get(item.Name)
		if !ok || stored != item {
			continue
		}
		detached := item.Clone(1)
		for _, s := range item.Slots {
			if c.equipment.Get(s) == item {
				c.equipment.Set(s, detached)
			}
		}
		c.anomaly("equipped item aliased a backpack entry", zap.String("item", item.Name))
		repairs++
	}

	c.recompute()
	return repairs
}
