package character

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/inventory"
)

// backpackKey is the entry of the items object that holds the backpack.
const backpackKey = "backpack"

var defaultHeroClass = []byte(`{"name":"Hero","ability":false,"desc":"Your basic adventuring hero.","cooldown":0}`)

// Entry is the persisted form of a slot: empty, or a single rendered item
// name mapped to its payload. The backpack uses the same shape with one key
// per entry.
type Entry map[string]inventory.Payload

// Blob is the persisted character schema.
type Blob struct {
	Exp       float64                     `json:"exp"`
	Level     int                         `json:"lvl"`
	Treasure  inventory.Treasure          `json:"treasure"`
	Items     map[string]Entry            `json:"items"`
	Loadouts  map[string]map[string]Entry `json:"loadouts"`
	HeroClass json.RawMessage             `json:"heroclass"`
	Skill     Skills                      `json:"skill"`
}

// rawBlob accepts every historical shape of the blob. Items are decoded one
// at a time so a single bad entry cannot fail the load.
type rawBlob struct {
	Exp       *float64                   `json:"exp"`
	Level     *int                       `json:"lvl"`
	Treasure  []int                      `json:"treasure"`
	Items     map[string]json.RawMessage `json:"items"`
	Backpack  map[string]json.RawMessage `json:"backpack"`
	Loadouts  map[string]json.RawMessage `json:"loadouts"`
	HeroClass json.RawMessage            `json:"heroclass"`
	Class     json.RawMessage            `json:"class"`
	Skill     *Skills                    `json:"skill"`
}

// Decode builds a Character from a stored blob, normalizing legacy forms:
// "class" is read when "heroclass" is absent, a top-level "backpack" is merged
// with items.backpack, flat item objects are accepted next to the keyed form,
// and stored attack/diplomacy totals are ignored in favour of recomputation.
// Malformed entries are logged and skipped. An empty blob yields the default
// character.
//
// Postcondition: on success the returned Character has passed Heal.
func Decode(id string, data []byte, logger *zap.Logger) (*Character, error) {
	c := New(id, logger)
	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}

	var raw rawBlob
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding character %s: %w", id, err)
	}

	if raw.Exp != nil {
		c.Exp = *raw.Exp
	}
	if raw.Level != nil && *raw.Level >= 1 {
		c.Level = *raw.Level
	}
	if raw.Treasure != nil {
		if len(raw.Treasure) != inventory.ChestTiers {
			c.anomaly("treasure has unexpected tier count", zap.Int("tiers", len(raw.Treasure)))
		}
		copy(c.Treasure[:], raw.Treasure)
	}
	if raw.Skill != nil {
		c.Skills = *raw.Skill
	}

	switch {
	case len(raw.HeroClass) > 0 && !isNull(raw.HeroClass):
		c.HeroClass = append([]byte(nil), raw.HeroClass...)
	case len(raw.Class) > 0 && !isNull(raw.Class):
		c.logger.Warn("legacy class field read as heroclass")
		c.HeroClass = append([]byte(nil), raw.Class...)
	}

	for key, body := range raw.Items {
		if key == backpackKey {
			c.decodeBackpack(body)
			continue
		}
		s, err := inventory.ParseSlot(key)
		if err != nil {
			c.anomaly("unknown slot in stored equipment", zap.String("slot", key))
			continue
		}
		item, err := decodeEntry(body)
		if err != nil {
			c.anomaly("unreadable equipped item dropped", zap.String("slot", key), zap.Error(err))
			continue
		}
		if item != nil {
			item.Owned = 1
			c.equipment.Set(s, item)
		}
	}
	c.linkHands()

	if len(raw.Backpack) > 0 {
		c.logger.Warn("legacy top-level backpack merged")
		for rendered, body := range raw.Backpack {
			c.decodeBackpackEntry(rendered, body)
		}
	}

	for name, body := range raw.Loadouts {
		l, err := c.decodeLoadout(body)
		if err != nil {
			c.anomaly("unreadable loadout dropped", zap.String("loadout", name), zap.Error(err))
			continue
		}
		c.loadouts[name] = l
	}

	c.Heal()
	return c, nil
}

func (c *Character) decodeBackpack(body json.RawMessage) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		c.anomaly("unreadable backpack dropped", zap.Error(err))
		return
	}
	for rendered, entry := range entries {
		c.decodeBackpackEntry(rendered, entry)
	}
}

func (c *Character) decodeBackpackEntry(rendered string, body json.RawMessage) {
	var p inventory.Payload
	if err := json.Unmarshal(body, &p); err != nil {
		c.anomaly("unreadable backpack item dropped", zap.String("item", rendered), zap.Error(err))
		return
	}
	item, err := inventory.Parse(rendered, p)
	if err != nil {
		c.anomaly("invalid backpack item dropped", zap.String("item", rendered), zap.Error(err))
		return
	}
	c.backpack.Add(item)
}

// linkHands makes a two-handed item decoded separately for each hand a
// single shared item.
func (c *Character) linkHands() {
	left, right := c.equipment.Get(inventory.SlotLeft), c.equipment.Get(inventory.SlotRight)
	if left != nil && right != nil && left != right && left.IsTwoHanded() && left.Name == right.Name {
		c.equipment.Set(inventory.SlotRight, left)
	}
}

func (c *Character) decodeLoadout(body json.RawMessage) (inventory.Loadout, error) {
	var l inventory.Loadout
	var slots map[string]json.RawMessage
	if err := json.Unmarshal(body, &slots); err != nil {
		return l, err
	}
	for key, entry := range slots {
		s, err := inventory.ParseSlot(key)
		if err != nil {
			c.anomaly("unknown slot in stored loadout", zap.String("slot", key))
			continue
		}
		item, err := decodeEntry(entry)
		if err != nil {
			c.anomaly("unreadable loadout entry dropped", zap.String("slot", key), zap.Error(err))
			continue
		}
		if item != nil {
			item.Owned = 1
		}
		l[s] = item
	}

	for _, pair := range [][2]inventory.Slot{
		{inventory.SlotLeft, inventory.SlotRight},
		{inventory.SlotRight, inventory.SlotLeft},
	} {
		item, other := l[pair[0]], l[pair[1]]
		if item == nil || !item.IsTwoHanded() {
			continue
		}
		if other == nil || other.Name == item.Name {
			l[pair[1]] = item
		}
	}
	return l, nil
}

// decodeEntry reads a slot entry: {} for empty, {"<rendered>": payload}, or
// the flat {"name": ..., "slot": ...} form.
func decodeEntry(body json.RawMessage) (*inventory.Item, error) {
	if isNull(body) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	if _, flat := fields["slot"]; flat {
		var p inventory.Payload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, err
		}
		return inventory.Parse(p.Name, p)
	}
	if len(fields) != 1 {
		return nil, errors.New("slot entry must hold exactly one item")
	}
	for rendered, payload := range fields {
		var p inventory.Payload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return inventory.Parse(rendered, p)
	}
	return nil, nil
}

func isNull(b json.RawMessage) bool {
	return len(bytes.TrimSpace(b)) == 0 || string(bytes.TrimSpace(b)) == "null"
}

func entryOf(item *inventory.Item) Entry {
	if item == nil {
		return Entry{}
	}
	return Entry{inventory.Render(item): item.Payload()}
}

// Blob returns the character in the current persisted schema.
func (c *Character) Blob() Blob {
	items := make(map[string]Entry, inventory.SlotCount+1)
	for _, s := range inventory.AllSlots() {
		items[s.String()] = entryOf(c.equipment.Get(s))
	}
	backpack := make(Entry, c.backpack.Len())
	for _, item := range c.backpack.Items() {
		backpack[inventory.Render(item)] = item.Payload()
	}
	items[backpackKey] = backpack

	loadouts := make(map[string]map[string]Entry, len(c.loadouts))
	for name, l := range c.loadouts {
		slots := make(map[string]Entry, inventory.SlotCount)
		for _, s := range inventory.AllSlots() {
			slots[s.String()] = entryOf(l[s])
		}
		loadouts[name] = slots
	}

	heroClass := c.HeroClass
	if len(heroClass) == 0 {
		heroClass = defaultHeroClass
	}
	return Blob{
		Exp:       c.Exp,
		Level:     c.Level,
		Treasure:  c.Treasure,
		Items:     items,
		Loadouts:  loadouts,
		HeroClass: json.RawMessage(heroClass),
		Skill:     c.Skills,
	}
}

// Marshal encodes the character as a JSON blob.
func (c *Character) Marshal() ([]byte, error) {
	data, err := json.Marshal(c.Blob())
	if err != nil {
		return nil, fmt.Errorf("encoding character %s: %w", c.ID, err)
	}
	return data, nil
}

// DefaultBlob returns the encoded blob of a character that has never played.
func DefaultBlob() []byte {
	data, err := New("", nil).Marshal()
	if err != nil {
		panic(fmt.Sprintf("character: encoding default blob: %v", err))
	}
	return data
}
