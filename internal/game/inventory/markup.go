package inventory

import (
	"errors"
	"fmt"
	"strings"
)

type markup struct {
	open, close string
	// underscores replaces spaces in the wrapped name.
	underscores bool
}

var markups = map[Rarity]markup{
	RarityRare:      {open: ".", underscores: true},
	RarityEpic:      {open: "[", close: "]"},
	RarityLegendary: {open: "{Legendary:'", close: "'}"},
	RarityAscended:  {open: "{Ascended:'", close: "'}"},
	RaritySet:       {open: "{Set:'", close: "'}"},
	RarityEvent:     {open: "{Event:'", close: "'}"},
	RarityForged:    {open: "{.:'", close: "':.}"},
}

// inferOrder is the order markup is tried when no rarity is known. Brace forms
// come before rare so "{.:'" is never read as a rare ".".
var inferOrder = []Rarity{
	RarityForged, RarityLegendary, RarityAscended, RaritySet, RarityEvent, RarityEpic, RarityRare,
}

// Render wraps the item's name in its rarity markup.
func Render(i *Item) string {
	return RenderName(i.Name, i.Rarity)
}

// RenderName wraps name in the markup for r. Normal and unknown rarities are
// returned unchanged.
func RenderName(name string, r Rarity) string {
	m, ok := markups[r]
	if !ok {
		return name
	}
	if m.underscores {
		name = strings.ReplaceAll(name, " ", "_")
	}
	return m.open + name + m.close
}

func strip(s string, r Rarity) (string, bool) {
	m, ok := markups[r]
	if !ok {
		return s, r == RarityNormal
	}
	if len(s) <= len(m.open)+len(m.close) || !strings.HasPrefix(s, m.open) || !strings.HasSuffix(s, m.close) {
		return s, false
	}
	name := s[len(m.open) : len(s)-len(m.close)]
	if m.underscores {
		name = strings.ReplaceAll(name, "_", " ")
	}
	return name, true
}

// ParseName infers the plain name and rarity from a rendered display name.
// Only complete markup counts: "[Sword" or a bare "." stay normal.
func ParseName(s string) (string, Rarity) {
	for _, r := range inferOrder {
		if name, ok := strip(s, r); ok {
			return name, r
		}
	}
	return s, RarityNormal
}

// ParseNameAs strips the markup for a known rarity. When s does not carry that
// markup it is returned unchanged, so a normal item named ".45 Pistol" keeps its
// dot.
func ParseNameAs(s string, r Rarity) string {
	name, _ := strip(s, r)
	return name
}

// Payload is the persisted stat body of an item, keyed elsewhere by its
// rendered name. Name carries the exact plain name, since rare markup folds
// underscores into spaces. Missing dex, luck and owned default to 0, 0 and 1;
// an owned count below one is read as one.
type Payload struct {
	Name   string   `json:"name,omitempty"`
	Slot   []string `json:"slot"`
	Att    int      `json:"att"`
	Cha    int      `json:"cha"`
	Rarity string   `json:"rarity,omitempty"`
	Dex    *int     `json:"dex,omitempty"`
	Luck   *int     `json:"luck,omitempty"`
	Owned  *int     `json:"owned,omitempty"`
}

// Parse builds an Item from its rendered name and payload.
//
// A valid payload rarity wins over markup inference; the name is then stripped
// of that rarity's markup only. A payload name wins over the stripped one.
//
// Postcondition: a nil error means the returned Item passes Validate.
func Parse(rendered string, p Payload) (*Item, error) {
	if rendered == "" {
		rendered = p.Name
	}
	if rendered == "" {
		return nil, errors.New("inventory: empty item name")
	}

	item := &Item{Owned: 1}
	if r := Rarity(p.Rarity); r.Valid() {
		item.Rarity = r
		item.Name = ParseNameAs(rendered, r)
	} else {
		item.Name, item.Rarity = ParseName(rendered)
	}
	if p.Name != "" {
		item.Name = p.Name
	}

	for _, s := range p.Slot {
		if s == TwoHanded {
			item.Slots = append(item.Slots, SlotLeft, SlotRight)
			continue
		}
		slot, err := ParseSlot(s)
		if err != nil {
			return nil, fmt.Errorf("inventory: item %q: %w", rendered, err)
		}
		item.Slots = append(item.Slots, slot)
	}

	item.Stats = Stats{Attack: p.Att, Diplomacy: p.Cha}
	if p.Dex != nil {
		item.Stats.Dexterity = *p.Dex
	}
	if p.Luck != nil {
		item.Stats.Luck = *p.Luck
	}
	if p.Owned != nil && *p.Owned >= 1 {
		item.Owned = *p.Owned
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Payload returns the persisted stat body of i.
func (i *Item) Payload() Payload {
	slots := make([]string, len(i.Slots))
	for n, s := range i.Slots {
		slots[n] = s.String()
	}
	dex, luck, owned := i.Stats.Dexterity, i.Stats.Luck, i.Owned
	return Payload{
		Name:   i.Name,
		Slot:   slots,
		Att:    i.Stats.Attack,
		Cha:    i.Stats.Diplomacy,
		Rarity: string(i.Rarity),
		Dex:    &dex,
		Luck:   &luck,
		Owned:  &owned,
	}
}
