package character

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/adventure/internal/game/inventory"
)

type classSummary struct {
	Name    string          `json:"name"`
	Desc    string          `json:"desc"`
	Ability json.RawMessage `json:"ability"`
	Pet     *struct {
		Name string `json:"name"`
	} `json:"pet"`
}

// petLine is the Ranger's pet status, or "" when there is nothing to show.
func (cs classSummary) petLine() string {
	if cs.Name != "Ranger" {
		return ""
	}
	switch {
	case !truthy(cs.Ability):
		return "- Current pet: None"
	case cs.Pet != nil && cs.Pet.Name != "":
		return "- Current pet: " + cs.Pet.Name
	}
	return ""
}

func truthy(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", "0", `""`, "{}", "[]":
		return false
	}
	return true
}

// className decodes the display parts of the opaque hero class.
func (c *Character) className() classSummary {
	var cs classSummary
	if err := json.Unmarshal(c.HeroClass, &cs); err != nil || cs.Name == "" {
		return classSummary{Name: "Hero"}
	}
	return cs
}

// Sheet renders the character sheet shown to the player named displayName.
func (c *Character) Sheet(displayName string) string {
	cs := c.className()
	var b strings.Builder
	fmt.Fprintf(&b, "[%s's Character Sheet]\n\n", displayName)
	fmt.Fprintf(&b, "A level %d %s.", c.Level, cs.Name)
	if cs.Desc != "" {
		fmt.Fprintf(&b, "\n\n%s", cs.Desc)
	}
	if pet := cs.petLine(); pet != "" {
		fmt.Fprintf(&b, "\n\n%s", pet)
	}
	fmt.Fprintf(&b, "\n\n- ATTACK: %d [+%d] - DIPLOMACY: %d [+%d] -",
		c.Attack(), c.Skills.Attack, c.Diplomacy(), c.Skills.Diplomacy)
	fmt.Fprintf(&b, "\n\n- Currency: %d\n- Experience: %d/%d\n- Unspent skillpoints: %d\n\n",
		c.Balance, int64(math.Round(c.Exp)), NextLevelExp(c.Level), c.Skills.Pool)
	b.WriteString(c.EquipmentListing())
	return b.String()
}

// EquipmentListing lists every slot in canonical order. A two-handed item is
// listed once under "Two Handed slot" with its own stats.
func (c *Character) EquipmentListing() string {
	var b strings.Builder
	b.WriteString("Items Equipped:")
	for _, s := range inventory.AllSlots() {
		item := c.equipment.Get(s)
		if s == inventory.SlotRight && item != nil && item == c.equipment.Get(inventory.SlotLeft) {
			continue
		}
		if item == nil {
			fmt.Fprintf(&b, "\n\n %s slot", inventory.GroupDisplayName(s.String()))
			continue
		}
		fmt.Fprintf(&b, "\n\n %s slot", inventory.GroupDisplayName(item.Group()))
		fmt.Fprintf(&b, "\n  - %s - (ATT: %d | DPL: %d)", inventory.Render(item), item.Stats.Attack, item.Stats.Diplomacy)
	}
	b.WriteString("\n")
	return b.String()
}

// BackpackListing lists backpack entries grouped by slot with names aligned
// per group. With forging set, forged items and any names in consumed
// (rendered or plain) are left out.
func (c *Character) BackpackListing(forging bool, consumed []string) string {
	skip := make(map[string]bool, len(consumed))
	for _, name := range consumed {
		skip[name] = true
	}

	var b strings.Builder
	b.WriteString("Items in Backpack:")
	for _, g := range c.backpack.Grouped() {
		var shown []*inventory.Item
		for _, item := range g.Items {
			if forging && (item.Rarity == inventory.RarityForged || skip[item.Name] || skip[inventory.Render(item)]) {
				continue
			}
			shown = append(shown, item)
		}
		if len(shown) == 0 {
			continue
		}
		width := 0
		for _, item := range shown {
			if n := len(inventory.Render(item)); n > width {
				width = n
			}
		}
		fmt.Fprintf(&b, "\n\n %s slot", inventory.GroupDisplayName(g.Name))
		for _, item := range shown {
			fmt.Fprintf(&b, "\n  - %-*s - (ATT: %d | DPL: %d)", width, inventory.Render(item), item.Stats.Attack, item.Stats.Diplomacy)
		}
	}
	b.WriteString("\n")
	return b.String()
}
