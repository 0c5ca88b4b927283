package character_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/adventure/internal/game/character"
	"github.com/cory-johannsen/adventure/internal/game/inventory"
)

func TestSheet(t *testing.T) {
	c := newCharacter(t)
	c.Level = 2
	c.Exp = 40.4
	c.Balance = 1500
	c.Skills = character.Skills{Pool: 3, Attack: 1, Diplomacy: 2}
	c.Equip(twoHand("Claymore", 7, 1), false)

	sheet := c.Sheet("Aria")
	assert.True(t, strings.HasPrefix(sheet, "[Aria's Character Sheet]\n\nA level 2 Hero."))
	assert.Contains(t, sheet, "Your basic adventuring hero.")
	assert.Contains(t, sheet, "- ATTACK: 7 [+1] - DIPLOMACY: 1 [+2] -")
	assert.Contains(t, sheet, "- Currency: 1500")
	assert.Contains(t, sheet, "- Experience: 40/81")
	assert.Contains(t, sheet, "- Unspent skillpoints: 3")
}

func TestSheet_RangerPet(t *testing.T) {
	tests := []struct {
		name      string
		heroclass string
		want      string
	}{
		{"no ability", `{"name":"Ranger","desc":"Tracks.","ability":false}`, "- Current pet: None"},
		{"pet", `{"name":"Ranger","desc":"Tracks.","ability":true,"pet":{"name":"Owl","bonus":1.1}}`, "- Current pet: Owl"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newCharacter(t)
			c.HeroClass = []byte(tc.heroclass)
			sheet := c.Sheet("Aria")
			assert.Contains(t, sheet, "A level 1 Ranger.\n\nTracks.\n\n"+tc.want)
		})
	}

	c := newCharacter(t)
	c.HeroClass = []byte(`{"name":"Ranger","desc":"Tracks.","ability":true,"pet":{}}`)
	assert.NotContains(t, c.Sheet("Aria"), "Current pet")

	c.HeroClass = []byte(`{"name":"Wizard","desc":"Casts.","ability":false}`)
	assert.NotContains(t, c.Sheet("Aria"), "Current pet")
}

func TestEquipmentListing_TwoHandedOnce(t *testing.T) {
	c := newCharacter(t)
	c.Equip(twoHand("Claymore", 7, 1), false)

	listing := c.EquipmentListing()
	assert.Equal(t, 1, strings.Count(listing, "Two Handed slot"))
	assert.Equal(t, 1, strings.Count(listing, "[Claymore] - (ATT: 7 | DPL: 1)"))
	assert.NotContains(t, listing, "Left slot")
	assert.NotContains(t, listing, "Right slot")
	assert.Contains(t, listing, "Head slot")
	assert.Contains(t, listing, "Charm slot")
	assert.Less(t, strings.Index(listing, "Boots slot"), strings.Index(listing, "Two Handed slot"))
	assert.Less(t, strings.Index(listing, "Two Handed slot"), strings.Index(listing, "Ring slot"))
}

func TestBackpackListing(t *testing.T) {
	c := newCharacter(t)
	fine := oneHand("Fine Sword", inventory.SlotLeft, 3, 0)
	fine.Rarity = inventory.RarityRare
	forged := oneHand("Soulblade", inventory.SlotLeft, 9, 9)
	forged.Rarity = inventory.RarityForged
	for _, item := range []*inventory.Item{
		oneHand("Sword", inventory.SlotLeft, 1, 0),
		fine,
		forged,
		oneHand("Cap", inventory.SlotHead, 1, 1),
		twoHand("Claymore", 7, 0),
	} {
		require.NoError(t, c.AddLoot(item))
	}

	listing := c.BackpackListing(false, nil)
	assert.True(t, strings.HasPrefix(listing, "Items in Backpack:"))
	order := []string{"Head slot", "Left slot", "{.:'Soulblade':.}", ".Fine_Sword", "  - Sword ", "Two Handed slot"}
	last := -1
	for _, want := range order {
		idx := strings.Index(listing, want)
		require.GreaterOrEqual(t, idx, 0, want)
		assert.Greater(t, idx, last, want)
		last = idx
	}
	assert.Contains(t, listing, "  - Sword             - (ATT: 1 | DPL: 0)")

	forging := c.BackpackListing(true, []string{"Sword"})
	assert.NotContains(t, forging, "Soulblade")
	assert.NotContains(t, forging, "  - Sword ")
	assert.Contains(t, forging, ".Fine_Sword")
}
