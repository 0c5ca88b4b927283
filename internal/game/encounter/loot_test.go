package encounter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/adventure/internal/game/adventure"
	"github.com/cory-johannsen/adventure/internal/game/encounter"
	"github.com/cory-johannsen/adventure/internal/game/inventory"
)

// fixedSource returns a preset sequence of Intn results, cycling.
type fixedSource struct {
	values []int
	i      int
}

func (f *fixedSource) Intn(n int) int {
	v := f.values[f.i%len(f.values)] % n
	f.i++
	return v
}

func TestRollLoot_Fixed(t *testing.T) {
	lt := encounter.LootTable{
		Currency: &encounter.CurrencyDrop{Min: 10, Max: 20},
		Chests: []encounter.ChestDrop{
			{Rarity: inventory.RarityRare, Chance: 0.5},
			{Rarity: inventory.RarityEpic, Chance: 0.5},
		},
	}
	// currency draw 4, rare draw 4999 (hit), epic draw 5000 (miss)
	loot := encounter.RollLoot(lt, &fixedSource{values: []int{4, 4999, 5000}})
	assert.Equal(t, 14, loot.Currency)
	assert.Equal(t, inventory.Treasure{0, 1, 0, 0, 0, 0}, loot.Chests)
}

func TestRollLoot_Empty(t *testing.T) {
	loot := encounter.RollLoot(encounter.LootTable{}, &fixedSource{values: []int{0}})
	assert.Equal(t, encounter.Loot{}, loot)
}

func TestProperty_RollLoot_WithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(0, 100).Draw(rt, "min")
		hi := rapid.IntRange(lo, lo+100).Draw(rt, "max")
		lt := encounter.LootTable{
			Currency: &encounter.CurrencyDrop{Min: lo, Max: hi},
			Chests:   []encounter.ChestDrop{{Rarity: inventory.RarityNormal, Chance: 1.0}},
		}
		src := adventure.NewRandom(adventure.DecodeGameSeed(rapid.Uint64().Draw(rt, "seed")))
		loot := encounter.RollLoot(lt, src)
		if hi > 0 && (loot.Currency < lo || loot.Currency > hi) {
			rt.Fatalf("currency %d outside [%d,%d]", loot.Currency, lo, hi)
		}
		if loot.Chests[0] != 1 {
			rt.Fatalf("a certain chest must always drop, got %v", loot.Chests)
		}
	})
}
