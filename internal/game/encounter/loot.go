package encounter

import (
	"fmt"

	"github.com/cory-johannsen/adventure/internal/game/dice"
	"github.com/cory-johannsen/adventure/internal/game/inventory"
)

// CurrencyDrop defines the range of currency a defeated monster pays out.
type CurrencyDrop struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ChestDrop is one chest tier a monster may drop.
type ChestDrop struct {
	Rarity inventory.Rarity `yaml:"rarity"`
	Chance float64          `yaml:"chance"`
}

// LootTable defines what a monster can drop.
type LootTable struct {
	Currency *CurrencyDrop `yaml:"currency"`
	Chests   []ChestDrop   `yaml:"chests"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Precondition: lt must not be nil.
// Postcondition: Returns nil iff currency bounds are ordered and non-negative,
// every chest names a chest-bearing rarity and has a chance in (0, 1].
func (lt *LootTable) Validate() error {
	if lt.Currency != nil {
		if lt.Currency.Min < 0 {
			return fmt.Errorf("loot table: currency min must be >= 0, got %d", lt.Currency.Min)
		}
		if lt.Currency.Min > lt.Currency.Max {
			return fmt.Errorf("loot table: currency min (%d) must be <= max (%d)", lt.Currency.Min, lt.Currency.Max)
		}
	}
	for i, c := range lt.Chests {
		if _, ok := inventory.ChestIndex(c.Rarity); !ok {
			return fmt.Errorf("loot table: chest[%d] rarity %q has no chest", i, c.Rarity)
		}
		if c.Chance <= 0 || c.Chance > 1.0 {
			return fmt.Errorf("loot table: chest[%d] chance must be in (0, 1.0], got %f", i, c.Chance)
		}
	}
	return nil
}

// Loot is what one encounter pays out on victory.
type Loot struct {
	Currency int
	Chests   inventory.Treasure
}

// chanceResolution is the granularity of chest chance rolls.
const chanceResolution = 10_000

// RollLoot rolls lt against src.
//
// Precondition: lt must have passed Validate().
// Postcondition: Currency is in [Currency.Min, Currency.Max] if currency is
// set; each chest tier gains at most one chest per matching entry.
func RollLoot(lt LootTable, src dice.Source) Loot {
	var out Loot
	if lt.Currency != nil && lt.Currency.Max > 0 {
		out.Currency = lt.Currency.Min
		if spread := lt.Currency.Max - lt.Currency.Min; spread > 0 {
			out.Currency += src.Intn(spread + 1)
		}
	}
	for _, c := range lt.Chests {
		if src.Intn(chanceResolution) < int(c.Chance*chanceResolution) {
			out.Chests.Add(c.Rarity, 1)
		}
	}
	return out
}
