package inventory

// Rarity is the quality tier of an item. It is the single source of truth;
// the bracketed display name is derived from it by Render.
type Rarity string

const (
	RarityNormal    Rarity = "normal"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityAscended  Rarity = "ascended"
	RaritySet       Rarity = "set"
	RarityEvent     Rarity = "event"
	RarityForged    Rarity = "forged"
)

// Rarities lists every rarity in ascending tier order.
var Rarities = []Rarity{
	RarityNormal, RarityRare, RarityEpic, RarityLegendary,
	RarityAscended, RaritySet, RarityEvent, RarityForged,
}

// rarityRank orders backpack listings, rarer first.
var rarityRank = map[Rarity]int{
	RarityForged:    0,
	RaritySet:       1,
	RarityAscended:  2,
	RarityLegendary: 3,
	RarityEpic:      4,
	RarityRare:      5,
	RarityEvent:     6,
	RarityNormal:    7,
}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	_, ok := rarityRank[r]
	return ok
}

// Rank returns the display rank of r; lower sorts first.
func (r Rarity) Rank() int {
	if rank, ok := rarityRank[r]; ok {
		return rank
	}
	return len(rarityRank)
}
