package inventory

import (
	"fmt"
	"strings"
)

// ChestTiers is the number of rarities that drop as treasure chests.
const ChestTiers = 6

// chestRarities maps a chest index to its rarity. Event and forged items never
// drop as chests.
var chestRarities = [ChestTiers]Rarity{
	RarityNormal, RarityRare, RarityEpic, RarityLegendary, RarityAscended, RaritySet,
}

// Treasure counts the unopened chests a character holds, indexed by tier.
type Treasure [ChestTiers]int

// ChestIndex returns the treasure index for r, and false when r has no chest.
func ChestIndex(r Rarity) (int, bool) {
	for i, cr := range chestRarities {
		if cr == r {
			return i, true
		}
	}
	return 0, false
}

// Add adds n chests of rarity r. It reports false, leaving t unchanged, when r
// has no chest tier.
//
// Postcondition: no count drops below zero.
func (t *Treasure) Add(r Rarity, n int) bool {
	i, ok := ChestIndex(r)
	if !ok {
		return false
	}
	t[i] += n
	if t[i] < 0 {
		t[i] = 0
	}
	return true
}

// Total returns the number of chests across all tiers.
func (t Treasure) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// String lists the non-empty tiers, e.g. "2 normal chests, 1 epic chest".
// An empty hoard renders as "no chests".
func (t Treasure) String() string {
	var parts []string
	for i, n := range t {
		if n == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s %s", n, chestRarities[i], plural(n, "chest")))
	}
	if len(parts) == 0 {
		return "no chests"
	}
	return strings.Join(parts, ", ")
}

// plural returns the singular form if n == 1, otherwise appends "s".
func plural(n int, singular string) string {
	if n == 1 {
		return singular
	}
	return singular + "s"
}
