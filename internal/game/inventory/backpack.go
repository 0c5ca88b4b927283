package inventory

import "sort"

// Backpack holds a character's unequipped items keyed by plain name. Copies
// of the same item share one entry and are counted by Item.Owned.
type Backpack struct {
	items map[string]*Item
}

// NewBackpack returns an empty Backpack.
func NewBackpack() *Backpack {
	return &Backpack{items: make(map[string]*Item)}
}

// Add stores item, merging into an existing entry of the same name by adding
// its Owned count. The backpack keeps its own copy of item.
//
// Precondition: item is non-nil.
// Postcondition: Get(item.Name) reports the combined count.
func (b *Backpack) Add(item *Item) *Item {
	owned := item.Owned
	if owned < 1 {
		owned = 1
	}
	if cur, ok := b.items[item.Name]; ok {
		cur.Owned += owned
		return cur
	}
	stored := item.Clone(owned)
	b.items[item.Name] = stored
	return stored
}

// Take removes a single copy of the named item and returns it with Owned == 1.
// The entry is deleted when its last copy is taken.
func (b *Backpack) Take(name string) (*Item, bool) {
	cur, ok := b.items[name]
	if !ok {
		return nil, false
	}
	if cur.Owned <= 1 {
		delete(b.items, name)
	} else {
		cur.Owned--
	}
	return cur.Clone(1), true
}

// Get returns the named entry. The returned Item is owned by the backpack.
func (b *Backpack) Get(name string) (*Item, bool) {
	item, ok := b.items[name]
	return item, ok
}

// Len returns the number of distinct entries.
func (b *Backpack) Len() int {
	return len(b.items)
}

// Items returns the entries sorted by name.
func (b *Backpack) Items() []*Item {
	out := make([]*Item, 0, len(b.items))
	for _, item := range b.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Group is one slot section of a backpack listing.
type Group struct {
	// Name is a slot name or TwoHanded.
	Name  string
	Items []*Item
}

// Grouped returns the backpack's entries grouped by slot for display. Groups
// follow the canonical slot order with two-handed items in their own group
// between right and ring; inside a group, rarer items come first, then names
// sort alphabetically.
func (b *Backpack) Grouped() []Group {
	byGroup := make(map[string][]*Item)
	for _, item := range b.items {
		g := item.Group()
		byGroup[g] = append(byGroup[g], item)
	}

	out := make([]Group, 0, len(byGroup))
	for name, items := range byGroup {
		sort.Slice(items, func(i, j int) bool {
			ri, rj := items[i].Rarity.Rank(), items[j].Rarity.Rank()
			if ri != rj {
				return ri < rj
			}
			return items[i].Name < items[j].Name
		})
		out = append(out, Group{Name: name, Items: items})
	}
	sort.Slice(out, func(i, j int) bool {
		gi, gj := GroupIndex(out[i].Name), GroupIndex(out[j].Name)
		if gi != gj {
			return gi < gj
		}
		return out[i].Name < out[j].Name
	})
	return out
}
