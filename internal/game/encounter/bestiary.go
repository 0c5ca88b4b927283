// Package encounter turns a GameSeed into a concrete monster. Everything it
// draws comes from the seed's Random, so replaying a seed replays the
// encounter.
package encounter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/adventure/internal/game/adventure"
)

// Monster is a bestiary entry.
type Monster struct {
	Name string `yaml:"name"`
	// HP is the attack-path strength a party must beat.
	HP int `yaml:"hp"`
	// Diplomacy is the talk-path strength a party must beat.
	Diplomacy int        `yaml:"dipl"`
	Boss      bool       `yaml:"boss"`
	Loot      *LootTable `yaml:"loot"`
}

// Stat returns the monster's strength on axis a.
func (m *Monster) Stat(a adventure.Axis) int {
	if a == adventure.AxisDiplomacy {
		return m.Diplomacy
	}
	return m.HP
}

// Validate checks that the monster satisfies basic invariants.
//
// Precondition: m must not be nil.
// Postcondition: Returns nil iff Name is non-empty, HP >= 1, Diplomacy >= 1,
// and the loot table (if any) is valid.
func (m *Monster) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("monster: name must not be empty")
	}
	if m.HP < 1 {
		return fmt.Errorf("monster %q: hp must be >= 1", m.Name)
	}
	if m.Diplomacy < 1 {
		return fmt.Errorf("monster %q: dipl must be >= 1", m.Name)
	}
	if m.Loot != nil {
		if err := m.Loot.Validate(); err != nil {
			return fmt.Errorf("monster %q: %w", m.Name, err)
		}
	}
	return nil
}

type bestiaryFile struct {
	Monsters []*Monster `yaml:"monsters"`
}

// LoadBestiaryFromBytes parses one bestiary YAML document.
//
// Precondition: data must be valid YAML with a top-level monsters list.
// Postcondition: Returns validated monsters, or an error on the first invalid entry.
func LoadBestiaryFromBytes(data []byte) ([]*Monster, error) {
	var f bestiaryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing bestiary YAML: %w", err)
	}
	for _, m := range f.Monsters {
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Monsters, nil
}

// LoadBestiary reads all *.yaml files in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns every monster sorted by name, or an error on the
// first read, parse or duplicate-name failure.
func LoadBestiary(dir string) ([]*Monster, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading bestiary dir %q: %w", dir, err)
	}

	seen := make(map[string]string)
	var monsters []*Monster
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		loaded, err := LoadBestiaryFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		for _, m := range loaded {
			if prev, dup := seen[m.Name]; dup {
				return nil, fmt.Errorf("loading %q: monster %q already defined in %q", path, m.Name, prev)
			}
			seen[m.Name] = path
		}
		monsters = append(monsters, loaded...)
	}
	sort.Slice(monsters, func(i, j int) bool { return monsters[i].Name < monsters[j].Name })
	return monsters, nil
}
