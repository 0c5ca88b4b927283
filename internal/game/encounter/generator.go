package encounter

import (
	"errors"
	"fmt"
	"math"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/adventure"
	"github.com/cory-johannsen/adventure/internal/game/dice"
	"github.com/cory-johannsen/adventure/internal/scripting"
)

// ScaleHook is the optional Lua hook that may adjust a scaled monster. It
// receives a table {name, hp, dipl, boss, roll, axis, min, max, group} and
// may return a table whose positive hp and dipl fields replace the scaled
// values.
const ScaleHook = "scale_monster"

// ErrEmptyBestiary is returned when a generator has no monsters to choose from.
var ErrEmptyBestiary = errors.New("encounter: bestiary is empty")

var scaleDice = dice.MustParse("1d20")

// Encounter is one generated fight.
type Encounter struct {
	Group string
	// Seed is the canonical seed: re-decoded from its own encoding, so it
	// compares equal to DecodeGameSeed(Seed.Uint64()).
	Seed adventure.GameSeed
	// Base is the bestiary entry; Monster carries the scaled stats.
	Base      *Monster
	Monster   Monster
	ScaleRoll dice.RollResult
	Loot      Loot
}

// Generator builds encounters from the bestiary and each group's results.
//
// Generator is safe for concurrent use.
type Generator struct {
	monsters []*Monster
	results  *adventure.Results
	roller   *dice.Roller
	scripts  *scripting.Manager
	logger   *zap.Logger
}

// NewGenerator creates a Generator. scripts may be nil to disable ScaleHook.
//
// Precondition: results, roller and logger must be non-nil.
// Postcondition: returns ErrEmptyBestiary when monsters is empty.
func NewGenerator(monsters []*Monster, results *adventure.Results, roller *dice.Roller, scripts *scripting.Manager, logger *zap.Logger) (*Generator, error) {
	if len(monsters) == 0 {
		return nil, ErrEmptyBestiary
	}
	sorted := append([]*Monster(nil), monsters...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Generator{
		monsters: sorted,
		results:  results,
		roller:   roller,
		scripts:  scripts,
		logger:   logger,
	}, nil
}

// Start begins an encounter for group, triggered by the event originID. The
// stat range comes from the group's recent results.
//
// Postcondition: the returned encounter is identical to
// FromSeed(group, DecodeGameSeed(e.Seed.Uint64())).
func (g *Generator) Start(group string, originID uint64) (*Encounter, error) {
	r := g.results.StatRange(group).Clamped()
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("starting encounter for %q: %w", group, err)
	}
	return g.FromSeed(group, adventure.NewGameSeed(originID, r)), nil
}

// FromSeed rebuilds the encounter for seed. Monster choice, the scaling roll,
// script dice and loot are all drawn from the seed's Random in that order.
func (g *Generator) FromSeed(group string, seed adventure.GameSeed) *Encounter {
	seed = adventure.DecodeGameSeed(seed.Uint64())
	rnd := adventure.NewRandom(seed)

	candidates := g.candidates(seed.Range)
	base := candidates[rnd.Intn(len(candidates))]

	roll := g.roller.Roll(scaleDice, rnd, zap.Stringer("seed", seed), zap.String("monster", base.Name))
	factor := 0.75 + float64(roll.Total())/float64(2*scaleDice.Max())
	if base.Boss {
		factor *= 2
	}
	scaled := *base
	scaled.HP = scaleStat(base.HP, factor)
	scaled.Diplomacy = scaleStat(base.Diplomacy, factor)

	if g.scripts != nil {
		g.applyScaleHook(group, seed, roll, &scaled, rnd)
	}

	e := &Encounter{
		Group:     group,
		Seed:      seed,
		Base:      base,
		Monster:   scaled,
		ScaleRoll: roll,
	}
	if base.Loot != nil {
		e.Loot = RollLoot(*base.Loot, rnd)
	}

	g.logger.Debug("encounter generated",
		zap.String("group", group),
		zap.Stringer("seed", seed),
		zap.String("monster", base.Name),
		zap.Int("hp", scaled.HP),
		zap.Int("dipl", scaled.Diplomacy),
		zap.Int("roll", roll.Total()),
	)
	return e
}

// candidates returns the monsters whose stat on the range's axis lies inside
// it. A neutral range admits every monster. When nothing fits, the monsters
// closest to the range are returned.
func (g *Generator) candidates(r adventure.StatRange) []*Monster {
	if r.IsNeutral() {
		return g.monsters
	}
	var inRange []*Monster
	for _, m := range g.monsters {
		s := float64(m.Stat(r.Axis))
		if s >= r.Min && s <= r.Max {
			inRange = append(inRange, m)
		}
	}
	if len(inRange) > 0 {
		return inRange
	}

	best := math.Inf(1)
	var nearest []*Monster
	for _, m := range g.monsters {
		s := float64(m.Stat(r.Axis))
		d := math.Max(r.Min-s, s-r.Max)
		switch {
		case d < best:
			best = d
			nearest = []*Monster{m}
		case d == best:
			nearest = append(nearest, m)
		}
	}
	g.logger.Debug("no monster inside stat range, using nearest",
		zap.Stringer("axis", r.Axis),
		zap.Float64("min", r.Min),
		zap.Float64("max", r.Max),
		zap.Int("nearest", len(nearest)),
	)
	return nearest
}

func scaleStat(v int, factor float64) int {
	out := int(math.Round(float64(v) * factor))
	if out < 1 {
		return 1
	}
	return out
}

func (g *Generator) applyScaleHook(group string, seed adventure.GameSeed, roll dice.RollResult, m *Monster, rnd *adventure.Random) {
	in := &lua.LTable{Metatable: lua.LNil}
	in.RawSetString("name", lua.LString(m.Name))
	in.RawSetString("hp", lua.LNumber(m.HP))
	in.RawSetString("dipl", lua.LNumber(m.Diplomacy))
	in.RawSetString("boss", lua.LBool(m.Boss))
	in.RawSetString("roll", lua.LNumber(roll.Total()))
	in.RawSetString("axis", lua.LString(seed.Range.Axis.String()))
	in.RawSetString("min", lua.LNumber(seed.Range.Min))
	in.RawSetString("max", lua.LNumber(seed.Range.Max))
	in.RawSetString("group", lua.LString(group))

	ret, err := g.scripts.CallHook(group, ScaleHook, rnd, in)
	if err != nil {
		g.logger.Warn("scale hook failed", zap.String("group", group), zap.Error(err))
		return
	}
	out, ok := ret.(*lua.LTable)
	if !ok {
		return
	}
	if hp, ok := out.RawGetString("hp").(lua.LNumber); ok && hp >= 1 {
		m.HP = int(math.Round(float64(hp)))
	}
	if dipl, ok := out.RawGetString("dipl").(lua.LNumber); ok && dipl >= 1 {
		m.Diplomacy = int(math.Round(float64(dipl)))
	}
}
