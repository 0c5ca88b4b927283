package adventure

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Action is the main damage path a group took in an encounter.
type Action string

const (
	// ActionAttack covers fighting and spellcasting.
	ActionAttack Action = "attack"
	// ActionTalk covers diplomacy.
	ActionTalk Action = "talk"
)

// soloRaidScale boosts a solo adventurer's output so one strong player cannot
// farm monsters tuned to their own average.
const soloRaidScale = 0.25

// DefaultResultsLength is the history capacity used when none is configured.
const DefaultResultsLength = 20

// RaidOutcome is one resolved encounter.
type RaidOutcome struct {
	Action    Action  `json:"main_action"`
	Amount    float64 `json:"amount"`
	PartySize int     `json:"num_ppl"`
	Success   bool    `json:"success"`
}

type groupHistory struct {
	mu    sync.Mutex
	raids []RaidOutcome
}

// Results is a bounded per-group FIFO of recent encounter outcomes.
//
// Record calls for different groups never contend on the same lock; calls for
// one group serialize so eviction order matches arrival order.
type Results struct {
	capacity int

	mu     sync.RWMutex
	groups map[string]*groupHistory
}

// NewResults returns an empty Results keeping at most capacity outcomes per group.
//
// Precondition: capacity >= 1; smaller values fall back to DefaultResultsLength.
func NewResults(capacity int) *Results {
	if capacity < 1 {
		capacity = DefaultResultsLength
	}
	return &Results{
		capacity: capacity,
		groups:   make(map[string]*groupHistory),
	}
}

// Capacity returns the per-group history bound.
func (r *Results) Capacity() int {
	return r.capacity
}

func (r *Results) group(id string, create bool) *groupHistory {
	r.mu.RLock()
	g, ok := r.groups[id]
	r.mu.RUnlock()
	if ok || !create {
		return g
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok = r.groups[id]; !ok {
		g = &groupHistory{raids: make([]RaidOutcome, 0, r.capacity)}
		r.groups[id] = g
	}
	return g
}

// Record appends o to the group's history, evicting the oldest entry when the
// history is full. Negative amounts are recorded as zero and party sizes below
// one as one.
//
// Postcondition: len(History(group)) <= Capacity().
func (r *Results) Record(group string, o RaidOutcome) {
	if o.Amount < 0 || math.IsNaN(o.Amount) {
		o.Amount = 0
	}
	if o.PartySize < 1 {
		o.PartySize = 1
	}
	if o.Action != ActionTalk {
		o.Action = ActionAttack
	}

	g := r.group(group, true)
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.raids) >= r.capacity {
		n := copy(g.raids, g.raids[len(g.raids)-r.capacity+1:])
		g.raids = g.raids[:n]
	}
	g.raids = append(g.raids, o)
}

// History returns a copy of the group's outcomes, oldest first.
func (r *Results) History(group string) []RaidOutcome {
	g := r.group(group, false)
	if g == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]RaidOutcome, len(g.raids))
	copy(out, g.raids)
	return out
}

// Groups returns the ids of every group with recorded history, sorted.
func (r *Results) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.groups))
	for id := range r.groups {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// StatRange derives the monster power range for the group's next encounter.
//
// An empty history yields the neutral range {hp, 0, 0, 0}. Otherwise the axis
// with the larger total output wins (diplomacy only on a strict majority) and
// its per-encounter average is the baseline. Groups winning at least half the
// time get [0.75x, 2x] of the baseline; struggling groups get
// [winRate*x, 1.5x].
func (r *Results) StatRange(group string) StatRange {
	raids := r.History(group)
	if len(raids) == 0 {
		return StatRange{Axis: AxisHP}
	}
	return computeStatRange(raids)
}

func computeStatRange(raids []RaidOutcome) StatRange {
	var (
		numAttack, numTalk, wins int
		attackTotal, talkTotal   float64
	)
	for _, raid := range raids {
		amount := raid.Amount
		if raid.PartySize == 1 {
			amount += raid.Amount * soloRaidScale
		}
		if raid.Action == ActionTalk {
			numTalk++
			talkTotal += amount
		} else {
			numAttack++
			attackTotal += amount
		}
		if raid.Success {
			wins++
		}
	}

	out := StatRange{Axis: AxisHP}
	var baseline float64
	if numAttack > 0 {
		baseline = attackTotal / float64(numAttack)
	}
	if talkTotal > attackTotal && numTalk > 0 {
		out.Axis = AxisDiplomacy
		baseline = talkTotal / float64(numTalk)
	}

	out.WinRate = float64(wins) / float64(len(raids))
	if out.WinRate >= 0.5 {
		out.Min = baseline * 0.75
		out.Max = baseline * 2
	} else {
		out.Min = baseline * out.WinRate
		out.Max = baseline * 1.5
	}
	return out
}

// String summarises every group's history length, for debugging.
func (r *Results) String() string {
	groups := r.Groups()
	out := fmt.Sprintf("Results(capacity=%d", r.capacity)
	for _, id := range groups {
		out += fmt.Sprintf(" %s:%d", id, len(r.History(id)))
	}
	return out + ")"
}
