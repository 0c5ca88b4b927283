// Package scripting provides a sandboxed GopherLua execution environment for
// content hooks such as monster scaling. It knows nothing about the game
// domain; callers marshal their own tables in and out.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget of one hook call when none is
// configured.
const DefaultInstructionLimit = 100_000

const (
	// callStackSize bounds Lua recursion depth.
	callStackSize = 200
	// registryMaxSize bounds the value stack a hook can grow.
	registryMaxSize = 64 * 1024
)

// safeLibs are the only standard libraries a sandbox opens.
var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// removedGlobals load code or touch the host.
var removedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module"}

// removedFields are library functions a hook must not reach. math.random would
// bypass the seeded source; string.rep allocates without spending opcodes.
var removedFields = map[string][]string{
	lua.MathLibName:   {"random", "randomseed"},
	lua.StringLibName: {"rep"},
}

// opcodeBudget is a context that cancels itself once Done has been called
// limit times. GopherLua calls Done once per executed opcode, so the budget
// is an exact, deterministic instruction count.
type opcodeBudget struct {
	context.Context
	cancel    context.CancelFunc
	remaining atomic.Int64
}

func (b *opcodeBudget) Done() <-chan struct{} {
	if b.remaining.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// newCountingContext returns a fresh budget of limit opcodes.
//
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	b := &opcodeBudget{Context: base, cancel: cancel}
	b.remaining.Store(int64(limit))
	return b, cancel
}

func normalizeLimit(instLimit int) int {
	if instLimit <= 0 {
		return DefaultInstructionLimit
	}
	return instLimit
}

// NewSandboxedState creates an LState with only the base, table, string and
// math libraries, loader and host globals removed, bounded recursion, and an
// initial budget of instLimit opcodes. Manager installs a fresh budget before
// every hook call.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the LState and must call cancel and
// L.Close() when done.
func NewSandboxedState(instLimit int) (*lua.LState, context.CancelFunc) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		CallStackSize:   callStackSize,
		RegistryMaxSize: registryMaxSize,
	})

	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	for lib, fields := range removedFields {
		if t, ok := L.GetGlobal(lib).(*lua.LTable); ok {
			for _, f := range fields {
				t.RawSetString(f, lua.LNil)
			}
		}
	}

	ctx, cancel := newCountingContext(normalizeLimit(instLimit))
	L.SetContext(ctx)
	return L, cancel
}
