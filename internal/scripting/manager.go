package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/dice"
)

// GlobalNamespace is the reserved key for shared scripts loaded via
// LoadGlobal. CallHook falls back to this VM when no namespace VM is found.
const GlobalNamespace = "__global__"

// vm is one sandboxed LState. An LState is single-threaded, so every call
// holds mu for its whole duration.
type vm struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	cancel context.CancelFunc
	// src and hook describe the current call for engine.dice; zero outside calls.
	src  dice.Source
	hook string
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
	v.L.Close()
}

// Manager owns one sandboxed VM per namespace (typically a group with its
// own content) and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same namespace are
// serialized; different namespaces run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no VMs loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// Load creates a sandboxed VM for namespace, registers the engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order. A VM
// already loaded for namespace is replaced.
//
// Precondition: namespace must be non-empty; scriptDir must be a readable directory.
// Postcondition: the VM is registered; returns error on Lua load failure.
func (m *Manager) Load(namespace, scriptDir string, instLimit int) error {
	return m.loadInto(namespace, scriptDir, instLimit)
}

// LoadGlobal creates the shared VM used as a CallHook fallback.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: the global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(GlobalNamespace, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	limit := normalizeLimit(instLimit)
	L, cancel := NewSandboxedState(limit)
	v := &vm{L: L, limit: limit, cancel: cancel}
	m.RegisterModules(v)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		v.close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			v.close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = v
	m.mu.Unlock()
	if old != nil {
		old.close()
	}
	m.logger.Info("scripting: loaded scripts",
		zap.String("namespace", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

func (m *Manager) lookup(namespace string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vms[namespace]; ok {
		return v
	}
	return m.vms[GlobalNamespace]
}

// HasHook reports whether hook is defined for namespace or the global VM.
func (m *Manager) HasHook(namespace, hook string) bool {
	v := m.lookup(namespace)
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.L.GetGlobal(hook).Type() == lua.LTFunction
}

// CallHook calls the named Lua global function in namespace's VM, falling
// back to the global VM. Dice rolled by the script through engine.dice draw
// from src, so a seeded src makes the hook deterministic. Returns (LNil, nil)
// if the hook is not defined or no VM exists. Lua runtime errors, including
// an exhausted instruction budget, are logged at Warn level and never
// propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(namespace, hook string, src dice.Source, args ...lua.LValue) (lua.LValue, error) {
	v := m.lookup(namespace)
	if v == nil {
		m.logger.Debug("scripting: no VM for namespace",
			zap.String("namespace", namespace),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	ctx, cancel := newCountingContext(v.limit)
	defer cancel()
	v.L.SetContext(ctx)
	v.src, v.hook = src, hook
	defer func() { v.src, v.hook = nil, "" }()

	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("namespace", namespace),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close releases every VM. CallHook afterwards returns LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.close()
	}
}
