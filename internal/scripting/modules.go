package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/game/dice"
)

// RegisterModules registers the engine.* Lua tables into v's state:
//
//	engine.log.debug|info|warn(msg)
//	engine.dice.roll(expr) -> {total, dice, modifier}
//
// Precondition: v.L must be from NewSandboxedState.
// Postcondition: engine global is defined in v.L.
func (m *Manager) RegisterModules(v *vm) {
	L := v.L
	engine := L.NewTable()

	log := L.NewTable()
	for level, fn := range map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
	} {
		fn := fn
		L.SetField(log, level, L.NewFunction(func(L *lua.LState) int {
			fn("lua: " + L.CheckString(1))
			return 0
		}))
	}
	L.SetField(engine, "log", log)

	dt := L.NewTable()
	L.SetField(dt, "roll", L.NewFunction(func(L *lua.LState) int {
		expr, err := dice.Parse(L.CheckString(1))
		if err != nil {
			L.RaiseError("engine.dice.roll: %v", err)
			return 0
		}
		if v.src == nil {
			L.RaiseError("engine.dice.roll: no random source for this call")
			return 0
		}
		result := m.roller.Roll(expr, v.src, zap.String("hook", v.hook))
		out := L.NewTable()
		out.RawSetString("total", lua.LNumber(result.Total()))
		out.RawSetString("dice", lua.LNumber(result.Total()-result.Modifier))
		out.RawSetString("modifier", lua.LNumber(result.Modifier))
		L.Push(out)
		return 1
	}))
	L.SetField(engine, "dice", dt)

	L.SetGlobal("engine", engine)
}
