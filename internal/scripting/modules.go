package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pf2-flat-check/internal/game/dice"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug|info|warn|error(msg)
//	engine.dice.roll(count, sides) -> {expression, dice, total}
//	engine.flatcheck.succeeds(roll, dc) -> bool
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	logTbl := L.NewTable()
	for level, fn := range map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	} {
		logTbl.RawSetString(level, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	engine.RawSetString("log", logTbl)

	diceTbl := L.NewTable()
	diceTbl.RawSetString("roll", L.NewFunction(m.luaDiceRoll))
	engine.RawSetString("dice", diceTbl)

	fcTbl := L.NewTable()
	fcTbl.RawSetString("succeeds", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(L.CheckInt(1) >= L.CheckInt(2)))
		return 1
	}))
	engine.RawSetString("flatcheck", fcTbl)

	L.SetGlobal("engine", engine)
}

func (m *Manager) luaDiceRoll(L *lua.LState) int {
	count := L.OptInt(1, 1)
	sides := L.OptInt(2, dice.FlatCheckDie)
	result, err := m.roller.Roll(count, sides)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	t := L.NewTable()
	t.RawSetString("expression", lua.LString(result.Expression))
	faces := L.NewTable()
	for _, d := range result.Dice {
		faces.Append(lua.LNumber(d))
	}
	t.RawSetString("dice", faces)
	t.RawSetString("total", lua.LNumber(result.Total()))
	L.Push(t)
	return 1
}
