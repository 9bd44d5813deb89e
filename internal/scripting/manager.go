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

	"github.com/cory-johannsen/pf2-flat-check/internal/game/dice"
)

// globalAddon is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no add-on VM is found.
const globalAddon = "__global__"

// HookShowRoll is called after every flat check roll, before the card is posted.
const HookShowRoll = "show_roll"

// RollInfo is the snapshot of a flat check roll passed to show_roll.
type RollInfo struct {
	Expression string
	Dice       []int
	Total      int
	DC         int
	UserID     string
	Blind      bool
}

// vm is one add-on's LState. LStates are single-threaded, so every use
// holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per add-on and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook. Calls into the same add-on are
// serialized; different add-ons run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no add-ons loaded.
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

// LoadAddon creates a sandboxed VM for name, registers all engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: name must be non-empty; scriptDir must be a readable directory.
// Postcondition: Add-on VM is registered; returns error on Lua load failure.
func (m *Manager) LoadAddon(ctx context.Context, name, scriptDir string, instLimit int) error {
	if name == "" {
		return fmt.Errorf("scripting: add-on name must not be empty")
	}
	return m.loadInto(ctx, name, scriptDir, instLimit)
}

// LoadGlobal creates the "__global__" VM for shared scripts reachable as a
// CallHook fallback from any add-on name.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(ctx context.Context, scriptDir string, instLimit int) error {
	return m.loadInto(ctx, globalAddon, scriptDir, instLimit)
}

func (m *Manager) loadInto(ctx context.Context, key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState()
	m.RegisterModules(L)
	for _, path := range luaFiles {
		disarm := withBudget(ctx, L, instLimit)
		err := L.DoFile(path)
		disarm()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Info("scripting: add-on loaded",
		zap.String("addon", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Loaded reports whether any VM (add-on or global) is available for name.
func (m *Manager) Loaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[name]
	if !ok {
		_, ok = m.vms[globalAddon]
	}
	return ok
}

// CallHook calls the named Lua global function in name's VM. If the add-on
// has no VM, the __global__ VM is tried as a fallback. Returns (LNil, nil) if
// the hook is not defined or no VM exists. Lua runtime errors, including an
// exhausted instruction budget, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(ctx context.Context, name, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[name]
	if !ok {
		v = m.vms[globalAddon]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Debug("scripting: no VM for add-on",
			zap.String("addon", name),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.L.IsClosed() {
		return lua.LNil, nil
	}

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	disarm := withBudget(ctx, v.L, v.limit)
	defer disarm()
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("addon", name),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// ShowRoll dispatches the show_roll hook to every loaded VM, in name order.
// A VM without the hook is skipped.
func (m *Manager) ShowRoll(ctx context.Context, roll RollInfo) {
	m.mu.RLock()
	names := make([]string, 0, len(m.vms))
	for name := range m.vms {
		names = append(names, name)
	}
	m.mu.RUnlock()
	sort.Strings(names)

	for _, name := range names {
		m.mu.RLock()
		v := m.vms[name]
		m.mu.RUnlock()
		if v == nil {
			continue
		}
		v.mu.Lock()
		tbl := rollToTable(v.L, roll)
		v.mu.Unlock()
		if _, err := m.CallHook(ctx, name, HookShowRoll, tbl); err != nil {
			m.logger.Warn("scripting: show_roll failed", zap.String("addon", name), zap.Error(err))
		}
	}
}

// Close shuts down every VM. Subsequent CallHook calls return LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}

func rollToTable(L *lua.LState, roll RollInfo) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("expression", lua.LString(roll.Expression))
	faces := L.NewTable()
	for _, d := range roll.Dice {
		faces.Append(lua.LNumber(d))
	}
	t.RawSetString("dice", faces)
	t.RawSetString("total", lua.LNumber(roll.Total))
	t.RawSetString("dc", lua.LNumber(roll.DC))
	t.RawSetString("user_id", lua.LString(roll.UserID))
	t.RawSetString("blind", lua.LBool(roll.Blind))
	return t
}
