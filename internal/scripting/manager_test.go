package scripting_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/pf2-flat-check/internal/game/dice"
	"github.com/cory-johannsen/pf2-flat-check/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
	mgr := scripting.NewManager(roller, logger)
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

// repoRoot walks up from the test's working directory to find the module root.
func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root
		}
		parent := filepath.Dir(root)
		if parent == root {
			t.Fatalf("could not find repo root from %s", wd)
		}
		root = parent
	}
}

func TestManager_LoadAddon_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadAddon(context.Background(), "calc", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "calc", "test_hook", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_LoadAddon_EmptyName(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadAddon(context.Background(), "", t.TempDir(), 0))
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `-- no functions`)
	require.NoError(t, mgr.LoadAddon(context.Background(), "quiet", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "quiet", "nonexistent_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_UnknownAddon_ReturnsNil(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret, err := mgr.CallHook(context.Background(), "no_such_addon", "some_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: no VM for add-on").Len())
	assert.False(t, mgr.Loaded("no_such_addon"))
}

func TestManager_CallHook_RuntimeError_WarnLogNoPanic(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.LoadAddon(context.Background(), "bad", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "bad", "bad_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len(), "expected Warn log for Lua runtime error")
}

func TestManager_CallHook_RunawayHookIsStopped(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "spin.lua", `function spin() while true do end end`)
	require.NoError(t, mgr.LoadAddon(context.Background(), "spin", dir, 1000))
	ret, err := mgr.CallHook(context.Background(), "spin", "spin")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestManager_LoadGlobal_CallHookFallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "global.lua", `
		function global_hook()
			return 42
		end
	`)
	require.NoError(t, mgr.LoadGlobal(context.Background(), dir, 0))
	// "unknown" has no VM; falls back to __global__.
	ret, err := mgr.CallHook(context.Background(), "unknown", "global_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(42), ret)
	assert.True(t, mgr.Loaded("unknown"))
}

func TestManager_LoadAddon_InvalidLua_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `this is not valid lua @@@@`)
	assert.Error(t, mgr.LoadAddon(context.Background(), "broken", dir, 0))
	assert.False(t, mgr.Loaded("broken"))
}

func TestManager_LoadAddon_MissingDir_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadAddon(context.Background(), "ghost", filepath.Join(t.TempDir(), "nope"), 0))
}

func TestManager_LoadAddon_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0644))
	require.NoError(t, mgr.LoadAddon(context.Background(), "ordered", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "ordered", "get_val")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(10), ret)
}

func TestManager_ReloadReplacesVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	first := writeTempLua(t, "v.lua", `function version() return 1 end`)
	second := writeTempLua(t, "v.lua", `function version() return 2 end`)
	require.NoError(t, mgr.LoadAddon(context.Background(), "ver", first, 0))
	require.NoError(t, mgr.LoadAddon(context.Background(), "ver", second, 0))
	ret, err := mgr.CallHook(context.Background(), "ver", "version")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestProperty_CallHookMissingAddonNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "addon")
		hook := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "hook")
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		for i := 0; i < count; i++ {
			mgr.CallHook(context.Background(), name, hook) //nolint:errcheck
		}
	})
}

func TestManager_CallHookConcurrentSameAddon_NoRace(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function concurrent_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadAddon(context.Background(), "conc", dir, 0))

	const goroutines = 10
	const callsEach = 5
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				ret, err := mgr.CallHook(context.Background(), "conc", "concurrent_hook", lua.LNumber(1), lua.LNumber(2))
				assert.NoError(t, err)
				assert.Equal(t, lua.LNumber(3), ret)
			}
		}()
	}
	wg.Wait()
}

func TestNewManager_PanicsOnNilRoller(t *testing.T) {
	assert.Panics(t, func() {
		scripting.NewManager(nil, zap.NewNop())
	})
}

func TestNewManager_PanicsOnNilLogger(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	assert.Panics(t, func() {
		scripting.NewManager(roller, nil)
	})
}

func TestManager_Close_ReleasesAddons(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "init.lua", `function get_x() return 1 end`)
	require.NoError(t, mgr.LoadAddon(context.Background(), "closing", dir, 0))
	mgr.Close()
	ret, err := mgr.CallHook(context.Background(), "closing", "get_x")
	assert.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_ShowRoll_ShippedDiceTray(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := filepath.Join(repoRoot(t), "content", "scripts", "dice-tray")
	require.NoError(t, mgr.LoadAddon(context.Background(), "dice-tray", dir, 0))

	mgr.ShowRoll(context.Background(), scripting.RollInfo{
		Expression: "1d20", Dice: []int{14}, Total: 14, DC: 11, UserID: "p1",
	})
	mgr.ShowRoll(context.Background(), scripting.RollInfo{
		Expression: "1d20", Dice: []int{3}, Total: 3, DC: 5, UserID: "p1", Blind: true,
	})

	tally, err := mgr.CallHook(context.Background(), "dice-tray", "tally")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), tally)
	assert.Equal(t, 1, logs.FilterMessage("flat check 1d20 = 14 vs DC 11: success").Len())
	assert.Equal(t, 1, logs.FilterMessage("flat check rolled blind for p1").Len())
}

func TestManager_ShowRoll_NoAddonsIsNoOp(t *testing.T) {
	mgr, logs := newTestManager(t)
	mgr.ShowRoll(context.Background(), scripting.RollInfo{Expression: "1d20", Dice: []int{1}, Total: 1})
	assert.Equal(t, 0, logs.FilterLevelExact(zap.WarnLevel).Len())
}
