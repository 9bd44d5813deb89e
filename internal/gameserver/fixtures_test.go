package gameserver

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pf2-flat-check/internal/game/condition"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/dice"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/flatcheck"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/grid"
	"github.com/cory-johannsen/pf2-flat-check/internal/i18n"
	"github.com/cory-johannsen/pf2-flat-check/internal/vtt"
)

func conditionItem(name string, value int) vtt.Item {
	return vtt.Item{ID: "c-" + condition.Slug(name), Slug: condition.Slug(name), Name: name, Type: vtt.ItemTypeCondition, Value: value}
}

func longsword() *vtt.Item {
	return &vtt.Item{ID: "w1", Slug: "longsword", Name: "Longsword", Type: vtt.ItemTypeWeapon}
}

func token(id, name string, x float64, items ...vtt.Item) vtt.Token {
	level := 3
	return vtt.Token{
		ID: id, Name: name, X: x,
		Actor: &vtt.Actor{ID: "act-" + id, Name: name + " (actor)", Level: &level, Alliance: "party", Items: items},
	}
}

func enemy(id, name string, x float64, items ...vtt.Item) vtt.Token {
	t := token(id, name, x, items...)
	t.Actor.Alliance = "opposition"
	return t
}

// attackEvent is an attack roll by attacker, evaluated on the only active
// GM's client, against targets.
func attackEvent(attacker vtt.Token, targets ...vtt.Token) *vtt.RollEvent {
	return &vtt.RollEvent{
		ID:         "msg-1",
		UserID:     "player-1",
		ActiveGMID: "gm-1",
		IsRoll:     true,
		Token:      &attacker,
		Item:       longsword(),
		Users: []vtt.User{
			{ID: "gm-1", Name: "GM", IsGM: true, Active: true},
			{ID: "gm-2", Name: "Co-GM", IsGM: true},
			{ID: "player-1", Name: "Player", Active: true, Targets: targets},
		},
	}
}

func testRegistry(t *testing.T) *condition.Registry {
	t.Helper()
	reg, err := condition.LoadDirectory("../../content/conditions")
	require.NoError(t, err)
	return reg
}

func testRenderer(t *testing.T, locale string) *Renderer {
	t.Helper()
	bundle, err := i18n.LoadEmbedded()
	require.NoError(t, err)
	r, err := NewRenderer(bundle, locale)
	require.NoError(t, err)
	return r
}

// newTestHandler builds a CheckHandler rolling the fixed face.
func newTestHandler(t *testing.T, face int, messages MessageStore, settings SettingsStore, presenter RollPresenter, logger *zap.Logger) *CheckHandler {
	t.Helper()
	return NewCheckHandler(
		flatcheck.NewResolver(grid.Default()),
		testRegistry(t),
		dice.NewLoggedRoller(dice.NewFixedSource(face), logger),
		testRenderer(t, "en-US"),
		messages,
		settings,
		presenter,
		false,
		logger,
	)
}
