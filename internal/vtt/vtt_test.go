package vtt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/pf2-flat-check/internal/game/condition"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/feat"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/flatcheck"
	"github.com/cory-johannsen/pf2-flat-check/internal/vtt"
)

func registry() *condition.Registry {
	reg := condition.NewRegistry()
	reg.Register(&condition.ConditionDef{ID: "stupefied", Name: "Stupefied", MaxValue: 4})
	reg.Register(&condition.ConditionDef{ID: "blinded", Name: "Blinded"})
	return reg
}

func TestLoadSceneFromFile(t *testing.T) {
	scene, err := vtt.LoadSceneFromFile("testdata/ambush.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Ambush at the Ford", scene.Name)
	assert.Equal(t, 100.0, scene.Grid.Size)
	assert.Equal(t, 5, scene.Grid.Distance)
	require.Len(t, scene.Events, 1)

	ev := scene.Events[0]
	assert.Equal(t, "player-1", ev.UserID)
	require.NotNil(t, ev.Token)
	require.NotNil(t, ev.Token.Actor)
	require.NotNil(t, ev.Token.Actor.Level)
	assert.Equal(t, 3, *ev.Token.Actor.Level)
	targets := ev.Targets()
	require.Len(t, targets, 1)
	assert.Equal(t, "Goblin", targets[0].Name)
	assert.True(t, targets[0].Actor.HasCondition("Invisible"))
}

func TestLoadSceneFromBytes_DefaultsGrid(t *testing.T) {
	scene, err := vtt.LoadSceneFromBytes([]byte("scene:\n  name: empty\n"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, scene.Grid.Size)
	assert.Equal(t, 5, scene.Grid.Distance)
	assert.Empty(t, scene.Events)
}

func TestLoadSceneFromBytes_RejectsUnknownFields(t *testing.T) {
	_, err := vtt.LoadSceneFromBytes([]byte("scene:\n  name: x\n  weather: rain\n"))
	assert.Error(t, err)
}

func TestLoadSceneFromBytes_RequiresUserID(t *testing.T) {
	_, err := vtt.LoadSceneFromBytes([]byte("scene:\n  events:\n    - id: m1\n"))
	assert.ErrorContains(t, err, "user_id")
}

func TestLoadSceneFromFile_Missing(t *testing.T) {
	_, err := vtt.LoadSceneFromFile("testdata/nope.yaml")
	assert.Error(t, err)
}

func TestRollEvent_FirstActiveGM(t *testing.T) {
	ev := vtt.RollEvent{Users: []vtt.User{
		{ID: "gm-idle", IsGM: true},
		{ID: "p1", Active: true},
		{ID: "gm-2", IsGM: true, Active: true},
		{ID: "gm-3", IsGM: true, Active: true},
	}}
	gm, ok := ev.FirstActiveGM()
	require.True(t, ok)
	assert.Equal(t, "gm-2", gm.ID)
	assert.Equal(t, []string{"gm-idle", "gm-2", "gm-3"}, ev.GMIDs())
}

func TestRollEvent_FirstActiveGM_None(t *testing.T) {
	ev := vtt.RollEvent{Users: []vtt.User{{ID: "p1", Active: true}}}
	_, ok := ev.FirstActiveGM()
	assert.False(t, ok)
}

func TestRollEvent_Targets_UnknownSender(t *testing.T) {
	ev := vtt.RollEvent{UserID: "ghost"}
	assert.Nil(t, ev.Targets())
}

func TestRollEvent_SpeakerName(t *testing.T) {
	actor := &vtt.Actor{Name: "Ezren"}
	assert.Equal(t, "Ezren", (&vtt.RollEvent{Actor: actor}).SpeakerName())
	assert.Equal(t, "Ezzy", (&vtt.RollEvent{Actor: actor, Token: &vtt.Token{Name: "Ezzy"}}).SpeakerName())
	assert.Equal(t, "Ezren", (&vtt.RollEvent{Token: &vtt.Token{Actor: actor}}).SpeakerName())
	assert.Equal(t, "", (&vtt.RollEvent{}).SpeakerName())
}

func TestRollEvent_ActingItem_Direct(t *testing.T) {
	it := &vtt.Item{ID: "w1", Type: vtt.ItemTypeWeapon}
	got, ok := (&vtt.RollEvent{Item: it}).ActingItem()
	require.True(t, ok)
	assert.Same(t, it, got)
}

func TestRollEvent_ActingItem_UnarmedStrikeFallback(t *testing.T) {
	actor := &vtt.Actor{Actions: []vtt.Action{
		{Type: "strike", Item: vtt.Item{ID: "sword", Type: vtt.ItemTypeWeapon}},
		{Type: "strike", Item: vtt.Item{ID: vtt.UnarmedItemID, Name: "Fist", Type: vtt.ItemTypeWeapon}},
	}}
	ev := vtt.RollEvent{Actor: actor, IsRoll: true, OriginUUID: "Actor.abc.Item.xxPF2ExUNARMEDxx"}
	got, ok := ev.ActingItem()
	require.True(t, ok)
	assert.Equal(t, "Fist", got.Name)
}

func TestRollEvent_ActingItem_NoFallbackOnDamage(t *testing.T) {
	actor := &vtt.Actor{Actions: []vtt.Action{
		{Type: "strike", Item: vtt.Item{ID: vtt.UnarmedItemID}},
	}}
	ev := vtt.RollEvent{Actor: actor, IsDamageRoll: true, OriginUUID: "Actor.abc.Item.xxPF2ExUNARMEDxx"}
	_, ok := ev.ActingItem()
	assert.False(t, ok)
}

func TestRollEvent_ActingItem_OtherOrigin(t *testing.T) {
	ev := vtt.RollEvent{Actor: &vtt.Actor{}, OriginUUID: "Actor.abc.Item.sword"}
	_, ok := ev.ActingItem()
	assert.False(t, ok)
	id, ok := ev.OriginItemID()
	require.True(t, ok)
	assert.Equal(t, "sword", id)
}

func TestCombatant_FromToken(t *testing.T) {
	tok := &vtt.Token{ID: "t1", Name: "Merisiel", X: 250, Y: 40, Actor: &vtt.Actor{
		Name:     "Merisiel the Rogue",
		Level:    flatcheck.LevelOf(5),
		Alliance: "party",
		Items: []vtt.Item{
			{Slug: "see-the-unseen", Type: vtt.ItemTypeFeat},
			{Slug: "stupefied", Name: "Stupefied", Type: vtt.ItemTypeCondition, Value: 2},
			{Slug: "blinded", Name: "Blinded", Type: vtt.ItemTypeCondition},
		},
	}}
	c := vtt.Combatant(tok, nil, registry())
	assert.Equal(t, "t1", c.ID)
	assert.Equal(t, "Merisiel", c.Name)
	require.NotNil(t, c.Position)
	assert.Equal(t, 250.0, c.Position.X)
	assert.Equal(t, 5, *c.Level)
	assert.Equal(t, "party", c.Alliance)
	assert.True(t, c.Feats.Has(feat.SeeTheUnseen))
	assert.True(t, c.Feats.Has(feat.Blinded))
	assert.Equal(t, 2, c.Conditions.Value(flatcheck.Stupefied))
	assert.True(t, c.Conditions.Has(flatcheck.Blinded))
}

func TestCombatant_FallbackActorAndNilToken(t *testing.T) {
	actor := &vtt.Actor{Name: "Kyra", Items: []vtt.Item{{Name: "Concealed", Type: vtt.ItemTypeCondition}}}
	c := vtt.Combatant(nil, actor, registry())
	assert.Nil(t, c.Position)
	assert.Equal(t, "Kyra", c.Name)
	assert.True(t, c.Conditions.Has("Concealed"))

	empty := vtt.Combatant(nil, nil, registry())
	require.NotNil(t, empty)
	assert.Equal(t, 0, empty.Conditions.Len())
}

func TestCombatant_NegativeValueClamped(t *testing.T) {
	actor := &vtt.Actor{Items: []vtt.Item{{Name: "Stupefied", Type: vtt.ItemTypeCondition, Value: -3}}}
	c := vtt.Combatant(nil, actor, registry())
	assert.True(t, c.Conditions.Has(flatcheck.Stupefied))
	assert.Equal(t, 0, c.Conditions.Value(flatcheck.Stupefied))
}

func TestDecode_FromStruct(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"id":           "m1",
		"user_id":      "p1",
		"active_gm_id": "gm",
		"is_roll":      true,
		"token": map[string]any{
			"id": "t1", "name": "Amiri", "x": 100.0, "y": 200.0,
			"actor": map[string]any{
				"name":  "Amiri",
				"level": 4.0,
				"items": []any{
					map[string]any{"slug": "dazzled", "name": "Dazzled", "type": "condition"},
				},
			},
		},
		"item": map[string]any{"id": "axe", "type": "weapon"},
	})
	require.NoError(t, err)

	ev, err := vtt.Decode(s.AsMap())
	require.NoError(t, err)
	assert.Equal(t, "m1", ev.ID)
	assert.True(t, ev.IsRoll)
	require.NotNil(t, ev.Token)
	assert.Equal(t, 200.0, ev.Token.Y)
	require.NotNil(t, ev.Token.Actor.Level)
	assert.Equal(t, 4, *ev.Token.Actor.Level)
	assert.Equal(t, "weapon", ev.Item.Type)
	assert.True(t, ev.Token.Actor.HasCondition("Dazzled"))
}

func TestDecode_RejectsWrongShape(t *testing.T) {
	_, err := vtt.Decode(map[string]any{"users": "everyone"})
	assert.Error(t, err)
}

func TestDocument_RoundTripsThroughStruct(t *testing.T) {
	scene, err := vtt.LoadSceneFromFile("testdata/ambush.yaml")
	require.NoError(t, err)
	doc, err := vtt.Document(&scene.Events[0])
	require.NoError(t, err)
	s, err := structpb.NewStruct(doc)
	require.NoError(t, err)

	back, err := vtt.Decode(s.AsMap())
	require.NoError(t, err)
	assert.Equal(t, scene.Events[0], *back)
}
