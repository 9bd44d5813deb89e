package gameserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_RequiresBundle(t *testing.T) {
	_, err := NewRenderer(nil, "en-US")
	assert.Error(t, err)
}

func TestRenderer_ShowsRollValue(t *testing.T) {
	r := testRenderer(t, "en-US")
	card := Card{
		DC:             11,
		ActorName:      "Valeros",
		ActorCondition: "Dazzled",
		Targets:        []TargetResult{{Name: "Goblin", Condition: "Hidden", DC: 11}},
		RollTotal:      14,
		Success:        true,
	}

	content, err := r.Render(card)
	require.NoError(t, err)
	assert.Contains(t, content, "Flat Check DC 11")
	assert.Contains(t, content, "Valeros (Dazzled)")
	assert.Contains(t, content, "<li>Goblin (Hidden)</li>")
	assert.Contains(t, content, `<span class="flat-check-success">14</span>`)
	assert.Equal(t, "14", r.RollText(card))
}

func TestRenderer_HideRollValue(t *testing.T) {
	r := testRenderer(t, "en-US")
	card := Card{DC: 5, RollTotal: 3, HideRollValue: true}

	content, err := r.Render(card)
	require.NoError(t, err)
	assert.Contains(t, content, "Failure")
	assert.NotContains(t, content, ">3<")
	assert.Equal(t, StyleFailure, card.Style())

	card.Success = true
	assert.Equal(t, "Success", r.RollText(card))
}

func TestRenderer_OmitsEmptySections(t *testing.T) {
	r := testRenderer(t, "en-US")
	content, err := r.Render(Card{DC: 5, ActorName: "Kyra", RollTotal: 12, Success: true})
	require.NoError(t, err)
	assert.NotContains(t, content, "flat-check-actor")
	assert.NotContains(t, content, "flat-check-targets")
}

func TestRenderer_EscapesNames(t *testing.T) {
	r := testRenderer(t, "en-US")
	content, err := r.Render(Card{
		DC:      11,
		Targets: []TargetResult{{Name: "<script>x</script>", Condition: "Hidden", DC: 11}},
	})
	require.NoError(t, err)
	assert.NotContains(t, content, "<script>")
}

func TestRenderer_Localized(t *testing.T) {
	r := testRenderer(t, "de-DE")
	assert.Equal(t, "de-DE", r.Locale())
	content, err := r.Render(Card{DC: 11, RollTotal: 2, HideRollValue: true})
	require.NoError(t, err)
	assert.Contains(t, content, "Pauschaler Wurf SG 11")
	assert.Contains(t, content, "Fehlschlag")
}

func TestRenderer_UnknownLocaleFallsBack(t *testing.T) {
	r := testRenderer(t, "xx-invalid!!")
	assert.Equal(t, "en-US", r.Locale())
}
