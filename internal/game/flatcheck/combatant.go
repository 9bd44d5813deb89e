package flatcheck

import (
	"github.com/cory-johannsen/pf2-flat-check/internal/game/condition"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/feat"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/grid"
)

// Combatant is a read-only snapshot of one token's actor at roll time.
type Combatant struct {
	ID         string
	Name       string
	Conditions *condition.ActiveSet
	Feats      feat.Set
	// Position is nil when the token is not on the scene.
	Position *grid.Position
	// Level is nil when the actor has no level.
	Level *int
	// Alliance is the actor's side ("party", "opposition"); empty means unaligned.
	Alliance string
}

// IsAllyOf reports whether c and other share a non-empty alliance.
func (c *Combatant) IsAllyOf(other *Combatant) bool {
	if c == nil || other == nil || c.Alliance == "" {
		return false
	}
	return c.Alliance == other.Alliance
}

// has reports whether the combatant holds f, either as an item or, for
// Blinded and Dazzled, as an active condition marker.
func (c *Combatant) has(f feat.Feat) bool {
	if c.Feats.Has(f) {
		return true
	}
	switch f {
	case feat.Blinded:
		return c.Conditions.Has(Blinded)
	case feat.Dazzled:
		return c.Conditions.Has(Dazzled)
	}
	return false
}

// LevelOf returns a pointer to level, for building Combatant literals.
func LevelOf(level int) *int {
	return &level
}
