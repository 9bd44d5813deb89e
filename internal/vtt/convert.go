package vtt

import (
	"github.com/cory-johannsen/pf2-flat-check/internal/game/condition"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/feat"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/flatcheck"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/grid"
)

// Combatant snapshots the token's actor for the resolver. actor is used
// when the token carries none; a nil token yields a combatant with no
// position.
//
// Precondition: reg must be non-nil.
// Postcondition: Returns a non-nil Combatant; missing data leaves fields empty.
func Combatant(t *Token, actor *Actor, reg *condition.Registry) *flatcheck.Combatant {
	c := &flatcheck.Combatant{Conditions: condition.NewActiveSet()}
	if t != nil {
		c.ID = t.ID
		c.Name = t.Name
		c.Position = &grid.Position{X: t.X, Y: t.Y}
		if t.Actor != nil {
			actor = t.Actor
		}
	}
	if actor == nil {
		return c
	}
	if c.Name == "" {
		c.Name = actor.Name
	}
	c.Level = actor.Level
	c.Alliance = actor.Alliance
	c.Feats = feat.Detect(actor.Slugs())
	for _, it := range actor.Conditions() {
		// Apply only fails on a nil definition or a negative value.
		_ = c.Conditions.Apply(reg.Lookup(it.Name), max(it.Value, 0))
	}
	return c
}

// Attacker snapshots the event's speaking token.
func (e *RollEvent) Attacker(reg *condition.Registry) *flatcheck.Combatant {
	return Combatant(e.Token, e.Actor, reg)
}
