package flatcheck

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/pf2-flat-check/internal/game/feat"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/grid"
)

// SenseAlliesRange is the range, in feet, within which Sense Allies applies.
const SenseAlliesRange = 60

// Resolution is the governing condition of a flat check.
// The zero value means no flat check is required.
type Resolution struct {
	// Condition is the display name, with the value appended for Stupefied ("Stupefied 2").
	Condition string
	DC        int
}

// Empty reports whether no condition applies.
func (r Resolution) Empty() bool {
	return r.Condition == ""
}

// Resolver evaluates flat check conditions between combatants.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	grid grid.Grid
}

// NewResolver creates a Resolver measuring distances on g.
//
// Precondition: g.Size > 0.
func NewResolver(g grid.Grid) *Resolver {
	return &Resolver{grid: g}
}

// relations are the attacker's feats and its spatial and social relation
// to the target, gathered once per resolution.
type relations struct {
	blinded       bool
	dazzled       bool
	blindFight    bool
	seeTheUnseen  bool
	superiorSight bool
	senseAll      bool

	adjacent         bool
	withinSenseRange bool
	levelAtLeast     bool
	targetAlly       bool
	targetMistChild  bool
}

func (r *Resolver) relate(attacker, target *Combatant) relations {
	rel := relations{
		blinded:       attacker.has(feat.Blinded),
		dazzled:       attacker.has(feat.Dazzled),
		blindFight:    attacker.has(feat.BlindFight),
		seeTheUnseen:  attacker.has(feat.SeeTheUnseen),
		superiorSight: attacker.has(feat.SuperiorSight),
		senseAll:      attacker.has(feat.SenseAllies),
	}
	if target == nil {
		return rel
	}
	// A target without a position stands where the attacker stands.
	targetPos := target.Position
	if targetPos == nil {
		targetPos = attacker.Position
	}
	rel.adjacent = r.grid.Adjacent(attacker.Position, targetPos)
	rel.withinSenseRange = r.grid.Within(attacker.Position, targetPos, SenseAlliesRange)
	// Missing levels count as -inf for the attacker and +inf for the target.
	rel.levelAtLeast = attacker.Level != nil && target.Level != nil && *attacker.Level >= *target.Level
	rel.targetAlly = target.IsAllyOf(attacker)
	rel.targetMistChild = target.has(feat.MistChild)
	return rel
}

// Resolve returns the governing flat check condition.
// With a nil target it checks the attacker's own impairments (self-check);
// otherwise it checks how well the attacker perceives target.
// isSpell admits Stupefied in a self-check.
//
// Postcondition: The base tables are unchanged.
func (r *Resolver) Resolve(attacker, target *Combatant, isSpell bool) Resolution {
	if attacker == nil {
		attacker = &Combatant{}
	}
	selfCheck := target == nil
	current, base := target, targetTable
	if selfCheck {
		current, base = attacker, attackerTable
	}
	dcs := newOverlay(base)
	rel := r.relate(attacker, target)

	var candidates []string
	for _, name := range current.Conditions.Names() {
		if dcs.has(name) || (selfCheck && isSpell && name == Stupefied) {
			candidates = append(candidates, name)
		}
	}
	slices.Sort(candidates)

	if !selfCheck {
		if rel.blinded && !slices.Contains(candidates, Hidden) {
			candidates = append(candidates, Hidden)
		}
		if rel.dazzled && !slices.Contains(candidates, Concealed) {
			candidates = append(candidates, Concealed)
		}
	}
	if len(candidates) == 0 {
		return Resolution{}
	}
	candidates = append([]string{NotApplicable}, candidates...)

	stupefiedValue := current.Conditions.Value(Stupefied)
	if slices.Contains(candidates, Stupefied) && stupefiedValue > 0 {
		dcs.set(Stupefied, DCOf(stupefiedValue+5))
	}

	winner, winnerDC := candidates[0], dcs.get(candidates[0])
	for _, name := range candidates[1:] {
		dc := dcs.get(name)
		if selfCheck {
			name, dc = rel.overrideSelf(name, dc)
		} else {
			name, dc = rel.overrideTarget(name, dc)
		}
		// The accumulated side is read from the table under its (possibly
		// renamed) name, not the DC it won with. Ties keep the accumulator.
		if dc.Exceeds(dcs.get(winner)) {
			winner, winnerDC = name, dc
		}
	}

	value, ok := winnerDC.Value()
	if winner == NotApplicable || !ok {
		return Resolution{}
	}
	if winner == Stupefied {
		winner = fmt.Sprintf("%s %d", winner, stupefiedValue)
	}
	return Resolution{Condition: winner, DC: value}
}

// overrideSelf applies the attacker's feats to one of its own conditions.
func (rel relations) overrideSelf(name string, dc DC) (string, DC) {
	if rel.blindFight && name == Dazzled {
		dc = Negated()
	}
	return name, dc
}

// overrideTarget applies both sides' feats to one target condition. Each
// rule sees the name as left by the rules before it.
func (rel relations) overrideTarget(name string, dc DC) (string, DC) {
	if rel.targetMistChild {
		switch name {
		case Hidden:
			dc = DCOf(12)
		case Concealed:
			dc = DCOf(6)
		}
	}
	if rel.senseAll && rel.targetAlly && name != Unnoticed && rel.withinSenseRange {
		if name == Undetected {
			name = Hidden
		}
		if name == Hidden {
			dc = DCOf(5)
		}
	}
	if rel.seeTheUnseen {
		if name == Undetected && rel.adjacent {
			name = Hidden
		}
		if name == Hidden {
			dc = DCOf(5)
		}
	}
	if rel.blindFight {
		switch name {
		case Concealed:
			dc = Negated()
		case Hidden:
			dc = DCOf(5)
		case Invisible, Undetected:
			if rel.adjacent && rel.levelAtLeast {
				name, dc = Hidden, DCOf(5)
			}
		}
	}
	if rel.superiorSight {
		switch name {
		case Hidden, Concealed, Undetected:
			dc = Negated()
		}
	}
	return name, dc
}
