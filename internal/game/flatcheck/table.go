package flatcheck

import "maps"

// Condition names as they appear on host condition markers.
const (
	NotApplicable = "N/A"

	Blinded   = "Blinded"
	Dazzled   = "Dazzled"
	Stupefied = "Stupefied"

	Concealed  = "Concealed"
	Hidden     = "Hidden"
	Invisible  = "Invisible"
	Undetected = "Undetected"
	Unnoticed  = "Unnoticed"
)

// attackerTable lists the attacker's own impairments. Blinded is present
// only so that it is gathered; its flat check depends on the target.
var attackerTable = map[string]DC{
	Blinded:       Negated(),
	Dazzled:       DCOf(5),
	NotApplicable: Negated(),
}

// targetTable lists how hard a target is to perceive. Invisible is
// treated as Undetected.
var targetTable = map[string]DC{
	Concealed:     DCOf(5),
	Hidden:        DCOf(11),
	Invisible:     DCOf(11),
	Undetected:    DCOf(11),
	NotApplicable: Negated(),
}

// AttackerConditions returns a copy of the attacker-side base table.
func AttackerConditions() map[string]DC {
	return maps.Clone(attackerTable)
}

// TargetConditions returns a copy of the target-side base table.
func TargetConditions() map[string]DC {
	return maps.Clone(targetTable)
}

// overlay is a per-call copy-on-write view over a base table.
type overlay struct {
	base map[string]DC
	over map[string]DC
}

func newOverlay(base map[string]DC) *overlay {
	return &overlay{base: base, over: make(map[string]DC)}
}

// has reports whether name is a key of the base table.
func (o *overlay) has(name string) bool {
	_, ok := o.base[name]
	return ok
}

// get returns the overridden DC for name, else the base DC, else Negated.
func (o *overlay) get(name string) DC {
	if dc, ok := o.over[name]; ok {
		return dc
	}
	return o.base[name]
}

func (o *overlay) set(name string, dc DC) {
	o.over[name] = dc
}
