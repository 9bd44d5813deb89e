// Package flatcheck resolves which visibility or impairment condition
// governs a flat check for an attack, and at what DC.
//
// Resolution is a pure query over combatant snapshots: the base DC tables
// are immutable and every call layers its feat and severity adjustments on a
// private overlay.
package flatcheck

import "strconv"

// DC is a flat check difficulty class that may be negated.
// The zero value is negated: the condition never applies.
type DC struct {
	value int
	set   bool
}

// DCOf returns a concrete DC.
func DCOf(n int) DC {
	return DC{value: n, set: true}
}

// Negated returns the DC that never applies.
func Negated() DC {
	return DC{}
}

// Value returns the numeric DC and false when negated.
func (d DC) Value() (int, bool) {
	return d.value, d.set
}

// IsNegated reports whether the DC never applies.
func (d DC) IsNegated() bool {
	return !d.set
}

// Exceeds reports whether d is strictly greater than o.
// A concrete DC exceeds a negated one; a negated DC exceeds nothing.
func (d DC) Exceeds(o DC) bool {
	if !d.set {
		return false
	}
	if !o.set {
		return true
	}
	return d.value > o.value
}

// String returns the DC value or "negated".
func (d DC) String() string {
	if !d.set {
		return "negated"
	}
	return strconv.Itoa(d.value)
}

// Succeeds reports whether a d20 result meets dc.
//
// Postcondition: Returns true iff roll >= dc.
func Succeeds(roll, dc int) bool {
	return roll >= dc
}
