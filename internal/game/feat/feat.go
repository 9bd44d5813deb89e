// Package feat models the special abilities that alter flat checks as a
// capability set detected from a combatant's item slugs.
package feat

import "strings"

// Feat is a capability flag named by its item slug.
type Feat string

const (
	BlindFight    Feat = "blind-fight"
	SeeTheUnseen  Feat = "see-the-unseen"
	SuperiorSight Feat = "superior-sight"
	SenseAllies   Feat = "sense-allies"
	MistChild     Feat = "mist-child"

	// Blinded and Dazzled come from condition items rather than feats, but
	// the resolver consults them the same way.
	Blinded Feat = "blinded"
	Dazzled Feat = "dazzled"
)

// known lists every slug the resolver consults.
var known = map[Feat]bool{
	BlindFight:    true,
	SeeTheUnseen:  true,
	SuperiorSight: true,
	SenseAllies:   true,
	MistChild:     true,
	Blinded:       true,
	Dazzled:       true,
}

// Set is an immutable set of capabilities held by one combatant.
// The zero value holds nothing.
type Set struct {
	held map[Feat]bool
}

// Detect builds a Set from item slugs. Unrecognised slugs are ignored and
// matching is case-insensitive.
//
// Postcondition: Has(f) is true iff some slug equals f.
func Detect(slugs []string) Set {
	held := make(map[Feat]bool)
	for _, s := range slugs {
		f := Feat(strings.ToLower(strings.TrimSpace(s)))
		if known[f] {
			held[f] = true
		}
	}
	return Set{held: held}
}

// Of builds a Set from explicit feats.
func Of(feats ...Feat) Set {
	held := make(map[Feat]bool, len(feats))
	for _, f := range feats {
		held[f] = true
	}
	return Set{held: held}
}

// Has reports whether f is held.
func (s Set) Has(f Feat) bool {
	return s.held[f]
}

// Len returns the number of held capabilities.
func (s Set) Len() int {
	return len(s.held)
}
