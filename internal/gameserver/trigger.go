package gameserver

import (
	"github.com/cory-johannsen/pf2-flat-check/internal/vtt"
)

// Reasons ShouldCheck gives for skipping an event.
const (
	SkipNotActiveGM = "evaluating user is not the first active GM"
	SkipNoActor     = "message has no actor"
	SkipNoItem      = "message has no item"
	SkipGatedItem   = "item type only checks on attack rolls"
	SkipSpellAttack = "spell attack rolls are checked on the cast message"
)

// gatedItemTypes only trigger a check on a roll that is not a damage roll.
var gatedItemTypes = map[string]bool{
	vtt.ItemTypeAncestry: true,
	vtt.ItemTypeEffect:   true,
	vtt.ItemTypeFeat:     true,
	vtt.ItemTypeMelee:    true,
	vtt.ItemTypeWeapon:   true,
}

// ShouldCheck decides whether ev calls for a flat check and, if so, which
// item is acting. When it returns a nil item, reason says why not.
//
// Precondition: ev must be non-nil.
// Postcondition: Exactly one of item and reason is set.
func ShouldCheck(ev *vtt.RollEvent) (item *vtt.Item, reason string) {
	gm, ok := ev.FirstActiveGM()
	if !ok || gm.ID != ev.ActiveGMID {
		return nil, SkipNotActiveGM
	}
	if ev.SpeakingActor() == nil {
		return nil, SkipNoActor
	}
	item, ok = ev.ActingItem()
	if !ok {
		return nil, SkipNoItem
	}
	if gatedItemTypes[item.Type] && (!ev.IsRoll || ev.IsDamageRoll) {
		return nil, SkipGatedItem
	}
	if item.IsSpell() && ev.IsRoll {
		return nil, SkipSpellAttack
	}
	return item, ""
}
