// Package vtt models the host snapshot a flat check is evaluated against:
// the chat roll event, its speaking token and actor, the rolled item, and
// the users with their current targets.
package vtt

import "regexp"

// Item types the trigger predicate cares about.
const (
	ItemTypeAncestry  = "ancestry"
	ItemTypeCondition = "condition"
	ItemTypeEffect    = "effect"
	ItemTypeFeat      = "feat"
	ItemTypeMelee     = "melee"
	ItemTypeSpell     = "spell"
	ItemTypeWeapon    = "weapon"
)

// ActionTypeStrike is the type of an actor's strike actions.
const ActionTypeStrike = "strike"

// UnarmedItemID is the item id the host assigns to the synthetic unarmed strike.
const UnarmedItemID = "xxPF2ExUNARMEDxx"

var originItemPattern = regexp.MustCompile(`Item.(\w+)`)

// Item is an embedded actor item: a condition, feat, spell, weapon and so on.
type Item struct {
	ID   string `yaml:"id" mapstructure:"id"`
	Slug string `yaml:"slug" mapstructure:"slug"`
	Name string `yaml:"name" mapstructure:"name"`
	Type string `yaml:"type" mapstructure:"type"`
	// Value is the badge value of a valued condition; 0 otherwise.
	Value int `yaml:"value,omitempty" mapstructure:"value"`
}

// Action is one of an actor's prepared actions.
type Action struct {
	Type string `yaml:"type" mapstructure:"type"`
	Item Item   `yaml:"item" mapstructure:"item"`
}

// Actor is the character or creature sheet behind a token.
type Actor struct {
	ID       string   `yaml:"id" mapstructure:"id"`
	Name     string   `yaml:"name" mapstructure:"name"`
	Level    *int     `yaml:"level,omitempty" mapstructure:"level"`
	Alliance string   `yaml:"alliance,omitempty" mapstructure:"alliance"`
	Items    []Item   `yaml:"items,omitempty" mapstructure:"items"`
	Actions  []Action `yaml:"actions,omitempty" mapstructure:"actions"`
}

// Conditions returns the actor's condition items in sheet order.
func (a *Actor) Conditions() []Item {
	if a == nil {
		return nil
	}
	var out []Item
	for _, it := range a.Items {
		if it.Type == ItemTypeCondition {
			out = append(out, it)
		}
	}
	return out
}

// HasCondition reports whether the actor carries a condition item named name.
func (a *Actor) HasCondition(name string) bool {
	for _, c := range a.Conditions() {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Slugs returns the slug of every item on the actor, skipping blanks.
func (a *Actor) Slugs() []string {
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.Items))
	for _, it := range a.Items {
		if it.Slug != "" {
			out = append(out, it.Slug)
		}
	}
	return out
}

// Strike returns the item of the strike action whose item id is itemID.
func (a *Actor) Strike(itemID string) (Item, bool) {
	if a == nil {
		return Item{}, false
	}
	for _, act := range a.Actions {
		if act.Type == ActionTypeStrike && act.Item.ID == itemID {
			return act.Item, true
		}
	}
	return Item{}, false
}

// Token is an actor's placement on the scene. X and Y are pixel coordinates.
type Token struct {
	ID    string  `yaml:"id" mapstructure:"id"`
	Name  string  `yaml:"name" mapstructure:"name"`
	X     float64 `yaml:"x" mapstructure:"x"`
	Y     float64 `yaml:"y" mapstructure:"y"`
	Actor *Actor  `yaml:"actor,omitempty" mapstructure:"actor"`
}

// User is a connected or known player account.
type User struct {
	ID     string `yaml:"id" mapstructure:"id"`
	Name   string `yaml:"name" mapstructure:"name"`
	IsGM   bool   `yaml:"is_gm" mapstructure:"is_gm"`
	Active bool   `yaml:"active" mapstructure:"active"`
	// Targets are the tokens the user currently has targeted.
	Targets []Token `yaml:"targets,omitempty" mapstructure:"targets"`
}

// RollEvent is a freshly created chat message as observed by one client.
type RollEvent struct {
	ID string `yaml:"id" mapstructure:"id"`
	// UserID is the user who sent the message.
	UserID string `yaml:"user_id" mapstructure:"user_id"`
	// ActiveGMID is the user on whose client the event is being evaluated.
	// Checks run only when it is the first active GM in Users.
	ActiveGMID   string `yaml:"active_gm_id" mapstructure:"active_gm_id"`
	IsRoll       bool   `yaml:"is_roll" mapstructure:"is_roll"`
	IsDamageRoll bool   `yaml:"is_damage_roll" mapstructure:"is_damage_roll"`
	OriginUUID   string `yaml:"origin_uuid,omitempty" mapstructure:"origin_uuid"`
	Token        *Token `yaml:"token,omitempty" mapstructure:"token"`
	Actor        *Actor `yaml:"actor,omitempty" mapstructure:"actor"`
	Item         *Item  `yaml:"item,omitempty" mapstructure:"item"`
	Users        []User `yaml:"users,omitempty" mapstructure:"users"`
}

// User returns the user with the given id.
func (e *RollEvent) User(id string) (*User, bool) {
	for i := range e.Users {
		if e.Users[i].ID == id {
			return &e.Users[i], true
		}
	}
	return nil, false
}

// FirstActiveGM returns the first user that is both a GM and active.
func (e *RollEvent) FirstActiveGM() (*User, bool) {
	for i := range e.Users {
		if e.Users[i].IsGM && e.Users[i].Active {
			return &e.Users[i], true
		}
	}
	return nil, false
}

// GMIDs returns the ids of every GM user, active or not.
func (e *RollEvent) GMIDs() []string {
	var ids []string
	for _, u := range e.Users {
		if u.IsGM {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// Targets returns the sending user's targets.
func (e *RollEvent) Targets() []Token {
	u, ok := e.User(e.UserID)
	if !ok {
		return nil
	}
	return u.Targets
}

// SpeakingActor returns the message actor, falling back to the token's actor.
func (e *RollEvent) SpeakingActor() *Actor {
	if e.Actor != nil {
		return e.Actor
	}
	if e.Token != nil {
		return e.Token.Actor
	}
	return nil
}

// SpeakerName prefers the token name over the actor name.
func (e *RollEvent) SpeakerName() string {
	if e.Token != nil && e.Token.Name != "" {
		return e.Token.Name
	}
	if a := e.SpeakingActor(); a != nil {
		return a.Name
	}
	return ""
}

// OriginItemID extracts the item id from an origin uuid such as
// "Actor.abc.Item.xxPF2ExUNARMEDxx".
func (e *RollEvent) OriginItemID() (string, bool) {
	m := originItemPattern.FindStringSubmatch(e.OriginUUID)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ActingItem returns the rolled item. A roll without an item whose origin is
// the unarmed strike resolves to the actor's matching strike.
func (e *RollEvent) ActingItem() (*Item, bool) {
	if e.Item != nil {
		return e.Item, true
	}
	if e.IsDamageRoll {
		return nil, false
	}
	id, ok := e.OriginItemID()
	if !ok || id != UnarmedItemID {
		return nil, false
	}
	it, ok := e.SpeakingActor().Strike(id)
	if !ok {
		return nil, false
	}
	return &it, true
}

// IsSpell reports whether it is a spell item.
func (it *Item) IsSpell() bool {
	return it != nil && it.Type == ItemTypeSpell
}
