package condition

import (
	"fmt"
	"sort"
)

// Marker is one condition currently active on a combatant.
type Marker struct {
	Def   *ConditionDef
	Value int // 0 for unvalued conditions
}

// Name returns the marker's display name.
func (m Marker) Name() string {
	return m.Def.Name
}

// ActiveSet tracks all condition markers on one combatant, keyed by display name.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	markers map[string]*Marker
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{markers: make(map[string]*Marker)}
}

// Apply adds or updates a condition marker.
// Valued conditions keep the higher of the existing and new value, capped at
// MaxValue. Unvalued conditions always store 0.
//
// Precondition: def must not be nil.
// Postcondition: Has(def.Name) is true.
func (s *ActiveSet) Apply(def *ConditionDef, value int) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if value < 0 {
		return fmt.Errorf("Apply %s: value must be >= 0, got %d", def.Name, value)
	}

	v := value
	if !def.Valued() {
		v = 0
	} else if v > def.MaxValue {
		v = def.MaxValue
	}

	if existing, ok := s.markers[def.Name]; ok {
		if v > existing.Value {
			existing.Value = v
		}
		return nil
	}
	s.markers[def.Name] = &Marker{Def: def, Value: v}
	return nil
}

// Remove deletes the marker with the given name. Removing an absent marker is a no-op.
//
// Postcondition: Has(name) is false.
func (s *ActiveSet) Remove(name string) {
	delete(s.markers, name)
}

// Has reports whether a marker named name is active. A nil set has nothing.
func (s *ActiveSet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.markers[name]
	return ok
}

// Value returns the marker's value, or 0 if not present.
func (s *ActiveSet) Value(name string) int {
	if s == nil {
		return 0
	}
	if m, ok := s.markers[name]; ok {
		return m.Value
	}
	return 0
}

// Names returns the active marker names in lexicographic order.
func (s *ActiveSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.markers))
	for name := range s.markers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// All returns copies of the active markers ordered by name.
func (s *ActiveSet) All() []Marker {
	if s == nil {
		return nil
	}
	out := make([]Marker, 0, len(s.markers))
	for _, name := range s.Names() {
		out = append(out, *s.markers[name])
	}
	return out
}

// Len returns the number of active markers.
func (s *ActiveSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.markers)
}
