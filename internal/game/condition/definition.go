package condition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConditionDef is the static definition of a condition, loaded from YAML.
type ConditionDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	MaxValue    int    `yaml:"max_value"` // 0 = unvalued (e.g. Blinded); >0 = valued (e.g. Stupefied 1-4)
	Side        string `yaml:"side"`      // "attacker" | "target" | "" (informational)
}

// Valued reports whether the condition carries a numeric value.
func (d *ConditionDef) Valued() bool {
	return d.MaxValue > 0
}

// Registry holds all known ConditionDefs keyed by ID and by display name.
type Registry struct {
	defs   map[string]*ConditionDef
	byName map[string]*ConditionDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:   make(map[string]*ConditionDef),
		byName: make(map[string]*ConditionDef),
	}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *ConditionDef) {
	if old, ok := r.defs[def.ID]; ok {
		delete(r.byName, old.Name)
	}
	r.defs[def.ID] = def
	r.byName[def.Name] = def
}

// Get returns the ConditionDef for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*ConditionDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// ByName returns the ConditionDef whose display name is name.
func (r *Registry) ByName(name string) (*ConditionDef, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Lookup returns the registered definition for name, or an unvalued ad-hoc
// definition when the host reports a condition this registry does not know.
//
// Postcondition: Returns a non-nil ConditionDef whose Name is name.
func (r *Registry) Lookup(name string) *ConditionDef {
	if d, ok := r.byName[name]; ok {
		return d
	}
	return &ConditionDef{ID: Slug(name), Name: name}
}

// All returns a snapshot slice of all registered ConditionDefs ordered by ID.
func (r *Registry) All() []*ConditionDef {
	out := make([]*ConditionDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Slug converts a display name to the host's item slug form ("Off-Guard" -> "off-guard").
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// LoadDirectory reads every *.yaml file in dir, parses each as a ConditionDef,
// and returns a populated Registry.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def ConditionDef
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if def.ID == "" || def.Name == "" {
			return nil, fmt.Errorf("parsing %q: id and name are required", path)
		}
		reg.Register(&def)
	}
	return reg, nil
}
