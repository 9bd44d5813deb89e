package vtt

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/pf2-flat-check/internal/game/grid"
)

// yamlSceneFile is the top-level YAML structure for scene files.
type yamlSceneFile struct {
	Scene yamlScene `yaml:"scene"`
}

type yamlScene struct {
	Name   string      `yaml:"name"`
	Grid   yamlGrid    `yaml:"grid"`
	Events []RollEvent `yaml:"events"`
}

type yamlGrid struct {
	Size     float64 `yaml:"size"`
	Distance int     `yaml:"distance"`
}

// Scene is a recorded table state: the grid and the roll events posted on it.
type Scene struct {
	Name   string
	Grid   grid.Grid
	Events []RollEvent
}

// LoadSceneFromFile reads and validates a scene YAML file.
//
// Precondition: path must point to a readable YAML scene file.
// Postcondition: Returns a validated Scene or a non-nil error.
func LoadSceneFromFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file %s: %w", path, err)
	}
	return LoadSceneFromBytes(data)
}

// LoadSceneFromBytes parses and validates a scene from YAML bytes. Unknown
// fields are rejected. A missing grid falls back to grid.Default.
//
// Postcondition: Returns a validated Scene or a non-nil error.
func LoadSceneFromBytes(data []byte) (*Scene, error) {
	var file yamlSceneFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing scene YAML: %w", err)
	}

	g := grid.Default()
	if file.Scene.Grid.Size != 0 {
		g.Size = file.Scene.Grid.Size
	}
	if file.Scene.Grid.Distance != 0 {
		g.Distance = file.Scene.Grid.Distance
	}
	if g.Size < 0 || g.Distance < 0 {
		return nil, fmt.Errorf("validating scene: grid size and distance must be positive")
	}
	for i, ev := range file.Scene.Events {
		if ev.UserID == "" {
			return nil, fmt.Errorf("validating scene: event %d has no user_id", i)
		}
	}
	return &Scene{Name: file.Scene.Name, Grid: g, Events: file.Scene.Events}, nil
}
