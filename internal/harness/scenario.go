package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one render/sync conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Namespace for all seeded entities. Defaults to "test".
	Namespace string `yaml:"namespace,omitempty"`

	// Views to seed before rendering.
	Views []ViewSeed `yaml:"views"`

	// Things to seed. Seeding order is creation order.
	Things []ThingSeed `yaml:"things,omitempty"`

	// Edges to seed between things. Seeding order is edge order.
	Edges []EdgeSeed `yaml:"edges,omitempty"`

	// Render names the view and context entity to render.
	Render RenderStep `yaml:"render"`

	// Edits are applied to the rendered markdown, in order, to
	// produce the document handed to sync. No edits means the
	// unmodified rendering is synced.
	Edits []Edit `yaml:"edits,omitempty"`

	// Commit applies the sync result back to storage and re-renders.
	Commit bool `yaml:"commit,omitempty"`

	// Expect validates the sync result.
	Expect Expectation `yaml:"expect,omitempty"`
}

// ViewSeed is a view document to create before rendering.
type ViewSeed struct {
	ID         string `yaml:"id"`
	EntityType string `yaml:"entityType,omitempty"`
	Template   string `yaml:"template"`
}

// ThingSeed is an entity to create.
type ThingSeed struct {
	Type string         `yaml:"type"`
	ID   string         `yaml:"id"`
	Data map[string]any `yaml:"data,omitempty"`
}

// EdgeSeed is a relationship to create. From and To use the short
// "Type/id" reference form.
type EdgeSeed struct {
	From      string `yaml:"from"`
	Predicate string `yaml:"predicate"`
	To        string `yaml:"to"`
}

// RenderStep names what to render.
type RenderStep struct {
	View   string `yaml:"view"`
	Entity string `yaml:"entity"`

	// Filters restrict components to entities with matching field
	// values, keyed by component name.
	Filters map[string]map[string]any `yaml:"filters,omitempty"`
}

// Edit is a literal string replacement on the rendered markdown.
type Edit struct {
	Old string `yaml:"old"`
	New string `yaml:"new"`
}

// Expectation validates the sync outcome. All matches are exact on the
// fields given; lists must match in full (length and order).
type Expectation struct {
	// Mutations expected from the sync, in order.
	Mutations []ExpectedMutation `yaml:"mutations,omitempty"`

	// Created are "Type/id" references of entities the sync should
	// discover.
	Created []string `yaml:"created,omitempty"`

	// Updated are "Type/id" references of entities the sync should
	// mark for update.
	Updated []string `yaml:"updated,omitempty"`
}

// ExpectedMutation matches one sync mutation. From and To use the
// short reference form.
type ExpectedMutation struct {
	Type      string `yaml:"type"`
	Predicate string `yaml:"predicate"`
	From      string `yaml:"from"`
	To        string `yaml:"to"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected, so typos fail loudly instead of silently validating
// nothing.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Views) == 0 {
		return fmt.Errorf("views list is required and must be non-empty")
	}
	for i, v := range s.Views {
		if v.ID == "" {
			return fmt.Errorf("views[%d]: id is required", i)
		}
		if v.Template == "" {
			return fmt.Errorf("views[%d]: template is required", i)
		}
	}
	for i, thing := range s.Things {
		if thing.Type == "" || thing.ID == "" {
			return fmt.Errorf("things[%d]: type and id are required", i)
		}
	}
	for i, e := range s.Edges {
		if e.From == "" || e.Predicate == "" || e.To == "" {
			return fmt.Errorf("edges[%d]: from, predicate, and to are required", i)
		}
	}
	if s.Render.View == "" {
		return fmt.Errorf("render.view is required")
	}
	if s.Render.Entity == "" {
		return fmt.Errorf("render.entity is required")
	}
	for i, e := range s.Edits {
		if e.Old == "" {
			return fmt.Errorf("edits[%d]: old is required", i)
		}
	}
	for i, m := range s.Expect.Mutations {
		switch m.Type {
		case "add", "remove", "update":
		default:
			return fmt.Errorf("expect.mutations[%d]: unknown type %q", i, m.Type)
		}
		if m.Predicate == "" {
			return fmt.Errorf("expect.mutations[%d]: predicate is required", i)
		}
	}
	return nil
}
