package view

import (
	"context"

	"github.com/roach88/lattice/internal/graph"
	"github.com/roach88/lattice/internal/template"
)

// Context identifies the entity a view renders around.
type Context struct {
	// EntityURL is the canonical URL of the context entity.
	EntityURL string

	// Filters optionally restricts a component's entities by field
	// equality: component name -> field -> required value.
	Filters map[string]map[string]any
}

// RenderResult is a rendered document plus the entity sets behind it.
// Sync rebuilds its "before" state from these sets, so callers that
// intend to sync later must render through the same manager.
type RenderResult struct {
	// Markdown is the final document text.
	Markdown string

	// Entities maps component name to the entity items actually
	// rendered, post-filtering.
	Entities map[string][]graph.Item
}

// Render materializes a view around a context entity.
//
// Fails with NotFound if the view or the context entity is absent. Each
// component is resolved to a predicate and direction, traversed,
// filtered, rendered and substituted; scalar expressions resolve
// against the context entity last, so expressions inside component
// bodies are already gone by then.
func (m *Manager) Render(ctx context.Context, viewID string, vctx Context) (*RenderResult, error) {
	v, err := m.GetView(ctx, viewID)
	if err != nil {
		return nil, err
	}

	entity, err := m.store.Get(ctx, vctx.EntityURL)
	if err != nil {
		return nil, err
	}

	out := v.Template
	entities := make(map[string][]graph.Item, len(v.Components))

	for _, comp := range v.Components {
		rel := m.relation(entity.Key.Type, comp)

		things, err := m.store.Related(ctx, entity.URL, rel.Predicate, traversalDirection(rel.Direction))
		if err != nil {
			return nil, err
		}

		items := make([]graph.Item, 0, len(things))
		for _, t := range things {
			items = append(items, graph.ItemFromThing(t))
		}
		items = applyFilters(items, vctx.Filters[comp.Name])

		entities[comp.Name] = items
		out = template.ReplaceComponent(out, comp.Name, template.Render(comp, items))

		m.logger.Debug("component rendered",
			"view", v.ID,
			"component", comp.Name,
			"predicate", rel.Predicate,
			"direction", string(rel.Direction),
			"entities", len(items))
	}

	out = template.ReplaceExpressions(out, graph.ItemFromThing(entity))

	return &RenderResult{Markdown: out, Entities: entities}, nil
}

// applyFilters keeps only items whose fields equal every filter value.
func applyFilters(items []graph.Item, filters map[string]any) []graph.Item {
	if len(filters) == 0 {
		return items
	}
	kept := items[:0:0]
	for _, item := range items {
		match := true
		for field, want := range filters {
			if !graph.CanonicalEqual(item[field], want) {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, item)
		}
	}
	return kept
}
