package view

import (
	"context"
	"strings"

	"github.com/roach88/lattice/internal/diffkit"
	"github.com/roach88/lattice/internal/graph"
	"github.com/roach88/lattice/internal/infer"
	"github.com/roach88/lattice/internal/template"
)

// SyncResult is the outcome of diffing an edited document against the
// rendered baseline. Nothing has been written yet: the caller commits
// with ApplyMutations and CreateEntities.
type SyncResult struct {
	// Namespace is the context entity's namespace; mutation targets
	// and created entities live there.
	Namespace string

	// Mutations are the relationship changes implied by the edit.
	Mutations []Mutation

	// Created are entities referenced by the edit that do not yet
	// exist in storage.
	Created []graph.Item

	// Updated are existing entities whose payload fields were edited.
	Updated []graph.Item
}

// Sync ingests an edited rendering of a view and produces the graph
// mutations that reconcile storage with the edit.
//
// The baseline is re-rendered to recover per-component "before" state,
// the edited markdown is re-parsed into per-section entity items, and
// each component is diffed independently. A component that cannot be
// found in the edited document is skipped, not an error: the edit
// simply says nothing about it.
func (m *Manager) Sync(ctx context.Context, viewID string, vctx Context, editedMarkdown string) (*SyncResult, error) {
	baseline, err := m.Render(ctx, viewID, vctx)
	if err != nil {
		return nil, err
	}
	v, err := m.GetView(ctx, viewID)
	if err != nil {
		return nil, err
	}
	key, err := graph.ParseURL(vctx.EntityURL)
	if err != nil {
		return nil, err
	}

	extracted := template.ExtractSections(editedMarkdown)
	result := &SyncResult{Namespace: key.NS}

	for _, comp := range v.Components {
		before := baseline.Entities[comp.Name]

		after, ok := lookupSection(extracted, comp.Name)
		if !ok && len(v.Components) == 1 {
			// A single-component document is unambiguous without a
			// heading: unheaded tables and lists belong to it.
			after, ok = extracted[""]
		}
		if !ok {
			m.logger.Warn("component not found in edited document, skipping",
				"view", v.ID,
				"component", comp.Name)
			continue
		}

		resolved, discovered := m.resolveExtracted(ctx, key.NS, before, after, comp)
		rel := m.relation(key.Type, comp)

		for _, change := range diffkit.Diff(before, resolved) {
			target := m.store.URL(key.NS, comp.EntityType, change.ID)
			from, to := vctx.EntityURL, target
			if rel.Direction == infer.Reverse {
				from, to = target, vctx.EntityURL
			}

			switch change.Type {
			case diffkit.ChangeAdd:
				result.Mutations = append(result.Mutations, Mutation{
					Type: MutationAdd, Predicate: rel.Predicate,
					From: from, To: to, Target: target,
					Data: change.Data.Payload(),
				})
				if discovered[change.ID] {
					result.Created = append(result.Created, change.Data)
				}
			case diffkit.ChangeRemove:
				result.Mutations = append(result.Mutations, Mutation{
					Type: MutationRemove, Predicate: rel.Predicate,
					From: from, To: to, Target: target,
					PreviousData: change.PreviousData.Payload(),
				})
			case diffkit.ChangeUpdate:
				result.Mutations = append(result.Mutations, Mutation{
					Type: MutationUpdate, Predicate: rel.Predicate,
					From: from, To: to, Target: target,
					Data:         change.Data.Payload(),
					PreviousData: change.PreviousData.Payload(),
				})
				result.Updated = append(result.Updated, change.Data)
			}
		}
	}
	return result, nil
}

// lookupSection finds a component's entities among the extracted
// sections, trying fallback forms of the name in order: exact,
// case-insensitive, singular, case-insensitive singular.
func lookupSection(sections map[string][]graph.Item, name string) ([]graph.Item, bool) {
	if items, ok := sections[name]; ok {
		return items, true
	}
	forms := []string{strings.ToLower(name), infer.Singularize(name), strings.ToLower(infer.Singularize(name))}
	for _, form := range forms {
		for key, items := range sections {
			if key == form || strings.ToLower(key) == form {
				return items, true
			}
		}
	}
	return nil, false
}

// resolveExtracted assigns identities to extracted rows so the diff can
// key them. In order:
//
//  1. an explicit id column on the row wins
//  2. a before-row whose rendered fields all match is the same entity
//  3. a before-row matching on the component's first column (its
//     display key) is the same entity with edited fields
//  4. anything left is a newly-discovered entity with a generated id
//
// Each before-row is claimed at most once. The returned set marks which
// ids were generated or reference entities missing from storage, i.e.
// which rows need a create.
func (m *Manager) resolveExtracted(ctx context.Context, ns string, before, after []graph.Item, comp template.Component) ([]graph.Item, map[string]bool) {
	claimed := make(map[string]bool, len(before))
	discovered := make(map[string]bool)

	matchKey := "name"
	if len(comp.Columns) > 0 {
		matchKey = comp.Columns[0]
	}

	resolved := make([]graph.Item, 0, len(after))
	for _, row := range after {
		item := make(graph.Item, len(row)+2)
		for k, v := range row {
			item[k] = v
		}

		switch {
		case item.ID() != "":
			// Explicit id; verify existence so brand-new rows written
			// with a chosen id still get created.
			if !m.entityExists(ctx, ns, comp.EntityType, item.ID()) {
				discovered[item.ID()] = true
			}
		case claimMatch(before, claimed, func(b graph.Item) bool { return fieldsMatch(b, row) }, item):
			// Exact content match against an unclaimed before-row.
		case claimMatch(before, claimed, func(b graph.Item) bool {
			return graph.CanonicalEqual(b[matchKey], row[matchKey]) && row[matchKey] != nil
		}, item):
			// Display-key match: same entity, edited fields.
		default:
			item[graph.ItemFieldID] = m.newID()
			discovered[item.ID()] = true
		}

		if item.EntityType() == "" {
			item[graph.ItemFieldType] = comp.EntityType
		}
		resolved = append(resolved, item)
	}
	return resolved, discovered
}

// claimMatch finds the first unclaimed before-row satisfying pred,
// copies its identity onto item, and claims it.
func claimMatch(before []graph.Item, claimed map[string]bool, pred func(graph.Item) bool, item graph.Item) bool {
	for _, b := range before {
		if claimed[b.ID()] || !pred(b) {
			continue
		}
		claimed[b.ID()] = true
		item[graph.ItemFieldID] = b.ID()
		if b.EntityType() != "" {
			item[graph.ItemFieldType] = b.EntityType()
		}
		return true
	}
	return false
}

// fieldsMatch reports whether every payload field on row equals the
// corresponding field on b.
func fieldsMatch(b, row graph.Item) bool {
	for _, k := range row.Fields() {
		if !graph.CanonicalEqual(b[k], row[k]) {
			return false
		}
	}
	return true
}

func (m *Manager) entityExists(ctx context.Context, ns, entityType, id string) bool {
	_, err := m.store.Get(ctx, m.store.URL(ns, entityType, id))
	return err == nil
}
