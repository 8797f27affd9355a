// Package view renders graph entities into templated markdown documents
// and synchronizes edited documents back into graph mutations.
//
// A view is a Thing (type "view" by default) whose payload carries the
// template text. Rendering resolves each embedded collection tag to a
// set of related entities via relationship inference and graph
// traversal, substitutes the rendered collections and scalar
// expressions into the template, and returns both the markdown and the
// exact entity sets used. Sync re-renders that baseline, extracts the
// edited document's collections, diffs the two per component, and
// returns the graph mutations needed to reconcile them. Applying the
// mutations is a separate, explicit step.
//
// Concurrency: renders and syncs for different views are independent.
// Syncs for the same view and context are NOT coordinated; two
// concurrent syncs can both read the same baseline and produce
// overlapping mutations, and the later ApplyMutations call wins.
package view

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/lattice/internal/graph"
	"github.com/roach88/lattice/internal/infer"
	"github.com/roach88/lattice/internal/store"
	"github.com/roach88/lattice/internal/template"
)

// DefaultViewType is the Thing type view documents are stored under.
const DefaultViewType = "view"

// View is a loaded, parsed view document.
type View struct {
	// ID is the view's Thing id.
	ID string
	// EntityType is the entity type this view is associated with, if
	// the document declares one.
	EntityType string
	// Template is the raw template text.
	Template string
	// Components are the embedded collection tags found in Template.
	Components []template.Component
}

// Manager owns view loading, rendering and synchronization.
//
// Loaded views are cached in memory for the lifetime of the Manager;
// there is no invalidation, so correctness under concurrent template
// edits is not guaranteed.
type Manager struct {
	store    *store.GraphStore
	ns       string
	viewType string
	resolver infer.Resolver
	logger   *slog.Logger
	newID    func() string

	mu    sync.RWMutex
	cache map[string]*View
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithResolver replaces the default relationship-inference heuristic.
func WithResolver(r infer.Resolver) ManagerOption {
	return func(m *Manager) { m.resolver = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithViewType overrides the Thing type view documents are stored under.
func WithViewType(t string) ManagerOption {
	return func(m *Manager) { m.viewType = t }
}

// WithIDGenerator overrides the id generator for entities discovered
// during sync. Defaults to random UUIDs.
func WithIDGenerator(f func() string) ManagerOption {
	return func(m *Manager) { m.newID = f }
}

// NewManager creates a Manager over a graph store. ns is the namespace
// views and discovered entities live in.
func NewManager(gs *store.GraphStore, ns string, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    gs,
		ns:       ns,
		viewType: DefaultViewType,
		resolver: infer.Default(),
		logger:   slog.Default(),
		newID:    uuid.NewString,
		cache:    make(map[string]*View),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetView loads a view by id: cache first, then storage, then a retry
// with surrounding brackets stripped so "[Posts]"-style identifiers
// used as literal placeholders resolve to the "Posts" view. The view's
// template is parsed into components on load.
func (m *Manager) GetView(ctx context.Context, id string) (*View, error) {
	m.mu.RLock()
	cached, ok := m.cache[id]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	thing, err := m.store.Get(ctx, m.store.URL(m.ns, m.viewType, id))
	if graph.IsNotFound(err) {
		if stripped := strings.Trim(id, "[]"); stripped != id {
			thing, err = m.store.Get(ctx, m.store.URL(m.ns, m.viewType, stripped))
		}
	}
	if err != nil {
		return nil, err
	}

	v := parseView(thing)
	m.mu.Lock()
	m.cache[id] = v
	m.mu.Unlock()

	m.logger.Debug("view loaded",
		"view", v.ID,
		"components", len(v.Components))
	return v, nil
}

// Views lists all view documents in the manager's namespace.
func (m *Manager) Views(ctx context.Context) ([]*View, error) {
	things, err := m.store.ThingsByType(ctx, m.ns, m.viewType)
	if err != nil {
		return nil, err
	}
	views := make([]*View, 0, len(things))
	for _, t := range things {
		views = append(views, parseView(t))
	}
	return views, nil
}

func parseView(thing *graph.Thing) *View {
	tmpl, _ := thing.Data["template"].(string)
	entityType, _ := thing.Data["entityType"].(string)
	return &View{
		ID:         thing.Key.ID,
		EntityType: entityType,
		Template:   tmpl,
		Components: template.ParseComponents(tmpl),
	}
}

// relation resolves a component's predicate and direction: inference
// over (parent type, component name), with the component's explicit
// predicate overriding the inferred one. Direction always comes from
// inference; an explicit predicate renames the edge, it does not flip
// it.
func (m *Manager) relation(parentType string, c template.Component) infer.Relation {
	rel := m.resolver.Infer(parentType, c.Name)
	if c.Predicate != "" {
		rel.Predicate = c.Predicate
	}
	return rel
}

// traversalDirection maps an inference direction onto an edge
// traversal anchored at the parent: forward edges leave the parent,
// reverse edges arrive at it.
func traversalDirection(d infer.Direction) graph.Direction {
	if d == infer.Reverse {
		return graph.Inbound
	}
	return graph.Outbound
}
