package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/lattice/internal/graph"
	"github.com/roach88/lattice/internal/store"
	"github.com/roach88/lattice/internal/testutil"
	"github.com/roach88/lattice/internal/view"
)

const defaultNamespace = "test"

// Result is the outcome of running a scenario.
type Result struct {
	// Markdown is the baseline rendering.
	Markdown string

	// Edited is the document handed to sync, after edits.
	Edited string

	// Sync is the raw sync result.
	Sync *view.SyncResult

	// Final is the re-rendered markdown after commit. Empty unless
	// the scenario sets commit: true.
	Final string

	// Pass reports whether all expectations held.
	Pass bool

	// Errors lists each failed expectation.
	Errors []string
}

// Run executes a scenario against a fresh in-memory database.
func Run(scenario *Scenario) (*Result, error) {
	db, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ns := scenario.Namespace
	if ns == "" {
		ns = defaultNamespace
	}

	gs := store.NewGraphStore(db,
		store.WithClock(testutil.NewDeterministicClock()),
		store.WithIDGenerator(testutil.SequentialIDs("gen")),
	)
	mgr := view.NewManager(gs, ns,
		view.WithIDGenerator(testutil.SequentialIDs("new")),
		view.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	ctx := context.Background()
	if err := seed(ctx, gs, ns, scenario); err != nil {
		return nil, err
	}

	vctx := view.Context{
		EntityURL: resolveRef(gs, ns, scenario.Render.Entity),
		Filters:   scenario.Render.Filters,
	}
	rendered, err := mgr.Render(ctx, scenario.Render.View, vctx)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	result := &Result{Markdown: rendered.Markdown}

	result.Edited = rendered.Markdown
	for i, edit := range scenario.Edits {
		if !strings.Contains(result.Edited, edit.Old) {
			return nil, fmt.Errorf("edits[%d]: text %q not found in rendered markdown", i, edit.Old)
		}
		result.Edited = strings.Replace(result.Edited, edit.Old, edit.New, 1)
	}

	result.Sync, err = mgr.Sync(ctx, scenario.Render.View, vctx, result.Edited)
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}

	if scenario.Commit {
		if err := mgr.CreateEntities(ctx, result.Sync.Namespace, result.Sync.Created); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		if err := mgr.ApplyMutations(ctx, result.Sync.Mutations); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		final, err := mgr.Render(ctx, scenario.Render.View, vctx)
		if err != nil {
			return nil, fmt.Errorf("re-render after commit: %w", err)
		}
		result.Final = final.Markdown
	}

	evaluate(gs, ns, scenario, result)
	return result, nil
}

func seed(ctx context.Context, gs *store.GraphStore, ns string, scenario *Scenario) error {
	for _, v := range scenario.Views {
		data := graph.Payload{"template": v.Template}
		if v.EntityType != "" {
			data["entityType"] = v.EntityType
		}
		if _, err := gs.Create(ctx, ns, view.DefaultViewType, v.ID, data); err != nil {
			return fmt.Errorf("seed view %q: %w", v.ID, err)
		}
	}
	for _, thing := range scenario.Things {
		if _, err := gs.Create(ctx, ns, thing.Type, thing.ID, graph.Payload(thing.Data)); err != nil {
			return fmt.Errorf("seed thing %s/%s: %w", thing.Type, thing.ID, err)
		}
	}
	for _, e := range scenario.Edges {
		from := resolveRef(gs, ns, e.From)
		to := resolveRef(gs, ns, e.To)
		if _, err := gs.Relate(ctx, from, e.Predicate, to, nil); err != nil {
			return fmt.Errorf("seed edge %s -[%s]-> %s: %w", e.From, e.Predicate, e.To, err)
		}
	}
	return nil
}

// resolveRef turns a short "Type/id" reference into a URL in ns. Full
// URLs pass through unchanged.
func resolveRef(gs *store.GraphStore, ns, ref string) string {
	if strings.Contains(ref, "://") {
		return ref
	}
	typ, id, ok := strings.Cut(ref, "/")
	if !ok {
		return ref
	}
	return gs.URL(ns, typ, id)
}

func evaluate(gs *store.GraphStore, ns string, scenario *Scenario, result *Result) {
	fail := func(format string, args ...any) {
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	want := scenario.Expect
	got := result.Sync

	if len(got.Mutations) != len(want.Mutations) {
		fail("mutations: got %d, want %d", len(got.Mutations), len(want.Mutations))
	} else {
		for i, em := range want.Mutations {
			m := got.Mutations[i]
			if string(m.Type) != em.Type {
				fail("mutations[%d]: type = %q, want %q", i, m.Type, em.Type)
			}
			if m.Predicate != em.Predicate {
				fail("mutations[%d]: predicate = %q, want %q", i, m.Predicate, em.Predicate)
			}
			if em.From != "" && m.From != resolveRef(gs, ns, em.From) {
				fail("mutations[%d]: from = %q, want %q", i, m.From, resolveRef(gs, ns, em.From))
			}
			if em.To != "" && m.To != resolveRef(gs, ns, em.To) {
				fail("mutations[%d]: to = %q, want %q", i, m.To, resolveRef(gs, ns, em.To))
			}
		}
	}

	checkItems(fail, "created", got.Created, want.Created)
	checkItems(fail, "updated", got.Updated, want.Updated)

	result.Pass = len(result.Errors) == 0
}

func checkItems(fail func(string, ...any), label string, got []graph.Item, want []string) {
	if len(got) != len(want) {
		fail("%s: got %d entities, want %d", label, len(got), len(want))
		return
	}
	for i, ref := range want {
		gotRef := got[i].EntityType() + "/" + got[i].ID()
		if gotRef != ref {
			fail("%s[%d]: got %s, want %s", label, i, gotRef, ref)
		}
	}
}
