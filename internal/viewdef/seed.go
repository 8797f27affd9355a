package viewdef

import (
	"context"
	"fmt"

	"github.com/roach88/lattice/internal/graph"
	"github.com/roach88/lattice/internal/store"
	"github.com/roach88/lattice/internal/view"
)

// SeedViews upserts compiled definitions as view documents in ns.
// Seeding is idempotent: an existing view with the same id gets a new
// version carrying the definition's template.
func SeedViews(ctx context.Context, gs *store.GraphStore, ns string, defs []Definition) error {
	for _, def := range defs {
		data := graph.Payload{"template": def.Template}
		if def.EntityType != "" {
			data["entityType"] = def.EntityType
		}
		if _, err := gs.Upsert(ctx, ns, view.DefaultViewType, def.ID, data); err != nil {
			return fmt.Errorf("seed view %q: %w", def.ID, err)
		}
	}
	return nil
}

// SeedFile compiles a definition file and seeds its views.
func SeedFile(ctx context.Context, gs *store.GraphStore, ns, path string) error {
	defs, err := CompileFile(path)
	if err != nil {
		return err
	}
	return SeedViews(ctx, gs, ns, defs)
}
