package view

import (
	"context"
	"fmt"

	"github.com/roach88/lattice/internal/graph"
)

// MutationType classifies a relationship mutation.
type MutationType string

const (
	MutationAdd    MutationType = "add"
	MutationRemove MutationType = "remove"
	MutationUpdate MutationType = "update"
)

// Mutation is the unit of change produced by Sync and consumed by
// ApplyMutations.
type Mutation struct {
	Type      MutationType
	Predicate string
	From      string
	To        string

	// Target is the URL of the non-context entity the mutation is
	// about; for update mutations this is the entity whose payload
	// changes.
	Target string

	// Data is the new payload (add: edge payload context, update: the
	// entity patch).
	Data graph.Payload

	// PreviousData is the prior payload (remove, update).
	PreviousData graph.Payload
}

// ApplyMutations executes mutations against the graph store, in order.
// There is no batching or rollback: a failure partway through leaves
// the earlier mutations applied, and the error reports how many
// succeeded so the caller can recover.
func (m *Manager) ApplyMutations(ctx context.Context, muts []Mutation) error {
	for i, mut := range muts {
		var err error
		switch mut.Type {
		case MutationAdd:
			_, err = m.store.Relate(ctx, mut.From, mut.Predicate, mut.To, nil)
		case MutationRemove:
			_, err = m.store.Unrelate(ctx, mut.From, mut.Predicate, mut.To)
		case MutationUpdate:
			_, err = m.store.Update(ctx, mut.Target, mut.Data)
		default:
			err = fmt.Errorf("unknown mutation type %q", mut.Type)
		}
		if err != nil {
			return fmt.Errorf("mutation %d/%d (%s %s): %w", i+1, len(muts), mut.Type, mut.Target, err)
		}
		m.logger.Info("mutation applied",
			"type", string(mut.Type),
			"predicate", mut.Predicate,
			"from", mut.From,
			"to", mut.To)
	}
	return nil
}

// CreateEntities persists entities discovered during sync, in the
// namespace the sync ran against (SyncResult.Namespace). Entities that
// already exist are left alone, so re-committing a sync result is
// harmless.
func (m *Manager) CreateEntities(ctx context.Context, ns string, items []graph.Item) error {
	for _, item := range items {
		_, err := m.store.Create(ctx, ns, item.EntityType(), item.ID(), item.Payload())
		if graph.IsAlreadyExists(err) {
			m.logger.Debug("entity already exists, skipping", "id", item.ID(), "type", item.EntityType())
			continue
		}
		if err != nil {
			return fmt.Errorf("create entity %s/%s: %w", item.EntityType(), item.ID(), err)
		}
	}
	return nil
}
