// Package diffkit computes set differences between two materializations
// of the same entity collection: one from storage, one freshly extracted
// from an edited document.
//
// The diff is keyed purely by entity id. Field equality uses canonical
// JSON so that a value that survived a render/extract round trip (and
// may have changed Go type on the way, int64 to json.Number) still
// compares equal to its stored counterpart.
package diffkit

import (
	"github.com/roach88/lattice/internal/graph"
)

// ChangeType classifies a single entity change.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeRemove ChangeType = "remove"
	ChangeUpdate ChangeType = "update"
)

// Change is one per-entity difference between before and after.
type Change struct {
	Type ChangeType
	// ID is the entity id the change applies to.
	ID string
	// Data is the after-state payload (add and update).
	Data graph.Item
	// PreviousData is the before-state payload (remove and update).
	PreviousData graph.Item
}

// Diff compares two entity sets by id.
//
//   - present only in after: add
//   - present only in before: remove
//   - present in both with different payload fields: update
//   - present in both with identical payload fields: omitted
//
// Equality is field-by-field on the payload, excluding the id/type
// envelope. Order of the result follows after for adds/updates, then
// before for removes.
func Diff(before, after []graph.Item) []Change {
	beforeByID := indexByID(before)
	afterByID := indexByID(after)

	var changes []Change
	for _, item := range after {
		id := item.ID()
		prev, existed := beforeByID[id]
		if !existed {
			changes = append(changes, Change{Type: ChangeAdd, ID: id, Data: item})
			continue
		}
		if !payloadEqual(prev, item) {
			changes = append(changes, Change{Type: ChangeUpdate, ID: id, Data: item, PreviousData: prev})
		}
	}
	for _, item := range before {
		if _, kept := afterByID[item.ID()]; !kept {
			changes = append(changes, Change{Type: ChangeRemove, ID: item.ID(), PreviousData: item})
		}
	}
	return changes
}

func indexByID(items []graph.Item) map[string]graph.Item {
	byID := make(map[string]graph.Item, len(items))
	for _, item := range items {
		byID[item.ID()] = item
	}
	return byID
}

// payloadEqual compares payload fields, envelope excluded. Only fields
// present on the after side participate: an extracted row carries just
// the rendered columns, and a column that was never rendered must not
// read as "this field was removed". A field new to the after side
// counts as a change only when its value is non-empty, because a
// rendered empty cell for a missing field extracts back as "".
func payloadEqual(before, after graph.Item) bool {
	for _, key := range after.Fields() {
		bv, existed := before[key]
		if !existed {
			if !isEmptyValue(after[key]) {
				return false
			}
			continue
		}
		if !graph.CanonicalEqual(bv, after[key]) {
			return false
		}
	}
	return true
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
