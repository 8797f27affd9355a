package diffkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lattice/internal/graph"
)

func items(vals ...graph.Item) []graph.Item { return vals }

func TestDiff_IdenticalSetsAreEmpty(t *testing.T) {
	x := items(
		graph.Item{"id": "a", "type": "Tag", "name": "foo"},
		graph.Item{"id": "b", "type": "Tag", "name": "bar"},
	)
	assert.Empty(t, Diff(x, x))
}

func TestDiff_EmptyBeforeIsAllAdds(t *testing.T) {
	after := items(graph.Item{"id": "a", "name": "foo"}, graph.Item{"id": "b", "name": "bar"})
	changes := Diff(nil, after)
	require.Len(t, changes, 2)
	for _, c := range changes {
		assert.Equal(t, ChangeAdd, c.Type)
	}
}

func TestDiff_EmptyAfterIsAllRemoves(t *testing.T) {
	before := items(graph.Item{"id": "a", "name": "foo"}, graph.Item{"id": "b", "name": "bar"})
	changes := Diff(before, nil)
	require.Len(t, changes, 2)
	for _, c := range changes {
		assert.Equal(t, ChangeRemove, c.Type)
		assert.NotNil(t, c.PreviousData)
	}
}

func TestDiff_UpdateOnFieldChange(t *testing.T) {
	before := items(graph.Item{"id": "a", "name": "foo"})
	after := items(graph.Item{"id": "a", "name": "renamed"})

	changes := Diff(before, after)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeUpdate, changes[0].Type)
	assert.Equal(t, "a", changes[0].ID)
	assert.Equal(t, "renamed", changes[0].Data["name"])
	assert.Equal(t, "foo", changes[0].PreviousData["name"])
}

func TestDiff_MixedChanges(t *testing.T) {
	before := items(
		graph.Item{"id": "keep", "name": "same"},
		graph.Item{"id": "edit", "name": "old"},
		graph.Item{"id": "gone", "name": "bye"},
	)
	after := items(
		graph.Item{"id": "keep", "name": "same"},
		graph.Item{"id": "edit", "name": "new"},
		graph.Item{"id": "fresh", "name": "hi"},
	)

	changes := Diff(before, after)
	require.Len(t, changes, 3)

	byID := make(map[string]Change)
	for _, c := range changes {
		byID[c.ID] = c
	}
	assert.Equal(t, ChangeUpdate, byID["edit"].Type)
	assert.Equal(t, ChangeRemove, byID["gone"].Type)
	assert.Equal(t, ChangeAdd, byID["fresh"].Type)
}

// The type envelope never participates in equality.
func TestDiff_EnvelopeFieldsExcluded(t *testing.T) {
	before := items(graph.Item{"id": "a", "type": "Tag", "name": "foo"})
	after := items(graph.Item{"id": "a", "name": "foo"})
	assert.Empty(t, Diff(before, after))
}

// Extracted rows carry only the rendered columns; absent fields are not
// removals.
func TestDiff_AfterSideFieldSubsetIsEqual(t *testing.T) {
	before := items(graph.Item{"id": "a", "name": "foo", "color": "red", "weight": int64(2)})
	after := items(graph.Item{"id": "a", "name": "foo"})
	assert.Empty(t, Diff(before, after))
}

// A rendered empty cell for a field the entity never had extracts back
// as "" and must not register as a change.
func TestDiff_EmptyCellForMissingFieldIsEqual(t *testing.T) {
	before := items(graph.Item{"id": "a", "name": "foo"})
	after := items(graph.Item{"id": "a", "name": "foo", "color": ""})
	assert.Empty(t, Diff(before, after))
}

// Values that changed Go representation in the render/extract round
// trip still compare equal canonically.
func TestDiff_NumberRepresentationsCompareEqual(t *testing.T) {
	before := items(graph.Item{"id": "a", "count": int64(3)})
	after := items(graph.Item{"id": "a", "count": json.Number("3")})
	assert.Empty(t, Diff(before, after))
}

func TestDiff_NestedObjectChangeDetected(t *testing.T) {
	before := items(graph.Item{"id": "a", "meta": map[string]any{"lang": "en"}})
	after := items(graph.Item{"id": "a", "meta": map[string]any{"lang": "de"}})
	changes := Diff(before, after)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeUpdate, changes[0].Type)
}
