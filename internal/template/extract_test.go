package template

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lattice/internal/graph"
)

func TestExtractSections_Table(t *testing.T) {
	doc := `# Post

## Tags

| name | color |
| --- | --- |
| foo | red |
| bar | blue |
`
	sections := ExtractSections(doc)
	require.Contains(t, sections, "Tags")
	require.Len(t, sections["Tags"], 2)
	assert.Equal(t, graph.Item{"name": "foo", "color": "red"}, sections["Tags"][0])
	assert.Equal(t, graph.Item{"name": "bar", "color": "blue"}, sections["Tags"][1])
}

func TestExtractSections_List(t *testing.T) {
	doc := `## Comments

- first comment
- **second comment**
`
	sections := ExtractSections(doc)
	require.Len(t, sections["Comments"], 2)
	assert.Equal(t, "first comment", sections["Comments"][0]["name"])
	assert.Equal(t, "second comment", sections["Comments"][1]["name"])
}

func TestExtractSections_JSONCellsDecoded(t *testing.T) {
	doc := `## Things

| name | count | active | meta |
| --- | --- | --- | --- |
| foo | 3 | true | {"a":1} |
`
	item := ExtractSections(doc)["Things"][0]
	assert.Equal(t, "foo", item["name"])
	assert.Equal(t, json.Number("3"), item["count"])
	assert.Equal(t, true, item["active"])
	assert.Equal(t, map[string]any{"a": json.Number("1")}, item["meta"])
}

func TestExtractSections_NumericLookingTextStaysString(t *testing.T) {
	doc := `## Things

| note |
| --- |
| 2 apples |
`
	item := ExtractSections(doc)["Things"][0]
	assert.Equal(t, "2 apples", item["note"])
}

func TestExtractSections_EscapedPipesInCells(t *testing.T) {
	doc := `## Things

| name |
| --- |
| a\|b |
`
	item := ExtractSections(doc)["Things"][0]
	assert.Equal(t, "a|b", item["name"])
}

func TestExtractSections_UnheadedContentKeyedEmpty(t *testing.T) {
	doc := `| name |
| --- |
| orphan |

## Tags

| name |
| --- |
| foo |
`
	sections := ExtractSections(doc)
	assert.Len(t, sections, 2)
	require.Len(t, sections[""], 1)
	assert.Equal(t, "orphan", sections[""][0]["name"])
	assert.Len(t, sections["Tags"], 1)
}

func TestExtractSections_DocumentWithoutHeadings(t *testing.T) {
	doc := `| name |
| --- |
| foo |
| bar |
`
	sections := ExtractSections(doc)
	items, ok := sections[""]
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "foo", items[0]["name"])
}

// A table edited down to header and separator still registers its
// section: zero entities is an observation, not an absence.
func TestExtractSections_EmptiedTableKeepsSection(t *testing.T) {
	doc := `## Tags

| name |
| --- |
`
	sections := ExtractSections(doc)
	items, ok := sections["Tags"]
	require.True(t, ok, "section must be registered")
	assert.Empty(t, items)
}

// Rendering a component and extracting it back yields the same items:
// the lossless half of the round trip sync depends on.
func TestRenderExtract_RoundTrip(t *testing.T) {
	c := Component{Name: "Tags", Columns: []string{"name", "color"}}
	items := []graph.Item{
		{"id": "a", "type": "Tag", "name": "foo", "color": "red"},
		{"id": "b", "type": "Tag", "name": "bar", "color": "blue"},
	}
	doc := "## Tags\n\n" + Render(c, items) + "\n"

	extracted := ExtractSections(doc)["Tags"]
	require.Len(t, extracted, 2)
	assert.Equal(t, graph.Item{"name": "foo", "color": "red"}, extracted[0])
	assert.Equal(t, graph.Item{"name": "bar", "color": "blue"}, extracted[1])
}
