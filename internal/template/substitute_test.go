package template

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/lattice/internal/graph"
)

func TestReplaceComponent_SelfClosing(t *testing.T) {
	got := ReplaceComponent(`before <Tags columns=["name"] /> after`, "Tags", "TABLE")
	assert.Equal(t, "before TABLE after", got)
}

func TestReplaceComponent_BlockForm(t *testing.T) {
	got := ReplaceComponent("before <Tags>\nfallback\n</Tags> after", "Tags", "TABLE")
	assert.Equal(t, "before TABLE after", got)
}

func TestReplaceComponent_OnlyFirstOccurrence(t *testing.T) {
	got := ReplaceComponent("<Tags /> and <Tags />", "Tags", "X")
	assert.Equal(t, "X and <Tags />", got)
}

// Two block instances of the same tag must not collapse into one
// replacement span: the block match is non-greedy.
func TestReplaceComponent_NonGreedyBlocks(t *testing.T) {
	got := ReplaceComponent("<Tags>a</Tags> middle <Tags>b</Tags>", "Tags", "X")
	assert.Equal(t, "X middle <Tags>b</Tags>", got)
}

func TestReplaceComponent_NameNotPrefixMatched(t *testing.T) {
	got := ReplaceComponent("<TagsExtra /> <Tags />", "Tags", "X")
	assert.Equal(t, "<TagsExtra /> X", got)
}

func TestReplaceComponent_MissingTagLeavesTemplate(t *testing.T) {
	tmpl := "nothing to see"
	assert.Equal(t, tmpl, ReplaceComponent(tmpl, "Tags", "X"))
}

func TestReplaceExpressions_SimpleAndDotted(t *testing.T) {
	entity := graph.Item{
		"title": "Hello",
		"meta":  map[string]any{"author": "ann"},
	}
	got := ReplaceExpressions("# {title} by {meta.author}", entity)
	assert.Equal(t, "# Hello by ann", got)
}

// Broken expressions stay visible rather than being silently erased.
func TestReplaceExpressions_MissingPathFailsOpen(t *testing.T) {
	entity := graph.Item{"title": "Hello"}
	got := ReplaceExpressions("{title} {missing} {title.nested}", entity)
	assert.Equal(t, "Hello {missing} {title.nested}", got)
}

func TestReplaceExpressions_NullFailsOpen(t *testing.T) {
	entity := graph.Item{"gone": nil}
	assert.Equal(t, "{gone}", ReplaceExpressions("{gone}", entity))
}

func TestReplaceExpressions_ObjectValuesJSONStringified(t *testing.T) {
	entity := graph.Item{"meta": map[string]any{"b": int64(2), "a": int64(1)}}
	got := ReplaceExpressions("{meta}", entity)
	assert.Equal(t, `{"a":1,"b":2}`, got)
}

func TestReplaceExpressions_NonPlaceholderBracesUntouched(t *testing.T) {
	entity := graph.Item{"a": "x"}
	got := ReplaceExpressions(`code {} and {1bad} and {a}`, entity)
	assert.Equal(t, `code {} and {1bad} and x`, got)
}
