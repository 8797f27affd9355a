package template

import (
	"sort"
	"strings"

	"github.com/roach88/lattice/internal/graph"
)

// Render materializes a component's entities as markdown. Format "list"
// delegates to the entity-list renderer; "cards" renders one card per
// entity; everything else renders a table restricted to the component's
// explicit columns, or to all fields when no columns are given.
func Render(c Component, entities []graph.Item) string {
	switch c.Format {
	case FormatList:
		return RenderList(entities)
	case FormatCards:
		return renderCards(c, entities)
	default:
		return renderTable(c, entities)
	}
}

// RenderList renders entities as a markdown bullet list, one entity per
// line using its display field. List rendering is lossy by design: only
// the display field survives, so list components round-trip through
// that single field.
func RenderList(entities []graph.Item) string {
	var b strings.Builder
	for _, e := range entities {
		b.WriteString("- ")
		b.WriteString(displayValue(e))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTable(c Component, entities []graph.Item) string {
	cols := c.Columns
	if len(cols) == 0 {
		cols = allColumns(entities)
	}
	if len(cols) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	sep := make([]string, len(cols))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for _, e := range entities {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = cellValue(e[col])
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCards(c Component, entities []graph.Item) string {
	var b strings.Builder
	for i, e := range entities {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("### " + displayValue(e) + "\n")

		cols := c.Columns
		if len(cols) == 0 {
			cols = e.Fields()
		}
		for _, col := range cols {
			v, ok := e[col]
			if !ok {
				continue
			}
			b.WriteString("\n- **" + col + "**: " + cellValue(v))
		}
	}
	return b.String()
}

// allColumns is the union of fields across entities: id first, then the
// payload fields sorted. The type envelope field never renders.
func allColumns(entities []graph.Item) []string {
	set := make(map[string]bool)
	hasID := false
	for _, e := range entities {
		for k := range e {
			switch k {
			case graph.ItemFieldID:
				hasID = true
			case graph.ItemFieldType:
			default:
				set[k] = true
			}
		}
	}
	fields := make([]string, 0, len(set)+1)
	for k := range set {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	if hasID {
		fields = append([]string{graph.ItemFieldID}, fields...)
	}
	return fields
}

// displayValue picks the field shown for an entity in list and card
// headings: name, then title, then label, then the id.
func displayValue(e graph.Item) string {
	for _, f := range []string{"name", "title", "label"} {
		if s, ok := e[f].(string); ok && s != "" {
			return s
		}
	}
	return e.ID()
}

// cellValue renders one field value into a table cell. Strings render
// as-is (pipes escaped); everything else renders as canonical JSON so
// the same value always produces the same cell text.
func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ReplaceAll(val, "|", `\|`)
	default:
		data, err := graph.MarshalCanonical(v)
		if err != nil {
			return ""
		}
		return strings.ReplaceAll(string(data), "|", `\|`)
	}
}
