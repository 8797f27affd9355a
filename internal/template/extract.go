package template

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/roach88/lattice/internal/graph"
)

var headingLine = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*$`)

// ExtractSections re-parses an edited markdown document into entity
// items, keyed by the heading of the section each table or list appears
// under.
//
// Recognized shapes inside a section:
//   - markdown tables: header row defines the field names, each data
//     row becomes one item
//   - bullet lists: each "- text" line becomes one item with the text
//     as its name field (the inverse of RenderList)
//
// Content before the first heading is keyed under the empty section
// name, so a document without headings is still visible to callers.
// A section's key is registered as soon as a table structure (header
// plus separator) is found under it, even when every data row has been
// deleted: an emptied table means "no entities here", which is distinct
// from the section being absent.
//
// Cell text that parses as JSON (numbers, booleans, null, objects) is
// decoded so extracted values compare equal to their stored
// counterparts; everything else stays a string.
func ExtractSections(markdown string) map[string][]graph.Item {
	sections := make(map[string][]graph.Item)
	lines := strings.Split(markdown, "\n")

	section := ""
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := headingLine.FindStringSubmatch(line); m != nil {
			section = m[1]
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "|"):
			items, consumed, ok := parseTable(lines[i:])
			if ok {
				register(sections, section, items)
			}
			i += consumed - 1

		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			items, consumed := parseList(lines[i:])
			if len(items) > 0 {
				register(sections, section, items)
			}
			i += consumed - 1
		}
	}
	return sections
}

// register appends items under key, creating the key even when items
// is empty.
func register(sections map[string][]graph.Item, key string, items []graph.Item) {
	if _, exists := sections[key]; !exists {
		sections[key] = []graph.Item{}
	}
	sections[key] = append(sections[key], items...)
}

// parseTable consumes a run of table lines and returns the items, the
// number of lines consumed, and whether a well-formed table (header
// plus separator at minimum) was found.
func parseTable(lines []string) ([]graph.Item, int, bool) {
	consumed := 0
	var rows [][]string
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "|") {
			break
		}
		consumed++
		rows = append(rows, splitTableRow(line))
	}
	// Need header + separator at minimum.
	if len(rows) < 2 {
		return nil, consumed, false
	}

	header := rows[0]
	var items []graph.Item
	for _, row := range rows[2:] {
		if isSeparatorRow(row) {
			continue
		}
		item := make(graph.Item, len(header))
		for c, name := range header {
			if name == "" || c >= len(row) {
				continue
			}
			item[name] = cellToValue(row[c])
		}
		if len(item) > 0 {
			items = append(items, item)
		}
	}
	return items, consumed, true
}

// parseList consumes a run of bullet lines. Each becomes an item whose
// name field is the bullet text, bold markers stripped.
func parseList(lines []string) ([]graph.Item, int) {
	consumed := 0
	var items []graph.Item
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "- ") && !strings.HasPrefix(trimmed, "* ") {
			break
		}
		consumed++
		text := strings.TrimSpace(trimmed[2:])
		text = strings.Trim(text, "*")
		if text != "" {
			items = append(items, graph.Item{"name": text})
		}
	}
	return items, consumed
}

func splitTableRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	// Split on unescaped pipes only.
	var cells []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			if r != '|' {
				cur.WriteByte('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if c == "" {
			continue
		}
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

// cellToValue decodes a cell back into the value space payloads live
// in. JSON-shaped text (numbers, booleans, null, objects, arrays)
// decodes; anything else is the literal string.
func cellToValue(cell string) any {
	if cell == "" {
		return ""
	}
	first := cell[0]
	looksJSON := first == '{' || first == '[' || first == '"' ||
		first == '-' || (first >= '0' && first <= '9') ||
		cell == "true" || cell == "false" || cell == "null"
	if !looksJSON {
		return cell
	}

	dec := json.NewDecoder(strings.NewReader(cell))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return cell
	}
	// Reject trailing garbage like "2 apples".
	if dec.More() {
		return cell
	}
	return v
}
