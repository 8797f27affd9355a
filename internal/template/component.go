// Package template parses and renders embedded-component view templates.
//
// A view template is a markdown document containing tag-like
// placeholders. A tag whose name starts with an uppercase letter is a
// collection reference, in either self-closing or block form:
//
//	<Tags columns=["name"] />
//	<Comments format=list> fallback body </Comments>
//
// The tag grammar is deliberately simple and regex-matched: tags must
// not nest, attribute text cannot contain '>', and two tags are the
// same component iff their names match. Scalar placeholders are dotted
// field expressions in braces, e.g. {title} or {meta.author}, resolved
// against the context entity.
//
// The package also performs the inverse: extracting entity items back
// out of an edited markdown document (heading-delimited tables and
// bullet lists), which is what the sync pipeline diffs against storage.
package template

import (
	"regexp"
	"strings"

	"github.com/roach88/lattice/internal/infer"
)

// Format selects how a component's entities are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatList  Format = "list"
	FormatCards Format = "cards"
)

// Component is one embedded collection reference in a template.
type Component struct {
	// Name as written in the template, typically plural ("Tags").
	Name string
	// EntityType is the inferred singular type ("Tag").
	EntityType string
	// Columns restricts rendering to these fields, when non-empty.
	Columns []string
	// Format is the explicit render format; empty means table.
	Format Format
	// Predicate overrides relationship inference, when non-empty.
	Predicate string
}

var (
	// selfClosingTag matches <Name ... />. Tag names start uppercase;
	// attribute text cannot contain '>'.
	selfClosingTag = regexp.MustCompile(`<([A-Z][A-Za-z0-9_]*)((?:[^>])*?)/>`)

	// blockOpenTag matches <Name ...> where the tag is NOT
	// self-closing: attribute text may contain '/' (predicate="a/b")
	// but must not end with one.
	blockOpenTag = regexp.MustCompile(`<([A-Z][A-Za-z0-9_]*)((?:[^>]*[^>/])?)>`)

	columnsAttr   = regexp.MustCompile(`columns=\[([^\]]*)\]`)
	formatAttr    = regexp.MustCompile(`format="?(table|list|cards)"?`)
	predicateAttr = regexp.MustCompile(`predicate="([^"]+)"`)
)

// ParseComponents scans a template for collection tags.
//
// Self-closing tags are scanned before block tags, and the first
// occurrence of a name wins; later tags with the same name refer to the
// same component.
func ParseComponents(tmpl string) []Component {
	var out []Component
	seen := make(map[string]bool)

	add := func(name, attrs string) {
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, Component{
			Name:       name,
			EntityType: infer.Singularize(name),
			Columns:    parseColumns(attrs),
			Format:     parseFormat(attrs),
			Predicate:  parsePredicate(attrs),
		})
	}

	for _, m := range selfClosingTag.FindAllStringSubmatch(tmpl, -1) {
		add(m[1], m[2])
	}
	for _, m := range blockOpenTag.FindAllStringSubmatch(tmpl, -1) {
		name, attrs := m[1], m[2]
		// Only a real block component if a matching close tag exists.
		if strings.Contains(tmpl, "</"+name+">") {
			add(name, attrs)
		}
	}
	return out
}

func parseColumns(attrs string) []string {
	m := columnsAttr.FindStringSubmatch(attrs)
	if m == nil {
		return nil
	}
	var cols []string
	for _, part := range strings.Split(m[1], ",") {
		col := strings.Trim(strings.TrimSpace(part), `"'`)
		if col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

func parseFormat(attrs string) Format {
	m := formatAttr.FindStringSubmatch(attrs)
	if m == nil {
		return ""
	}
	return Format(m[1])
}

func parsePredicate(attrs string) string {
	m := predicateAttr.FindStringSubmatch(attrs)
	if m == nil {
		return ""
	}
	return m[1]
}
