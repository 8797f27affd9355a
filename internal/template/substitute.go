package template

import (
	"regexp"
	"strings"

	"github.com/roach88/lattice/internal/graph"
)

// ReplaceComponent substitutes the first occurrence of the named tag
// with rendered text. Both tag forms are handled; the self-closing form
// is tried first, matching the parse order. Block matching is
// non-greedy so two instances of the same tag never collapse into one
// replacement span.
func ReplaceComponent(tmpl, name, rendered string) string {
	selfClosing := regexp.MustCompile(`<` + regexp.QuoteMeta(name) + `\b[^>]*?/>`)
	if loc := selfClosing.FindStringIndex(tmpl); loc != nil {
		return tmpl[:loc[0]] + rendered + tmpl[loc[1]:]
	}

	block := regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(name) + `\b[^>]*?>.*?</` + regexp.QuoteMeta(name) + `>`)
	if loc := block.FindStringIndex(tmpl); loc != nil {
		return tmpl[:loc[0]] + rendered + tmpl[loc[1]:]
	}
	return tmpl
}

// expression matches {dotted.field.path} placeholders.
var expression = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\}`)

// ReplaceExpressions substitutes {path.to.field} placeholders with the
// value at that dotted path on the context entity.
//
// Lookups that miss, or resolve to null, leave the placeholder text in
// place: a broken expression stays visible in the output instead of
// silently vanishing. Object- and array-valued substitutions are
// JSON-stringified.
func ReplaceExpressions(tmpl string, entity graph.Item) string {
	return expression.ReplaceAllStringFunc(tmpl, func(match string) string {
		path := match[1 : len(match)-1]
		v, ok := lookupPath(entity, path)
		if !ok || v == nil {
			return match
		}
		if s, isString := v.(string); isString {
			return s
		}
		data, err := graph.MarshalCanonical(v)
		if err != nil {
			return match
		}
		return string(data)
	})
}

// lookupPath walks a dotted path through nested maps.
func lookupPath(root graph.Item, path string) (any, bool) {
	var cur any = map[string]any(root)
	for _, seg := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case map[string]any:
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case graph.Payload:
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}
