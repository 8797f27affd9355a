// Package infer decides the predicate and direction of the edge between
// a parent entity and the members of a named child collection.
//
// This is a heuristic over type NAMES, not a derivation from schema: a
// curated ownership table says which child types a parent type is known
// to own. A hit means the parent points at its children (forward); a
// miss means the children are assumed to reference the parent (reverse).
// Callers that know better override the result with an explicit
// predicate on the view component, or swap in their own Resolver.
package infer

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultPatternsYAML []byte

// Direction says which way the inferred edge points.
type Direction string

const (
	// Forward: parent owns children; edges run parent -> child with the
	// child's singular type as predicate.
	Forward Direction = "forward"
	// Reverse: children reference the parent; edges run child -> parent
	// with the parent's pluralized type as predicate.
	Reverse Direction = "reverse"
)

// Relation is the inference result.
type Relation struct {
	Predicate string
	Direction Direction
}

// Resolver decides the relation between a parent type and a child
// collection. Implementations must be safe for concurrent use.
type Resolver interface {
	Infer(parentType, collection string) Relation
}

// Heuristic is the default Resolver: lexical singular/plural transforms
// plus an ownership-pattern table.
type Heuristic struct {
	owns map[string]map[string]bool
}

var _ Resolver = (*Heuristic)(nil)

// Default returns a Heuristic loaded with the embedded ownership table.
func Default() *Heuristic {
	h, err := FromYAML(defaultPatternsYAML)
	if err != nil {
		// The embedded table is compiled in; failing to parse it is a
		// programming error, not a runtime condition.
		panic(fmt.Sprintf("infer: embedded patterns.yaml invalid: %v", err))
	}
	return h
}

// FromYAML builds a Heuristic from an ownership table in YAML form:
// a mapping of parent type to a list of owned child types. All names
// are compared lowercase.
func FromYAML(data []byte) (*Heuristic, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ownership patterns: %w", err)
	}

	owns := make(map[string]map[string]bool, len(raw))
	for parent, children := range raw {
		set := make(map[string]bool, len(children))
		for _, c := range children {
			set[strings.ToLower(c)] = true
		}
		owns[strings.ToLower(parent)] = set
	}
	return &Heuristic{owns: owns}, nil
}

// Infer decides the predicate and direction for a (parent type, child
// collection) pair.
//
// The collection name is singularized to get the child type. If the
// ownership table lists the child under the parent, the relation is
// Forward with the lowercase singular child type as predicate.
// Otherwise it is Reverse with the pluralized lowercase parent type as
// predicate.
func (h *Heuristic) Infer(parentType, collection string) Relation {
	child := strings.ToLower(Singularize(collection))
	parent := strings.ToLower(parentType)

	if h.owns[parent][child] {
		return Relation{Predicate: child, Direction: Forward}
	}
	return Relation{Predicate: Pluralize(parent), Direction: Reverse}
}
