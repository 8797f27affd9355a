package graph

import (
	"fmt"
	"strings"
)

// DefaultScheme is the URL scheme used for canonical Thing URLs when the
// caller does not configure one.
const DefaultScheme = "lattice"

// Key is the composite identity of a Thing: (namespace, type, id).
// The canonical URL form is scheme://ns/type/id.
type Key struct {
	NS   string
	Type string
	ID   string
}

// URL renders the canonical URL for this key under the given scheme.
func (k Key) URL(scheme string) string {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, k.NS, k.Type, k.ID)
}

// ParseURL decomposes a canonical Thing URL into its key.
//
// Any scheme is accepted; only the authority/path shape matters. The part
// after "://" must split into exactly (ns, type, id) with no empty
// segment. Anything else is an InvalidReference error.
func ParseURL(raw string) (Key, error) {
	_, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Key{}, NewInvalidReference(raw, "missing scheme separator")
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return Key{}, NewInvalidReference(raw, fmt.Sprintf("expected ns/type/id, got %d segments", len(parts)))
	}
	for _, p := range parts {
		if p == "" {
			return Key{}, NewInvalidReference(raw, "empty segment")
		}
	}
	return Key{NS: parts[0], Type: parts[1], ID: parts[2]}, nil
}
