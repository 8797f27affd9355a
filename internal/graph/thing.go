package graph

import "time"

// Payload is an open JSON object carried by Things and Relationships.
type Payload map[string]any

// Clone returns a shallow copy of the payload. Nested values are shared.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge overlays patch on top of p and returns the result as a new map.
// The merge is SHALLOW: a key present in patch replaces the stored value
// entirely, including nested objects. Neither input is modified.
func (p Payload) Merge(patch Payload) Payload {
	out := make(Payload, len(p)+len(patch))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Thing is a versioned node record.
//
// A Thing's identity is its Key; URL is the canonical rendering of that
// key. Version starts at 1 on create and increments by one per appended
// row. Deleted marks a tombstone row: the key's latest row being a
// tombstone means the Thing does not currently exist.
type Thing struct {
	Key       Key
	URL       string
	Data      Payload
	Context   Payload // optional JSON-LD-style context, may be nil
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}

// EdgeEvent marks what an appended relationship row means.
type EdgeEvent string

const (
	// EdgeCreated marks an edge-creation row.
	EdgeCreated EdgeEvent = "created"
	// EdgeDeleted marks an edge tombstone row.
	EdgeDeleted EdgeEvent = "deleted"
)

// Relationship is a directed, typed edge between two Thing URLs.
//
// Physically every relate/unrelate appends a row; the current state of a
// (From, Predicate, To) triple is its most recently appended row. An edge
// whose latest row carries EdgeDeleted does not currently exist.
type Relationship struct {
	From      string
	Predicate string
	To        string
	Data      Payload
	Event     EdgeEvent
	CreatedAt time.Time
}

// Direction selects which end of an edge a traversal anchors on.
type Direction string

const (
	// Outbound traverses edges whose From equals the query URL.
	Outbound Direction = "outbound"
	// Inbound traverses edges whose To equals the query URL.
	Inbound Direction = "inbound"
)

// Endpoint returns the URL at the far end of the edge for a traversal in
// the given direction.
func (r Relationship) Endpoint(dir Direction) string {
	if dir == Inbound {
		return r.From
	}
	return r.To
}
