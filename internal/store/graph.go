package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/lattice/internal/graph"
	"github.com/roach88/lattice/internal/rowsql"
)

// GraphStore is the graph API over an append-only Executor.
//
// All mutation methods append rows; none of them issue UPDATE or DELETE
// statements. Reads go through the ranked queries in internal/rowsql so
// that current-state reduction has exactly one implementation.
//
// Concurrency: the store itself is stateless and safe for concurrent
// use. Writes are last-write-wins over the version sequence unless the
// caller opts into a version check with IfVersion.
type GraphStore struct {
	exec   Executor
	scheme string
	clock  Clock
	newID  func() string
}

// Option configures a GraphStore.
type Option func(*GraphStore)

// WithScheme sets the URL scheme used for canonical Thing URLs.
func WithScheme(scheme string) Option {
	return func(g *GraphStore) { g.scheme = scheme }
}

// WithClock sets the timestamp source for appended rows.
func WithClock(c Clock) Option {
	return func(g *GraphStore) { g.clock = c }
}

// WithIDGenerator sets the generator used when Create is called without
// an id. Defaults to random UUIDs.
func WithIDGenerator(f func() string) Option {
	return func(g *GraphStore) { g.newID = f }
}

// NewGraphStore creates a GraphStore over the given executor.
func NewGraphStore(exec Executor, opts ...Option) *GraphStore {
	g := &GraphStore{
		exec:   exec,
		scheme: graph.DefaultScheme,
		clock:  SystemClock(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Scheme returns the URL scheme this store renders Thing URLs with.
func (g *GraphStore) Scheme() string { return g.scheme }

// URL renders the canonical URL for a key under this store's scheme.
func (g *GraphStore) URL(ns, typ, id string) string {
	return graph.Key{NS: ns, Type: typ, ID: id}.URL(g.scheme)
}

// writeConfig carries per-write options.
type writeConfig struct {
	ifVersion int64
}

// WriteOption configures a single Update or Delete call.
type WriteOption func(*writeConfig)

// IfVersion makes the write conditional: if the current version differs
// from v the write fails with a VersionConflict error instead of
// appending. The default (no option) is last-write-wins.
func IfVersion(v int64) WriteOption {
	return func(c *writeConfig) { c.ifVersion = v }
}

func applyWriteOptions(opts []WriteOption) writeConfig {
	var cfg writeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Get returns the current Thing for a URL: the highest-version row among
// all rows ever written for the key, provided it is not a tombstone.
func (g *GraphStore) Get(ctx context.Context, url string) (*graph.Thing, error) {
	if _, err := graph.ParseURL(url); err != nil {
		return nil, err
	}
	q := rowsql.CurrentThing(url)
	rows, err := g.exec.Query(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if len(rows) == 0 {
		return nil, graph.NewNotFound(url)
	}
	return decodeThing(rows[0])
}

// Create appends a version-1 row for a new Thing. An empty id is filled
// from the store's id generator. Fails with AlreadyExists if a current
// (non-tombstoned) row exists for the key.
//
// Recreating a deleted key is allowed; the new row continues the version
// sequence past the tombstone so it outranks it.
func (g *GraphStore) Create(ctx context.Context, ns, typ, id string, data graph.Payload) (*graph.Thing, error) {
	if id == "" {
		id = g.newID()
	}
	key := graph.Key{NS: ns, Type: typ, ID: id}
	url := key.URL(g.scheme)
	if _, err := graph.ParseURL(url); err != nil {
		return nil, err
	}

	latest, err := g.latestAnyState(ctx, url)
	if err != nil {
		return nil, err
	}
	if latest != nil && !latest.Deleted {
		return nil, graph.NewAlreadyExists(url)
	}

	version := int64(1)
	if latest != nil {
		version = latest.Version + 1
	}

	now := g.clock.Now()
	thing := &graph.Thing{
		Key:       key,
		URL:       url,
		Data:      data.Clone(),
		Version:   version,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := g.append(ctx, thing); err != nil {
		return nil, err
	}
	return thing, nil
}

// Update appends a new row whose payload is the current payload with the
// patch shallow-merged over it, at version current+1. Fails with
// NotFound if the key has no current row.
func (g *GraphStore) Update(ctx context.Context, url string, patch graph.Payload, opts ...WriteOption) (*graph.Thing, error) {
	if _, err := graph.ParseURL(url); err != nil {
		return nil, err
	}
	cfg := applyWriteOptions(opts)

	latest, err := g.latestAnyState(ctx, url)
	if err != nil {
		return nil, err
	}
	if latest == nil || latest.Deleted {
		return nil, graph.NewNotFound(url)
	}
	if cfg.ifVersion != 0 && latest.Version != cfg.ifVersion {
		return nil, graph.NewVersionConflict(url, cfg.ifVersion, latest.Version)
	}

	thing := &graph.Thing{
		Key:       latest.Key,
		URL:       latest.URL,
		Data:      latest.Data.Merge(patch),
		Context:   latest.Context,
		Version:   latest.Version + 1,
		CreatedAt: latest.CreatedAt,
		UpdatedAt: g.clock.Now(),
	}
	if err := g.append(ctx, thing); err != nil {
		return nil, err
	}
	return thing, nil
}

// Upsert creates the Thing if absent and updates it otherwise. An empty
// id always creates.
func (g *GraphStore) Upsert(ctx context.Context, ns, typ, id string, data graph.Payload) (*graph.Thing, error) {
	if id == "" {
		return g.Create(ctx, ns, typ, id, data)
	}
	url := graph.Key{NS: ns, Type: typ, ID: id}.URL(g.scheme)
	latest, err := g.latestAnyState(ctx, url)
	if err != nil {
		return nil, err
	}
	if latest == nil || latest.Deleted {
		return g.Create(ctx, ns, typ, id, data)
	}
	return g.Update(ctx, url, data)
}

// Delete appends a tombstone row at version current+1. Returns false
// (and no error) when the key has no current row to delete.
func (g *GraphStore) Delete(ctx context.Context, url string, opts ...WriteOption) (bool, error) {
	if _, err := graph.ParseURL(url); err != nil {
		return false, err
	}
	cfg := applyWriteOptions(opts)

	latest, err := g.latestAnyState(ctx, url)
	if err != nil {
		return false, err
	}
	if latest == nil || latest.Deleted {
		return false, nil
	}
	if cfg.ifVersion != 0 && latest.Version != cfg.ifVersion {
		return false, graph.NewVersionConflict(url, cfg.ifVersion, latest.Version)
	}

	tombstone := &graph.Thing{
		Key:       latest.Key,
		URL:       latest.URL,
		Data:      latest.Data,
		Context:   latest.Context,
		Version:   latest.Version + 1,
		CreatedAt: latest.CreatedAt,
		UpdatedAt: g.clock.Now(),
		Deleted:   true,
	}
	if err := g.append(ctx, tombstone); err != nil {
		return false, err
	}
	return true, nil
}

// Relate appends a created-edge row for (from, predicate, to).
// Re-relating an existing triple appends another created row; the effect
// is idempotent even though the storage is not.
func (g *GraphStore) Relate(ctx context.Context, from, predicate, to string, data graph.Payload) (*graph.Relationship, error) {
	if _, err := graph.ParseURL(from); err != nil {
		return nil, err
	}
	if _, err := graph.ParseURL(to); err != nil {
		return nil, err
	}

	rel := &graph.Relationship{
		From:      from,
		Predicate: predicate,
		To:        to,
		Data:      data.Clone(),
		Event:     graph.EdgeCreated,
		CreatedAt: g.clock.Now(),
	}
	row, err := encodeEdge(rel)
	if err != nil {
		return nil, err
	}
	if err := g.exec.Insert(ctx, rowsql.RelationshipsTable, []Row{row}); err != nil {
		return nil, fmt.Errorf("relate %s-[%s]->%s: %w", from, predicate, to, err)
	}
	return rel, nil
}

// Unrelate appends a deleted-edge tombstone so the triple's current row
// is the deletion. Returns false when the edge is not currently live.
// Tombstone-by-append, never a destructive delete: on stores with
// asynchronous physical deletes, only the append is reliably visible to
// the next read.
func (g *GraphStore) Unrelate(ctx context.Context, from, predicate, to string) (bool, error) {
	q := rowsql.CurrentEdge(from, predicate, to)
	rows, err := g.exec.Query(ctx, q.SQL, q.Params...)
	if err != nil {
		return false, fmt.Errorf("unrelate %s-[%s]->%s: %w", from, predicate, to, err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	cur, err := decodeEdge(rows[0])
	if err != nil {
		return false, err
	}
	if cur.Event == graph.EdgeDeleted {
		return false, nil
	}

	tomb := &graph.Relationship{
		From:      from,
		Predicate: predicate,
		To:        to,
		Event:     graph.EdgeDeleted,
		CreatedAt: g.clock.Now(),
	}
	row, err := encodeEdge(tomb)
	if err != nil {
		return false, err
	}
	if err := g.exec.Insert(ctx, rowsql.RelationshipsTable, []Row{row}); err != nil {
		return false, fmt.Errorf("unrelate %s-[%s]->%s: %w", from, predicate, to, err)
	}
	return true, nil
}

// Relationships returns the current edges touching a URL in the given
// direction, one per (from, predicate, to) triple, tombstoned edges
// excluded. An empty predicate matches all predicates.
func (g *GraphStore) Relationships(ctx context.Context, url, predicate string, dir graph.Direction) ([]*graph.Relationship, error) {
	if _, err := graph.ParseURL(url); err != nil {
		return nil, err
	}
	anchor := "from_url"
	if dir == graph.Inbound {
		anchor = "to_url"
	}

	q := rowsql.CurrentEdges(anchor, url, predicate)
	rows, err := g.exec.Query(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("relationships of %s: %w", url, err)
	}

	rels := make([]*graph.Relationship, 0, len(rows))
	for _, row := range rows {
		rel, err := decodeEdge(row)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// Related resolves the current edges for a URL and fetches the current
// Thing at each far endpoint, filtering out endpoints that are
// themselves tombstoned. Order follows edge creation order.
func (g *GraphStore) Related(ctx context.Context, url, predicate string, dir graph.Direction) ([]*graph.Thing, error) {
	rels, err := g.Relationships(ctx, url, predicate, dir)
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return []*graph.Thing{}, nil
	}

	// Dedupe endpoints, preserving edge order.
	seen := make(map[string]bool, len(rels))
	endpoints := make([]string, 0, len(rels))
	for _, rel := range rels {
		ep := rel.Endpoint(dir)
		if !seen[ep] {
			seen[ep] = true
			endpoints = append(endpoints, ep)
		}
	}

	q := rowsql.CurrentThings(endpoints)
	rows, err := g.exec.Query(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("related of %s: %w", url, err)
	}

	byURL := make(map[string]*graph.Thing, len(rows))
	for _, row := range rows {
		t, err := decodeThing(row)
		if err != nil {
			return nil, err
		}
		byURL[t.URL] = t
	}

	things := make([]*graph.Thing, 0, len(endpoints))
	for _, ep := range endpoints {
		if t, ok := byURL[ep]; ok {
			things = append(things, t)
		}
	}
	return things, nil
}

// ThingsByType returns all current Things of one (ns, type), ordered by
// URL. Used for view discovery and administrative listings.
func (g *GraphStore) ThingsByType(ctx context.Context, ns, typ string) ([]*graph.Thing, error) {
	q := rowsql.CurrentThingsByType(ns, typ)
	rows, err := g.exec.Query(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("things of type %s/%s: %w", ns, typ, err)
	}
	things := make([]*graph.Thing, 0, len(rows))
	for _, row := range rows {
		t, err := decodeThing(row)
		if err != nil {
			return nil, err
		}
		things = append(things, t)
	}
	return things, nil
}

// latestAnyState returns the latest row for a key with no tombstone
// filtering, or nil if the key has never been written.
func (g *GraphStore) latestAnyState(ctx context.Context, url string) (*graph.Thing, error) {
	q := rowsql.LatestThing(url)
	rows, err := g.exec.Query(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("latest row of %s: %w", url, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return decodeThing(rows[0])
}

func (g *GraphStore) append(ctx context.Context, t *graph.Thing) error {
	row, err := encodeThing(t)
	if err != nil {
		return err
	}
	if err := g.exec.Insert(ctx, rowsql.ThingsTable, []Row{row}); err != nil {
		return fmt.Errorf("append %s v%d: %w", t.URL, t.Version, err)
	}
	return nil
}
