// Package store persists the lattice property graph on an append-only
// row store.
//
// The package has two layers:
//
//   - Executor: the minimal interface to the underlying analytical
//     store — Query, Command, Insert. The bundled implementation is
//     SQLite with WAL mode, but nothing above the Executor boundary
//     knows that.
//   - GraphStore: the graph API (create/update/delete Things,
//     relate/unrelate/traverse Relationships) expressed purely as
//     Executor calls.
//
// # Append-only discipline
//
// Entity and edge mutation never uses UPDATE or DELETE statements. Every
// mutation is a whole-row Insert carrying a marker field (version +
// deleted flag for Things, event marker for edges). Reads reduce history
// to current state with the window-rank queries built by
// internal/rowsql; tombstone filtering always happens after that
// reduction so a tombstone suppresses older live rows only while it is
// itself the latest row.
//
// This also means edge removal is tombstone-by-append rather than a
// destructive delete: on stores whose physical deletes are asynchronous,
// an appended tombstone is visible to the very next read, a destructive
// delete may not be.
//
// # Database configuration (bundled SQLite executor)
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - single-writer connection pool
package store
