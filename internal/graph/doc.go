// Package graph defines the core data model for the lattice graph layer.
//
// The model is a property graph persisted to an append-only store:
//   - Things: versioned node records keyed by (namespace, type, id)
//   - Relationships: directed, typed edges between Thing URLs
//
// Nothing in storage is ever updated in place. Every mutation, including a
// delete, appends a new row; "current" state is always recovered by a
// latest-wins reduction (highest version per Thing key, most recent event
// per edge triple) followed by tombstone filtering. The reduction itself
// lives in internal/rowsql so that no call site reimplements it.
//
// Payloads are open JSON objects. Merging payloads is SHALLOW: a nested
// object in the update replaces the stored object wholesale rather than
// being deep-merged. Callers that need to preserve nested fields must send
// the full nested value.
package graph
