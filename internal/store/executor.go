package store

import "context"

// Row is a single storage row as an open column→value map. JSON payloads
// travel through Rows as encoded TEXT; the codec in this package is the
// only place that marshals them.
type Row map[string]any

// Executor is the minimal surface the graph layer consumes from the
// underlying analytical store.
//
// The contract is append-then-reduce: Insert only ever appends whole
// rows, Query is expected to perform any latest-row reduction itself
// (the graph layer passes it the ranked queries built by
// internal/rowsql), and Command exists for schema/administrative
// statements only — never for entity or edge mutation.
type Executor interface {
	// Query runs a SELECT and returns all resulting rows.
	Query(ctx context.Context, sql string, params ...any) ([]Row, error)

	// Command runs a statement that returns no rows.
	Command(ctx context.Context, sql string, params ...any) error

	// Insert appends rows to a table. Implementations must not rewrite
	// or deduplicate existing rows.
	Insert(ctx context.Context, table string, rows []Row) error
}
