// Package rowsql builds the SQL issued against the append-only row store.
//
// The store never updates rows in place, so every read has to reduce the
// full history to current state before interpreting it. That reduction —
// keep the highest-version (or latest-timestamp) row per logical key,
// then drop keys whose surviving row is a tombstone — is subtle enough
// that it must not be reimplemented at call sites. This package is its
// only home: every SELECT emitted here ranks rows with a window function
// partitioned by the logical key, keeps rank 1, and filters tombstones
// after the rank filter, so a tombstone wins over older live rows but
// only while it is itself the latest.
//
// Two rules are absolute, matching the rest of the codebase:
//   - every query carries a deterministic trailing ORDER BY
//   - every value is a bind parameter, never interpolated
package rowsql

import "strings"

// Table names in the row store.
const (
	ThingsTable        = "things"
	RelationshipsTable = "relationships"
)

// Query is a compiled parameterized statement.
type Query struct {
	SQL    string
	Params []any
}

// thingColumns is the projection shared by all Thing selects.
const thingColumns = "ns, type, id, url, data, context, version, created_at, updated_at, deleted"

// edgeColumns is the projection shared by all Relationship selects.
const edgeColumns = "from_url, predicate, to_url, data, event, created_at"

// thingRank ranks one row per url: highest version wins, ties broken by
// latest update timestamp, then physical insertion order.
const thingRank = "ROW_NUMBER() OVER (PARTITION BY url ORDER BY version DESC, updated_at DESC, rowid DESC)"

// edgeRank ranks one row per (from, predicate, to) triple by most recent
// append.
const edgeRank = "ROW_NUMBER() OVER (PARTITION BY from_url, predicate, to_url ORDER BY created_at DESC, rowid DESC)"

// CurrentThing selects the current row for a single url. Returns zero
// rows when the key never existed or its latest row is a tombstone.
func CurrentThing(url string) Query {
	return Query{}.build(`WHERE url = ?`, "ORDER BY url ASC", url)
}

// LatestThing selects the latest row for a single url with NO tombstone
// filter. Writers need this: a create after a delete must continue the
// version sequence past the tombstone, or the tombstone would outrank
// the recreated row forever.
func LatestThing(url string) Query {
	sql := `SELECT ` + thingColumns + `
FROM (
	SELECT ` + thingColumns + `, rowid, ` + thingRank + ` AS rn
	FROM ` + ThingsTable + `
	WHERE url = ?
)
WHERE rn = 1
ORDER BY url ASC`
	return Query{SQL: sql, Params: []any{url}}
}

// CurrentThings selects the current rows for a set of urls, tombstoned
// keys excluded. The result order is deterministic (by url), not the
// input order. An empty url list compiles to a query matching nothing.
func CurrentThings(urls []string) Query {
	if len(urls) == 0 {
		return Query{
			SQL: `SELECT ` + thingColumns + ` FROM ` + ThingsTable + ` WHERE 1 = 0 ORDER BY url ASC`,
		}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(urls)), ", ")
	params := make([]any, len(urls))
	for i, u := range urls {
		params[i] = u
	}
	return Query{}.build(`WHERE url IN (`+placeholders+`)`, "ORDER BY url ASC", params...)
}

// CurrentThingsByType selects all current rows of one (ns, type).
func CurrentThingsByType(ns, typ string) Query {
	return Query{}.build(`WHERE ns = ? AND type = ?`, "ORDER BY url ASC", ns, typ)
}

// build assembles the ranked-subquery form shared by all Thing selects.
func (Query) build(where, orderBy string, params ...any) Query {
	sql := `SELECT ` + thingColumns + `
FROM (
	SELECT ` + thingColumns + `, rowid, ` + thingRank + ` AS rn
	FROM ` + ThingsTable + `
	` + where + `
)
WHERE rn = 1 AND deleted = 0
` + orderBy
	return Query{SQL: sql, Params: params}
}

// CurrentEdges selects the current (latest event is "created") edges
// touching a url in the given direction. anchorColumn must be one of
// "from_url" or "to_url"; predicate is optional ("" matches any).
func CurrentEdges(anchorColumn, url, predicate string) Query {
	where := `WHERE ` + anchorColumn + ` = ?`
	params := []any{url}
	if predicate != "" {
		where += ` AND predicate = ?`
		params = append(params, predicate)
	}

	sql := `SELECT ` + edgeColumns + `
FROM (
	SELECT ` + edgeColumns + `, rowid, ` + edgeRank + ` AS rn
	FROM ` + RelationshipsTable + `
	` + where + `
)
WHERE rn = 1 AND event = ?
ORDER BY created_at ASC, from_url ASC, predicate ASC, to_url ASC`
	params = append(params, "created")
	return Query{SQL: sql, Params: params}
}

// CurrentEdge selects the current row for one exact edge triple,
// whatever its event marker. Used to answer "does this edge currently
// exist" without the tombstone filter baked in.
func CurrentEdge(from, predicate, to string) Query {
	sql := `SELECT ` + edgeColumns + `
FROM (
	SELECT ` + edgeColumns + `, rowid, ` + edgeRank + ` AS rn
	FROM ` + RelationshipsTable + `
	WHERE from_url = ? AND predicate = ? AND to_url = ?
)
WHERE rn = 1
ORDER BY from_url ASC, predicate ASC, to_url ASC`
	return Query{SQL: sql, Params: []any{from, predicate, to}}
}
