package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/lattice/internal/graph"
)

// The row codec is the single translation point between storage rows
// (flat columns, JSON-encoded payload TEXT, RFC 3339 timestamp strings)
// and the in-memory graph types. Payloads are written in canonical form
// so identical logical payloads produce identical rows.

const timeLayout = time.RFC3339Nano

func encodeThing(t *graph.Thing) (Row, error) {
	data, err := marshalPayload(t.Data)
	if err != nil {
		return nil, fmt.Errorf("encode thing %s: %w", t.URL, err)
	}

	row := Row{
		"ns":         t.Key.NS,
		"type":       t.Key.Type,
		"id":         t.Key.ID,
		"url":        t.URL,
		"data":       data,
		"context":    nil,
		"version":    t.Version,
		"created_at": t.CreatedAt.UTC().Format(timeLayout),
		"updated_at": t.UpdatedAt.UTC().Format(timeLayout),
		"deleted":    boolToInt(t.Deleted),
	}
	if t.Context != nil {
		cctx, err := marshalPayload(t.Context)
		if err != nil {
			return nil, fmt.Errorf("encode thing context %s: %w", t.URL, err)
		}
		row["context"] = cctx
	}
	return row, nil
}

func decodeThing(row Row) (*graph.Thing, error) {
	t := &graph.Thing{
		Key: graph.Key{
			NS:   stringCol(row, "ns"),
			Type: stringCol(row, "type"),
			ID:   stringCol(row, "id"),
		},
		URL:     stringCol(row, "url"),
		Version: intCol(row, "version"),
		Deleted: intCol(row, "deleted") != 0,
	}

	var err error
	if t.Data, err = unmarshalPayload(stringCol(row, "data")); err != nil {
		return nil, fmt.Errorf("decode thing %s data: %w", t.URL, err)
	}
	if raw := stringCol(row, "context"); raw != "" {
		if t.Context, err = unmarshalPayload(raw); err != nil {
			return nil, fmt.Errorf("decode thing %s context: %w", t.URL, err)
		}
	}
	if t.CreatedAt, err = parseTime(stringCol(row, "created_at")); err != nil {
		return nil, fmt.Errorf("decode thing %s created_at: %w", t.URL, err)
	}
	if t.UpdatedAt, err = parseTime(stringCol(row, "updated_at")); err != nil {
		return nil, fmt.Errorf("decode thing %s updated_at: %w", t.URL, err)
	}
	return t, nil
}

func encodeEdge(r *graph.Relationship) (Row, error) {
	row := Row{
		"from_url":   r.From,
		"predicate":  r.Predicate,
		"to_url":     r.To,
		"data":       nil,
		"event":      string(r.Event),
		"created_at": r.CreatedAt.UTC().Format(timeLayout),
	}
	if r.Data != nil {
		data, err := marshalPayload(r.Data)
		if err != nil {
			return nil, fmt.Errorf("encode edge %s-[%s]->%s: %w", r.From, r.Predicate, r.To, err)
		}
		row["data"] = data
	}
	return row, nil
}

func decodeEdge(row Row) (*graph.Relationship, error) {
	r := &graph.Relationship{
		From:      stringCol(row, "from_url"),
		Predicate: stringCol(row, "predicate"),
		To:        stringCol(row, "to_url"),
		Event:     graph.EdgeEvent(stringCol(row, "event")),
	}

	var err error
	if raw := stringCol(row, "data"); raw != "" {
		if r.Data, err = unmarshalPayload(raw); err != nil {
			return nil, fmt.Errorf("decode edge %s-[%s]->%s data: %w", r.From, r.Predicate, r.To, err)
		}
	}
	if r.CreatedAt, err = parseTime(stringCol(row, "created_at")); err != nil {
		return nil, fmt.Errorf("decode edge created_at: %w", err)
	}
	return r, nil
}

// marshalPayload converts a payload to canonical JSON TEXT for storage.
func marshalPayload(p graph.Payload) (string, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := graph.MarshalCanonical(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses JSON TEXT to a payload. Numbers are decoded as
// json.Number to avoid float64 precision loss for values > 2^53.
func unmarshalPayload(data string) (graph.Payload, error) {
	if data == "" || data == "{}" || data == "null" {
		return graph.Payload{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var p graph.Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

func stringCol(row Row, col string) string {
	s, _ := row[col].(string)
	return s
}

func intCol(row Row, col string) int64 {
	switch v := row[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
