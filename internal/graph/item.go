package graph

import "sort"

// Item is a flat entity record as rendered into or extracted from a view
// document: an open map carrying the "id" and "type" envelope fields plus
// arbitrary payload fields. Items are ephemeral; they exist only for the
// duration of a render/sync cycle.
type Item map[string]any

// Envelope field names. Everything else in an Item is payload.
const (
	ItemFieldID   = "id"
	ItemFieldType = "type"
)

// ID returns the item's id envelope field, or "" if unset.
func (it Item) ID() string {
	s, _ := it[ItemFieldID].(string)
	return s
}

// EntityType returns the item's type envelope field, or "" if unset.
func (it Item) EntityType() string {
	s, _ := it[ItemFieldType].(string)
	return s
}

// Fields returns the payload field names, envelope excluded, sorted.
func (it Item) Fields() []string {
	keys := make([]string, 0, len(it))
	for k := range it {
		if k == ItemFieldID || k == ItemFieldType {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Payload returns the item's payload fields as a Payload, envelope
// excluded.
func (it Item) Payload() Payload {
	out := make(Payload, len(it))
	for k, v := range it {
		if k == ItemFieldID || k == ItemFieldType {
			continue
		}
		out[k] = v
	}
	return out
}

// ItemFromThing flattens a Thing into an Item. Payload fields that would
// collide with the envelope are dropped in favor of the envelope.
func ItemFromThing(t *Thing) Item {
	it := make(Item, len(t.Data)+2)
	for k, v := range t.Data {
		it[k] = v
	}
	it[ItemFieldID] = t.Key.ID
	it[ItemFieldType] = t.Key.Type
	return it
}
