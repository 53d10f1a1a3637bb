package history

import (
	"crypto/rand"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// Entry is one recorded generation result. Module-specific payload fields
// live in Fields and are serialized flat next to id and timestamp, so the
// stored blob keeps the original flat-object shape.
type Entry struct {
	ID        string
	Timestamp time.Time
	Fields    map[string]any
}

// NewEntry stamps a fresh entry with a creation-time-ordered id.
func NewEntry(fields map[string]any) Entry {
	return Entry{
		ID:        NewID(),
		Timestamp: time.Now().UTC(),
		Fields:    fields,
	}
}

// NewID returns a ULID: unique within a store and sortable by creation time.
func NewID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// MarshalJSON flattens Fields into the top-level object.
func (e Entry) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(e.Fields)+2)
	for k, v := range e.Fields {
		if k == "id" || k == "timestamp" {
			continue
		}
		flat[k] = v
	}
	flat["id"] = e.ID
	flat["timestamp"] = e.Timestamp.Format(time.RFC3339Nano)
	return json.Marshal(flat)
}

// UnmarshalJSON lifts id and timestamp back out of the flat object.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	if id, ok := flat["id"].(string); ok {
		e.ID = id
	}
	if raw, ok := flat["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			e.Timestamp = ts
		}
	}
	delete(flat, "id")
	delete(flat, "timestamp")
	e.Fields = flat

	return nil
}
