package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	// UserIDKey and TimestampsKey are the fixed keys of an entry's flat wire form
	UserIDKey     = "user_id"
	TimestampsKey = "timestamps"
)

// AnnotationEntry holds one user's annotation fields for a segment.
// Values and Timestamps always share the same key set.
type AnnotationEntry struct {
	UserID     string
	Values     map[string]any
	Timestamps map[string]any
}

// IsReservedField reports whether name collides with the fixed wire keys
func IsReservedField(name string) bool {
	return name == UserIDKey || name == TimestampsKey
}

// Set stores value and timestamp for a field, creating the maps if needed
func (e *AnnotationEntry) Set(field string, value, timestamp any) {
	if e.Values == nil {
		e.Values = make(map[string]any)
	}
	if e.Timestamps == nil {
		e.Timestamps = make(map[string]any)
	}
	e.Values[field] = value
	e.Timestamps[field] = timestamp
}

// MarshalJSON writes the flat form {"user_id": ..., "<field>": value, "timestamps": {...}}
func (e AnnotationEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Values)+2)
	for k, v := range e.Values {
		out[k] = v
	}
	out[UserIDKey] = e.UserID
	ts := e.Timestamps
	if ts == nil {
		ts = map[string]any{}
	}
	out[TimestampsKey] = ts
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat form written by MarshalJSON
func (e *AnnotationEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	entry := AnnotationEntry{
		Values:     make(map[string]any, len(raw)),
		Timestamps: make(map[string]any),
	}

	for key, msg := range raw {
		switch key {
		case UserIDKey:
			if err := json.Unmarshal(msg, &entry.UserID); err != nil {
				return fmt.Errorf("annotation entry user_id: %w", err)
			}
		case TimestampsKey:
			if string(msg) == "null" {
				continue
			}
			if err := decodeExact(msg, &entry.Timestamps); err != nil {
				return fmt.Errorf("annotation entry timestamps: %w", err)
			}
		default:
			var v any
			if err := decodeExact(msg, &v); err != nil {
				return fmt.Errorf("annotation entry field %q: %w", key, err)
			}
			entry.Values[key] = v
		}
	}

	*e = entry
	return nil
}

// decodeExact decodes numbers as json.Number so large integer timestamps keep every digit
func decodeExact(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
