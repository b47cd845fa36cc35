package content

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one stored document: a store-assigned identifier plus a free-form
// field map. Field values are whatever JSON decoding yields (string, float64,
// bool), so accessors tolerate missing and mistyped fields.
type Record struct {
	ID     string
	Fields map[string]any
}

// NewRecord returns a record with a non-nil field map.
func NewRecord(id string, fields map[string]any) Record {
	if fields == nil {
		fields = map[string]any{}
	}
	return Record{ID: id, Fields: fields}
}

// String returns the named field as a string, or "" when absent.
func (r Record) String(name string) string {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// Int returns the named field as an integer. Numeric strings are accepted.
func (r Record) Int(name string) (int, bool) {
	switch t := r.Fields[name].(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

// Bool returns the named field as a boolean. "true"/"on"/"1" strings count.
func (r Record) Bool(name string) bool {
	switch t := r.Fields[name].(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "on", "1", "yes":
			return true
		}
	case float64:
		return t != 0
	}
	return false
}

// Timestamp returns the epoch-millisecond timestamp, or 0 when missing.
func (r Record) Timestamp() int64 {
	switch t := r.Fields["timestamp"].(type) {
	case float64:
		if math.IsNaN(t) {
			return 0
		}
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	case json.Number:
		n, _ := t.Int64()
		return n
	}
	return 0
}

// List splits a comma-joined field into trimmed, non-empty items.
func (r Record) List(name string) []string {
	if arr, ok := r.Fields[name].([]any); ok {
		out := make([]string, 0, len(arr))
		for _, v := range arr {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return SplitList(r.String(name))
}

// SplitList parses a denormalized comma-joined string. A literal comma cannot
// be part of an item.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy of the top-level field map.
func (r Record) Clone() Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{ID: r.ID, Fields: fields}
}

// MarshalJSON flattens the record into {"id": ..., field: value, ...}.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, _ := raw["id"].(string)
	delete(raw, "id")
	*r = NewRecord(id, raw)
	return nil
}
