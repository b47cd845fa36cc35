package content

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
)

// Payload converts submitted form values into a merge payload shaped by the
// schema. Only fields present in values are included, so an edit that omits a
// field leaves the stored value untouched. Unknown keys and the timestamp are
// dropped.
func (s Schema) Payload(values map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for _, f := range s.EditableFields() {
		raw, ok := values[f.Name]
		if !ok {
			continue
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func coerce(f Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Type {
	case FieldInt:
		if raw == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a whole number", apperr.ErrValidation, f.Label)
		}
		return n, nil
	case FieldBool:
		switch strings.ToLower(raw) {
		case "true", "on", "1", "yes":
			return true, nil
		}
		return false, nil
	case FieldList:
		return strings.Join(SplitList(raw), ", "), nil
	default:
		return raw, nil
	}
}

// FormValues renders a stored record back into form values for the schema's
// editable fields.
func (s Schema) FormValues(r Record) map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.EditableFields() {
		if _, ok := r.Fields[f.Name]; !ok {
			continue
		}
		switch f.Type {
		case FieldBool:
			if r.Bool(f.Name) {
				out[f.Name] = "true"
			} else {
				out[f.Name] = "false"
			}
		case FieldList:
			out[f.Name] = strings.Join(r.List(f.Name), ", ")
		default:
			out[f.Name] = r.String(f.Name)
		}
	}
	return out
}

// Normalize checks a JSON patch against the schema and converts its values to
// their stored types. Unknown fields are rejected. A nil value is kept so the
// store removes the field; "id" is ignored.
func (s Schema) Normalize(patch map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(patch))
	for name, v := range patch {
		if name == "id" {
			continue
		}
		f, ok := s.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", apperr.ErrValidation, s.Path, name)
		}
		if v == nil {
			out[name] = nil
			continue
		}
		nv, err := normalizeValue(f, v)
		if err != nil {
			return nil, err
		}
		out[name] = nv
	}
	return out, nil
}

func normalizeValue(f Field, v any) (any, error) {
	switch t := v.(type) {
	case string:
		if f.Type == FieldTimestamp {
			n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be epoch milliseconds", apperr.ErrValidation, f.Label)
			}
			return n, nil
		}
		return coerce(f, t)
	case bool:
		if f.Type == FieldBool {
			return t, nil
		}
	case float64:
		switch f.Type {
		case FieldInt, FieldTimestamp:
			if t != math.Trunc(t) {
				return nil, fmt.Errorf("%w: %s must be a whole number", apperr.ErrValidation, f.Label)
			}
			if f.Type == FieldInt {
				return int(t), nil
			}
			return int64(t), nil
		}
	case []any:
		if f.Type == FieldList {
			parts := make([]string, 0, len(t))
			for _, p := range t {
				s, ok := p.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s must be a list of strings", apperr.ErrValidation, f.Label)
				}
				parts = append(parts, s)
			}
			return coerce(f, strings.Join(parts, ","))
		}
	}
	return nil, fmt.Errorf("%w: %s has the wrong type", apperr.ErrValidation, f.Label)
}
