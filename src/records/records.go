// Package records normalizes the two JSON shapes card and set documents
// arrive in: a flat array of objects, or an object keyed by arbitrary ids
// whose values are objects. Both become an ordered sequence of generic
// records so callers never type-test the root themselves.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is one generic entity record: JSON field name -> decoded value.
type Record map[string]any

// String returns the value of a field rendered as a string. Missing fields
// and nulls render as "". Numbers keep their source representation, compound
// values are re-marshaled.
func (r Record) String(field string) string {
	raw, ok := r[field]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// Has reports whether the field was present in the source document.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Normalize parses a JSON document whose root is an array or an object and
// returns its object values as records, in document order. Elements that are
// not objects are skipped. Any other root is an error.
func Normalize(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON root: %w", err)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, fmt.Errorf("JSON root must be an array or object, got %v", tok)
	}

	var out []Record
	switch delim {
	case '[':
		for dec.More() {
			rec, err := decodeElement(dec)
			if err != nil {
				return nil, err
			}
			if rec != nil {
				out = append(out, rec)
			}
		}
	case '{':
		for dec.More() {
			// Discard the key, it only names the entry.
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("failed to read object key: %w", err)
			}
			rec, err := decodeElement(dec)
			if err != nil {
				return nil, err
			}
			if rec != nil {
				out = append(out, rec)
			}
		}
	default:
		return nil, fmt.Errorf("unexpected JSON root delimiter %q", delim)
	}

	return out, nil
}

// NormalizeList decodes a field value already extracted from a record, e.g.
// a set record's embedded card list.
func NormalizeList(value any) []Record {
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	var out []Record
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

func decodeElement(dec *json.Decoder) (Record, error) {
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, nil // non-object element, skip
	}
	return Record(m), nil
}
