package audit

import "fmt"

// Metadata is a string-keyed mapping to structured values: string, number,
// boolean, nil, nested Metadata, or a []any sequence of the same. Keys are
// unique by construction (it is a Go map); insertion order is irrelevant
// per the data model.
type Metadata map[string]any

// clone returns a deep copy of m so a builder's enrichment bag and a built
// event never alias the same maps/slices.
func (m Metadata) clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Metadata:
		return t.clone()
	case map[string]any:
		return Metadata(t).clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Validate rejects values outside the structured-value grammar: string,
// number (any Go numeric kind), bool, nil, nested map, or slice thereof.
func (m Metadata) Validate() error {
	for k, v := range m {
		if err := validateValue(v); err != nil {
			return fmt.Errorf("metadata key %q: %w", k, err)
		}
	}
	return nil
}

func validateValue(v any) error {
	switch t := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return nil
	case Metadata:
		return t.Validate()
	case map[string]any:
		return Metadata(t).Validate()
	case []any:
		for _, e := range t {
			if err := validateValue(e); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported metadata value type %T", v)
	}
}
