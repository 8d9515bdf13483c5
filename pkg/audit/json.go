package audit

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// quoteJSON and unquoteJSON centralize the string (de)serialization helpers
// used by the tagged-union and enum types in this package so they all go
// through the same canonical JSON codec as the chain log payloads.
func quoteJSON(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

func unquoteJSON(b []byte) (string, error) {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", fmt.Errorf("unmarshal string token: %w", err)
	}
	return s, nil
}

// newDeserializationError reports an unknown discriminator or enum token.
// Per the tagged-union design, this is always a hard deserialization error,
// never a silent coercion to a default.
func newDeserializationError(field, value string) error {
	return fmt.Errorf("audit: unknown %s discriminator %q", field, value)
}
