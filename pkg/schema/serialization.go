package schema

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the schema as a map of field names to declaration
// strings, the same form prompt documents use.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	raw := make(map[string]string, len(s))
	for field, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", field)
		}
		raw[field] = typ.Name()
	}
	return json.Marshal(raw)
}

// UnmarshalJSON reads a declaration map back into a Schema. Only the
// parseable declaration forms round-trip; Range, Enum and Custom types
// serialize descriptively but cannot be reconstructed from text.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	if string(data) == "null" {
		*s = nil
		return nil
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTypeMap(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
