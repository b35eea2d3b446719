package types

import (
	"bytes"
	"encoding/json"
)

// NullableString tracks whether a string field was present in a JSON body.
// Present tells a missing key apart from an explicit null; Value is nil for
// null and points at the decoded string otherwise (empty strings included).
type NullableString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler. It only runs for keys present in
// the payload.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		n.Present = true
		n.Value = nil
		return nil
	}

	var parsed string
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Present = true
	n.Value = &parsed
	return nil
}

// MarshalJSON renders the value or null.
func (n NullableString) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// SetString returns a present NullableString holding value.
func SetString(value string) NullableString {
	return NullableString{Present: true, Value: &value}
}

// SetNull returns a present NullableString holding null.
func SetNull() NullableString {
	return NullableString{Present: true}
}
