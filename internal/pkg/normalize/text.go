package normalize

import (
	"encoding/json"
	"strconv"
)

// FlexString is a JSON text field that also accepts numbers, booleans and
// null. Objects and arrays become the empty string.
type FlexString struct {
	Value   string
	Present bool
}

// UnmarshalJSON never fails.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	s.Present = true
	s.Value = ""
	raw, err := decodeScalar(data)
	if err != nil {
		return nil
	}
	switch v := raw.(type) {
	case string:
		s.Value = v
	case json.Number:
		s.Value = v.String()
	case bool:
		s.Value = strconv.FormatBool(v)
	}
	return nil
}

// MarshalJSON renders the value as a JSON string.
func (s FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

func (s FlexString) String() string { return s.Value }

// NewFlexString returns a present text value.
func NewFlexString(v string) FlexString {
	return FlexString{Value: v, Present: true}
}
