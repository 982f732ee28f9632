package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// FlexID is a primary key that can be unmarshaled from either a JSON number or a JSON string.
// Clients send ids both ways ("tags": [1, "2"]).
type FlexID uint64

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		return f.set(n)
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		val, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("FlexID: invalid id string %q: %w", s, err)
		}
		return f.set(val)
	}

	return fmt.Errorf("FlexID: unexpected type, expected number or string")
}

// Keys are signed 64-bit columns in every supported database.
func (f *FlexID) set(n uint64) error {
	if n > math.MaxInt64 {
		return fmt.Errorf("FlexID: id %d out of range", n)
	}
	*f = FlexID(n)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(f))
}

// Uint64 converts FlexID back to uint64.
func (f FlexID) Uint64() uint64 {
	return uint64(f)
}

// IDs converts a FlexID slice to plain ids.
func IDs(in []FlexID) []uint64 {
	out := make([]uint64, len(in))
	for i, id := range in {
		out[i] = id.Uint64()
	}
	return out
}
