package store

import (
	"encoding/json"
	"fmt"
)

// Encode renders v into the wire format. []byte values pass through
// unmodified (raw passthrough); everything else is marshaled to JSON.
// Values that cannot be structurally encoded are stored raw instead of
// failing the write.
func Encode(v any) []byte {
	if raw, ok := v.([]byte); ok {
		return raw
	}

	data, err := json.Marshal(v)
	if err == nil {
		return data
	}

	switch raw := v.(type) {
	case fmt.Stringer:
		return []byte(raw.String())
	default:
		return []byte(fmt.Sprint(v))
	}
}

// Decode interprets raw stored bytes. A structured decode is attempted
// first; bytes that are not valid JSON are returned unchanged as a string,
// so both structured and legacy raw values are retrievable uniformly.
func Decode(data []byte) any {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}
