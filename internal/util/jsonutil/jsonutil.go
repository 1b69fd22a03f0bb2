package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ParseText parses a JSON text column. It returns nil when the column is
// absent, blank or malformed so callers can leave the field unset.
func ParseText(raw *string) json.RawMessage {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" || !json.Valid([]byte(s)) {
		return nil
	}
	// Compact so the embedded payload does not carry the column's formatting.
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil
	}
	return json.RawMessage(buf.Bytes())
}

// ParseObject parses a JSON text column that is expected to hold an object.
// Member values keep their original bytes. ok is false for absent, malformed
// or non-object values.
func ParseObject(raw *string) (map[string]json.RawMessage, bool) {
	msg := ParseText(raw)
	if msg == nil {
		return nil, false
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(msg, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

// MarshalNoEscape encodes v into JSON without HTML escaping of <, > and &.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
