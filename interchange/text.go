package interchange

import (
	"encoding/json"
	"fmt"
)

// ToGuestText renders an interchange value as literal text the guest can
// evaluate. JSON is a syntactic subset of a JavaScript expression, so the
// output is safe to splice into a call argument list or assignment; all
// quoting and escaping is handled by the encoder.
func ToGuestText(v Value) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode guest text: %w", err)
	}
	return string(data), nil
}

// FromGuestText parses guest-serialized text back into the interchange
// form. The guest always reports through JSON.stringify, so any parse
// failure means the reported result had an unexpected shape.
func FromGuestText(s string) (Value, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("parse guest text: %w", err)
	}
	return v, nil
}
