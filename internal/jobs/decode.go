package jobs

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

// decodeField reads one optional field of a tool payload. It reports false when
// the field is absent, null, a blank string or cannot be converted to T,
// leaving the caller to apply that field's default.
func decodeField[T any](fields map[string]any, key string) (T, bool) {
	var out T

	raw, ok := fields[key]
	if !ok || raw == nil {
		return out, false
	}
	if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
		return out, false
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, false
	}

	if err := decoder.Decode(raw); err != nil {
		var zero T
		return zero, false
	}

	return out, true
}
