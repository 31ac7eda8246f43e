package resend

import (
	"fmt"
	"slices"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// decodeStrict decodes a JSON object to the target.
// Each required field must be present and must not be null, unknown fields are ignored.
func decodeStrict(data []byte, target any, required ...string) error {
	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("expected JSON object, found null")
	}
	for _, name := range required {
		if value, found := fields[name]; !found || strings.TrimSpace(string(value)) == "null" {
			return fmt.Errorf(`missing field "%s"`, name)
		}
	}
	return json.Unmarshal(data, target)
}

// decodeEnum accepts only one of the allowed values.
func decodeEnum[T ~string](target *T, text []byte, allowed ...T) error {
	value := T(text)
	if !slices.Contains(allowed, value) {
		expected := make([]string, len(allowed))
		for i, v := range allowed {
			expected[i] = `"` + string(v) + `"`
		}
		return fmt.Errorf(`unknown value "%s", expected one of: %s`, value, strings.Join(expected, ", "))
	}
	*target = value
	return nil
}
