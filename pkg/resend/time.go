package resend

import (
	"fmt"
	"time"

	"github.com/relvacode/iso8601"
)

// CreatedAt is the creation time in the wire format, for example "2023-04-26T20:21:26.347412+00:00".
// The value is kept as received, so it can be sent back unchanged.
type CreatedAt string

// Time parses the value, the API uses various ISO 8601 variants.
func (v CreatedAt) Time() (time.Time, error) {
	t, err := iso8601.ParseString(string(v))
	if err != nil {
		return time.Time{}, fmt.Errorf(`created_at "%s" is not valid: %w`, string(v), err)
	}
	return t, nil
}

func (v CreatedAt) String() string {
	return string(v)
}
