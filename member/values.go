package member

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text is a string field that also decodes JSON numbers and null, so records
// produced by loosely typed form layers decode without error.
type Text string

// String returns t as a plain string.
func (t Text) String() string { return string(t) }

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*t = Text(data)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("member: text field: %w", err)
	}
	*t = Text(n.String())
	return nil
}

// Flag is a boolean that decodes JSON booleans, numbers and the strings the
// census forms store ("sim", "true", "1", "x", "on").
type Flag bool

// Bool returns f as a plain bool.
func (f Flag) Bool() bool { return bool(f) }

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("member: flag field: %w", err)
	}
	switch x := v.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(x)
	case float64:
		*f = x != 0
	case string:
		*f = parseFlag(x)
	default:
		*f = false
	}
	return nil
}

func parseFlag(s string) Flag {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sim", "s", "true", "yes", "x", "on":
		return true
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && n != 0
}
