package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Flag is a boolean sent as a JSON bool or as one of the usual switch words
// ("on", "off", "yes", "no", "1", "0" and so on). Set reports whether the
// field was present.
type Flag struct {
	Value bool
	Set   bool
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = Flag{}
		return nil
	}
	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		*f = Flag{Value: b, Set: true}
		return nil
	}
	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case float64:
		text = fmt.Sprint(v)
	default:
		return fmt.Errorf("must be a boolean")
	}
	value, ok := ParseFlag(text)
	if !ok {
		return fmt.Errorf("must be a boolean")
	}
	*f = Flag{Value: value, Set: true}
	return nil
}

// ParseFlag reads a switch word, case-insensitively.
func ParseFlag(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, true
	case "n", "no", "f", "false", "off", "0":
		return false, true
	}
	return false, false
}
