package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LooseID accepts an identifier sent either as a JSON number or a JSON
// string. The raw text is kept so callers decide whether it is numeric.
type LooseID string

func (l *LooseID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*l = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*l = LooseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("id must be a number or string")
	}
	*l = LooseID(n.String())
	return nil
}

// Uint64 returns the id when it is a positive decimal integer.
func (l LooseID) Uint64() (uint64, bool) {
	return ParseID(string(l))
}

// ParseID parses a positive decimal id made only of digits.
func ParseID(raw string) (uint64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// ParseIDList splits a comma separated list such as "2,abc,4" and keeps the
// numeric entries in order, dropping duplicates.
func ParseIDList(raw string) []uint64 {
	var ids []uint64
	seen := map[uint64]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		id, ok := ParseID(part)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
