// Package pagination implements newest-first keyset pages over
// (created_at, id).
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

var ErrInvalidCursor = errors.New("pagination: invalid cursor")

// Cursor points at the first row of the next page.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        uint64    `json:"i"`
}

// Clamp maps a requested page size into [1, MaxLimit], defaulting to DefaultLimit.
func Clamp(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Token renders the cursor as an opaque URL-safe string.
func (c Cursor) Token() string {
	raw, _ := json.Marshal(Cursor{CreatedAt: c.CreatedAt.UTC(), ID: c.ID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode reverses Token. A blank token yields a nil cursor.
func Decode(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == 0 || c.CreatedAt.IsZero() {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}

// Newest orders query newest first and, when from is set, starts at that row.
// Callers should fetch Clamp(limit)+1 rows and pass them to Split.
func Newest(query *gorm.DB, from *Cursor) *gorm.DB {
	if from != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id <= ?)", from.CreatedAt, from.CreatedAt, from.ID)
	}
	return query.Order("created_at DESC").Order("id DESC")
}

// Split cuts rows to limit and returns the cursor of the first dropped row.
func Split[T any](rows []T, limit int, key func(T) Cursor) ([]T, *Cursor) {
	limit = Clamp(limit)
	if len(rows) <= limit {
		return rows, nil
	}
	next := key(rows[limit])
	return rows[:limit], &next
}
