// Package pagination implements keyset paging over (created_at DESC, id DESC).
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxLimit caps how many rows any list query can request.
const MaxLimit = 100

// ErrInvalidCursor wraps every cursor decoding failure.
var ErrInvalidCursor = errors.New("invalid cursor")

// Params holds keyset pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor *Cursor
}

// Cursor points at the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        uuid.UUID `json:"id"`
}

// NormalizeLimit applies fallback for non-positive limits and caps at MaxLimit.
func NormalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	return min(limit, MaxLimit)
}

// LimitWithBuffer returns the normalized limit plus one to detect the next page.
func LimitWithBuffer(limit, fallback int) int {
	return NormalizeLimit(limit, fallback) + 1
}

// EncodeCursor returns an opaque URL-safe token for c.
func EncodeCursor(c Cursor) string {
	c.CreatedAt = c.CreatedAt.UTC()
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor decodes a token from EncodeCursor. Blank input yields nil.
func ParseCursor(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.CreatedAt.IsZero() || c.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing position", ErrInvalidCursor)
	}
	return &c, nil
}

// Keyset is a gorm scope that orders newest first and resumes after cursor when set.
func Keyset(cursor *Cursor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor != nil {
			db = db.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
		}
		return db.Order("created_at DESC").Order("id DESC")
	}
}

// Trim drops the buffer row fetched by LimitWithBuffer and returns the cursor for the next page, if any.
func Trim[T any](rows []T, limit int, key func(T) Cursor) ([]T, string) {
	if limit <= 0 || len(rows) <= limit {
		return rows, ""
	}
	rows = rows[:limit]
	return rows, EncodeCursor(key(rows[limit-1]))
}
