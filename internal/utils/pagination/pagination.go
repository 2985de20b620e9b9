// Package pagination provides keyset pagination with opaque cursors.
package pagination

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default values.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ErrInvalidCursor is returned for tokens that are malformed or were issued
// for a different listing.
var ErrInvalidCursor = errors.New("invalid cursor")

// Request represents pagination parameters bound from a query string.
type Request struct {
	Cursor   string `form:"cursor"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1"`
}

// ClampPageSize returns size bounded to [1, max], using def for non-positive
// values.
func ClampPageSize(size, def, max int) int {
	if def < 1 {
		def = DefaultPageSize
	}
	if max < 1 {
		max = MaxPageSize
	}
	if size < 1 {
		size = def
	}
	if size > max {
		size = max
	}
	return size
}

// Position is a keyset position: the sort key of the last item returned.
// Items strictly after it come next.
type Position struct {
	At time.Time
	ID uuid.UUID
}

// After reports whether (at, id) sorts strictly after p.
func (p Position) After(at time.Time, id uuid.UUID) bool {
	if at.Equal(p.At) {
		return strings.Compare(id.String(), p.ID.String()) > 0
	}
	return at.After(p.At)
}

type cursor struct {
	At    int64     `json:"t"`
	ID    uuid.UUID `json:"id"`
	Scope string    `json:"s,omitempty"`
}

// HashScope computes a short hash that binds a cursor to one listing.
func HashScope(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:8])
}

// EncodeCursor encodes a position into an opaque token bound to scope.
func EncodeCursor(p Position, scope string) string {
	data, _ := json.Marshal(cursor{
		At:    p.At.UTC().UnixMicro(),
		ID:    p.ID,
		Scope: scope,
	})
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor decodes a token produced by EncodeCursor for the same scope.
// An empty token means the first page and yields a nil position.
func DecodeCursor(token, scope string) (*Position, error) {
	if token == "" {
		return nil, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var c cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, ErrInvalidCursor
	}
	if c.ID == uuid.Nil || c.At <= 0 || c.Scope != scope {
		return nil, ErrInvalidCursor
	}

	return &Position{At: time.UnixMicro(c.At).UTC(), ID: c.ID}, nil
}

// Page is one page of results.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// HasMore reports whether another page follows.
func (p *Page[T]) HasMore() bool {
	return p.NextCursor != ""
}
