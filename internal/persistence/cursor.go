// Package persistence holds encodings shared by the storage and transport layers.
package persistence

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"example.com/workoutmap/internal/domain"
)

// ErrInvalidCursor is returned for page tokens that were not produced by EncodeCursor.
var ErrInvalidCursor = errors.New("invalid cursor")

type cursorToken struct {
	CreatedAt time.Time `json:"c"`
	ID        string    `json:"i"`
}

// EncodeCursor turns a page position into an opaque URL-safe token.
func EncodeCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	raw, err := json.Marshal(cursorToken{CreatedAt: c.CreatedAt.UTC(), ID: c.ID})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses EncodeCursor. A blank token means the first page.
func DecodeCursor(token string) (*domain.Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var tok cursorToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if tok.ID == "" {
		return nil, fmt.Errorf("%w: missing workout id", ErrInvalidCursor)
	}
	return &domain.Cursor{CreatedAt: tok.CreatedAt, ID: tok.ID}, nil
}
