package domain

import (
	"errors"
	"time"
)

// ErrStaleCursor is returned when a cursor no longer points into the collection.
var ErrStaleCursor = errors.New("cursor does not match any workout")

// Cursor marks the last workout of a page.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Page returns up to limit workouts following after, in display order, and
// the cursor for the next page (nil when the end is reached).
func (c *Collection) Page(after *Cursor, limit int) ([]Workout, *Cursor, error) {
	start := 0
	if after != nil {
		i, ok := c.index[after.ID]
		if !ok || !c.items[i].CreatedAt.Equal(after.CreatedAt) {
			return nil, nil, ErrStaleCursor
		}
		start = i + 1
	}
	if limit <= 0 || start+limit > len(c.items) {
		limit = len(c.items) - start
	}

	page := make([]Workout, limit)
	copy(page, c.items[start:start+limit])

	var next *Cursor
	if end := start + limit; end < len(c.items) && limit > 0 {
		last := page[len(page)-1]
		next = &Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return page, next, nil
}
