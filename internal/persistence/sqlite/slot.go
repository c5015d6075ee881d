package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"example.com/workoutmap/internal/snapshot"
)

// Slot implements snapshot.Slot on a SQLite table. SQLite has no outbox, so
// events passed to Write and Delete are discarded.
type Slot struct {
	db *sql.DB
}

// NewSlot constructs a Slot on an opened database.
func NewSlot(db *sql.DB) *Slot {
	return &Slot{db: db}
}

// Read implements snapshot.Slot.
func (s *Slot) Read(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshot_slots WHERE slot_key = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, snapshot.ErrSlotEmpty
		}
		return nil, err
	}
	return []byte(payload), nil
}

// Write implements snapshot.Slot.
func (s *Slot) Write(ctx context.Context, key string, value []byte, _ []snapshot.Event) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO snapshot_slots(slot_key, payload, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(slot_key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		key, string(value))
	return err
}

// Delete implements snapshot.Slot.
func (s *Slot) Delete(ctx context.Context, key string, _ []snapshot.Event) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshot_slots WHERE slot_key = ?`, key)
	return err
}
