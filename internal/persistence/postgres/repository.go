package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/workoutmap/internal/events"
	"example.com/workoutmap/internal/snapshot"
)

// Repository provides Postgres-backed snapshot slots and outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Read implements snapshot.Slot.
func (r *Repository) Read(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT payload FROM snapshot_slots WHERE slot_key=$1`

	var payload string
	if err := r.pool.QueryRow(ctx, query, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, snapshot.ErrSlotEmpty
		}
		return nil, err
	}
	return []byte(payload), nil
}

// Write replaces the slot value and records outbox events inside a single transaction.
func (r *Repository) Write(ctx context.Context, key string, value []byte, evts []snapshot.Event) error {
	const upsert = `INSERT INTO snapshot_slots (slot_key, payload, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (slot_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`

	return r.inTx(ctx, key, evts, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsert, key, string(value))
		return err
	})
}

// Delete removes the slot and records outbox events inside a single transaction.
func (r *Repository) Delete(ctx context.Context, key string, evts []snapshot.Event) error {
	return r.inTx(ctx, key, evts, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM snapshot_slots WHERE slot_key=$1`, key)
		return err
	})
}

func (r *Repository) inTx(ctx context.Context, key string, evts []snapshot.Event, fn func(pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	for _, evt := range evts {
		if err = r.insertOutbox(ctx, tx, key, evt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, key string, evt snapshot.Event) error {
	body, err := json.Marshal(evt.Payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[evt.Type]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", evt.Type)
	}

	partitionKey := meta.PartitionKeyFn(key, evt)
	dedupeKey := fmt.Sprintf("%s:%s", evt.AggregateID, evt.Type)

	const stmt = `INSERT INTO outbox (slot_key, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (dedupe_key) DO NOTHING`

	_, err = tx.Exec(ctx, stmt,
		key,
		meta.AggregateType,
		evt.AggregateID,
		evt.Type,
		meta.Topic,
		meta.SchemaSubject,
		partitionKey,
		body,
		dedupeKey,
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	AggregateType  string
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(slotKey string, evt snapshot.Event) string
}

var eventCatalog = map[string]EventMetadata{
	events.TypeWorkoutLogged: {
		AggregateType: "workout",
		Topic:         "workout_events",
		SchemaSubject: "workout_events-value",
		PartitionKeyFn: func(slotKey string, _ snapshot.Event) string {
			return slotKey
		},
	},
	events.TypeWorkoutsReset: {
		AggregateType: "slot",
		Topic:         "workout_resets",
		SchemaSubject: "workout_resets-value",
		PartitionKeyFn: func(slotKey string, _ snapshot.Event) string {
			return slotKey
		},
	},
}
