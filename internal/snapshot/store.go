// Package snapshot persists the whole workout collection into one named slot
// of a key-value backend.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/events"
	"example.com/workoutmap/internal/observability"
)

// DefaultKey names the slot used when none is configured.
const DefaultKey = "workouts"

// ErrSlotEmpty is returned by a Slot when nothing is stored under the key.
var ErrSlotEmpty = errors.New("snapshot slot is empty")

// Event is a change notification recorded alongside a slot write.
type Event struct {
	Type        string
	AggregateID string
	Payload     any
}

// Slot is a key-value backend holding opaque snapshot values. Backends with an
// outbox record the supplied events in the same transaction as the write;
// backends without one discard them.
type Slot interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte, events []Event) error
	Delete(ctx context.Context, key string, events []Event) error
}

// Option configures optional behaviour for the Store.
type Option func(*Store)

// WithLogger overrides the logger used to report unreadable snapshots.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store serialises the collection to a single slot. Every save replaces the
// previous value entirely.
type Store struct {
	slot   Slot
	key    string
	logger *log.Logger
}

// NewStore constructs a Store writing to key in slot.
func NewStore(slot Slot, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		slot:   slot,
		key:    key,
		logger: log.New(log.Writer(), "[snapshot] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the slot name.
func (s *Store) Key() string {
	return s.key
}

// Save overwrites the slot with the full ordered collection.
func (s *Store) Save(ctx context.Context, workouts []domain.Workout, evts ...Event) error {
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	body, err := json.Marshal(workouts)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.slot.Write(ctx, s.key, body, evts); err != nil {
		observability.RecordSnapshotFailure("write")
		return fmt.Errorf("write snapshot %q: %w", s.key, err)
	}
	observability.RecordSnapshotPersisted(time.Now())
	return nil
}

// Load returns the stored collection. ok is false when nothing is stored or
// the stored value cannot be decoded; err is only set for backend failures.
func (s *Store) Load(ctx context.Context) ([]domain.Workout, bool, error) {
	body, err := s.slot.Read(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrSlotEmpty) {
			return nil, false, nil
		}
		observability.RecordSnapshotFailure("read")
		return nil, false, fmt.Errorf("read snapshot %q: %w", s.key, err)
	}

	var workouts []domain.Workout
	if err := json.Unmarshal(body, &workouts); err != nil {
		s.logger.Printf("ignoring unreadable snapshot (key=%s): %v", s.key, err)
		observability.RecordSnapshotFailure("decode")
		return nil, false, nil
	}
	if _, err := domain.NewCollection(workouts); err != nil {
		s.logger.Printf("ignoring inconsistent snapshot (key=%s): %v", s.key, err)
		observability.RecordSnapshotFailure("decode")
		return nil, false, nil
	}
	return workouts, true, nil
}

// Clear removes the slot.
func (s *Store) Clear(ctx context.Context, evts ...Event) error {
	if err := s.slot.Delete(ctx, s.key, evts); err != nil {
		observability.RecordSnapshotFailure("delete")
		return fmt.Errorf("clear snapshot %q: %w", s.key, err)
	}
	return nil
}

// LoggedEvent describes w being appended to this store's collection.
func (s *Store) LoggedEvent(w domain.Workout) Event {
	payload := events.WorkoutLogged{
		WorkoutID:   w.ID,
		Slot:        s.key,
		WorkoutType: string(w.Kind),
		Description: w.Description,
		Latitude:    w.Coords.Lat,
		Longitude:   w.Coords.Lng,
		DistanceKm:  w.DistanceKm,
		DurationMin: w.DurationMin,
		LoggedAt:    w.CreatedAt.UTC(),
	}
	if w.Running != nil {
		payload.Cadence = &w.Running.Cadence
		payload.Pace = &w.Running.Pace
	}
	if w.Cycling != nil {
		payload.ElevationGain = &w.Cycling.ElevationGain
		payload.Speed = &w.Cycling.Speed
	}
	return Event{Type: events.TypeWorkoutLogged, AggregateID: w.ID, Payload: payload}
}

// ResetEvent describes the slot being cleared with discarded workouts in it.
func (s *Store) ResetEvent(discarded int, at time.Time) Event {
	return Event{
		Type:        events.TypeWorkoutsReset,
		AggregateID: fmt.Sprintf("%s@%s", s.key, at.UTC().Format(time.RFC3339Nano)),
		Payload: events.WorkoutsReset{
			Slot:      s.key,
			Discarded: discarded,
			ResetAt:   at.UTC(),
		},
	}
}
