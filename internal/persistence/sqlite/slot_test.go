package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/snapshot"
)

func openTestDB(t *testing.T) *Slot {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "workouts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSlot(db)
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "workouts.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, ApplyMigrations(db))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&count))
	require.Equal(t, len(migrations), count)
}

func TestSlotReadMissingKey(t *testing.T) {
	slot := openTestDB(t)
	_, err := slot.Read(context.Background(), "workouts")
	require.ErrorIs(t, err, snapshot.ErrSlotEmpty)
}

func TestSlotWriteOverwritesAndDeleteRemoves(t *testing.T) {
	ctx := context.Background()
	slot := openTestDB(t)

	require.NoError(t, slot.Write(ctx, "workouts", []byte(`[1]`), nil))
	require.NoError(t, slot.Write(ctx, "workouts", []byte(`[2]`), nil))

	got, err := slot.Read(ctx, "workouts")
	require.NoError(t, err)
	require.Equal(t, `[2]`, string(got))

	require.NoError(t, slot.Delete(ctx, "workouts", nil))
	_, err = slot.Read(ctx, "workouts")
	require.ErrorIs(t, err, snapshot.ErrSlotEmpty)
}

func TestStoreRoundTripThroughSQLite(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewStore(openTestDB(t), "workouts")
	created := time.Date(2026, time.October, 15, 18, 0, 0, 0, time.UTC)
	original := []domain.Workout{
		domain.NewRunning("run-1", created, domain.Coordinates{Lat: 40, Lng: -73}, 5, 25, 180),
		domain.NewCycling("ride-1", created, domain.Coordinates{Lat: 40.5, Lng: -73.5}, 20, 60, 0),
	}

	require.NoError(t, store.Save(ctx, original))

	loaded, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, loaded, 2)
	require.Equal(t, "run-1", loaded[0].ID)
	require.Equal(t, 5.0, loaded[0].Running.Pace)
	require.Equal(t, "ride-1", loaded[1].ID)
	require.Equal(t, 20.0, loaded[1].Cycling.Speed)
}
