package storage

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/domain"
)

func TestOpenMemoryBackend(t *testing.T) {
	backend, err := Open(context.Background(), config.Config{StorageBackend: config.BackendMemory, SnapshotKey: "log"}, nil)
	require.NoError(t, err)
	defer backend.Close()

	require.Nil(t, backend.Pool)
	require.Equal(t, "log", backend.Store.Key())
	_, ok, err := backend.Store.Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpenSQLiteBackendPersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		StorageBackend: config.BackendSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "workouts.db"),
		SnapshotKey:    "workouts",
	}
	quiet := log.New(io.Discard, "", 0)

	first, err := Open(ctx, cfg, quiet)
	require.NoError(t, err)
	run := domain.NewRunning("w-1", time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC), domain.Coordinates{Lat: 1, Lng: 2}, 5, 25, 180)
	require.NoError(t, first.Store.Save(ctx, []domain.Workout{run}))
	require.NoError(t, first.Close())

	second, err := Open(ctx, cfg, quiet)
	require.NoError(t, err)
	defer second.Close()

	loaded, ok, err := second.Store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, loaded, 1)
	require.Equal(t, "w-1", loaded[0].ID)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.Config{StorageBackend: "redis"}, nil)
	require.ErrorContains(t, err, "unsupported storage backend")
}
