// Package storage opens the snapshot backend selected by configuration.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/persistence/postgres"
	"example.com/workoutmap/internal/persistence/sqlite"
	"example.com/workoutmap/internal/snapshot"
)

// Backend is an opened snapshot store together with the handles it owns.
type Backend struct {
	Store *snapshot.Store
	// Pool is set only for the postgres backend; the outbox dispatcher needs it.
	Pool *pgxpool.Pool

	db *sql.DB
}

// Open connects to the backend named by cfg.StorageBackend.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (*Backend, error) {
	opts := []snapshot.Option{}
	if logger != nil {
		opts = append(opts, snapshot.WithLogger(logger))
	}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		return &Backend{Store: snapshot.NewStore(snapshot.NewMemorySlot(), cfg.SnapshotKey, opts...)}, nil
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: snapshot.NewStore(sqlite.NewSlot(db), cfg.SnapshotKey, opts...), db: db}, nil
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return &Backend{Store: snapshot.NewStore(postgres.NewRepository(pool), cfg.SnapshotKey, opts...), Pool: pool}, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

// Close releases the underlying connections.
func (b *Backend) Close() error {
	if b.Pool != nil {
		b.Pool.Close()
	}
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
