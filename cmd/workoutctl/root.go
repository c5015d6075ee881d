package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"example.com/workoutmap/internal/app"
	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/mapview"
	"example.com/workoutmap/internal/storage"
)

var (
	backendFlag string
	dbPath      string
	slotKey     string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "workoutctl",
	Short:         "workoutctl inspects and edits the stored workout log",
	Long:          "workoutctl reads and writes the same snapshot slot as the workout map server, so workouts can be logged, listed and cleared from a terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend (sqlite, postgres, memory); defaults to STORAGE_BACKEND")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database; defaults to SQLITE_PATH")
	rootCmd.PersistentFlags().StringVar(&slotKey, "key", "", "Snapshot slot key; defaults to SNAPSHOT_KEY")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log storage diagnostics to stderr")

	rootCmd.AddCommand(listCmd, showCmd, logCmd, resetCmd, tokenCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if backendFlag != "" {
		cfg.StorageBackend = strings.ToLower(backendFlag)
	}
	if dbPath != "" {
		cfg.SQLitePath = dbPath
	}
	if slotKey != "" {
		cfg.SnapshotKey = slotKey
	}
	return cfg, nil
}

// session is a started controller over the configured backend.
type session struct {
	ctrl   *app.Controller
	alerts *app.AlertQueue
}

func withSession(cmd *cobra.Command, fn func(context.Context, *session) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logOut := io.Discard
	if verbose {
		logOut = cmd.ErrOrStderr()
	}
	logger := log.New(logOut, "[workoutctl] ", log.LstdFlags)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	alerts := app.NewAlertQueue()
	ctrl := app.NewController(backend.Store, mapview.NewViewport(), alerts,
		app.WithLogger(logger),
		app.WithZoom(cfg.MapZoom),
	)
	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("load stored workouts: %w", err)
	}
	return fn(ctx, &session{ctrl: ctrl, alerts: alerts})
}
