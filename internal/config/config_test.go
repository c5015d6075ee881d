package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendSQLite, cfg.StorageBackend)
	require.Equal(t, "workouts", cfg.SnapshotKey)
	require.Equal(t, 15, cfg.MapZoom)
	require.Equal(t, time.Second, cfg.FocusAnimation)
	require.Equal(t, time.Second, cfg.FormCooldown)
	require.False(t, cfg.EventsEnabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workoutmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_address: ":9090"
storage:
  backend: postgres
  snapshot_key: from-file
map:
  center: "40.7,-73.9"
  zoom: 13
  form_cooldown: 250ms
events:
  kafka_brokers: ["k1:9092", "k2:9092"]
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SNAPSHOT_KEY", "from-env")
	t.Setenv("KAFKA_BROKERS", " a:9092 , ,b:9092")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress)
	require.Equal(t, BackendPostgres, cfg.StorageBackend)
	require.Equal(t, "from-env", cfg.SnapshotKey)
	require.Equal(t, "40.7,-73.9", cfg.MapCenter)
	require.Equal(t, 13, cfg.MapZoom)
	require.Equal(t, 250*time.Millisecond, cfg.FormCooldown)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.EventsEnabled())
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_BACKEND", "redis")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("map:\n  form_cooldown: soon\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	require.Error(t, err)
}

func TestInvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MAP_ZOOM", "close")
	t.Setenv("FORM_COOLDOWN", "later")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 15, cfg.MapZoom)
	require.Equal(t, time.Second, cfg.FormCooldown)
}
