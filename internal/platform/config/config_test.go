package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TERMCOLOR_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "category", cfg.Taxonomy)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.CSRF.TTL)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(`
addr: ":9090"
taxonomy: genre
store:
  driver: sqlite
  sqlite_path: /tmp/meta.db
csrf:
  ttl: 1h
kafka:
  brokers: ["a:9092"]
`), 0o600)
	require.NoError(t, err)

	t.Setenv("TERMCOLOR_CONFIG", path)
	t.Setenv("TERMCOLOR_ADDR", ":7070")
	t.Setenv("KAFKA_BROKERS", "b:9092, c:9092")
	t.Setenv("CSRF_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr, "env overrides file")
	assert.Equal(t, "genre", cfg.Taxonomy)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/meta.db", cfg.Store.SQLitePath)
	assert.Equal(t, time.Hour, cfg.CSRF.TTL)
	assert.Equal(t, []string{"b:9092", "c:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 10, cfg.Redis.PoolSize, "untouched defaults survive the file")
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("TERMCOLOR_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("TERMCOLOR_CONFIG", "")
		t.Setenv("TERMCOLOR_STORE", DriverPostgres)
		t.Setenv("DATABASE_URL", "")
		_, err := Load()
		require.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("persistent driver without csrf secret", func(t *testing.T) {
		t.Setenv("TERMCOLOR_CONFIG", "")
		t.Setenv("TERMCOLOR_STORE", DriverSQLite)
		t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "meta.db"))
		t.Setenv("CSRF_SECRET", "")
		_, err := Load()
		require.ErrorContains(t, err, "CSRF_SECRET")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("TERMCOLOR_CONFIG", "")
		t.Setenv("TERMCOLOR_STORE", "etcd")
		_, err := Load()
		require.ErrorContains(t, err, "unknown store driver")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("TERMCOLOR_CONFIG", "")
		t.Setenv("CSRF_TTL", "soon")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestCSRFSecretFallback(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate(), "memory driver may use the development secret")
	assert.NotEmpty(t, cfg.CSRFSecret())
	cfg.CSRF.Secret = "s3cret"
	assert.Equal(t, "s3cret", cfg.CSRFSecret())
}
