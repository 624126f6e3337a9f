package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "INGEST_LOCK_TTL", "INGEST_WORKER_CONCURRENCY", "RATE_LIMIT_ENABLED", "ADMIN_TOKEN", "INGEST_INBOX_DIR"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Ingest.LockTTL)
	assert.Equal(t, 2, cfg.Ingest.WorkerConcurrency)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Empty(t, cfg.Admin.Token)
	assert.Empty(t, cfg.Ingest.InboxDir)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("INGEST_LOCK_TTL", "90s")
	t.Setenv("INGEST_WORKER_CONCURRENCY", "-3")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("APP_ENV", "production")
	t.Setenv("INGEST_INBOX_DIR", "/srv/inbox")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 90*time.Second, cfg.Ingest.LockTTL)
	assert.Equal(t, 2, cfg.Ingest.WorkerConcurrency)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "/srv/inbox", cfg.Ingest.InboxDir)
}

func TestInvalidLockTTLFallsBack(t *testing.T) {
	t.Setenv("INGEST_LOCK_TTL", "forever")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Ingest.LockTTL)
}
