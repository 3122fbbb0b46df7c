package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessEnvironmentVariables_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := ProcessEnvironmentVariables()

	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Postgres.Address)
	assert.Equal(t, "5433", cfg.Postgres.Port)
	assert.Equal(t, "postgres", cfg.ColdStore.Driver)
	assert.Equal(t, 3*time.Second, cfg.ColdStore.Timeout)
	assert.Equal(t, 1, cfg.ColdStore.Retries)
	assert.Equal(t, time.Hour, cfg.Jobs.ArchiveInterval)
	assert.Equal(t, time.Hour, cfg.Jobs.RestoreInterval)
	assert.Equal(t, 4, cfg.Workers)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestProcessEnvironmentVariables_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LIFECYCLE_POSTGRES_ADDRESS", "db.internal")
	t.Setenv("LIFECYCLE_COLDSTORE_POSTGRES_PORT", "6543")
	t.Setenv("LIFECYCLE_COLDSTORE_DRIVER", "memory")
	t.Setenv("LIFECYCLE_JOBS_ARCHIVE_INTERVAL", "15m")
	t.Setenv("LIFECYCLE_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LIFECYCLE_WORKERS", "8")

	cfg, err := ProcessEnvironmentVariables()

	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Postgres.Address)
	assert.Equal(t, "6543", cfg.ColdStore.Postgres.Port)
	assert.Equal(t, "memory", cfg.ColdStore.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Jobs.ArchiveInterval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 8, cfg.Workers)
}

func TestProcessEnvironmentVariables_Invalid(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LIFECYCLE_COLDSTORE_DRIVER", "mongo")

	_, err := ProcessEnvironmentVariables()

	assert.ErrorContains(t, err, "coldstore.driver")
}

func TestValidate_RunTimeout(t *testing.T) {
	tests := []struct {
		name       string
		runTimeout time.Duration
		lockTTL    time.Duration
		wantErr    string
	}{
		{name: "shorter than lock", runTimeout: 50 * time.Minute, lockTTL: 55 * time.Minute},
		{name: "zero", runTimeout: 0, lockTTL: 55 * time.Minute, wantErr: "jobs.run_timeout must be positive"},
		{name: "negative", runTimeout: -time.Minute, lockTTL: 55 * time.Minute, wantErr: "jobs.run_timeout must be positive"},
		{name: "equal to lock", runTimeout: 55 * time.Minute, lockTTL: 55 * time.Minute, wantErr: "shorter than jobs.lock_ttl"},
		{name: "longer than lock", runTimeout: 2 * time.Hour, lockTTL: 55 * time.Minute, wantErr: "shorter than jobs.lock_ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			t.Setenv("LIFECYCLE_JOBS_RUN_TIMEOUT", tt.runTimeout.String())
			t.Setenv("LIFECYCLE_JOBS_LOCK_TTL", tt.lockTTL.String())

			cfg, err := ProcessEnvironmentVariables()

			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.runTimeout, cfg.Jobs.RunTimeout)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "postgres.address", envKey("LIFECYCLE_POSTGRES_ADDRESS"))
	assert.Equal(t, "postgres.max_open_conns", envKey("LIFECYCLE_POSTGRES_MAX_OPEN_CONNS"))
	assert.Equal(t, "coldstore.postgres.db", envKey("LIFECYCLE_COLDSTORE_POSTGRES_DB"))
	assert.Equal(t, "coldstore.breaker_open_for", envKey("LIFECYCLE_COLDSTORE_BREAKER_OPEN_FOR"))
	assert.Equal(t, "jobs.lock_ttl", envKey("LIFECYCLE_JOBS_LOCK_TTL"))
	assert.Equal(t, "http_port", envKey("LIFECYCLE_HTTP_PORT"))
}
