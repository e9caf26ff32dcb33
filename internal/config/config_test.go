package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, "transactions", cfg.KafkaTopic)
	assert.Equal(t, "NGN", cfg.Currency)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SUPERSCAN_HTTP_PORT", "9090")
	t.Setenv("SUPERSCAN_STORAGE_DRIVER", "postgres")
	t.Setenv("SUPERSCAN_DB_PORT", "6543")
	t.Setenv("SUPERSCAN_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SUPERSCAN_OUTBOX_TICK", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxTick)
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("SUPERSCAN_DB_PORT", "not-an-int")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"))
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("SUPERSCAN_STORAGE_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported storage driver")
}
