package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "raw-pit-documents", cfg.KafkaSourceTopic)
	assert.Equal(t, "snowpit-events", cfg.KafkaSinkTopic)
	assert.Equal(t, "snowpit-etl", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)

	assert.Equal(t, "https://snowpilot.org", cfg.SnowPilotBaseURL)
	assert.Empty(t, cfg.SnowPilotUser)
	assert.Equal(t, 30*time.Second, cfg.SnowPilotTimeout)
	assert.Equal(t, 256, cfg.SnowPilotCacheSize)
	assert.Equal(t, 100, cfg.SnowPilotPerPage)
	assert.Equal(t, "snowpits.db", cfg.IndexPath)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("SNOWPILOT_BASE_URL", "http://localhost:8089")
	t.Setenv("SNOWPILOT_USER", "observer")
	t.Setenv("SNOWPILOT_PASSWORD", "hunter2")
	t.Setenv("SNOWPILOT_TIMEOUT", "10s")
	t.Setenv("SNOWPILOT_CACHE_SIZE", "512")
	t.Setenv("SNOWPILOT_PER_PAGE", "25")
	t.Setenv("PIT_INDEX_PATH", "/var/lib/snowpit/index.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, "http://localhost:8089", cfg.SnowPilotBaseURL)
	assert.Equal(t, "observer", cfg.SnowPilotUser)
	assert.Equal(t, "hunter2", cfg.SnowPilotPassword)
	assert.Equal(t, 10*time.Second, cfg.SnowPilotTimeout)
	assert.Equal(t, 512, cfg.SnowPilotCacheSize)
	assert.Equal(t, 25, cfg.SnowPilotPerPage)
	assert.Equal(t, "/var/lib/snowpit/index.db", cfg.IndexPath)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_BatchSizeTooLarge(t *testing.T) {
	t.Setenv("BATCH_SIZE", "9999")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidSnowPilotTimeout(t *testing.T) {
	t.Setenv("SNOWPILOT_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNOWPILOT_TIMEOUT")
}

func TestLoad_UserWithoutPassword(t *testing.T) {
	t.Setenv("SNOWPILOT_USER", "observer")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNOWPILOT_PASSWORD")
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers("a:9092, b:9092"))
	assert.Equal(t, []string{"a:9092"}, ParseBrokers("a:9092,"))
	assert.Nil(t, ParseBrokers(""))
}
