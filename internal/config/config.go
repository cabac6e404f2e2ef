package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// SnowPilot fetcher configuration.
	SnowPilotBaseURL   string
	SnowPilotUser      string
	SnowPilotPassword  string
	SnowPilotTimeout   time.Duration
	SnowPilotCacheSize int
	SnowPilotPerPage   int

	// Local pit index (SQLite) used by the fetcher.
	IndexPath string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	fetchTimeoutStr := EnvOrDefault("SNOWPILOT_TIMEOUT", "30s")
	fetchTimeout, err2 := time.ParseDuration(fetchTimeoutStr)
	if err2 != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid SNOWPILOT_TIMEOUT")
	}

	cfg := &Config{
		KafkaBrokers:       ParseBrokers(EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-pit-documents"),
		KafkaSinkTopic:     EnvOrDefault("KAFKA_SINK_TOPIC", "snowpit-events"),
		KafkaGroupID:       EnvOrDefault("KAFKA_GROUP_ID", "snowpit-etl"),
		HTTPAddr:           EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		SnowPilotBaseURL:   EnvOrDefault("SNOWPILOT_BASE_URL", "https://snowpilot.org"),
		SnowPilotUser:      os.Getenv("SNOWPILOT_USER"),
		SnowPilotPassword:  os.Getenv("SNOWPILOT_PASSWORD"),
		SnowPilotTimeout:   fetchTimeout,
		SnowPilotCacheSize: parseCacheSize(),
		SnowPilotPerPage:   parsePerPage(),

		IndexPath: EnvOrDefault("PIT_INDEX_PATH", "snowpits.db"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.SnowPilotUser != "" && cfg.SnowPilotPassword == "" {
		return nil, errors.New("SNOWPILOT_USER is set but SNOWPILOT_PASSWORD is not")
	}

	return cfg, nil
}

func parseCacheSize() int {
	if s := os.Getenv("SNOWPILOT_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}

func parsePerPage() int {
	if s := os.Getenv("SNOWPILOT_PER_PAGE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 100
}
