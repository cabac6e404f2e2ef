package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvOrDefault returns the environment variable's value, or def when unset.
func EnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBrokers splits a comma-separated broker list, dropping empty entries.
func ParseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ParseShutdownTimeout reads SHUTDOWN_TIMEOUT as a positive duration.
func ParseShutdownTimeout() (time.Duration, error) {
	s := EnvOrDefault("SHUTDOWN_TIMEOUT", "10s")
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q", s)
	}
	return d, nil
}

// ParseBatchSize reads BATCH_SIZE as an integer in [1, 1000].
func ParseBatchSize() (int, error) {
	s := EnvOrDefault("BATCH_SIZE", "50")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid BATCH_SIZE %q", s)
	}
	if n < 1 || n > 1000 {
		return 0, errors.New("BATCH_SIZE must be between 1 and 1000")
	}
	return n, nil
}

// ParseBatchFlushInterval reads BATCH_FLUSH_INTERVAL as a positive duration.
func ParseBatchFlushInterval() (time.Duration, error) {
	s := EnvOrDefault("BATCH_FLUSH_INTERVAL", "500ms")
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid BATCH_FLUSH_INTERVAL %q", s)
	}
	return d, nil
}
