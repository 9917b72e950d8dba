package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/i474232898/weather-extractor/internal/weather/providers"
)

type AppConfig struct {
	// ArchiveURL is the historical archive endpoint.
	ArchiveURL string

	// HTTPTimeout bounds a single archive request.
	HTTPTimeout time.Duration

	// Fetch pacing and resilience.
	MaxConcurrentRequests int
	RequestsPerSecond     float64
	MaxRetries            int

	LogLevel string

	// FetchInterval controls how often the scheduled extraction runs.
	FetchInterval time.Duration

	// ExtractionConfig is the job file used by the scheduled extraction.
	ExtractionConfig string

	// Run history retention.
	StoreMaxHistory int           // max number of runs per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of runs (0 = unlimited)

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Info("no .env file found, using environment variables")
	}
	cfg := &AppConfig{}

	cfg.ArchiveURL = getenvDefault("ARCHIVE_URL", providers.DefaultArchiveURL)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.ExtractionConfig = os.Getenv("EXTRACTION_CONFIG")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	// Scheduler interval: default one day; archive data lags by several days.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "24h"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "720h"); err != nil {
		return nil, err
	}

	cfg.MaxConcurrentRequests = getenvInt("MAX_CONCURRENT_REQUESTS", 3)
	cfg.MaxRetries = getenvInt("MAX_RETRIES", 2)
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 30)

	rps := getenvDefault("REQUESTS_PER_SECOND", "5")
	cfg.RequestsPerSecond, err = strconv.ParseFloat(rps, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUESTS_PER_SECOND: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		zap.L().Warn("ignoring invalid integer", zap.String("key", key), zap.String("value", v))
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
