package cmd

import (
	"os"
	"strings"

	"github.com/etnz/performance"
	"github.com/etnz/performance/date"
	"github.com/joho/godotenv"
)

// Config holds the application configuration, read from the environment.
type Config struct {
	BaseCurrency string // PERF_BASE_CURRENCY
	MarketDB     string // PERF_MARKET_DB, SQLite market database
	CacheDir     string // PERF_CACHE_DIR, snapshot cache directory
	LogLevel     string // PERF_LOG_LEVEL
	Owner        string // PERF_OWNER
}

// LoadConfig loads the configuration from the environment. A .env file in
// the working directory is read first, when there is one.
func LoadConfig() Config {
	// Load .env file if it exists (ignore error if it doesn't)
	_ = godotenv.Load()

	return Config{
		BaseCurrency: strings.ToUpper(getEnv("PERF_BASE_CURRENCY", "EUR")),
		MarketDB:     getEnv("PERF_MARKET_DB", ""),
		CacheDir:     getEnv("PERF_CACHE_DIR", ""),
		LogLevel:     getEnv("PERF_LOG_LEVEL", "warn"),
		Owner:        getEnv("PERF_OWNER", ""),
	}
}

// performanceConfig returns the calculator configuration on a day.
func (c Config) performanceConfig(on date.Date) performance.Config {
	return performance.Config{
		CalculationType: performance.TWR,
		BaseCurrency:    c.BaseCurrency,
		OwnerID:         c.Owner,
		EvaluationDate:  on,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
