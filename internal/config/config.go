package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Schedule data source: a local JSON file or an HTTP endpoint.
	SchedulePath string
	ScheduleURL  string

	// Model parameters file
	ParamsPath string

	// Ratings snapshot store (SQLite)
	RatingsDBPath string

	// Live feed
	FeedURL       string
	FeedStorePath string

	// Simulation overrides; zero keeps the params-file values.
	SimIterations int
	SimWorkers    int
	SimSeed       int64

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		SchedulePath: envStr("SCHEDULE_PATH", "data/schedule.json"),
		ScheduleURL:  envStr("SCHEDULE_URL", ""),

		ParamsPath: envStr("PARAMS_PATH", "internal/config/model_params.yaml"),

		RatingsDBPath: envStr("RATINGS_DB_PATH", "data/ratings.db"),

		FeedURL:       envStr("FEED_URL", ""),
		FeedStorePath: envStr("FEED_STORE_PATH", "data/frames.db"),

		SimIterations: envInt("SIM_ITERATIONS", 0),
		SimWorkers:    envInt("SIM_WORKERS", 0),
		SimSeed:       int64(envInt("SIM_SEED", 0)),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
