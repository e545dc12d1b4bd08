package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the process-wide configuration, read once at startup from the
// environment. Source API keys are optional: an empty key disables that
// source for the lifetime of the process.
type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	// Per-source credentials. Absence disables the source, nothing else.
	NewsAPIKey string
	GNewsKey   string

	// Tenant used for startup seeding and scheduled ingestion. The read API
	// resolves tenants per request; the pipeline ingests for this one.
	SeedTenantID string

	HTTPTimeout time.Duration
	// Entries kept per feed call. Keeps batches small without starving
	// slow-moving feeds.
	FeedMaxItems int
}

func Load() *Config {
	return &Config{
		AppPort:      getEnv("APP_PORT", "9000"),
		PostgresDSN:  getEnv("POSTGRES_DSN", "host=localhost user=newsfeed password=newsfeed dbname=newsfeed port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		NewsAPIKey:   getEnv("NEWSAPI_KEY", ""),
		GNewsKey:     getEnv("GNEWS_KEY", ""),
		SeedTenantID: getEnv("SEED_TENANT_ID", "default"),
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 8*time.Second),
		FeedMaxItems: getIntEnv("FEED_MAX_ITEMS", 10),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
