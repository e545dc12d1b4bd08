package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	if err := os.Setenv(key, "8080"); err != nil {
		t.Fatalf("Setenv error: %v", err)
	}
	defer os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestGetDurationEnv(t *testing.T) {
	const key = "TEST_HTTP_TIMEOUT"

	_ = os.Unsetenv(key)
	if got := getDurationEnv(key, 8*time.Second); got != 8*time.Second {
		t.Fatalf("default duration = %v", got)
	}

	_ = os.Setenv(key, "3s")
	defer os.Unsetenv(key)
	if got := getDurationEnv(key, 8*time.Second); got != 3*time.Second {
		t.Fatalf("duration = %v, want 3s", got)
	}

	_ = os.Setenv(key, "garbage")
	if got := getDurationEnv(key, 8*time.Second); got != 8*time.Second {
		t.Fatalf("invalid duration should use default, got %v", got)
	}
}

func TestGetIntEnv(t *testing.T) {
	const key = "TEST_FEED_MAX_ITEMS"

	_ = os.Unsetenv(key)
	if got := getIntEnv(key, 10); got != 10 {
		t.Fatalf("default int = %d", got)
	}

	_ = os.Setenv(key, "5")
	defer os.Unsetenv(key)
	if got := getIntEnv(key, 10); got != 5 {
		t.Fatalf("int = %d, want 5", got)
	}

	_ = os.Setenv(key, "not a number")
	if got := getIntEnv(key, 10); got != 10 {
		t.Fatalf("invalid int should use default, got %d", got)
	}
}

func TestLoadReadsSourceKeys(t *testing.T) {
	_ = os.Unsetenv("GNEWS_KEY")
	_ = os.Setenv("NEWSAPI_KEY", "abc")
	_ = os.Setenv("SEED_TENANT_ID", "tenant-42")
	_ = os.Setenv("FEED_MAX_ITEMS", "7")
	defer func() {
		_ = os.Unsetenv("NEWSAPI_KEY")
		_ = os.Unsetenv("SEED_TENANT_ID")
		_ = os.Unsetenv("FEED_MAX_ITEMS")
	}()

	cfg := Load()
	if cfg.NewsAPIKey != "abc" {
		t.Fatalf("NewsAPIKey = %q", cfg.NewsAPIKey)
	}
	if cfg.GNewsKey != "" {
		t.Fatalf("GNewsKey should default empty, got %q", cfg.GNewsKey)
	}
	if cfg.SeedTenantID != "tenant-42" {
		t.Fatalf("SeedTenantID = %q", cfg.SeedTenantID)
	}
	if cfg.FeedMaxItems != 7 {
		t.Fatalf("FeedMaxItems = %d, want 7", cfg.FeedMaxItems)
	}
}
