package config

import (
	"testing"
	"time"
)

func TestEnvIntFallback(t *testing.T) {
	t.Setenv("X_INT", "")
	if got := envInt("X_INT", 7); got != 7 {
		t.Fatalf("envInt fallback = %d, want 7", got)
	}
	t.Setenv("X_INT", "42")
	if got := envInt("X_INT", 7); got != 42 {
		t.Fatalf("envInt = %d, want 42", got)
	}
	t.Setenv("X_INT", "not-a-number")
	if got := envInt("X_INT", 7); got != 7 {
		t.Fatalf("envInt on garbage = %d, want fallback 7", got)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_BOOL", "yes")
	if !envBool("X_BOOL", false) {
		t.Fatal("envBool(yes) = false")
	}
	t.Setenv("X_BOOL", "0")
	if envBool("X_BOOL", true) {
		t.Fatal("envBool(0) = true")
	}
	t.Setenv("X_BOOL", "maybe")
	if !envBool("X_BOOL", true) {
		t.Fatal("envBool(garbage) should keep the default")
	}
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	for _, k := range []string{"CACHE_ENABLED", "CACHE_METHODS", "CACHE_TTL", "CACHE_KEY_STRATEGY", "CACHE_PREFIX", "CACHE_MAX_BODY_BYTES"} {
		t.Setenv(k, "")
	}
	cfg := LoadCacheConfig()
	if !cfg.Enabled {
		t.Fatal("cache should default to enabled")
	}
	if !cfg.Methods["GET"] {
		t.Fatal("GET should be cacheable by default")
	}
	if cfg.TTL != 60*time.Second {
		t.Fatalf("TTL = %v, want 60s", cfg.TTL)
	}
	if cfg.KeyStrategy != "user_path_query" {
		t.Fatalf("KeyStrategy = %q, want user_path_query", cfg.KeyStrategy)
	}
	if cfg.Prefix != "stats-cache" {
		t.Fatalf("Prefix = %q, want stats-cache", cfg.Prefix)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	for _, k := range []string{"RATE_LIMIT_ENABLED", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_REFILL_TOKENS", "RATE_LIMIT_REFILL_INTERVAL", "RATE_LIMIT_TTL", "RATE_LIMIT_BURST", "RATE_LIMIT_REFILL_EVERY"} {
		t.Setenv(k, "")
	}
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity < 1 {
		t.Fatalf("Capacity = %d, must be clamped to >= 1", cfg.Capacity)
	}
	// TTL must cover several refill intervals or buckets expire mid-refill.
	if cfg.TTL < 5*cfg.RefillInterval {
		t.Fatalf("TTL = %v with interval %v, want TTL >= 5x interval", cfg.TTL, cfg.RefillInterval)
	}
}

func TestParseMethodsNormalises(t *testing.T) {
	m := parseMethods("get, head ,POST")
	for _, want := range []string{"GET", "HEAD", "POST"} {
		if !m[want] {
			t.Fatalf("parseMethods missing %s: %v", want, m)
		}
	}
	if len(m) != 3 {
		t.Fatalf("parseMethods produced %d entries, want 3", len(m))
	}
}
