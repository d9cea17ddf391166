// Package config loads the provider's adapter tunables from the
// environment, mirroring the teacher's env-var-with-typed-defaults
// pattern. File-based or remote configuration loading is an explicit
// Non-goal (spec §1); apart from the optional .env file that godotenv
// loads into the process environment, this package only reads os.Getenv.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the provider layer needs: per-adapter
// pacer settings, the token-quota credential, HTTP timeouts, and cache
// TTLs (spec §6 "Adapter configuration").
type Config struct {
	// HTTP transport
	HTTPTimeout time.Duration

	// Cache TTLs (spec §4.5)
	QuoteCacheTTL time.Duration
	BarCacheTTL   time.Duration

	// Redis, optional distributed cache tier (cache/redis.go). These
	// values are only loaded here; the caller of NewManagerFromConfig
	// decides from them which Cache to pass in.
	RedisHost     string
	RedisPort     string
	RedisPassword string

	Tencent     PacerConfig
	Sina        PacerConfig
	Tonghuashun PacerConfig
	General     PacerConfig
	TokenQuota  TokenQuotaConfig
	Session     SessionConfig
	Intl        PacerConfig
}

// PacerConfig holds the interval-pacer knobs from spec §4.2: sleep
// between calls ranges uniformly in [SleepMin, SleepMax] seconds.
type PacerConfig struct {
	SleepMin float64
	SleepMax float64
}

// TokenQuotaConfig holds the credential and fixed-budget pacer setting
// for the credential-gated adapter (spec §4.4 priority 2). An empty
// Token leaves the adapter registered but NotConfigured.
type TokenQuotaConfig struct {
	Token          string
	CallsPerMinute int
}

// SessionConfig holds login credentials for the session-based adapter
// (spec §4.4 priority 3). They are loaded but not passed on: the
// Session adapter logs in without credentials and is never
// NotConfigured, whatever Username holds.
type SessionConfig struct {
	Username string
	Password string
}

// LoadFromEnv loads configuration from environment variables, first
// trying to populate the process environment from a .env file if one
// is present (teacher convention; absence is not an error).
func LoadFromEnv() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables")
	}

	return &Config{
		HTTPTimeout: getEnvDuration("PROVIDER_HTTP_TIMEOUT", 8*time.Second),

		QuoteCacheTTL: getEnvDuration("PROVIDER_QUOTE_CACHE_TTL", 30*time.Second),
		BarCacheTTL:   getEnvDuration("PROVIDER_BAR_CACHE_TTL", 5*time.Minute),

		RedisHost:     getEnvOrDefault("REDIS_HOST", ""),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		Tencent:     PacerConfig{SleepMin: getEnvFloat("TENCENT_SLEEP_MIN", 0.3), SleepMax: getEnvFloat("TENCENT_SLEEP_MAX", 0.8)},
		Sina:        PacerConfig{SleepMin: getEnvFloat("SINA_SLEEP_MIN", 0.2), SleepMax: getEnvFloat("SINA_SLEEP_MAX", 0.5)},
		Tonghuashun: PacerConfig{SleepMin: getEnvFloat("THS_SLEEP_MIN", 0.5), SleepMax: getEnvFloat("THS_SLEEP_MAX", 1.2)},
		General:     PacerConfig{SleepMin: getEnvFloat("GENERAL_SLEEP_MIN", 0.1), SleepMax: getEnvFloat("GENERAL_SLEEP_MAX", 0.3)},
		TokenQuota: TokenQuotaConfig{
			Token:          os.Getenv("TUSHARE_TOKEN"),
			CallsPerMinute: getEnvInt("TUSHARE_CALLS_PER_MINUTE", 80),
		},
		Session: SessionConfig{
			Username: os.Getenv("BAOSTOCK_USERNAME"),
			Password: os.Getenv("BAOSTOCK_PASSWORD"),
		},
		Intl: PacerConfig{SleepMin: getEnvFloat("INTL_SLEEP_MIN", 0.2), SleepMax: getEnvFloat("INTL_SLEEP_MAX", 0.5)},
	}
}

// getEnvInt gets environment variable as int or returns default value.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvDuration gets environment variable (Go duration syntax, e.g.
// "500ms", "8s") or returns default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvOrDefault gets environment variable or returns default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
