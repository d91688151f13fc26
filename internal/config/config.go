// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Scoring oracle
	ScorerURL     string        // Base URL of the fraud scoring service
	ScorerTimeout time.Duration // Bounded timeout for a single scoring call

	// Risk policy
	FallbackProbability float64 // Probability assumed when the scorer is unavailable
	HighRiskThreshold   float64 // Minimum risk score for the high-risk alert feed

	// Seeding (fixture replay on first start)
	SeedEnabled  bool
	SeedMinDelay time.Duration // Lower bound of random inter-arrival delay
	SeedMaxDelay time.Duration // Upper bound of random inter-arrival delay
	SeedRandSeed int64         // 0 = non-deterministic

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint for traces (optional)

	// Rate limiting
	RateLimitRPM int
}

// Defaults
const (
	DefaultPort                = "8080"
	DefaultEnv                 = "development"
	DefaultLogLevel            = "info"
	DefaultScorerURL           = "http://localhost:8000"
	DefaultScorerTimeoutMs     = 5000
	DefaultFallbackProbability = 0.50
	DefaultHighRiskThreshold   = 0.7
	DefaultSeedMinDelayMs      = 500
	DefaultSeedMaxDelayMs      = 3000
	DefaultRateLimitRPM        = 120
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", DefaultPort),
		Env:                 getEnv("ENV", DefaultEnv),
		LogLevel:            getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:         os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		ScorerURL:           getEnv("SCORER_URL", DefaultScorerURL),
		ScorerTimeout:       time.Duration(getEnvInt64("SCORER_TIMEOUT_MS", DefaultScorerTimeoutMs)) * time.Millisecond,
		FallbackProbability: getEnvFloat("FALLBACK_PROBABILITY", DefaultFallbackProbability),
		HighRiskThreshold:   getEnvFloat("HIGH_RISK_THRESHOLD", DefaultHighRiskThreshold),
		SeedEnabled:         getEnvBool("SEED_ENABLED", true),
		SeedMinDelay:        time.Duration(getEnvInt64("SEED_MIN_DELAY_MS", DefaultSeedMinDelayMs)) * time.Millisecond,
		SeedMaxDelay:        time.Duration(getEnvInt64("SEED_MAX_DELAY_MS", DefaultSeedMaxDelayMs)) * time.Millisecond,
		SeedRandSeed:        getEnvInt64("SEED_RAND_SEED", 0),
		OTLPEndpoint:        os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RateLimitRPM:        int(getEnvInt64("RATE_LIMIT_RPM", DefaultRateLimitRPM)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is coherent
func (c *Config) Validate() error {
	if c.ScorerURL == "" {
		return fmt.Errorf("SCORER_URL is required")
	}
	if c.ScorerTimeout <= 0 {
		return fmt.Errorf("SCORER_TIMEOUT_MS must be positive")
	}
	if c.FallbackProbability < 0 || c.FallbackProbability > 1 {
		return fmt.Errorf("FALLBACK_PROBABILITY must be in [0,1]")
	}
	if c.SeedMinDelay < 0 || c.SeedMaxDelay < c.SeedMinDelay {
		return fmt.Errorf("seed delay interval is invalid: min=%s max=%s", c.SeedMinDelay, c.SeedMaxDelay)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
