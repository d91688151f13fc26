package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "SCORER_URL", "")
	setEnv(t, "PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultScorerURL, cfg.ScorerURL)
	assert.Equal(t, DefaultScorerTimeoutMs*time.Millisecond, cfg.ScorerTimeout)
	assert.Equal(t, DefaultFallbackProbability, cfg.FallbackProbability)
	assert.Equal(t, 500*time.Millisecond, cfg.SeedMinDelay)
	assert.Equal(t, 3000*time.Millisecond, cfg.SeedMaxDelay)
	assert.True(t, cfg.SeedEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "SCORER_URL", "http://scorer:8000")
	setEnv(t, "SCORER_TIMEOUT_MS", "1500")
	setEnv(t, "FALLBACK_PROBABILITY", "0.4")
	setEnv(t, "SEED_ENABLED", "false")
	setEnv(t, "SEED_RAND_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://scorer:8000", cfg.ScorerURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.ScorerTimeout)
	assert.Equal(t, 0.4, cfg.FallbackProbability)
	assert.False(t, cfg.SeedEnabled)
	assert.Equal(t, int64(42), cfg.SeedRandSeed)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name: "valid config",
			config: Config{
				ScorerURL:           "http://localhost:8000",
				ScorerTimeout:       time.Second,
				FallbackProbability: 0.5,
				SeedMinDelay:        500 * time.Millisecond,
				SeedMaxDelay:        3 * time.Second,
			},
			wantErr: "",
		},
		{
			name: "missing scorer URL",
			config: Config{
				ScorerTimeout:       time.Second,
				FallbackProbability: 0.5,
			},
			wantErr: "SCORER_URL is required",
		},
		{
			name: "zero scorer timeout",
			config: Config{
				ScorerURL:           "http://localhost:8000",
				FallbackProbability: 0.5,
			},
			wantErr: "SCORER_TIMEOUT_MS must be positive",
		},
		{
			name: "fallback probability out of range",
			config: Config{
				ScorerURL:           "http://localhost:8000",
				ScorerTimeout:       time.Second,
				FallbackProbability: 1.5,
			},
			wantErr: "FALLBACK_PROBABILITY must be in [0,1]",
		},
		{
			name: "inverted seed delay interval",
			config: Config{
				ScorerURL:           "http://localhost:8000",
				ScorerTimeout:       time.Second,
				FallbackProbability: 0.5,
				SeedMinDelay:        3 * time.Second,
				SeedMaxDelay:        time.Second,
			},
			wantErr: "seed delay interval is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_EnvHelpers(t *testing.T) {
	cfg := Config{Env: "production"}
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())

	cfg.Env = "development"
	assert.True(t, cfg.IsDevelopment())
}
