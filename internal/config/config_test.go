package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                "8080",
		Env:                 "development",
		JWTSecret:           "secure-secret-at-least-32-chars-long",
		JWTTTLHours:         24,
		Backend:             BackendLocal,
		StoreDriver:         StoreMemory,
		DBPassword:          "secure-password",
		DBSSLMode:           "require",
		AITimeoutSeconds:    10,
		MediaMaxUploadMB:    10,
		TracingSamplerRatio: 1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid development", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"unknown backend", func(c *Config) { c.Backend = "firebase" }, true},
		{"unknown store driver", func(c *Config) { c.StoreDriver = "sqlite" }, true},
		{"redis store without url", func(c *Config) { c.StoreDriver = StoreRedis }, true},
		{"redis store with url", func(c *Config) { c.StoreDriver = StoreRedis; c.RedisURL = "localhost:6379" }, false},
		{"negative reseed threshold", func(c *Config) { c.StoreUsersReseedBelow = -1 }, true},
		{"reseed disabled", func(c *Config) { c.StoreUsersReseedBelow = 0 }, false},
		{"sampler above one", func(c *Config) { c.TracingSamplerRatio = 1.5 }, true},
		{"unknown tracing exporter", func(c *Config) { c.TracingExporter = "jaeger" }, true},
		{"insecure otlp in development", func(c *Config) {
			c.TracingEnabled = true
			c.TracingExporter = "otlp"
			c.OTLPInsecure = true
		}, false},
		{"insecure otlp in production", func(c *Config) {
			c.Env = "production"
			c.TracingEnabled = true
			c.TracingExporter = "otlp"
			c.OTLPInsecure = true
		}, true},
		{"zero ai timeout", func(c *Config) { c.AITimeoutSeconds = 0 }, true},
		{"production default secret", func(c *Config) { c.Env = "production"; c.JWTSecret = defaultJWTSecret }, true},
		{"production short secret", func(c *Config) { c.Env = "production"; c.JWTSecret = "short" }, true},
		{"production local backend", func(c *Config) { c.Env = "production" }, false},
		{"production remote weak db password", func(c *Config) {
			c.Env = "production"
			c.Backend = BackendRemote
			c.DBPassword = "password"
		}, true},
		{"production remote ssl disabled", func(c *Config) {
			c.Env = "prod"
			c.Backend = BackendRemote
			c.DBSSLMode = "disable"
		}, true},
		{"production remote ok", func(c *Config) {
			c.Env = "production"
			c.Backend = BackendRemote
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("BACKEND", "  LOCAL ")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("STORE_USERS_RESEED_BELOW", "3")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, c.Backend)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 3, c.StoreUsersReseedBelow)
	assert.Equal(t, "gemini-flash-lite-latest", c.GeminiLiteModel)
	assert.Equal(t, 72*60*60, int(c.JWTTTL().Seconds()))
}
