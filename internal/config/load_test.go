package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_DATABASE_URL", "postgres://localhost:5432/storefront")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 5, cfg.Server.RequestTimeoutSeconds)
	assert.Equal(t, "/api/v1", cfg.Server.APIPrefix)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.CORS.AllowCredentials)
	assert.Empty(t, cfg.Auth.JWTSecret)
}

func TestLoadAuthSecret(t *testing.T) {
	t.Run("secret is carried from the environment", func(t *testing.T) {
		t.Setenv("STOREFRONT_DATABASE_URL", "postgres://localhost:5432/storefront")
		t.Setenv("STOREFRONT_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.Auth.JWTSecret)
	})

	t.Run("short secret fails validation", func(t *testing.T) {
		t.Setenv("STOREFRONT_DATABASE_URL", "postgres://localhost:5432/storefront")
		t.Setenv("STOREFRONT_AUTH_JWT_SECRET", "too-short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Auth.JWTSecret")
	})
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_DATABASE_URL", "postgres://localhost:5432/storefront")
	t.Setenv("STOREFRONT_ENV", "production")
	t.Setenv("STOREFRONT_SERVER_PORT", "8080")
	t.Setenv("STOREFRONT_SERVER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("STOREFRONT_DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "Database.URL")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env: "test",
			Server: ServerConfig{
				Port:                  3000,
				LogLevel:              "info",
				RequestTimeoutSeconds: 5,
				APIPrefix:             "/api/v1",
			},
			Database: DatabaseConfig{URL: "postgres://localhost/db"},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		require.NoError(t, Validate(valid()))
	})

	t.Run("unknown log level fails", func(t *testing.T) {
		cfg := valid()
		cfg.Server.LogLevel = "verbose"
		assert.Error(t, Validate(cfg))
	})

	t.Run("prefix must start with a slash", func(t *testing.T) {
		cfg := valid()
		cfg.Server.APIPrefix = "api"
		assert.Error(t, Validate(cfg))
	})

	t.Run("port bounds", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 70000
		assert.Error(t, Validate(cfg))
	})
}
