// Package config loads and validates application configuration from
// environment variables and optional config files.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Env      string         `mapstructure:"env"      validate:"required,oneof=development production test"`
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,gt=0,lt=65536"`

	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// RequestTimeoutSeconds bounds the total handling time of a single
	// request, enforced by the router's timeout middleware.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`

	// APIPrefix is the path the versioned API is mounted under.
	APIPrefix string `mapstructure:"api_prefix" validate:"required,startswith=/"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`

	MaxOpenConns           int `mapstructure:"max_open_conns"            validate:"gte=0"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuthConfig contains authentication-related settings. No endpoint consumes
// the secret yet; it is carried so deployments can provision it ahead of an
// authentication layer.
type AuthConfig struct {
	// JWTSecret must be long enough for HMAC signing when set. An empty
	// value is accepted while nothing consumes it.
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
}

// CORSConfig controls the cross-origin resource sharing middleware.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}
