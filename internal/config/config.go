package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=udm_portal port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort    string `envconfig:"HTTP_PORT" default:"3001"`
	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"host=localhost user=postgres password=postgres dbname=udm_portal port=5432 sslmode=disable"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"udm-portal"`

	BcryptCost    int `envconfig:"BCRYPT_COST" default:"10"`
	AuthRateLimit int `envconfig:"AUTH_RATE_LIMIT" default:"20"`

	CORSOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`

	// Empty disables Redis; revoked tokens are then kept in the database.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// Load reads the environment and rejects configurations that are unsafe to run.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (postgres or sqlite)", c.DBDriver)
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.AuthRateLimit <= 0 {
		return errors.New("AUTH_RATE_LIMIT must be positive")
	}
	return nil
}

// Warnings lists settings that still carry development defaults.
func (c *Config) Warnings() []string {
	var out []string
	if c.DBDriver == "postgres" && c.DatabaseDSN == defaultDSN {
		out = append(out, "DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		out = append(out, "CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production")
	}
	return out
}

// AllowedOrigins normalizes the comma separated CORS list.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}
