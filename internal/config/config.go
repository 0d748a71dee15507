// Package config resolves the service configuration from environment
// variables.
//
// Everything is read once at startup by Load. Command-line flags in
// cmd/server are applied on top of the returned Config, so the order of
// precedence is: flag > environment > default.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/sakif/blog-api/internal/apperror"
)

// Database types accepted by DATABASE_TYPE.
const (
	DatabaseSQLite     = "sqlite"
	DatabasePostgreSQL = "postgresql"
)

const (
	defaultDatabaseURL = "./dev.db"
	defaultMaxConns    = 4
	defaultHost        = "0.0.0.0"
	defaultPort        = 3000
	defaultEnv         = "development"
)

// Config holds all configuration for the service.
type Config struct {
	Env                string
	Host               string
	Port               int
	LogLevel           slog.Level
	CORSAllowedOrigins []string
	Database           Database
}

// Database selects and locates the backing store.
type Database struct {
	Type     string // DatabaseSQLite or DatabasePostgreSQL
	URL      string // file path for sqlite, connection string for postgresql
	MaxConns int    // pool size for postgresql; sqlite always uses one connection
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables and validates it.
// Every failure is an apperror.ErrConfiguration.
func Load() (*Config, error) {
	cfg := &Config{
		Env:  getEnv("APP_ENV", defaultEnv),
		Host: getEnv("HOST", defaultHost),
		Database: Database{
			URL: getEnv("DATABASE_URL", defaultDatabaseURL),
		},
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	dbType, err := ParseDatabaseType(getEnv("DATABASE_TYPE", DatabaseSQLite))
	if err != nil {
		return nil, err
	}
	cfg.Database.Type = dbType

	if cfg.Port, err = parseInt("PORT", defaultPort); err != nil {
		return nil, err
	}
	if cfg.Database.MaxConns, err = parseInt("DATABASE_MAX_CONNS", defaultMaxConns); err != nil {
		return nil, err
	}

	defaultLevel := "info"
	if cfg.Env == defaultEnv {
		defaultLevel = "debug"
	}
	if cfg.LogLevel, err = ParseLogLevel(getEnv("LOG_LEVEL", defaultLevel)); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that parsing alone cannot catch. It is also called
// by cmd/server after flags have been applied.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return apperror.Configuration("PORT", fmt.Sprintf("must be between 1 and 65535, got %d", c.Port))
	}
	if c.Database.MaxConns < 1 {
		return apperror.Configuration("DATABASE_MAX_CONNS", fmt.Sprintf("must be at least 1, got %d", c.Database.MaxConns))
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return apperror.Configuration("DATABASE_URL", "must not be empty")
	}
	if _, err := ParseDatabaseType(c.Database.Type); err != nil {
		return err
	}
	return nil
}

// ParseDatabaseType normalizes a DATABASE_TYPE value. "postgres" is accepted
// as an alias for "postgresql".
func ParseDatabaseType(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case DatabaseSQLite:
		return DatabaseSQLite, nil
	case DatabasePostgreSQL, "postgres":
		return DatabasePostgreSQL, nil
	}
	return "", apperror.Configuration("DATABASE_TYPE", fmt.Sprintf("unsupported database type %q", value))
}

// ParseLogLevel maps debug/info/warn/error to a slog.Level.
func ParseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, apperror.Configuration("LOG_LEVEL", fmt.Sprintf("unknown level %q", value))
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func parseInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Configuration(key, fmt.Sprintf("not a number: %q", raw))
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
