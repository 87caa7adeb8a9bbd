// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. A .env file in the working directory is loaded first when
// present. Sensible defaults are provided for development.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Storage driver names accepted by STORAGE_DRIVER.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverMySQL  = "mysql"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for links and redirects.
	BaseURL string

	// AuthAPI holds settings for the remote authentication service.
	AuthAPI AuthAPIConfig

	// Storage selects and tunes the per-client token storage.
	Storage StorageConfig

	// Database holds MySQL connection settings (used by the mysql driver).
	Database DatabaseConfig

	// Redis holds Redis connection settings (used by the redis driver).
	Redis RedisConfig
}

// AuthAPIConfig points the session store at the remote authentication API.
type AuthAPIConfig struct {
	// BaseURL is the API origin, e.g. "http://127.0.0.1:8000".
	BaseURL string

	// Timeout bounds each request to the API. Zero means no timeout.
	Timeout time.Duration
}

// StorageConfig controls where bearer tokens are persisted per client.
type StorageConfig struct {
	// Driver is one of "memory", "redis" or "mysql".
	Driver string

	// Secret seals stored tokens at rest when non-empty.
	Secret string

	// TTL is how long an idle client namespace survives in the backend.
	TTL time.Duration

	// SessionIdleTTL is how long an in-memory session store is cached
	// before it is dropped and rebuilt from storage on the next request.
	SessionIdleTTL time.Duration
}

// DatabaseConfig holds MySQL connection parameters. If DATABASE_URL is set,
// it takes precedence over the individual fields.
type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string

	// dsnOverride is set when DATABASE_URL is provided.
	dsnOverride string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// MigrationsPath is the directory holding *.up.sql / *.down.sql files.
	MigrationsPath string
}

// DSN returns the go-sql-driver/mysql connection string, built with the
// driver's Config.FormatDSN so special characters in passwords survive.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// Load reads configuration from environment variables with sensible
// defaults. Values from a .env file never override variables that are
// already set in the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("ignoring unreadable .env file", slog.Any("error", err))
	}

	cfg := &Config{
		Env:     getEnv("ENV", "development"),
		Port:    getEnvInt("PORT", 8080),
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		AuthAPI: AuthAPIConfig{
			BaseURL: strings.TrimRight(getEnv("AUTH_API_URL", "http://127.0.0.1:8000"), "/"),
			Timeout: getEnvDuration("AUTH_API_TIMEOUT", 10*time.Second),
		},

		Storage: StorageConfig{
			Driver:         strings.ToLower(getEnv("STORAGE_DRIVER", DriverMemory)),
			Secret:         getEnv("STORAGE_SECRET", ""),
			TTL:            getEnvDuration("STORAGE_TTL", 30*24*time.Hour),
			SessionIdleTTL: getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
		},

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "storefront"),
			Password:        getEnv("DB_PASSWORD", "storefront"),
			Name:            getEnv("DB_NAME", "storefront"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath:  getEnv("DB_MIGRATIONS_PATH", "db/migrations"),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects unknown drivers everywhere and insecure settings in
// production.
func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverRedis, DriverMySQL:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of memory, redis, mysql (got %q)", c.Storage.Driver)
	}

	if c.AuthAPI.BaseURL == "" {
		return fmt.Errorf("AUTH_API_URL must not be empty")
	}

	if !c.IsProduction() {
		return nil
	}
	if c.Storage.Driver == DriverMemory {
		return fmt.Errorf("STORAGE_DRIVER=memory is not allowed in production")
	}
	if len(c.Storage.Secret) < 32 {
		return fmt.Errorf("STORAGE_SECRET must be at least 32 characters in production")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true for "production" and "prod", case-insensitive.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "720h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
