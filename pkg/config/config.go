package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// Supported SSL modes, named the way MySQL clients name them.
const (
	SSLDisabled       = "DISABLED"
	SSLPreferred      = "PREFERRED"
	SSLRequired       = "REQUIRED"
	SSLVerifyCA       = "VERIFY_CA"
	SSLVerifyIdentity = "VERIFY_IDENTITY"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds every setting the service reads at start.
type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Table    string

	PoolSize        int
	MaxOverflow     int
	AcquireTimeout  time.Duration
	ConnMaxLifetime time.Duration

	HTTPAddr        string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads a .env file if one exists, then resolves the config from the
// process environment. Variables already set in the environment win over
// the .env file. Malformed values return an error naming the variable.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Driver:    strings.ToLower(getenv("DB_DRIVER", DriverMySQL)),
		Host:      getenv("DB_HOST", "127.0.0.1"),
		User:      getenv("DB_USER", "root"),
		Password:  getenv("DB_PASSWORD", ""),
		Database:  getenv("DB_NAME", "test"),
		SSLMode:   strings.ToUpper(getenv("DB_SSL_MODE", SSLPreferred)),
		Table:     getenv("DB_TABLE", "users"),
		HTTPAddr:  getenv("HTTP_ADDR", ":8000"),
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getenv("LOG_FORMAT", "json")),
	}

	var err error
	if cfg.Port, err = getenvInt("DB_PORT", 4000); err != nil {
		return nil, err
	}
	if cfg.PoolSize, err = getenvInt("POOL_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.MaxOverflow, err = getenvInt("MAX_OVERFLOW", 20); err != nil {
		return nil, err
	}
	if cfg.AcquireTimeout, err = getenvDuration("POOL_ACQUIRE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ConnMaxLifetime, err = getenvDuration("POOL_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enum and range constraints that type coercion alone
// cannot catch.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMySQL, DriverPostgres, DriverPgx:
	default:
		return fmt.Errorf("config: DB_DRIVER: unsupported driver %q", c.Driver)
	}
	switch c.SSLMode {
	case SSLDisabled, SSLPreferred, SSLRequired, SSLVerifyCA, SSLVerifyIdentity:
	default:
		return fmt.Errorf("config: DB_SSL_MODE: unsupported mode %q", c.SSLMode)
	}
	if !identRe.MatchString(c.Table) {
		return fmt.Errorf("config: DB_TABLE: invalid table name %q", c.Table)
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("config: POOL_SIZE: must be at least 1, got %d", c.PoolSize)
	}
	if c.MaxOverflow < 0 {
		return fmt.Errorf("config: MAX_OVERFLOW: must not be negative, got %d", c.MaxOverflow)
	}
	if c.AcquireTimeout < 0 {
		return fmt.Errorf("config: POOL_ACQUIRE_TIMEOUT: must not be negative, got %s", c.AcquireTimeout)
	}
	return nil
}

// Redacted returns a copy of c that is safe to print or log.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "****"
	}
	return c
}

func getenv(key, def string) string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func getenvInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("config: %s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("config: %s: invalid duration %q: %w", key, v, err)
	}
	return d, nil
}
