package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MySQL     MySQLConfig
	Redis     RedisConfig
	Reconcile ReconcileConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MySQLConfig holds the database connection settings.
type MySQLConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds settings for the idempotency cache. An empty Addr
// disables request idempotency checking.
type RedisConfig struct {
	Addr string
}

// ReconcileConfig holds settings for the periodic ledger consistency check.
type ReconcileConfig struct {
	CronSchedule string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	maxOpen, err := getenvInt("MYSQL_MAX_OPEN_CONNS", 50)
	if err != nil {
		return nil, err
	}
	maxIdle, err := getenvInt("MYSQL_MAX_IDLE_CONNS", 25)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:          getenvWithDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/retail?parseTime=true"),
			MaxOpenConns: maxOpen,
			MaxIdleConns: maxIdle,
		},
		Redis: RedisConfig{
			Addr: os.Getenv("REDIS_ADDR"),
		},
		Reconcile: ReconcileConfig{
			CronSchedule: getenvWithDefault("RECONCILE_CRON_SCHEDULE", "0 3 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MySQL.DSN == "" {
		return errors.New("MYSQL_DSN must be provided")
	}

	if c.MySQL.MaxOpenConns <= 0 || c.MySQL.MaxIdleConns <= 0 {
		return errors.New("MySQL pool sizes must be positive")
	}

	if c.Reconcile.CronSchedule == "" {
		return errors.New("RECONCILE_CRON_SCHEDULE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return value, nil
}
