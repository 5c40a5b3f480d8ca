// Package config defines the configuration structures of the follow-up
// service. Loading lives in loader.go and defaults in defaults.go.
package config

import (
	"fmt"
	"strings"
	"time"
)

// AppConfig holds process-level switches.
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"` // "development" | "staging" | "production"
	// UseMockData swaps PostgreSQL for the seeded in-memory store.
	UseMockData bool `mapstructure:"use_mock_data"`
}

// SchedulerConfig controls checkpoint classification.
type SchedulerConfig struct {
	// Timezone is the IANA zone whose calendar days drive due-date comparisons.
	Timezone string `mapstructure:"timezone"`
	// GraceDays keeps an overdue checkpoint pending for this many days past its
	// due date. Zero expires it on the due date itself.
	GraceDays int `mapstructure:"grace_days"`
}

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Mode               string        `mapstructure:"mode"` // gin mode: "debug" | "release" | "test"
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Driver is the database/sql driver name: "pgx" or "postgres" (lib/pq).
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// MigrationsPath overrides the embedded migrations with a directory on disk.
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig holds Redis connection and cache parameters.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// KafkaConfig holds event publishing parameters.
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	ClientID string   `mapstructure:"client_id"`
}

// LogConfig mirrors logging.LogConfig.
type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"`
	Development bool     `mapstructure:"development"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// Config is the root configuration object.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// Location resolves Scheduler.Timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate checks the fields every deployment needs. It runs after ApplyDefaults.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		add("scheduler.timezone %q is not a valid IANA zone", c.Scheduler.Timezone)
	}
	if c.Scheduler.GraceDays < 0 {
		add("scheduler.grace_days must not be negative")
	}

	if !c.App.UseMockData {
		switch c.Database.Driver {
		case "pgx", "postgres":
		default:
			add("database.driver must be \"pgx\" or \"postgres\", got %q", c.Database.Driver)
		}
		if c.Database.Host == "" {
			add("database.host is required")
		}
		if c.Database.DBName == "" {
			add("database.dbname is required")
		}
		if c.Database.User == "" {
			add("database.user is required")
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		add("redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		add("kafka.brokers is required when kafka is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
