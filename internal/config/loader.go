package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of every setting.
const envPrefix = "FOLLOWUP"

// newViper returns a viper instance where "database.host" resolves to
// FOLLOWUP_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// bindEnvKeys registers every known key so that Unmarshal sees env-only values.
// AutomaticEnv alone only covers keys viper already knows about.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"app.name", "app.env", "app.use_mock_data",
		"scheduler.timezone", "scheduler.grace_days",
		"server.host", "server.port", "server.mode", "server.read_timeout", "server.write_timeout",
		"server.shutdown_timeout", "server.cors_allowed_origins",
		"database.driver", "database.host", "database.port", "database.user", "database.password",
		"database.dbname", "database.sslmode", "database.max_open_conns", "database.max_idle_conns",
		"database.conn_max_lifetime", "database.migrations_path",
		"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.cache_ttl",
		"redis.lock_ttl",
		"kafka.enabled", "kafka.brokers", "kafka.client_id",
		"log.level", "log.format", "log.output_paths", "log.development",
		"metrics.enabled", "metrics.path", "metrics.namespace",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// Load reads the YAML file at configPath, overlays FOLLOWUP_* variables,
// applies defaults and validates.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from FOLLOWUP_* variables and defaults only.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOptional loads configPath when it is non-empty, otherwise the environment.
func LoadOptional(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Watch reloads configPath on change and hands the new Config to onChange.
// Callers decide which settings they can apply without a restart. A change
// that fails validation is reported to onError
// and otherwise ignored.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load that panics. For main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad: %v", err))
	}
	return cfg
}
