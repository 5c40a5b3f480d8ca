package config

import "time"

const (
	DefaultAppName = "followup-compliance"
	DefaultAppEnv  = "development"

	DefaultTimezone = "Asia/Shanghai"

	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 15 * time.Second
	DefaultServerShutdownTimeout = 30 * time.Second

	DefaultDBDriver          = "pgx"
	DefaultDBHost            = "localhost"
	DefaultDBPort            = 5432
	DefaultDBName            = "followup"
	DefaultDBSSLMode         = "disable"
	DefaultDBMaxOpenConns    = 25
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = 30 * time.Minute

	DefaultRedisAddr     = "localhost:6379"
	DefaultRedisPoolSize = 20
	DefaultCacheTTL      = 10 * time.Minute
	DefaultLockTTL       = 5 * time.Second

	DefaultKafkaClientID = "followup-compliance"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "followup"
)

// ApplyDefaults fills zero-value fields. Explicit values always win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	setString(&cfg.App.Name, DefaultAppName)
	setString(&cfg.App.Env, DefaultAppEnv)
	setString(&cfg.Scheduler.Timezone, DefaultTimezone)

	setString(&cfg.Server.Host, DefaultServerHost)
	setInt(&cfg.Server.Port, DefaultServerPort)
	setString(&cfg.Server.Mode, DefaultServerMode)
	setDuration(&cfg.Server.ReadTimeout, DefaultServerReadTimeout)
	setDuration(&cfg.Server.WriteTimeout, DefaultServerWriteTimeout)
	setDuration(&cfg.Server.ShutdownTimeout, DefaultServerShutdownTimeout)
	if len(cfg.Server.CORSAllowedOrigins) == 0 {
		cfg.Server.CORSAllowedOrigins = []string{"*"}
	}

	setString(&cfg.Database.Driver, DefaultDBDriver)
	setString(&cfg.Database.Host, DefaultDBHost)
	setInt(&cfg.Database.Port, DefaultDBPort)
	setString(&cfg.Database.DBName, DefaultDBName)
	setString(&cfg.Database.SSLMode, DefaultDBSSLMode)
	setInt(&cfg.Database.MaxOpenConns, DefaultDBMaxOpenConns)
	setInt(&cfg.Database.MaxIdleConns, DefaultDBMaxIdleConns)
	setDuration(&cfg.Database.ConnMaxLifetime, DefaultDBConnMaxLifetime)

	setString(&cfg.Redis.Addr, DefaultRedisAddr)
	setInt(&cfg.Redis.PoolSize, DefaultRedisPoolSize)
	setDuration(&cfg.Redis.CacheTTL, DefaultCacheTTL)
	setDuration(&cfg.Redis.LockTTL, DefaultLockTTL)

	setString(&cfg.Kafka.ClientID, DefaultKafkaClientID)

	setString(&cfg.Log.Level, DefaultLogLevel)
	setString(&cfg.Log.Format, DefaultLogFormat)

	setString(&cfg.Metrics.Path, DefaultMetricsPath)
	setString(&cfg.Metrics.Namespace, DefaultMetricsNamespace)
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func setDuration(dst *time.Duration, def time.Duration) {
	if *dst == 0 {
		*dst = def
	}
}
