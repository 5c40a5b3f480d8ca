package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: followup-test
  use_mock_data: false
scheduler:
  timezone: UTC
  grace_days: 3
server:
  port: 9000
  read_timeout: 5s
database:
  driver: postgres
  host: db.internal
  user: followup
  password: secret
  dbname: followup
redis:
  enabled: true
  addr: redis:6379
  cache_ttl: 2m
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
log:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "followup-test", cfg.App.Name)
	assert.Equal(t, "UTC", cfg.Scheduler.Timezone)
	assert.Equal(t, 3, cfg.Scheduler.GraceDays)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultServerWriteTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("FOLLOWUP_SERVER_PORT", "9100")
	t.Setenv("FOLLOWUP_SCHEDULER_GRACE_DAYS", "0")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 0, cfg.Scheduler.GraceDays)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidConfig(t *testing.T) {
	_, err := Load(writeConfig(t, "scheduler:\n  timezone: Not/AZone\ndatabase:\n  user: u\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler.timezone")
}

func TestLoadFromEnv_MockMode(t *testing.T) {
	t.Setenv("FOLLOWUP_APP_USE_MOCK_DATA", "true")
	t.Setenv("FOLLOWUP_SCHEDULER_TIMEZONE", "UTC")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.App.UseMockData)
	assert.Equal(t, "UTC", cfg.Scheduler.Timezone)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoadOptional(t *testing.T) {
	t.Setenv("FOLLOWUP_APP_USE_MOCK_DATA", "true")
	cfg, err := LoadOptional("")
	require.NoError(t, err)
	assert.True(t, cfg.App.UseMockData)

	cfg, err = LoadOptional(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "followup-test", cfg.App.Name)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yaml")) })
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "absent.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}
