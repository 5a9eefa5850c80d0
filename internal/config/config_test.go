package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/devicectl/internal/config"
	"codeberg.org/mutker/devicectl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devicectl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("DEVICECTL_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.Duration("interval", config.DefaultInterval, "")
	fs.String("log-level", string(config.DefaultLogLevel), "")
	fs.Bool("debug", false, "")
	fs.Bool("verbose", false, "")
	return fs
}

func TestLoad(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
interval = "5s"
log_level = "debug"
disk_path = "/home"

[thermal]
fair = 60
serious = 75
critical = 95

[metrics]
enabled = true
db_path = "/tmp/devicectl.db"
batch_size = 10

[mqtt]
enabled = true
broker = "tcp://broker:1883"
topic_prefix = "home/laptop"

[prometheus]
enabled = true
listen = ":9100"
`)
	t.Setenv("DEVICECTL_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/home", cfg.DiskPath)
	assert.Equal(t, config.ThermalConfig{Fair: 60, Serious: 75, Critical: 95}, cfg.Thermal)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/tmp/devicectl.db", cfg.Metrics.DBPath)
	assert.Equal(t, 10, cfg.Metrics.BatchSize)
	assert.Equal(t, config.DefaultBatchTimeout, cfg.Metrics.BatchTimeout)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "home/laptop", cfg.MQTT.TopicPrefix)
	assert.Equal(t, ":9100", cfg.Prometheus.Listen)
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.File)
	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, string(config.DefaultLogLevel), cfg.LogLevel)
	assert.Equal(t, "/", cfg.DiskPath)
	assert.Equal(t, "/sys", cfg.SysfsRoot)
	assert.Equal(t, "/proc", cfg.ProcfsRoot)
	assert.Equal(t, config.ThermalConfig{Fair: 70, Serious: 80, Critical: 90}, cfg.Thermal)
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, config.DefaultTopicPrefix, cfg.MQTT.TopicPrefix)
	assert.False(t, cfg.Prometheus.Enabled)
}

func TestLoadFromXDGConfigHome(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "devicectl")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "devicectl.toml"), []byte(`disk_path = "/srv"`), 0o600))

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv", cfg.DiskPath)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
This is not a valid TOML file
`)

	_, err := config.Load(config.WithConfigFile(path))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `log_level = "invalid"`)

	_, err := config.Load(config.WithConfigFile(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_log_level")
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{"zero interval", `interval = "0s"`, errors.ErrInvalidInterval},
		{"negative interval", `interval = "-1s"`, errors.ErrInvalidInterval},
		{"unordered thermal", "[thermal]\nfair = 85\nserious = 80\ncritical = 90", errors.ErrInvalidThermal},
		{"equal thermal", "[thermal]\nfair = 80\nserious = 80\ncritical = 90", errors.ErrInvalidThermal},
		{"batch size", "[metrics]\nenabled = true\nbatch_size = 0", errors.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := config.Load(config.WithConfigFile(writeConfig(t, tt.content)))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), err.Error())
		})
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "[mqtt]\nbroker = \"tcp://file:1883\"")
	t.Setenv("DEVICECTL_MQTT_BROKER", "tcp://env:1883")

	cfg, err := config.Load(config.WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, "tcp://env:1883", cfg.MQTT.Broker)
}

func TestCustomEnvPrefix(t *testing.T) {
	isolate(t)
	t.Setenv("DEVCTL_DISK_PATH", "/data")

	cfg, err := config.Load(config.WithEnvPrefix("DEVCTL"))
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.DiskPath)
}

func TestLogLevelFlag(t *testing.T) {
	isolate(t)
	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--log-level", "debug"}))

	cfg, err := config.Load(config.WithFlags(fs))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestVerboseAndDebugFlags(t *testing.T) {
	isolate(t)

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--verbose"}))
	cfg, err := config.Load(config.WithFlags(fs))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)

	fs = newFlags()
	require.NoError(t, fs.Parse([]string{"--verbose", "--debug"}))
	cfg, err = config.Load(config.WithFlags(fs))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	fs = newFlags()
	require.NoError(t, fs.Parse([]string{"--debug", "--log-level", "error"}))
	cfg, err = config.Load(config.WithFlags(fs))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestConfigFlagSelectsFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `interval = "9s"`)

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--config", path, "--interval", "3s"}))

	cfg, err := config.Load(config.WithFlags(fs))
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 3*time.Second, cfg.Interval)
}

func TestLogLevelIsValid(t *testing.T) {
	assert.True(t, config.LogLevelWarning.IsValid())
	assert.False(t, config.LogLevel("warn").IsValid())
}
