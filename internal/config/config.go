package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/devicectl/internal/errors"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix    = "DEVICECTL"
	DefaultInterval     = 2 * time.Second
	DefaultLogLevel     = LogLevelWarning
	DefaultMetricsDB    = "/var/lib/devicectl/metrics.db"
	DefaultTopicPrefix  = "devicectl"
	DefaultListen       = "127.0.0.1:9475"
	DefaultBatchSize    = 50
	DefaultBatchTimeout = 5 * time.Second

	configName = "devicectl"
)

type Config struct {
	Interval   time.Duration `mapstructure:"interval"`
	LogLevel   string        `mapstructure:"log_level"`
	Debug      bool          `mapstructure:"debug"`
	Verbose    bool          `mapstructure:"verbose"`
	DiskPath   string        `mapstructure:"disk_path"`
	SysfsRoot  string        `mapstructure:"sysfs_root"`
	ProcfsRoot string        `mapstructure:"procfs_root"`

	Thermal    ThermalConfig    `mapstructure:"thermal"`
	GPU        GPUConfig        `mapstructure:"gpu"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// ThermalConfig holds the Celsius thresholds for each thermal state.
type ThermalConfig struct {
	Fair     float64 `mapstructure:"fair"`
	Serious  float64 `mapstructure:"serious"`
	Critical float64 `mapstructure:"critical"`
}

type GPUConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type MetricsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	DBPath       string        `mapstructure:"db_path"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Load reads configuration from defaults, the config file, environment
// variables and bound flags, in increasing order of precedence.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.flags != nil {
		if err := bindFlags(v, o); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	file, err := readConfigFile(v, o)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	cfg.File = file

	// --debug and --verbose yield to an explicit --log-level.
	if o.flags == nil || !o.flags.Changed("log-level") {
		switch {
		case cfg.Debug:
			cfg.LogLevel = string(LogLevelDebug)
		case cfg.Verbose && cfg.LogLevel != string(LogLevelDebug):
			cfg.LogLevel = string(LogLevelInfo)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("disk_path", "/")
	v.SetDefault("sysfs_root", "/sys")
	v.SetDefault("procfs_root", "/proc")

	v.SetDefault("thermal.fair", 70.0)
	v.SetDefault("thermal.serious", 80.0)
	v.SetDefault("thermal.critical", 90.0)

	v.SetDefault("gpu.enabled", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.db_path", DefaultMetricsDB)
	v.SetDefault("metrics.batch_size", DefaultBatchSize)
	v.SetDefault("metrics.batch_timeout", DefaultBatchTimeout)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", DefaultTopicPrefix)

	v.SetDefault("prometheus.enabled", false)
	v.SetDefault("prometheus.listen", DefaultListen)
}

func bindFlags(v *viper.Viper, o *options) error {
	bindings := map[string]string{
		"interval":  "interval",
		"log_level": "log-level",
		"debug":     "debug",
		"verbose":   "verbose",
	}
	for key, name := range bindings {
		f := o.flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}

	if f := o.flags.Lookup("config"); f != nil && f.Changed && o.configPath == "" {
		o.configPath = f.Value.String()
	}

	return nil
}

func readConfigFile(v *viper.Viper, o *options) (string, error) {
	errFactory := errors.New()

	path := o.configPath
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return "", errFactory.Wrap(errors.ErrReadConfig, err).WithData(path)
		}
		return v.ConfigFileUsed(), nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("toml")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, configName))
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", configName))
	}
	v.AddConfigPath(filepath.Join("/etc", configName))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", errFactory.Wrap(errors.ErrReadConfig, err)
	}

	return v.ConfigFileUsed(), nil
}

// Validate checks value ranges. The returned error carries the offending
// ValidationError as data.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, ValidationError{
			Field:  "log_level",
			Value:  c.LogLevel,
			Reason: "must be one of debug, info, warning, error",
		})
	}

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, ValidationError{
			Field:  "interval",
			Value:  c.Interval,
			Reason: "must be positive",
		})
	}

	t := c.Thermal
	if !(t.Fair < t.Serious && t.Serious < t.Critical) {
		return errFactory.WithData(errors.ErrInvalidThermal, ValidationError{
			Field:  "thermal",
			Value:  t,
			Reason: "thresholds must satisfy fair < serious < critical",
		})
	}

	if c.Metrics.Enabled && c.Metrics.BatchSize <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, ValidationError{
			Field:  "metrics.batch_size",
			Value:  c.Metrics.BatchSize,
			Reason: "must be positive",
		})
	}

	return nil
}
