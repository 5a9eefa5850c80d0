package cli

import (
	"codeberg.org/mutker/devicectl/internal/config"
	"codeberg.org/mutker/devicectl/internal/gpu"
	"codeberg.org/mutker/devicectl/internal/metrics"
	"codeberg.org/mutker/devicectl/internal/sensor"
	"codeberg.org/mutker/devicectl/internal/telemetry"
)

// platformAdapter builds the host adapter. With gpu.enabled the first NVIDIA
// GPU is added as a temperature probe; a missing driver only logs a warning.
func platformAdapter(a *app) (sensor.Adapter, func(), error) {
	opts := []sensor.Option{sensor.WithLogger(a.log)}
	cleanup := func() {}

	if a.cfg.GPU.Enabled {
		probe, err := gpu.NewProbe(0, a.log)
		if err != nil {
			a.log.Warn().Err(err).Msg("GPU temperature probe unavailable")
		} else {
			a.log.Info().Str("gpu", probe.Name()).Msg("Using GPU temperature probe")
			opts = append(opts, sensor.WithTemperatureProbe(probe))
			cleanup = func() {
				if err := probe.Close(); err != nil {
					a.log.Warn().Err(err).Msg("Failed to close GPU probe")
				}
			}
		}
	}

	return sensor.NewPlatform(sensorConfig(a.cfg), opts...), cleanup, nil
}

func sensorConfig(cfg *config.Config) sensor.Config {
	sc := sensor.DefaultConfig()
	sc.SysfsRoot = cfg.SysfsRoot
	sc.ProcRoot = cfg.ProcfsRoot
	sc.DiskPath = cfg.DiskPath
	sc.FairCelsius = cfg.Thermal.Fair
	sc.SeriousCelsius = cfg.Thermal.Serious
	sc.CriticalCelsius = cfg.Thermal.Critical
	return sc
}

func metricsConfig(cfg *config.Config) metrics.Config {
	mc := metrics.DefaultConfig()
	mc.Enabled = cfg.Metrics.Enabled
	mc.DBPath = cfg.Metrics.DBPath
	mc.BatchSize = cfg.Metrics.BatchSize
	mc.BatchTimeout = cfg.Metrics.BatchTimeout
	return mc
}

func mqttConfig(cfg *config.Config) telemetry.MQTTConfig {
	mc := telemetry.DefaultMQTTConfig()
	mc.Broker = cfg.MQTT.Broker
	mc.ClientID = cfg.MQTT.ClientID
	mc.Username = cfg.MQTT.Username
	mc.Password = cfg.MQTT.Password
	mc.TopicPrefix = cfg.MQTT.TopicPrefix
	return mc
}

func prometheusConfig(cfg *config.Config) telemetry.PrometheusConfig {
	return telemetry.PrometheusConfig{Listen: cfg.Prometheus.Listen}
}
