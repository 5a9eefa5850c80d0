package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/devicectl/internal/config"
	"codeberg.org/mutker/devicectl/internal/device"
	"codeberg.org/mutker/devicectl/internal/devicestate"
	"codeberg.org/mutker/devicectl/internal/errors"
	"codeberg.org/mutker/devicectl/internal/events"
	"codeberg.org/mutker/devicectl/internal/metrics"
	"codeberg.org/mutker/devicectl/internal/pid"
	"codeberg.org/mutker/devicectl/internal/stream"
	"codeberg.org/mutker/devicectl/internal/telemetry"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var pidPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow device state and export every change until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.watch(ctx, pidPath)
		},
	}

	cmd.Flags().Duration("interval", config.DefaultInterval, "Polling interval")
	cmd.Flags().StringVar(&pidPath, "pid-file", pid.DefaultPath(), "PID file path")

	return cmd
}

// watch runs until ctx is done. Components are torn down in reverse order
// of construction.
func (a *app) watch(ctx context.Context, pidPath string) error {
	errFactory := errors.New()

	if err := pid.Write(pidPath); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(pidPath); err != nil {
			a.log.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	adapter, cleanup, err := a.newAdapter(a)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	defer cleanup()

	bus := events.NewBus(events.DeviceEvents...)

	agg, err := devicestate.New(adapter, bus, devicestate.WithLogger(a.log))
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	defer agg.Close()

	collector, err := metrics.NewService(metricsConfig(a.cfg), a.log)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	defer func() {
		if err := collector.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close metrics collector")
		}
	}()

	recorder := metrics.NewRecorder(collector, a.log)
	recorder.Start(ctx, agg)
	defer recorder.Stop()

	sinks, err := a.sinks(ctx)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	forwarder := telemetry.NewForwarder(a.log, sinks...)
	forwarder.Start(ctx, agg)
	defer func() {
		if err := forwarder.Stop(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to stop telemetry")
		}
	}()

	subs := a.logChanges(agg)
	defer func() {
		for _, sub := range subs {
			sub.Cancel()
		}
	}()

	a.log.Info().
		Dur("interval", a.cfg.Interval).
		Int("sinks", len(sinks)).
		Bool("metrics", a.cfg.Metrics.Enabled).
		Msg("Watching device state")

	poller := events.NewPoller(adapter, bus, a.cfg.Interval, a.log)
	if err := poller.Run(ctx); err != nil {
		return errFactory.Wrap(errors.ErrMainLoop, err)
	}

	a.log.Info().Msg("Received termination signal, shutting down")

	return nil
}

func (a *app) sinks(ctx context.Context) ([]telemetry.Sink, error) {
	var sinks []telemetry.Sink

	if a.cfg.MQTT.Enabled {
		mqttSink, err := telemetry.NewMQTTSink(ctx, mqttConfig(a.cfg), a.log)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, mqttSink)
	}

	if a.cfg.Prometheus.Enabled {
		promSink := telemetry.NewPrometheusSink(prometheusConfig(a.cfg), a.log)
		if err := promSink.Start(); err != nil {
			for _, s := range sinks {
				_ = s.Close()
			}
			return nil, err
		}
		sinks = append(sinks, promSink)
	}

	return sinks, nil
}

func (a *app) logChanges(signals devicestate.Signals) []*stream.Subscription {
	return []*stream.Subscription{
		signals.BatteryLevel().Subscribe(func(v device.BatteryLevel) {
			a.log.Info().Str("battery_level", v.String()).Msg("Battery level changed")
		}),
		signals.BatteryState().Subscribe(func(v device.BatteryState) {
			a.log.Info().Str("battery_state", v.Label()).Msg("Battery state changed")
		}),
		signals.BatteryLowPowerMode().Subscribe(func(v device.LowPowerMode) {
			a.log.Info().Str("low_power_mode", v.Label()).Msg("Low power mode changed")
		}),
		signals.ScreenBrightness().Subscribe(func(v device.Brightness) {
			a.log.Info().Int("screen_brightness", int(v)).Msg("Screen brightness changed")
		}),
		signals.ThermalState().Subscribe(func(v device.ThermalState) {
			a.log.Info().Str("thermal_state", v.Label()).Msg("Thermal state changed")
		}),
	}
}
