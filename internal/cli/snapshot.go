package cli

import (
	"context"
	"time"

	"codeberg.org/mutker/devicectl/internal/devicestate"
	"codeberg.org/mutker/devicectl/internal/events"
	"codeberg.org/mutker/devicectl/internal/render"
	"codeberg.org/mutker/devicectl/internal/stream"
	"github.com/spf13/cobra"
)

const snapshotTimeout = 5 * time.Second

func newSnapshotCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print device information, capabilities and current state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			snap, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			return render.Write(cmd.OutOrStdout(), f, snap)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatText), "Output format: text, json, toml")

	return cmd
}

func (a *app) snapshot(ctx context.Context) (render.Snapshot, error) {
	adapter, cleanup, err := a.newAdapter(a)
	if err != nil {
		return render.Snapshot{}, err
	}
	defer cleanup()

	agg, err := devicestate.New(adapter, events.NewBus(events.DeviceEvents...), devicestate.WithLogger(a.log))
	if err != nil {
		return render.Snapshot{}, err
	}
	defer agg.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	info, err := stream.First(ctx, agg.DeviceInformation())
	if err != nil {
		return render.Snapshot{}, err
	}
	support, err := stream.First(ctx, agg.DeviceSupport())
	if err != nil {
		return render.Snapshot{}, err
	}

	var state render.State
	if state.BatteryLevel, err = stream.First(ctx, agg.BatteryLevel()); err != nil {
		return render.Snapshot{}, err
	}
	if state.BatteryState, err = stream.First(ctx, agg.BatteryState()); err != nil {
		return render.Snapshot{}, err
	}
	if state.LowPower, err = stream.First(ctx, agg.BatteryLowPowerMode()); err != nil {
		return render.Snapshot{}, err
	}
	if state.Brightness, err = stream.First(ctx, agg.ScreenBrightness()); err != nil {
		return render.Snapshot{}, err
	}
	if state.Thermal, err = stream.First(ctx, agg.ThermalState()); err != nil {
		return render.Snapshot{}, err
	}

	return render.NewSnapshot(a.now(), info, support, state), nil
}
