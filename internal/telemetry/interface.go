// Package telemetry pushes device state changes to external systems.
package telemetry

import (
	"context"
	"time"
)

// Sink receives every change forwarded from the device state streams.
type Sink interface {
	Publish(ctx context.Context, update Update) error
	Close() error
}

// Signal names one continuous device signal.
type Signal string

const (
	SignalBatteryLevel Signal = "battery_level"
	SignalBatteryState Signal = "battery_state"
	SignalLowPower     Signal = "low_power_mode"
	SignalBrightness   Signal = "screen_brightness"
	SignalThermal      Signal = "thermal_state"
)

// Signals lists every signal in a stable order.
var Signals = []Signal{
	SignalBatteryLevel,
	SignalBatteryState,
	SignalLowPower,
	SignalBrightness,
	SignalThermal,
}

// Update is a single signal change. Value is the numeric encoding, State the
// textual one. Available is false only for a battery level the hardware
// does not report.
type Update struct {
	Signal    Signal    `json:"signal"`
	Value     int       `json:"value"`
	State     string    `json:"state"`
	Available bool      `json:"available"`
	Timestamp time.Time `json:"timestamp"`
}
