package metrics

import (
	"context"
	"time"

	"codeberg.org/mutker/devicectl/internal/device"
)

// Collector is the recording side used by the rest of the application.
type Collector interface {
	Record(ctx context.Context, sample Sample) error
	Close() error
}

// Repository stores samples.
type Repository interface {
	Record(sample Sample) error
	// Recent returns up to limit samples, newest first. Buffered samples
	// are flushed before reading.
	Recent(limit int) ([]Sample, error)
	Close() error
}

// Sample is one combined reading of every continuous signal.
type Sample struct {
	Timestamp    time.Time
	BatteryLevel device.BatteryLevel
	BatteryState device.BatteryState
	LowPower     device.LowPowerMode
	Brightness   device.Brightness
	Thermal      device.ThermalState
}
