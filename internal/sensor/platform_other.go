//go:build !linux

package sensor

import (
	"os"
	"runtime"

	"codeberg.org/mutker/devicectl/internal/logger"
)

type TemperatureProbe interface {
	Temperature() (float64, error)
}

type Option func(*staticAdapter)

func WithTemperatureProbe(TemperatureProbe) Option { return func(*staticAdapter) {} }

func WithLogger(logger.Logger) Option { return func(*staticAdapter) {} }

// staticAdapter reports identity only; every live signal is at its default.
type staticAdapter struct{}

func NewPlatform(Config, ...Option) Adapter {
	return staticAdapter{}
}

func (staticAdapter) BatteryLevel() (int, bool)    { return 0, false }
func (staticAdapter) BatteryStatus() BatteryStatus { return StatusUnknown }
func (staticAdapter) LowPowerMode() bool           { return false }
func (staticAdapter) Brightness() float64          { return 0 }
func (staticAdapter) Thermal() ThermalState        { return ThermalNominal }
func (staticAdapter) Capabilities() Capabilities   { return Capabilities{} }
func (staticAdapter) DiskUsage() DiskUsage         { return DiskUsage{} }

func (staticAdapter) Identity() Identity {
	host, _ := os.Hostname()
	return Identity{
		Hostname:     host,
		OSName:       runtime.GOOS,
		Architecture: runtime.GOARCH,
		Cores:        runtime.NumCPU(),
		ActiveCores:  runtime.NumCPU(),
		Multitasking: true,
	}
}
