// Package sensor defines the pull-based platform accessors the aggregator
// reads from. Values here are raw platform data; mapping to public types
// happens in devicestate.
package sensor

import "time"

// Adapter returns the current value of each signal. Reads are synchronous,
// cheap and never fail: implementations degrade to a documented default.
type Adapter interface {
	// BatteryLevel returns the charge percentage, or false without a battery.
	BatteryLevel() (int, bool)
	BatteryStatus() BatteryStatus
	LowPowerMode() bool
	// Brightness returns the screen brightness in the 0.0-1.0 range.
	Brightness() float64
	Thermal() ThermalState
	Identity() Identity
	Capabilities() Capabilities
	DiskUsage() DiskUsage
}

// BatteryStatus uses the kernel's power_supply status vocabulary.
type BatteryStatus string

const (
	StatusFull        BatteryStatus = "Full"
	StatusCharging    BatteryStatus = "Charging"
	StatusDischarging BatteryStatus = "Discharging"
	StatusNotCharging BatteryStatus = "Not charging"
	StatusUnknown     BatteryStatus = "Unknown"
)

type ThermalState string

const (
	ThermalNominal  ThermalState = "nominal"
	ThermalFair     ThermalState = "fair"
	ThermalSerious  ThermalState = "serious"
	ThermalCritical ThermalState = "critical"
)

type Identity struct {
	Hostname     string
	OSName       string
	OSVersion    string
	Processor    string
	Architecture string
	Cores        int
	ActiveCores  int
	Jailbroken   bool
	Multitasking bool
	Uptime       time.Duration
}

type Capabilities struct {
	Stylus           string // "first", "second" or empty
	WirelessCharging bool
	TouchID          bool
	FaceID           bool

	Zoomed         bool
	Diagonal       float64 // inches, 0 when unknown
	RoundedCorners bool
	PPI            int // 0 when unknown
	Has3DTouch     bool
	ResolutionX    int
	ResolutionY    int

	Lidar     bool
	Telephoto bool
	Wide      bool
	UltraWide bool
	Torch     bool

	Steps    bool
	Pace     bool
	Distance bool
	Floors   bool
	Cadence  bool
}

// DiskUsage holds byte counts for the monitored volume.
type DiskUsage struct {
	Total int64
	Free  int64
}

// Used is derived as total minus free.
func (d DiskUsage) Used() int64 {
	if d.Free > d.Total {
		return 0
	}
	return d.Total - d.Free
}
