package device

import "strconv"

// BatteryLevel is either a charge percentage or unavailable. The zero value
// is unavailable, so a level can only be read through Percent.
type BatteryLevel struct {
	percent int
	known   bool
}

// BatteryUnavailable is reported when the hardware exposes no charge level.
var BatteryUnavailable = BatteryLevel{}

// Level returns a known battery level clamped to 0..100.
func Level(percent int) BatteryLevel {
	return BatteryLevel{percent: clampPercent(percent), known: true}
}

// Percent returns the charge percentage and whether it is available.
func (l BatteryLevel) Percent() (int, bool) {
	return l.percent, l.known
}

func (l BatteryLevel) Available() bool {
	return l.known
}

func (l BatteryLevel) String() string {
	if !l.known {
		return "unavailable"
	}
	return strconv.Itoa(l.percent) + "%"
}

type BatteryState int

const (
	BatteryNone BatteryState = iota
	BatteryUnplugged
	BatteryCharging
	BatteryFull
)

var batteryStateNames = map[BatteryState]string{
	BatteryNone:      "none",
	BatteryUnplugged: "unplugged",
	BatteryCharging:  "charging",
	BatteryFull:      "full",
}

func (s BatteryState) String() string {
	if name, ok := batteryStateNames[s]; ok {
		return name
	}
	return batteryStateNames[BatteryNone]
}

// Label is the human readable form shown to users.
func (s BatteryState) Label() string {
	switch s {
	case BatteryFull:
		return "Fully Charged"
	case BatteryCharging:
		return "Charging"
	case BatteryUnplugged:
		return "Discharging"
	default:
		return "Unavailable"
	}
}

type LowPowerMode int

const (
	LowPowerOff LowPowerMode = iota
	LowPowerOn
)

// LowPowerModeOf maps the raw platform flag.
func LowPowerModeOf(enabled bool) LowPowerMode {
	if enabled {
		return LowPowerOn
	}
	return LowPowerOff
}

func (m LowPowerMode) String() string {
	if m == LowPowerOn {
		return "on"
	}
	return "off"
}

func (m LowPowerMode) Label() string {
	if m == LowPowerOn {
		return "Enabled"
	}
	return "Disabled"
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
