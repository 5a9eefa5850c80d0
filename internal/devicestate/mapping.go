package devicestate

import (
	"math"
	"strings"

	"codeberg.org/mutker/devicectl/internal/device"
	"codeberg.org/mutker/devicectl/internal/sensor"
)

// The mappers below are total: every raw value, including unknown ones,
// lands on a public value.

func mapBatteryLevel(percent int, ok bool) device.BatteryLevel {
	if !ok {
		return device.BatteryUnavailable
	}
	return device.Level(percent)
}

func mapBatteryState(status sensor.BatteryStatus) device.BatteryState {
	switch status {
	case sensor.StatusFull:
		return device.BatteryFull
	case sensor.StatusCharging:
		return device.BatteryCharging
	case sensor.StatusDischarging, sensor.StatusNotCharging:
		return device.BatteryUnplugged
	default:
		return device.BatteryNone
	}
}

func mapBrightness(raw float64) device.Brightness {
	if math.IsNaN(raw) || raw <= 0 {
		return 0
	}
	if raw >= 1 {
		return 100
	}
	return device.Brightness(int(raw * 100))
}

func mapThermalState(raw sensor.ThermalState) device.ThermalState {
	switch raw {
	case sensor.ThermalFair:
		return device.ThermalFair
	case sensor.ThermalSerious:
		return device.ThermalSerious
	case sensor.ThermalCritical:
		return device.ThermalCritical
	default:
		return device.ThermalNominal
	}
}

func mapArchitecture(raw string) device.Architecture {
	switch strings.ToLower(raw) {
	case "arm64", "aarch64":
		return device.ArchARM64
	case "arm", "armv7", "armv7l", "armv6l":
		return device.ArchARM
	case "amd64", "x86_64":
		return device.ArchAMD64
	case "386", "i386", "i686", "x86":
		return device.ArchX86
	default:
		return device.ArchUnknown
	}
}

func mapStylus(raw string) device.StylusSupport {
	switch raw {
	case "first":
		return device.StylusFirstGen
	case "second":
		return device.StylusSecondGen
	default:
		return device.StylusNone
	}
}

func mapInfo(id sensor.Identity, thermal sensor.ThermalState) device.Info {
	os := strings.TrimSpace(strings.Join(nonEmpty(id.OSName, id.OSVersion), " "))

	return device.NewInfo(
		id.Hostname,
		os,
		device.CPU{
			Processor:    id.Processor,
			Architecture: mapArchitecture(id.Architecture),
			Cores:        id.Cores,
			ActiveCores:  id.ActiveCores,
		},
		mapThermalState(thermal),
		device.FlagOf(id.Jailbroken),
		device.FlagOf(id.Multitasking),
		id.Uptime,
	)
}

func mapSupport(c sensor.Capabilities, disk sensor.DiskUsage) device.Support {
	ppi := c.PPI
	if ppi < 0 {
		ppi = 0
	}
	diagonal := c.Diagonal
	if diagonal < 0 || math.IsNaN(diagonal) {
		diagonal = 0
	}

	return device.Support{
		Stylus:           mapStylus(c.Stylus),
		WirelessCharging: device.FlagOf(c.WirelessCharging),
		TouchID:          device.FlagOf(c.TouchID),
		FaceID:           device.FlagOf(c.FaceID),
		Display: device.Display{
			Zoomed:         device.FlagOf(c.Zoomed),
			Diagonal:       diagonal,
			RoundedCorners: device.FlagOf(c.RoundedCorners),
			PPI:            ppi,
			Has3DTouch:     device.FlagOf(c.Has3DTouch),
			Resolution:     device.Resolution{X: c.ResolutionX, Y: c.ResolutionY},
		},
		Camera: device.Camera{
			Lidar:     device.FlagOf(c.Lidar),
			Telephoto: device.FlagOf(c.Telephoto),
			Wide:      device.FlagOf(c.Wide),
			UltraWide: device.FlagOf(c.UltraWide),
			Torch:     device.FlagOf(c.Torch),
		},
		Counting: device.Counting{
			Steps:    device.FlagOf(c.Steps),
			Pace:     device.FlagOf(c.Pace),
			Distance: device.FlagOf(c.Distance),
			Floors:   device.FlagOf(c.Floors),
			Cadence:  device.FlagOf(c.Cadence),
		},
		Disk: device.Disk{
			Total: disk.Total,
			Used:  disk.Used(),
			Free:  disk.Free,
		},
	}
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
