package render

import (
	"fmt"
	"strconv"
	"time"

	"codeberg.org/mutker/devicectl/internal/device"
	"codeberg.org/mutker/devicectl/internal/errors"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

func textFor(v any) (string, error) {
	switch t := v.(type) {
	case Snapshot:
		return Text(t), nil
	case *Snapshot:
		return Text(*t), nil
	case History:
		return HistoryText(t), nil
	default:
		return "", errors.New().WithData(ErrUnknownFormat, fmt.Sprintf("no text view for %T", v))
	}
}

// Text renders a snapshot for the terminal.
func Text(s Snapshot) string {
	st := newStyles()

	name := s.Device.Name
	if name == "" {
		name = "Unnamed device"
	}

	sections := []string{
		st.title.Render(name),
		section(st, "Device",
			row(st, "OS", s.Device.OS),
			row(st, "Processor", s.Device.Processor),
			row(st, "Architecture", s.Device.Architecture),
			row(st, "Cores", fmt.Sprintf("%d active of %d", s.Device.ActiveCores, s.Device.Cores)),
			row(st, "Uptime", s.Device.Uptime),
			flagRow(st, "Multitasking", s.Device.Multitasking),
			flagRow(st, "Jailbroken", s.Device.Jailbroken),
		),
		section(st, "State",
			row(st, "Battery level", batteryText(s.State.BatteryLevel)),
			row(st, "Battery state", labelOf(s.State.BatteryState)),
			row(st, "Low power mode", lowPowerText(s.State.LowPowerMode)),
			row(st, "Screen brightness", strconv.Itoa(s.State.Brightness)+"%"),
			thermalRow(st, s.State.Thermal),
		),
		section(st, "Display",
			row(st, "Resolution", device.Resolution{X: s.Support.Display.ResolutionX, Y: s.Support.Display.ResolutionY}.String()),
			row(st, "Diagonal", diagonalText(s.Support.Display.Diagonal)),
			row(st, "PPI", orUnknown(s.Support.Display.PPI)),
			flagRow(st, "Zoomed", s.Support.Display.Zoomed),
			flagRow(st, "Rounded corners", s.Support.Display.RoundedCorners),
			flagRow(st, "3D Touch", s.Support.Display.Has3DTouch),
		),
		section(st, "Features",
			row(st, "Stylus", stylusText(s.Support.Stylus)),
			flagRow(st, "Wireless charging", s.Support.WirelessCharging),
			flagRow(st, "Touch ID", s.Support.TouchID),
			flagRow(st, "Face ID", s.Support.FaceID),
		),
		section(st, "Camera",
			flagRow(st, "LiDAR", s.Support.Camera.Lidar),
			flagRow(st, "Telephoto", s.Support.Camera.Telephoto),
			flagRow(st, "Wide", s.Support.Camera.Wide),
			flagRow(st, "Ultra wide", s.Support.Camera.UltraWide),
			flagRow(st, "Torch", s.Support.Camera.Torch),
		),
		section(st, "Counting",
			flagRow(st, "Steps", s.Support.Counting.Steps),
			flagRow(st, "Pace", s.Support.Counting.Pace),
			flagRow(st, "Distance", s.Support.Counting.Distance),
			flagRow(st, "Floors", s.Support.Counting.Floors),
			flagRow(st, "Cadence", s.Support.Counting.Cadence),
		),
		section(st, "Disk",
			row(st, "Total", humanize.Bytes(nonNegative(s.Support.Disk.TotalBytes))),
			row(st, "Used", fmt.Sprintf("%s (%.2f%%)", humanize.Bytes(nonNegative(s.Support.Disk.UsedBytes)), s.Support.Disk.PercentUsed)),
			row(st, "Free", humanize.Bytes(nonNegative(s.Support.Disk.FreeBytes))),
		),
		st.faint.Render("taken " + s.TakenAt.Format(time.RFC3339)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func section(st styles, title string, rows ...string) string {
	lines := append([]string{st.section.Render(title)}, rows...)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func row(st styles, key, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, st.key.Render(key), st.value.Render(value))
}

func flagRow(st styles, key string, v bool) string {
	if v {
		return lipgloss.JoinHorizontal(lipgloss.Top, st.key.Render(key), st.yes.Render("yes"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, st.key.Render(key), st.no.Render("no"))
}

func thermalRow(st styles, thermal string) string {
	label := thermalLabel(thermal)
	if thermal == device.ThermalSerious.String() || thermal == device.ThermalCritical.String() {
		return lipgloss.JoinHorizontal(lipgloss.Top, st.key.Render("Thermal state"), st.warning.Render(label))
	}
	return row(st, "Thermal state", label)
}

func batteryText(level *int) string {
	if level == nil {
		return "Unavailable"
	}
	return strconv.Itoa(*level) + "%"
}

func lowPowerText(on bool) string {
	return device.LowPowerModeOf(on).Label()
}

func labelOf(state string) string {
	for _, s := range []device.BatteryState{device.BatteryUnplugged, device.BatteryCharging, device.BatteryFull} {
		if s.String() == state {
			return s.Label()
		}
	}
	return device.BatteryNone.Label()
}

func thermalLabel(state string) string {
	for _, s := range []device.ThermalState{device.ThermalFair, device.ThermalSerious, device.ThermalCritical} {
		if s.String() == state {
			return s.Label()
		}
	}
	return device.ThermalNominal.Label()
}

func stylusText(stylus string) string {
	for _, s := range []device.StylusSupport{device.StylusFirstGen, device.StylusSecondGen} {
		if s.String() == stylus {
			return s.Label()
		}
	}
	return device.StylusNone.Label()
}

func diagonalText(d float64) string {
	if d <= 0 {
		return "unknown"
	}
	return strconv.FormatFloat(d, 'f', 1, 64) + "\""
}

func orUnknown(n int) string {
	if n <= 0 {
		return "unknown"
	}
	return strconv.Itoa(n)
}

func nonNegative(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}
