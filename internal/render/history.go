package render

import (
	"fmt"
	"strconv"
	"time"

	"codeberg.org/mutker/devicectl/internal/device"
	"codeberg.org/mutker/devicectl/internal/metrics"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// History is the serializable view of recorded samples, newest first.
type History struct {
	Samples []SampleView `json:"samples" toml:"samples"`
}

type SampleView struct {
	Timestamp    time.Time `json:"timestamp" toml:"timestamp"`
	BatteryLevel *int      `json:"battery_level,omitempty" toml:"battery_level,omitempty"`
	BatteryState string    `json:"battery_state" toml:"battery_state"`
	LowPowerMode bool      `json:"low_power_mode" toml:"low_power_mode"`
	Brightness   int       `json:"screen_brightness" toml:"screen_brightness"`
	Thermal      string    `json:"thermal_state" toml:"thermal_state"`
}

func NewHistory(samples []metrics.Sample) History {
	h := History{Samples: make([]SampleView, 0, len(samples))}
	for _, s := range samples {
		v := SampleView{
			Timestamp:    s.Timestamp,
			BatteryState: s.BatteryState.String(),
			LowPowerMode: s.LowPower == device.LowPowerOn,
			Brightness:   int(s.Brightness),
			Thermal:      s.Thermal.String(),
		}
		if p, ok := s.BatteryLevel.Percent(); ok {
			v.BatteryLevel = &p
		}
		h.Samples = append(h.Samples, v)
	}
	return h
}

// HistoryText renders one line per sample with a relative timestamp.
func HistoryText(h History) string {
	st := newStyles()

	if len(h.Samples) == 0 {
		return st.faint.Render("No samples recorded.")
	}

	header := fmt.Sprintf("%-16s %-8s %-10s %-6s %-11s %s", "WHEN", "BATTERY", "STATE", "LOW", "BRIGHTNESS", "THERMAL")
	lines := []string{st.title.Render(header)}
	for _, s := range h.Samples {
		line := fmt.Sprintf("%-16s %-8s %-10s %-6s %-11s %s",
			humanize.Time(s.Timestamp),
			batteryText(s.BatteryLevel),
			s.BatteryState,
			strconv.FormatBool(s.LowPowerMode),
			strconv.Itoa(s.Brightness)+"%",
			s.Thermal,
		)
		lines = append(lines, st.value.Render(line))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
