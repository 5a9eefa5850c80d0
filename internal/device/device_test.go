package device_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/devicectl/internal/device"
	"github.com/stretchr/testify/assert"
)

func TestBatteryLevelUnavailableIsZeroValue(t *testing.T) {
	var level device.BatteryLevel

	_, ok := level.Percent()
	assert.False(t, ok)
	assert.Equal(t, device.BatteryUnavailable, level)
	assert.Equal(t, "unavailable", level.String())
}

func TestBatteryLevelClamps(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-5, 0},
		{0, 0},
		{50, 50},
		{100, 100},
		{130, 100},
	}

	for _, tt := range tests {
		pct, ok := device.Level(tt.in).Percent()
		assert.True(t, ok)
		assert.Equal(t, tt.want, pct, "input %d", tt.in)
	}
}

func TestBatteryStateLabels(t *testing.T) {
	assert.Equal(t, "Fully Charged", device.BatteryFull.Label())
	assert.Equal(t, "Charging", device.BatteryCharging.Label())
	assert.Equal(t, "Discharging", device.BatteryUnplugged.Label())
	assert.Equal(t, "Unavailable", device.BatteryNone.Label())
	assert.Equal(t, "none", device.BatteryState(42).String())
}

func TestStylusLabelsAreDistinct(t *testing.T) {
	assert.NotEqual(t, device.StylusFirstGen.Label(), device.StylusSecondGen.Label())
}

func TestInfoName(t *testing.T) {
	info := device.NewInfo("", "Linux", device.CPU{}, device.ThermalNominal, device.No, device.Yes, 0)
	_, ok := info.Name()
	assert.False(t, ok)

	info = device.NewInfo("thinkpad", "Linux", device.CPU{}, device.ThermalNominal, device.No, device.Yes, 0)
	name, ok := info.Name()
	assert.True(t, ok)
	assert.Equal(t, "thinkpad", name)
}

func TestDiskFormatting(t *testing.T) {
	disk := device.Disk{Total: 500_000_000_000, Used: 125_000_000_000, Free: 375_000_000_000}

	assert.Equal(t, "500 GB", disk.TotalHuman())
	assert.Equal(t, "125 GB", disk.UsedHuman())
	assert.InDelta(t, 25.0, disk.PercentUsed(), 0.001)
	assert.Zero(t, device.Disk{}.PercentUsed())
}

func TestFormatUptime(t *testing.T) {
	d := 3*24*time.Hour + 4*time.Hour + 12*time.Minute + 30*time.Second
	assert.Equal(t, "3d 4h 12m", device.FormatUptime(d))
	assert.Equal(t, "0d 0h 0m", device.FormatUptime(-time.Second))
}
