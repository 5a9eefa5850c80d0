// Package sensortest provides an in-memory sensor.Adapter for tests.
package sensortest

import (
	"sync"

	"codeberg.org/mutker/devicectl/internal/sensor"
)

// Fake is a settable sensor.Adapter. The zero value reports no battery,
// zero brightness and a nominal thermal state.
type Fake struct {
	mu sync.Mutex

	level        int
	hasLevel     bool
	status       sensor.BatteryStatus
	lowPower     bool
	brightness   float64
	thermal      sensor.ThermalState
	identity     sensor.Identity
	capabilities sensor.Capabilities
	disk         sensor.DiskUsage

	reads map[string]int
}

func New() *Fake {
	return &Fake{
		status:  sensor.StatusUnknown,
		thermal: sensor.ThermalNominal,
		reads:   make(map[string]int),
	}
}

func (f *Fake) SetBatteryLevel(percent int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.level, f.hasLevel = percent, true
}

func (f *Fake) ClearBatteryLevel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.level, f.hasLevel = 0, false
}

func (f *Fake) SetBatteryStatus(s sensor.BatteryStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

func (f *Fake) SetLowPowerMode(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lowPower = on
}

func (f *Fake) SetBrightness(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brightness = v
}

func (f *Fake) SetThermal(s sensor.ThermalState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.thermal = s
}

func (f *Fake) SetIdentity(id sensor.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identity = id
}

func (f *Fake) SetCapabilities(c sensor.Capabilities) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capabilities = c
}

func (f *Fake) SetDiskUsage(d sensor.DiskUsage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disk = d
}

// Reads returns how often the named accessor was called.
func (f *Fake) Reads(accessor string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[accessor]
}

func (f *Fake) count(accessor string) {
	if f.reads == nil {
		f.reads = make(map[string]int)
	}
	f.reads[accessor]++
}

func (f *Fake) BatteryLevel() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("BatteryLevel")
	return f.level, f.hasLevel
}

func (f *Fake) BatteryStatus() sensor.BatteryStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("BatteryStatus")
	return f.status
}

func (f *Fake) LowPowerMode() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("LowPowerMode")
	return f.lowPower
}

func (f *Fake) Brightness() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("Brightness")
	return f.brightness
}

func (f *Fake) Thermal() sensor.ThermalState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("Thermal")
	return f.thermal
}

func (f *Fake) Identity() sensor.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("Identity")
	return f.identity
}

func (f *Fake) Capabilities() sensor.Capabilities {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("Capabilities")
	return f.capabilities
}

func (f *Fake) DiskUsage() sensor.DiskUsage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("DiskUsage")
	return f.disk
}
