//go:build linux

package sensor

import (
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"codeberg.org/mutker/devicectl/internal/logger"
	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/sysfs"
)

// TemperatureProbe is an additional temperature source, such as a GPU.
type TemperatureProbe interface {
	Temperature() (float64, error)
}

type Option func(*linuxAdapter)

// WithTemperatureProbe adds a probe whose reading is folded into the
// thermal state.
func WithTemperatureProbe(p TemperatureProbe) Option {
	return func(a *linuxAdapter) {
		a.probes = append(a.probes, p)
	}
}

// WithLogger overrides the package-level logger.
func WithLogger(log logger.Logger) Option {
	return func(a *linuxAdapter) {
		a.logger = log
	}
}

type linuxAdapter struct {
	cfg    Config
	probes []TemperatureProbe
	logger logger.Logger
}

// NewPlatform returns the adapter for the running platform, reading sysfs
// and procfs under the configured roots.
func NewPlatform(cfg Config, opts ...Option) Adapter {
	a := &linuxAdapter{
		cfg:    cfg,
		logger: logger.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *linuxAdapter) sys(parts ...string) string {
	return filepath.Join(append([]string{a.cfg.SysfsRoot}, parts...)...)
}

func (a *linuxAdapter) proc(parts ...string) string {
	return filepath.Join(append([]string{a.cfg.ProcRoot}, parts...)...)
}

// sysFS opens the configured sysfs root. A missing root means the host
// exposes none of the classes read through it.
func (a *linuxAdapter) sysFS() (sysfs.FS, bool) {
	fs, err := sysfs.NewFS(a.cfg.SysfsRoot)
	if err != nil {
		a.logger.Debug().Err(err).Str("root", a.cfg.SysfsRoot).Msg("sysfs unavailable")
		return sysfs.FS{}, false
	}
	return fs, true
}

func (a *linuxAdapter) procFS() (procfs.FS, bool) {
	fs, err := procfs.NewFS(a.cfg.ProcRoot)
	if err != nil {
		a.logger.Debug().Err(err).Str("root", a.cfg.ProcRoot).Msg("procfs unavailable")
		return procfs.FS{}, false
	}
	return fs, true
}

func (a *linuxAdapter) powerSupplies() sysfs.PowerSupplyClass {
	fs, ok := a.sysFS()
	if !ok {
		return nil
	}
	psc, err := fs.PowerSupplyClass()
	if err != nil {
		a.logger.Debug().Err(err).Msg("Power supply class unreadable")
		return nil
	}
	return psc
}

// battery returns the first system battery by name, skipping peripheral
// batteries such as wireless mice.
func (a *linuxAdapter) battery() (sysfs.PowerSupply, bool) {
	psc := a.powerSupplies()
	for _, name := range slices.Sorted(maps.Keys(psc)) {
		ps := psc[name]
		if ps.Type != "Battery" || ps.Scope == "Device" {
			continue
		}
		return ps, true
	}
	return sysfs.PowerSupply{}, false
}

func (a *linuxAdapter) BatteryLevel() (int, bool) {
	ps, ok := a.battery()
	if !ok {
		return 0, false
	}
	if ps.Capacity == nil {
		a.logger.Debug().Str("battery", ps.Name).Msg("Battery capacity unreadable")
		return 0, false
	}
	return int(*ps.Capacity), true
}

func (a *linuxAdapter) BatteryStatus() BatteryStatus {
	ps, ok := a.battery()
	if !ok || ps.Status == "" {
		return StatusUnknown
	}
	return BatteryStatus(ps.Status)
}

func (a *linuxAdapter) LowPowerMode() bool {
	profile, ok := readString(a.sys("firmware", "acpi", "platform_profile"))
	return ok && profile == "low-power"
}

func (a *linuxAdapter) Brightness() float64 {
	for _, dir := range entries(a.sys("class", "backlight")) {
		maxBrightness, ok := readInt(filepath.Join(dir, "max_brightness"))
		if !ok || maxBrightness <= 0 {
			continue
		}
		current, ok := readInt(filepath.Join(dir, "actual_brightness"))
		if !ok {
			current, ok = readInt(filepath.Join(dir, "brightness"))
		}
		if !ok {
			continue
		}
		return float64(current) / float64(maxBrightness)
	}
	return 0
}

func (a *linuxAdapter) Thermal() ThermalState {
	highest := math.Inf(-1)
	if fs, ok := a.sysFS(); ok {
		zones, err := fs.ClassThermalZoneStats()
		if err != nil {
			a.logger.Debug().Err(err).Msg("Thermal zones unreadable")
		}
		for _, zone := range zones {
			highest = math.Max(highest, float64(zone.Temp)/1000)
		}
	}
	for _, p := range a.probes {
		celsius, err := p.Temperature()
		if err != nil {
			a.logger.Debug().Err(err).Msg("Temperature probe failed")
			continue
		}
		highest = math.Max(highest, celsius)
	}

	if math.IsInf(highest, -1) {
		return ThermalNominal
	}
	return a.cfg.ClassifyTemperature(highest)
}

// sysctl reads a single-word kernel parameter such as kernel.hostname.
func (a *linuxAdapter) sysctl(name string) (string, bool) {
	fs, ok := a.procFS()
	if !ok {
		return "", false
	}
	fields, err := fs.SysctlStrings(name)
	if err != nil || len(fields) == 0 {
		return "", false
	}
	return strings.Join(fields, " "), true
}

func (a *linuxAdapter) hostname() string {
	if name, ok := a.sysctl("kernel.hostname"); ok {
		return name
	}
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}
