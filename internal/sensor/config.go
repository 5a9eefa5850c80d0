package sensor

const (
	defaultSysfsRoot = "/sys"
	defaultProcRoot  = "/proc"
	defaultEtcRoot   = "/etc"
	defaultDiskPath  = "/"

	defaultFairCelsius     = 70
	defaultSeriousCelsius  = 80
	defaultCriticalCelsius = 90
)

type Config struct {
	SysfsRoot string
	ProcRoot  string
	EtcRoot   string
	DiskPath  string

	FairCelsius     float64
	SeriousCelsius  float64
	CriticalCelsius float64
}

func DefaultConfig() Config {
	return Config{
		SysfsRoot:       defaultSysfsRoot,
		ProcRoot:        defaultProcRoot,
		EtcRoot:         defaultEtcRoot,
		DiskPath:        defaultDiskPath,
		FairCelsius:     defaultFairCelsius,
		SeriousCelsius:  defaultSeriousCelsius,
		CriticalCelsius: defaultCriticalCelsius,
	}
}

// ClassifyTemperature maps a temperature onto a thermal state using the
// configured thresholds.
func (c Config) ClassifyTemperature(celsius float64) ThermalState {
	switch {
	case celsius >= c.CriticalCelsius:
		return ThermalCritical
	case celsius >= c.SeriousCelsius:
		return ThermalSerious
	case celsius >= c.FairCelsius:
		return ThermalFair
	default:
		return ThermalNominal
	}
}
