package device

type ThermalState int

const (
	ThermalNominal ThermalState = iota
	ThermalFair
	ThermalSerious
	ThermalCritical
)

func (s ThermalState) String() string {
	switch s {
	case ThermalFair:
		return "fair"
	case ThermalSerious:
		return "serious"
	case ThermalCritical:
		return "critical"
	default:
		return "nominal"
	}
}

func (s ThermalState) Label() string {
	switch s {
	case ThermalFair:
		return "Fair"
	case ThermalSerious:
		return "Serious"
	case ThermalCritical:
		return "Critical"
	default:
		return "Normal"
	}
}

type Architecture int

const (
	ArchUnknown Architecture = iota
	ArchARM64
	ArchARM
	ArchAMD64
	ArchX86
)

func (a Architecture) String() string {
	switch a {
	case ArchARM64:
		return "arm64"
	case ArchARM:
		return "arm"
	case ArchAMD64:
		return "amd64"
	case ArchX86:
		return "x86"
	default:
		return "unknown"
	}
}

type StylusSupport int

const (
	StylusNone StylusSupport = iota
	StylusFirstGen
	StylusSecondGen
)

func (s StylusSupport) String() string {
	switch s {
	case StylusFirstGen:
		return "first-gen"
	case StylusSecondGen:
		return "second-gen"
	default:
		return "none"
	}
}

func (s StylusSupport) Label() string {
	switch s {
	case StylusFirstGen:
		return "First Generation Supported"
	case StylusSecondGen:
		return "Second Generation Supported"
	default:
		return "Not Supported"
	}
}
