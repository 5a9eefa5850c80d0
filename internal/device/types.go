// Package device holds the public value types produced by the device state
// aggregator. All values are immutable snapshots.
package device

import "time"

// Flag is a yes/no capability marker.
type Flag bool

const (
	Yes Flag = true
	No  Flag = false
)

// FlagOf converts a raw boolean into a Flag.
func FlagOf(b bool) Flag {
	return Flag(b)
}

func (f Flag) String() string {
	if f {
		return "yes"
	}
	return "no"
}

// Info is a point-in-time description of the device.
type Info struct {
	name         string
	hasName      bool
	OS           string
	CPU          CPU
	Thermal      ThermalState
	Jailbroken   Flag
	Multitasking Flag
	Uptime       time.Duration
}

// NewInfo builds an Info. An empty name is stored as absent.
func NewInfo(name, os string, cpu CPU, thermal ThermalState, jailbroken, multitasking Flag, uptime time.Duration) Info {
	return Info{
		name:         name,
		hasName:      name != "",
		OS:           os,
		CPU:          cpu,
		Thermal:      thermal,
		Jailbroken:   jailbroken,
		Multitasking: multitasking,
		Uptime:       uptime,
	}
}

// Name returns the device name, if one is known.
func (i Info) Name() (string, bool) {
	return i.name, i.hasName
}

type CPU struct {
	Processor    string
	Architecture Architecture
	Cores        int
	ActiveCores  int
}

// Support bundles the mostly static capabilities of the device.
type Support struct {
	Stylus           StylusSupport
	WirelessCharging Flag
	TouchID          Flag
	FaceID           Flag
	Display          Display
	Camera           Camera
	Counting         Counting
	Disk             Disk
}

type Display struct {
	Zoomed         Flag
	Diagonal       float64
	RoundedCorners Flag
	PPI            int
	Has3DTouch     Flag
	Resolution     Resolution
}

type Resolution struct {
	X int
	Y int
}

type Camera struct {
	Lidar     Flag
	Telephoto Flag
	Wide      Flag
	UltraWide Flag
	Torch     Flag
}

// Counting lists which motion metrics the device can count.
type Counting struct {
	Steps    Flag
	Pace     Flag
	Distance Flag
	Floors   Flag
	Cadence  Flag
}

// Disk is the usage of the monitored volume, in bytes.
type Disk struct {
	Total int64
	Used  int64
	Free  int64
}

// Brightness is the screen brightness in percent, 0 to 100.
type Brightness int
