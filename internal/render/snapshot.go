// Package render turns device state into terminal text, JSON or TOML.
package render

import (
	"time"

	"codeberg.org/mutker/devicectl/internal/device"
)

// State holds the current value of every continuous signal.
type State struct {
	BatteryLevel device.BatteryLevel
	BatteryState device.BatteryState
	LowPower     device.LowPowerMode
	Brightness   device.Brightness
	Thermal      device.ThermalState
}

// Snapshot is the serializable view of a device at one point in time.
type Snapshot struct {
	TakenAt time.Time   `json:"taken_at" toml:"taken_at"`
	Device  DeviceView  `json:"device" toml:"device"`
	State   StateView   `json:"state" toml:"state"`
	Support SupportView `json:"support" toml:"support"`
}

type DeviceView struct {
	Name          string `json:"name,omitempty" toml:"name,omitempty"`
	OS            string `json:"os" toml:"os"`
	Processor     string `json:"processor" toml:"processor"`
	Architecture  string `json:"architecture" toml:"architecture"`
	Cores         int    `json:"cores" toml:"cores"`
	ActiveCores   int    `json:"active_cores" toml:"active_cores"`
	Jailbroken    bool   `json:"jailbroken" toml:"jailbroken"`
	Multitasking  bool   `json:"multitasking" toml:"multitasking"`
	UptimeSeconds int64  `json:"uptime_seconds" toml:"uptime_seconds"`
	Uptime        string `json:"uptime" toml:"uptime"`
}

type StateView struct {
	// BatteryLevel is omitted when the device reports no battery.
	BatteryLevel *int   `json:"battery_level,omitempty" toml:"battery_level,omitempty"`
	BatteryState string `json:"battery_state" toml:"battery_state"`
	LowPowerMode bool   `json:"low_power_mode" toml:"low_power_mode"`
	Brightness   int    `json:"screen_brightness" toml:"screen_brightness"`
	Thermal      string `json:"thermal_state" toml:"thermal_state"`
}

type SupportView struct {
	Stylus           string       `json:"stylus" toml:"stylus"`
	WirelessCharging bool         `json:"wireless_charging" toml:"wireless_charging"`
	TouchID          bool         `json:"touch_id" toml:"touch_id"`
	FaceID           bool         `json:"face_id" toml:"face_id"`
	Display          DisplayView  `json:"display" toml:"display"`
	Camera           CameraView   `json:"camera" toml:"camera"`
	Counting         CountingView `json:"counting" toml:"counting"`
	Disk             DiskView     `json:"disk" toml:"disk"`
}

type DisplayView struct {
	Zoomed         bool    `json:"zoomed" toml:"zoomed"`
	Diagonal       float64 `json:"diagonal_inches" toml:"diagonal_inches"`
	RoundedCorners bool    `json:"rounded_corners" toml:"rounded_corners"`
	PPI            int     `json:"ppi" toml:"ppi"`
	Has3DTouch     bool    `json:"3d_touch" toml:"3d_touch"`
	ResolutionX    int     `json:"resolution_x" toml:"resolution_x"`
	ResolutionY    int     `json:"resolution_y" toml:"resolution_y"`
}

type CameraView struct {
	Lidar     bool `json:"lidar" toml:"lidar"`
	Telephoto bool `json:"telephoto" toml:"telephoto"`
	Wide      bool `json:"wide" toml:"wide"`
	UltraWide bool `json:"ultra_wide" toml:"ultra_wide"`
	Torch     bool `json:"torch" toml:"torch"`
}

type CountingView struct {
	Steps    bool `json:"steps" toml:"steps"`
	Pace     bool `json:"pace" toml:"pace"`
	Distance bool `json:"distance" toml:"distance"`
	Floors   bool `json:"floors" toml:"floors"`
	Cadence  bool `json:"cadence" toml:"cadence"`
}

type DiskView struct {
	TotalBytes  int64   `json:"total_bytes" toml:"total_bytes"`
	UsedBytes   int64   `json:"used_bytes" toml:"used_bytes"`
	FreeBytes   int64   `json:"free_bytes" toml:"free_bytes"`
	PercentUsed float64 `json:"percent_used" toml:"percent_used"`
}

func NewSnapshot(at time.Time, info device.Info, support device.Support, state State) Snapshot {
	name, _ := info.Name()

	s := Snapshot{
		TakenAt: at,
		Device: DeviceView{
			Name:          name,
			OS:            info.OS,
			Processor:     info.CPU.Processor,
			Architecture:  info.CPU.Architecture.String(),
			Cores:         info.CPU.Cores,
			ActiveCores:   info.CPU.ActiveCores,
			Jailbroken:    bool(info.Jailbroken),
			Multitasking:  bool(info.Multitasking),
			UptimeSeconds: int64(info.Uptime / time.Second),
			Uptime:        device.FormatUptime(info.Uptime),
		},
		State: StateView{
			BatteryState: state.BatteryState.String(),
			LowPowerMode: state.LowPower == device.LowPowerOn,
			Brightness:   int(state.Brightness),
			Thermal:      state.Thermal.String(),
		},
		Support: SupportView{
			Stylus:           support.Stylus.String(),
			WirelessCharging: bool(support.WirelessCharging),
			TouchID:          bool(support.TouchID),
			FaceID:           bool(support.FaceID),
			Display: DisplayView{
				Zoomed:         bool(support.Display.Zoomed),
				Diagonal:       support.Display.Diagonal,
				RoundedCorners: bool(support.Display.RoundedCorners),
				PPI:            support.Display.PPI,
				Has3DTouch:     bool(support.Display.Has3DTouch),
				ResolutionX:    support.Display.Resolution.X,
				ResolutionY:    support.Display.Resolution.Y,
			},
			Camera: CameraView{
				Lidar:     bool(support.Camera.Lidar),
				Telephoto: bool(support.Camera.Telephoto),
				Wide:      bool(support.Camera.Wide),
				UltraWide: bool(support.Camera.UltraWide),
				Torch:     bool(support.Camera.Torch),
			},
			Counting: CountingView{
				Steps:    bool(support.Counting.Steps),
				Pace:     bool(support.Counting.Pace),
				Distance: bool(support.Counting.Distance),
				Floors:   bool(support.Counting.Floors),
				Cadence:  bool(support.Counting.Cadence),
			},
			Disk: DiskView{
				TotalBytes:  support.Disk.Total,
				UsedBytes:   support.Disk.Used,
				FreeBytes:   support.Disk.Free,
				PercentUsed: support.Disk.PercentUsed(),
			},
		},
	}

	if p, ok := state.BatteryLevel.Percent(); ok {
		s.State.BatteryLevel = &p
	}

	return s
}
