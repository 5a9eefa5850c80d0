// Package events carries payload-less change notifications. A tick only
// says "re-read this signal now"; handlers fetch the value themselves.
package events

import "codeberg.org/mutker/devicectl/internal/errors"

// Name identifies one kind of change notification.
type Name string

const (
	BatteryLevelChanged Name = "battery-level-changed"
	BatteryStateChanged Name = "battery-state-changed"
	PowerStateChanged   Name = "power-state-changed"
	BrightnessChanged   Name = "brightness-changed"
	ThermalStateChanged Name = "thermal-state-changed"
)

// DeviceEvents lists every notification the platform poller emits.
var DeviceEvents = []Name{
	BatteryLevelChanged,
	BatteryStateChanged,
	PowerStateChanged,
	BrightnessChanged,
	ThermalStateChanged,
}

const (
	ErrUnknownEvent = errors.ErrorCode("events_unknown_event")
	ErrNilHandler   = errors.ErrorCode("events_nil_handler")
)

// Source hands out independent registrations for named ticks. Handlers may
// be invoked from any goroutine.
type Source interface {
	Subscribe(name Name, handler func()) (Registration, error)
}

// Registration revokes one Subscribe call. Cancel is idempotent.
type Registration interface {
	Cancel()
}
