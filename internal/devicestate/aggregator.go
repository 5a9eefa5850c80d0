// Package devicestate exposes the device's state as observable streams.
// Continuous signals are kept current by change ticks from an events.Source;
// descriptive snapshots are sampled on demand.
package devicestate

import (
	"sync"

	"codeberg.org/mutker/devicectl/internal/device"
	"codeberg.org/mutker/devicectl/internal/errors"
	"codeberg.org/mutker/devicectl/internal/events"
	"codeberg.org/mutker/devicectl/internal/logger"
	"codeberg.org/mutker/devicectl/internal/sensor"
	"codeberg.org/mutker/devicectl/internal/stream"
)

// Signals is the continuous half of the aggregator, the part consumers
// such as recorders and exporters follow.
type Signals interface {
	BatteryLevel() stream.Observable[device.BatteryLevel]
	BatteryState() stream.Observable[device.BatteryState]
	BatteryLowPowerMode() stream.Observable[device.LowPowerMode]
	ScreenBrightness() stream.Observable[device.Brightness]
	ThermalState() stream.Observable[device.ThermalState]
}

var _ Signals = (*Aggregator)(nil)

type Option func(*Aggregator)

// WithLogger sets the logger used for tick tracing. Defaults to the package
// logger.
func WithLogger(log logger.Logger) Option {
	return func(a *Aggregator) {
		a.log = log
	}
}

// Aggregator owns one hold-latest stream per continuous signal. All
// observer callbacks run on its private dispatcher goroutine.
type Aggregator struct {
	adapter    sensor.Adapter
	log        logger.Logger
	dispatcher *stream.Dispatcher

	batteryLevel *signal[device.BatteryLevel]
	batteryState *signal[device.BatteryState]
	lowPower     *signal[device.LowPowerMode]
	brightness   *signal[device.Brightness]
	thermal      *signal[device.ThermalState]

	registrations []events.Registration
	closeOnce     sync.Once
}

// signal couples a Subject with the read that refreshes it. The mutex keeps
// read-then-publish atomic so concurrent ticks cannot publish out of order.
type signal[T any] struct {
	mu      sync.Mutex
	subject *stream.Subject[T]
	read    func() T
}

func newSignal[T any](d *stream.Dispatcher, read func() T) *signal[T] {
	return &signal[T]{
		subject: stream.NewSubject(d, read()),
		read:    read,
	}
}

func (s *signal[T]) refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subject.Publish(s.read())
}

// New seeds every continuous signal from the adapter and subscribes to the
// matching change ticks. If any subscription fails, the ones already made
// are revoked and an error is returned.
func New(adapter sensor.Adapter, source events.Source, opts ...Option) (*Aggregator, error) {
	errFactory := errors.New()

	if adapter == nil {
		return nil, errFactory.New(ErrNilAdapter)
	}
	if source == nil {
		return nil, errFactory.New(ErrNilSource)
	}

	d := stream.NewDispatcher()
	a := &Aggregator{
		adapter:    adapter,
		log:        logger.Default(),
		dispatcher: d,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.batteryLevel = newSignal(d, func() device.BatteryLevel {
		return mapBatteryLevel(adapter.BatteryLevel())
	})
	a.batteryState = newSignal(d, func() device.BatteryState {
		return mapBatteryState(adapter.BatteryStatus())
	})
	a.lowPower = newSignal(d, func() device.LowPowerMode {
		return device.LowPowerModeOf(adapter.LowPowerMode())
	})
	a.brightness = newSignal(d, func() device.Brightness {
		return mapBrightness(adapter.Brightness())
	})
	a.thermal = newSignal(d, func() device.ThermalState {
		return mapThermalState(adapter.Thermal())
	})

	bindings := []struct {
		name    events.Name
		refresh func()
	}{
		{events.BatteryLevelChanged, a.batteryLevel.refresh},
		{events.BatteryStateChanged, a.batteryState.refresh},
		{events.PowerStateChanged, a.lowPower.refresh},
		{events.BrightnessChanged, a.brightness.refresh},
		{events.ThermalStateChanged, a.thermal.refresh},
	}

	for _, b := range bindings {
		name, refresh := b.name, b.refresh
		reg, err := source.Subscribe(name, func() {
			a.log.Debug().Str("event", string(name)).Msg("Refreshing signal")
			refresh()
		})
		if err != nil {
			a.revoke()
			a.closeSubjects()
			d.Stop()
			return nil, errFactory.Wrap(ErrSubscribeFailed, err).WithData(string(name))
		}
		a.registrations = append(a.registrations, reg)
	}

	return a, nil
}

// DeviceInformation samples the device description once per call.
func (a *Aggregator) DeviceInformation() stream.Observable[device.Info] {
	info := mapInfo(a.adapter.Identity(), a.adapter.Thermal())
	return stream.NewJust(a.dispatcher, info)
}

// DeviceSupport samples the capability set once per call.
func (a *Aggregator) DeviceSupport() stream.Observable[device.Support] {
	support := mapSupport(a.adapter.Capabilities(), a.adapter.DiskUsage())
	return stream.NewJust(a.dispatcher, support)
}

func (a *Aggregator) BatteryLevel() stream.Observable[device.BatteryLevel] {
	return a.batteryLevel.subject
}

func (a *Aggregator) BatteryState() stream.Observable[device.BatteryState] {
	return a.batteryState.subject
}

func (a *Aggregator) BatteryLowPowerMode() stream.Observable[device.LowPowerMode] {
	return a.lowPower.subject
}

func (a *Aggregator) ScreenBrightness() stream.Observable[device.Brightness] {
	return a.brightness.subject
}

func (a *Aggregator) ThermalState() stream.Observable[device.ThermalState] {
	return a.thermal.subject
}

// Close revokes every tick registration, completes all streams and waits
// for an in-flight callback to return. No observer runs after Close
// returns. It must not be called from an observer callback.
func (a *Aggregator) Close() error {
	a.closeOnce.Do(func() {
		a.revoke()
		a.closeSubjects()
		a.dispatcher.Stop()
		a.log.Debug().Msg("Device state aggregator closed")
	})
	return nil
}

func (a *Aggregator) revoke() {
	for _, reg := range a.registrations {
		reg.Cancel()
	}
	a.registrations = nil
}

func (a *Aggregator) closeSubjects() {
	a.batteryLevel.close()
	a.batteryState.close()
	a.lowPower.close()
	a.brightness.close()
	a.thermal.close()
}

func (s *signal[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subject.Close()
}
