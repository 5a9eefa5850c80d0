package telemetry

import (
	"context"
	"strconv"
	"sync"
	"time"

	"codeberg.org/mutker/devicectl/internal/device"
	"codeberg.org/mutker/devicectl/internal/devicestate"
	"codeberg.org/mutker/devicectl/internal/logger"
	"codeberg.org/mutker/devicectl/internal/stream"
)

// Forwarder fans signal changes out to sinks. Stream callbacks only enqueue
// and a worker goroutine publishes. Updates are dropped when the queue is
// full.
type Forwarder struct {
	sinks []Sink
	log   logger.Logger
	now   func() time.Time

	updates chan Update
	mu      sync.Mutex
	subs    []*stream.Subscription
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	stopped bool
}

func NewForwarder(log logger.Logger, sinks ...Sink) *Forwarder {
	return &Forwarder{
		sinks:   sinks,
		log:     log,
		now:     time.Now,
		updates: make(chan Update, defaultQueueSize),
		done:    make(chan struct{}),
	}
}

// Start subscribes to every continuous signal. Only the first call has an
// effect.
func (f *Forwarder) Start(ctx context.Context, signals devicestate.Signals) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started {
		return
	}
	f.started = true

	ctx, f.cancel = context.WithCancel(ctx)
	go f.run(ctx)

	f.subs = []*stream.Subscription{
		signals.BatteryLevel().Subscribe(func(v device.BatteryLevel) {
			f.enqueue(BatteryLevelUpdate(v, f.now()))
		}),
		signals.BatteryState().Subscribe(func(v device.BatteryState) {
			f.enqueue(BatteryStateUpdate(v, f.now()))
		}),
		signals.BatteryLowPowerMode().Subscribe(func(v device.LowPowerMode) {
			f.enqueue(LowPowerUpdate(v, f.now()))
		}),
		signals.ScreenBrightness().Subscribe(func(v device.Brightness) {
			f.enqueue(BrightnessUpdate(v, f.now()))
		}),
		signals.ThermalState().Subscribe(func(v device.ThermalState) {
			f.enqueue(ThermalUpdate(v, f.now()))
		}),
	}
}

// Stop cancels the subscriptions, waits for the worker to drain what is
// queued and closes every sink.
func (f *Forwarder) Stop() error {
	f.mu.Lock()
	if !f.started || f.stopped {
		f.mu.Unlock()
		return nil
	}
	subs := f.subs
	f.subs = nil
	cancel := f.cancel
	f.stopped = true
	f.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	cancel()
	<-f.done

	var firstErr error
	for _, sink := range f.sinks {
		if err := sink.Close(); err != nil {
			f.log.Warn().Err(err).Msg("Failed to close telemetry sink")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (f *Forwarder) enqueue(u Update) {
	select {
	case f.updates <- u:
	default:
		f.log.Warn().Str("signal", string(u.Signal)).Msg("Telemetry queue full, dropping update")
	}
}

func (f *Forwarder) run(ctx context.Context) {
	defer close(f.done)

	for {
		select {
		case u := <-f.updates:
			f.publish(ctx, u)
		case <-ctx.Done():
			f.drain()
			return
		}
	}
}

// drain publishes what is already queued, bounded by the publish timeout.
func (f *Forwarder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultPublishTimeout)
	defer cancel()

	for {
		select {
		case u := <-f.updates:
			f.publish(ctx, u)
		default:
			return
		}
	}
}

func (f *Forwarder) publish(ctx context.Context, u Update) {
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, u); err != nil {
			f.log.Warn().
				Err(err).
				Str("signal", string(u.Signal)).
				Msg("Failed to publish update")
		}
	}
}

func BatteryLevelUpdate(v device.BatteryLevel, at time.Time) Update {
	p, ok := v.Percent()
	return Update{Signal: SignalBatteryLevel, Value: p, State: v.String(), Available: ok, Timestamp: at}
}

func BatteryStateUpdate(v device.BatteryState, at time.Time) Update {
	return Update{Signal: SignalBatteryState, Value: int(v), State: v.String(), Available: true, Timestamp: at}
}

func LowPowerUpdate(v device.LowPowerMode, at time.Time) Update {
	return Update{Signal: SignalLowPower, Value: int(v), State: v.String(), Available: true, Timestamp: at}
}

func BrightnessUpdate(v device.Brightness, at time.Time) Update {
	return Update{Signal: SignalBrightness, Value: int(v), State: strconv.Itoa(int(v)) + "%", Available: true, Timestamp: at}
}

func ThermalUpdate(v device.ThermalState, at time.Time) Update {
	return Update{Signal: SignalThermal, Value: int(v), State: v.String(), Available: true, Timestamp: at}
}
