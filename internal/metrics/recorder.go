package metrics

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/devicectl/internal/device"
	"codeberg.org/mutker/devicectl/internal/devicestate"
	"codeberg.org/mutker/devicectl/internal/logger"
	"codeberg.org/mutker/devicectl/internal/stream"
)

const (
	seenLevel = 1 << iota
	seenState
	seenLowPower
	seenBrightness
	seenThermal

	seenAll = seenLevel | seenState | seenLowPower | seenBrightness | seenThermal
)

// Recorder follows the continuous signals and records a combined Sample
// on every change. Nothing is recorded until each signal has delivered its
// initial value.
type Recorder struct {
	collector Collector
	log       logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	current Sample
	seen    int
	subs    []*stream.Subscription
}

func NewRecorder(collector Collector, log logger.Logger) *Recorder {
	return &Recorder{
		collector: collector,
		log:       log,
		now:       time.Now,
	}
}

// Start subscribes to signals. Samples are recorded with ctx until Stop.
func (r *Recorder) Start(ctx context.Context, signals devicestate.Signals) {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()

	subs := []*stream.Subscription{
		signals.BatteryLevel().Subscribe(func(v device.BatteryLevel) {
			r.update(seenLevel, func(s *Sample) { s.BatteryLevel = v })
		}),
		signals.BatteryState().Subscribe(func(v device.BatteryState) {
			r.update(seenState, func(s *Sample) { s.BatteryState = v })
		}),
		signals.BatteryLowPowerMode().Subscribe(func(v device.LowPowerMode) {
			r.update(seenLowPower, func(s *Sample) { s.LowPower = v })
		}),
		signals.ScreenBrightness().Subscribe(func(v device.Brightness) {
			r.update(seenBrightness, func(s *Sample) { s.Brightness = v })
		}),
		signals.ThermalState().Subscribe(func(v device.ThermalState) {
			r.update(seenThermal, func(s *Sample) { s.Thermal = v })
		}),
	}

	r.mu.Lock()
	r.subs = append(r.subs, subs...)
	r.mu.Unlock()
}

// Stop cancels every subscription made by Start.
func (r *Recorder) Stop() {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

func (r *Recorder) update(bit int, apply func(*Sample)) {
	r.mu.Lock()
	apply(&r.current)
	r.seen |= bit
	if r.seen != seenAll {
		r.mu.Unlock()
		return
	}
	sample := r.current
	sample.Timestamp = r.now()
	ctx := r.ctx
	r.mu.Unlock()

	if err := r.collector.Record(ctx, sample); err != nil {
		r.log.Warn().Err(err).Msg("Failed to record sample")
	}
}
