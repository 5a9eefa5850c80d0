package events

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/devicectl/internal/errors"
	"codeberg.org/mutker/devicectl/internal/logger"
	"codeberg.org/mutker/devicectl/internal/sensor"
)

// Poster is the write side of a bus.
type Poster interface {
	Post(name Name) error
}

type reading struct {
	level      int
	hasLevel   bool
	status     sensor.BatteryStatus
	lowPower   bool
	brightness float64
	thermal    sensor.ThermalState
}

// Poller turns a pull-only adapter into change notifications: it samples
// the adapter on an interval and posts the event of every signal whose raw
// value moved since the previous sample.
type Poller struct {
	adapter  sensor.Adapter
	poster   Poster
	interval time.Duration
	logger   logger.Logger

	mu     sync.Mutex
	last   reading
	primed bool
}

func NewPoller(adapter sensor.Adapter, poster Poster, interval time.Duration, log logger.Logger) *Poller {
	return &Poller{
		adapter:  adapter,
		poster:   poster,
		interval: interval,
		logger:   log,
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return errors.New().WithData(errors.ErrInvalidInterval, p.interval.String())
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Poll()
		}
	}
}

// Poll takes one sample. The first sample posts every event, since values
// may have moved between the subscribers' initial reads and the baseline.
func (p *Poller) Poll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var cur reading
	cur.level, cur.hasLevel = p.adapter.BatteryLevel()
	cur.status = p.adapter.BatteryStatus()
	cur.lowPower = p.adapter.LowPowerMode()
	cur.brightness = p.adapter.Brightness()
	cur.thermal = p.adapter.Thermal()

	changed := DeviceEvents
	if p.primed {
		changed = p.diff(cur)
	}
	p.last, p.primed = cur, true

	for _, name := range changed {
		p.logger.Debug().Str("event", string(name)).Msg("Posting change notification")
		if err := p.poster.Post(name); err != nil {
			p.logger.Warn().Err(err).Str("event", string(name)).Msg("Failed to post notification")
		}
	}
}

func (p *Poller) diff(cur reading) []Name {
	changed := make([]Name, 0, len(DeviceEvents))
	if cur.level != p.last.level || cur.hasLevel != p.last.hasLevel {
		changed = append(changed, BatteryLevelChanged)
	}
	if cur.status != p.last.status {
		changed = append(changed, BatteryStateChanged)
	}
	if cur.lowPower != p.last.lowPower {
		changed = append(changed, PowerStateChanged)
	}
	if cur.brightness != p.last.brightness {
		changed = append(changed, BrightnessChanged)
	}
	if cur.thermal != p.last.thermal {
		changed = append(changed, ThermalStateChanged)
	}
	return changed
}
