package devicestate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/devicectl/internal/device"
	"codeberg.org/mutker/devicectl/internal/devicestate"
	"codeberg.org/mutker/devicectl/internal/errors"
	"codeberg.org/mutker/devicectl/internal/events"
	"codeberg.org/mutker/devicectl/internal/logger"
	"codeberg.org/mutker/devicectl/internal/sensor"
	"codeberg.org/mutker/devicectl/internal/sensor/sensortest"
	"codeberg.org/mutker/devicectl/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

type collector[T any] struct {
	mu     sync.Mutex
	values []T
}

func collect[T any](src stream.Observable[T]) (*collector[T], *stream.Subscription) {
	c := &collector[T]{}
	sub := src.Subscribe(func(v T) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.values = append(c.values, v)
	})
	return c, sub
}

func (c *collector[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.values))
	copy(out, c.values)
	return out
}

func (c *collector[T]) waitLen(t *testing.T, n int) []T {
	t.Helper()
	require.Eventually(t, func() bool { return len(c.snapshot()) >= n }, waitFor, tick)
	return c.snapshot()
}

func newAggregator(t *testing.T, fake *sensortest.Fake) (*devicestate.Aggregator, *events.Bus) {
	t.Helper()

	bus := events.NewBus(events.DeviceEvents...)
	agg, err := devicestate.New(fake, bus)
	require.NoError(t, err)
	t.Cleanup(func() { _ = agg.Close() })

	return agg, bus
}

func TestBatteryLevelReplaysThenFollowsChanges(t *testing.T) {
	fake := sensortest.New()
	agg, bus := newAggregator(t, fake)

	got, sub := collect(agg.BatteryLevel())
	defer sub.Cancel()
	got.waitLen(t, 1)

	for _, p := range []int{0, 50, 100} {
		fake.SetBatteryLevel(p)
		require.NoError(t, bus.Post(events.BatteryLevelChanged))
	}

	values := got.waitLen(t, 4)
	assert.Equal(t, []device.BatteryLevel{
		device.BatteryUnavailable,
		device.Level(0),
		device.Level(50),
		device.Level(100),
	}, values)
}

func TestBatteryStateSequence(t *testing.T) {
	fake := sensortest.New()
	agg, bus := newAggregator(t, fake)

	got, sub := collect(agg.BatteryState())
	defer sub.Cancel()
	got.waitLen(t, 1)

	for _, s := range []sensor.BatteryStatus{sensor.StatusDischarging, sensor.StatusCharging, sensor.StatusFull} {
		fake.SetBatteryStatus(s)
		require.NoError(t, bus.Post(events.BatteryStateChanged))
	}

	assert.Equal(t, []device.BatteryState{
		device.BatteryNone,
		device.BatteryUnplugged,
		device.BatteryCharging,
		device.BatteryFull,
	}, got.waitLen(t, 4))
}

func TestScreenBrightnessSequence(t *testing.T) {
	fake := sensortest.New()
	agg, bus := newAggregator(t, fake)

	got, sub := collect(agg.ScreenBrightness())
	defer sub.Cancel()
	got.waitLen(t, 1)

	for _, v := range []float64{0, 0.5, 1} {
		fake.SetBrightness(v)
		require.NoError(t, bus.Post(events.BrightnessChanged))
	}

	assert.Equal(t, []device.Brightness{0, 0, 50, 100}, got.waitLen(t, 4))
}

func TestLowPowerAndThermalFollowTicks(t *testing.T) {
	fake := sensortest.New()
	agg, bus := newAggregator(t, fake)

	power, powerSub := collect(agg.BatteryLowPowerMode())
	defer powerSub.Cancel()
	thermal, thermalSub := collect(agg.ThermalState())
	defer thermalSub.Cancel()

	fake.SetLowPowerMode(true)
	fake.SetThermal(sensor.ThermalSerious)
	require.NoError(t, bus.Post(events.PowerStateChanged))
	require.NoError(t, bus.Post(events.ThermalStateChanged))

	assert.Equal(t, []device.LowPowerMode{device.LowPowerOff, device.LowPowerOn}, power.waitLen(t, 2))
	assert.Equal(t, []device.ThermalState{device.ThermalNominal, device.ThermalSerious}, thermal.waitLen(t, 2))
}

func TestInitialValueMatchesAdapter(t *testing.T) {
	fake := sensortest.New()
	fake.SetBatteryLevel(42)
	fake.SetBatteryStatus(sensor.StatusCharging)
	fake.SetBrightness(0.25)

	agg, _ := newAggregator(t, fake)
	ctx := context.Background()

	level, err := stream.First(ctx, agg.BatteryLevel())
	require.NoError(t, err)
	assert.Equal(t, device.Level(42), level)

	state, err := stream.First(ctx, agg.BatteryState())
	require.NoError(t, err)
	assert.Equal(t, device.BatteryCharging, state)

	brightness, err := stream.First(ctx, agg.ScreenBrightness())
	require.NoError(t, err)
	assert.Equal(t, device.Brightness(25), brightness)
}

func TestSubscribersAreIndependent(t *testing.T) {
	fake := sensortest.New()
	agg, bus := newAggregator(t, fake)

	first, firstSub := collect(agg.BatteryLevel())
	second, secondSub := collect(agg.BatteryLevel())
	defer secondSub.Cancel()
	first.waitLen(t, 1)
	second.waitLen(t, 1)

	firstSub.Cancel()

	fake.SetBatteryLevel(80)
	require.NoError(t, bus.Post(events.BatteryLevelChanged))

	assert.Equal(t, []device.BatteryLevel{device.BatteryUnavailable, device.Level(80)}, second.waitLen(t, 2))
	assert.Len(t, first.snapshot(), 1)
}

func TestTicksOnlyRefreshTheirOwnSignal(t *testing.T) {
	fake := sensortest.New()
	agg, bus := newAggregator(t, fake)

	level, levelSub := collect(agg.BatteryLevel())
	defer levelSub.Cancel()
	brightness, brightnessSub := collect(agg.ScreenBrightness())
	defer brightnessSub.Cancel()
	level.waitLen(t, 1)
	brightness.waitLen(t, 1)

	fake.SetBatteryLevel(30)
	fake.SetBrightness(0.5)
	require.NoError(t, bus.Post(events.BatteryLevelChanged))

	assert.Equal(t, []device.BatteryLevel{device.BatteryUnavailable, device.Level(30)}, level.waitLen(t, 2))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []device.Brightness{0}, brightness.snapshot())

	require.NoError(t, bus.Post(events.BrightnessChanged))

	assert.Equal(t, []device.Brightness{0, 50}, brightness.waitLen(t, 2))
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, level.snapshot(), 2)
}

func TestConcurrentTicksKeepEventOrder(t *testing.T) {
	const posters = 50

	fake := sensortest.New()
	agg, bus := newAggregator(t, fake)

	got, sub := collect(agg.BatteryLevel())
	defer sub.Cancel()
	got.waitLen(t, 1)

	var (
		mu    sync.Mutex
		level int
		wg    sync.WaitGroup
	)
	for i := 0; i < posters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu.Lock()
			level++
			fake.SetBatteryLevel(level)
			mu.Unlock()
			assert.NoError(t, bus.Post(events.BatteryLevelChanged))
		}()
	}
	wg.Wait()

	values := got.waitLen(t, posters+1)
	require.Len(t, values, posters+1)
	assert.Equal(t, device.BatteryUnavailable, values[0])

	prev := 0
	for _, v := range values[1:] {
		p, ok := v.Percent()
		require.True(t, ok)
		assert.GreaterOrEqual(t, p, prev, "levels must not go backwards")
		assert.LessOrEqual(t, p, posters)
		prev = p
	}
	assert.Equal(t, posters, prev)
}

func TestPollerFirstSampleCatchesEarlierChanges(t *testing.T) {
	fake := sensortest.New()
	agg, bus := newAggregator(t, fake)

	got, sub := collect(agg.BatteryLevel())
	defer sub.Cancel()
	got.waitLen(t, 1)

	// changes between construction and the first poll
	fake.SetBatteryLevel(77)

	poller := events.NewPoller(fake, bus, time.Second, logger.Default())
	for i := 0; i < 3; i++ {
		poller.Poll()
	}

	require.Eventually(t, func() bool {
		values := got.snapshot()
		return values[len(values)-1] == device.Level(77)
	}, waitFor, tick)

	latest, err := stream.First(context.Background(), agg.BatteryLevel())
	require.NoError(t, err)
	assert.Equal(t, device.Level(77), latest)
}

func TestLateSubscriberGetsLatestOnly(t *testing.T) {
	fake := sensortest.New()
	agg, bus := newAggregator(t, fake)

	fake.SetBatteryLevel(10)
	require.NoError(t, bus.Post(events.BatteryLevelChanged))
	fake.SetBatteryLevel(20)
	require.NoError(t, bus.Post(events.BatteryLevelChanged))

	got, sub := collect(agg.BatteryLevel())
	defer sub.Cancel()

	assert.Equal(t, []device.BatteryLevel{device.Level(20)}, got.waitLen(t, 1))
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, got.snapshot(), 1)
}

func TestCloseIsIdempotentAndStopsEmissions(t *testing.T) {
	fake := sensortest.New()
	bus := events.NewBus(events.DeviceEvents...)
	agg, err := devicestate.New(fake, bus)
	require.NoError(t, err)

	got, sub := collect(agg.BatteryLevel())
	got.waitLen(t, 1)

	require.NoError(t, agg.Close())
	require.NoError(t, agg.Close())

	select {
	case <-sub.Done():
	case <-time.After(waitFor):
		t.Fatal("subscription not completed by Close")
	}

	for _, name := range events.DeviceEvents {
		assert.Zero(t, bus.Subscribers(name), name)
	}

	reads := fake.Reads("BatteryLevel")
	fake.SetBatteryLevel(99)
	require.NoError(t, bus.Post(events.BatteryLevelChanged))

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, got.snapshot(), 1)
	assert.Equal(t, reads, fake.Reads("BatteryLevel"))
}

func TestSingleShotStreamsResample(t *testing.T) {
	fake := sensortest.New()
	fake.SetIdentity(sensor.Identity{Hostname: "bench", OSName: "Debian", OSVersion: "12"})
	agg, _ := newAggregator(t, fake)
	ctx := context.Background()

	info, err := stream.First(ctx, agg.DeviceInformation())
	require.NoError(t, err)
	name, ok := info.Name()
	assert.True(t, ok)
	assert.Equal(t, "bench", name)
	assert.Equal(t, "Debian 12", info.OS)

	fake.SetIdentity(sensor.Identity{Hostname: "renamed"})
	info, err = stream.First(ctx, agg.DeviceInformation())
	require.NoError(t, err)
	name, _ = info.Name()
	assert.Equal(t, "renamed", name)
	assert.Equal(t, 2, fake.Reads("Identity"))
}

func TestSingleShotCompletesAfterOneValue(t *testing.T) {
	fake := sensortest.New()
	fake.SetDiskUsage(sensor.DiskUsage{Total: 100, Free: 40})
	agg, _ := newAggregator(t, fake)

	got, sub := collect(agg.DeviceSupport())

	select {
	case <-sub.Done():
	case <-time.After(waitFor):
		t.Fatal("single-shot stream did not complete")
	}

	values := got.snapshot()
	require.Len(t, values, 1)
	assert.Equal(t, device.Disk{Total: 100, Used: 60, Free: 40}, values[0].Disk)
}

type failingSource struct {
	bus    *events.Bus
	failOn events.Name
}

func (s *failingSource) Subscribe(name events.Name, handler func()) (events.Registration, error) {
	if name == s.failOn {
		return nil, errors.New().New(errors.ErrUnavailable)
	}
	return s.bus.Subscribe(name, handler)
}

func TestNewRevokesPartialRegistrations(t *testing.T) {
	bus := events.NewBus(events.DeviceEvents...)
	src := &failingSource{bus: bus, failOn: events.BrightnessChanged}

	agg, err := devicestate.New(sensortest.New(), src)
	require.Error(t, err)
	assert.Nil(t, agg)
	assert.True(t, errors.HasCode(err, devicestate.ErrSubscribeFailed))

	for _, name := range events.DeviceEvents {
		assert.Zero(t, bus.Subscribers(name), name)
	}
}

func TestNewRejectsNilDependencies(t *testing.T) {
	_, err := devicestate.New(nil, events.NewBus())
	assert.True(t, errors.HasCode(err, devicestate.ErrNilAdapter))

	_, err = devicestate.New(sensortest.New(), nil)
	assert.True(t, errors.HasCode(err, devicestate.ErrNilSource))
}
