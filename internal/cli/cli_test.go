package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/devicectl/internal/device"
	"codeberg.org/mutker/devicectl/internal/logger"
	"codeberg.org/mutker/devicectl/internal/metrics"
	"codeberg.org/mutker/devicectl/internal/render"
	"codeberg.org/mutker/devicectl/internal/sensor"
	"codeberg.org/mutker/devicectl/internal/sensor/sensortest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("DEVICECTL_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func testApp(fake *sensortest.Fake) (*app, *syncBuffer) {
	logs := &syncBuffer{}
	a := newApp()
	a.logOutput = logs
	a.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	a.newAdapter = func(*app) (sensor.Adapter, func(), error) {
		return fake, func() {}, nil
	}
	return a, logs
}

func executeCLI(ctx context.Context, a *app, args ...string) (string, error) {
	cmd := newRootCmd(a)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), err
}

func testFake() *sensortest.Fake {
	fake := sensortest.New()
	fake.SetIdentity(sensor.Identity{
		Hostname:     "bench",
		OSName:       "Debian GNU/Linux",
		OSVersion:    "12",
		Architecture: "aarch64",
		Cores:        8,
		ActiveCores:  8,
	})
	fake.SetBatteryLevel(81)
	fake.SetBatteryStatus(sensor.StatusCharging)
	fake.SetBrightness(0.4)
	fake.SetDiskUsage(sensor.DiskUsage{Total: 1000, Free: 250})
	return fake
}

func TestVersion(t *testing.T) {
	a, _ := testApp(sensortest.New())
	out, err := executeCLI(context.Background(), a, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestSnapshotJSON(t *testing.T) {
	isolate(t)
	a, _ := testApp(testFake())

	out, err := executeCLI(context.Background(), a, "snapshot", "--format", "json")
	require.NoError(t, err)

	var snap render.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "bench", snap.Device.Name)
	assert.Equal(t, "Debian GNU/Linux 12", snap.Device.OS)
	assert.Equal(t, "arm64", snap.Device.Architecture)
	require.NotNil(t, snap.State.BatteryLevel)
	assert.Equal(t, 81, *snap.State.BatteryLevel)
	assert.Equal(t, "charging", snap.State.BatteryState)
	assert.Equal(t, 40, snap.State.Brightness)
	assert.Equal(t, int64(750), snap.Support.Disk.UsedBytes)
	assert.True(t, snap.TakenAt.Equal(a.now()))
}

func TestSnapshotTextAndTOML(t *testing.T) {
	isolate(t)
	a, _ := testApp(testFake())

	out, err := executeCLI(context.Background(), a, "snapshot")
	require.NoError(t, err)
	assert.Contains(t, out, "bench")
	assert.Contains(t, out, "81%")

	out, err = executeCLI(context.Background(), a, "snapshot", "-f", "toml")
	require.NoError(t, err)
	assert.Regexp(t, `battery_state = ['"]charging['"]`, out)
}

func TestSnapshotRejectsUnknownFormat(t *testing.T) {
	isolate(t)
	a, _ := testApp(testFake())

	_, err := executeCLI(context.Background(), a, "snapshot", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render_unknown_format")
}

func TestInvalidConfigFails(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "devicectl.toml")
	require.NoError(t, os.WriteFile(path, []byte(`log_level = "loud"`), 0o600))

	a, _ := testApp(testFake())
	_, err := executeCLI(context.Background(), a, "snapshot", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_log_level")
}

func TestWatchFollowsChangesUntilCancelled(t *testing.T) {
	isolate(t)
	fake := testFake()
	a, logs := testApp(fake)
	pidPath := filepath.Join(t.TempDir(), "devicectl.pid")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := executeCLI(ctx, a, "watch", "--interval", "10ms", "--pid-file", pidPath, "--log-level", "info")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "Watching device state")
	}, 2*time.Second, 10*time.Millisecond)
	assert.FileExists(t, pidPath)

	fake.SetBrightness(0.9)
	require.Eventually(t, func() bool {
		return strings.Count(logs.String(), "Screen brightness changed") >= 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	assert.NoFileExists(t, pidPath)
	assert.Contains(t, logs.String(), "shutting down")
}

func TestWatchRecordsHistory(t *testing.T) {
	isolate(t)
	dbPath := filepath.Join(t.TempDir(), "metrics.db")
	t.Setenv("DEVICECTL_METRICS_ENABLED", "true")
	t.Setenv("DEVICECTL_METRICS_DB_PATH", dbPath)
	t.Setenv("DEVICECTL_METRICS_BATCH_SIZE", "1")

	fake := testFake()
	a, logs := testApp(fake)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := executeCLI(ctx, a, "watch", "--interval", "10ms", "--pid-file", filepath.Join(t.TempDir(), "p.pid"))
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	fake.SetThermal(sensor.ThermalSerious)
	time.Sleep(100 * time.Millisecond)
	cancel()
	require.NoError(t, <-done, logs.String())

	repo, err := metrics.NewRepository(metrics.Config{DBPath: dbPath, Enabled: true, BatchSize: 1}, logger.Default())
	require.NoError(t, err)
	samples, err := repo.Recent(10)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	require.NotEmpty(t, samples)
	assert.Equal(t, device.ThermalSerious, samples[0].Thermal)

	out, err := executeCLI(context.Background(), a, "history", "--format", "json", "--limit", "1")
	require.NoError(t, err)

	var h render.History
	require.NoError(t, json.Unmarshal([]byte(out), &h))
	require.Len(t, h.Samples, 1)
	assert.Equal(t, "serious", h.Samples[0].Thermal)
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	isolate(t)
	t.Setenv("DEVICECTL_METRICS_DB_PATH", filepath.Join(t.TempDir(), "metrics.db"))
	a, _ := testApp(testFake())

	_, err := executeCLI(context.Background(), a, "history", "--limit", "0")
	require.Error(t, err)
}

func TestWatchRefusesSecondInstance(t *testing.T) {
	isolate(t)
	pidPath := filepath.Join(t.TempDir(), "devicectl.pid")
	require.NoError(t, os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getppid())), 0o600))

	a, _ := testApp(testFake())
	_, err := executeCLI(context.Background(), a, "watch", "--pid-file", pidPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already_running")
}
