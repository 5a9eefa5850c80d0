package gpu

import (
	"testing"

	"codeberg.org/mutker/devicectl/internal/errors"
	"codeberg.org/mutker/devicectl/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	nvml.Device
	temp uint32
	ret  nvml.Return
}

func (d *fakeDevice) GetName() (string, nvml.Return) {
	return "NVIDIA GeForce RTX 4070", nvml.SUCCESS
}

func (d *fakeDevice) GetTemperature(nvml.TemperatureSensors) (uint32, nvml.Return) {
	return d.temp, d.ret
}

type fakeLib struct {
	devices   []nvml.Device
	listErr   error
	shutdowns int
}

func (l *fakeLib) Init() error { return nil }

func (l *fakeLib) Shutdown() error {
	l.shutdowns++
	return nil
}

func (l *fakeLib) Devices() ([]nvml.Device, error) { return l.devices, l.listErr }

func TestProbeTemperature(t *testing.T) {
	lib := &fakeLib{devices: []nvml.Device{&fakeDevice{temp: 67, ret: nvml.SUCCESS}}}

	p, err := newProbe(lib, 0, logger.Default())
	require.NoError(t, err)
	assert.Equal(t, "NVIDIA GeForce RTX 4070", p.Name())

	temp, err := p.Temperature()
	require.NoError(t, err)
	assert.InDelta(t, 67.0, temp, 0.001)
}

func TestProbeTemperatureFailure(t *testing.T) {
	lib := &fakeLib{devices: []nvml.Device{&fakeDevice{ret: nvml.ERROR_GPU_IS_LOST}}}

	p, err := newProbe(lib, 0, logger.Default())
	require.NoError(t, err)

	_, err = p.Temperature()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrTemperatureReadFailed))
}

func TestProbeRejectsMissingDevice(t *testing.T) {
	lib := &fakeLib{devices: []nvml.Device{&fakeDevice{ret: nvml.SUCCESS}}}

	_, err := newProbe(lib, 1, logger.Default())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrDeviceNotFound))
	assert.Equal(t, 1, lib.shutdowns)
}

func TestProbeShutsDownWhenEnumerationFails(t *testing.T) {
	lib := &fakeLib{listErr: errors.New().New(ErrDeviceCountFailed)}

	_, err := newProbe(lib, 0, logger.Default())
	assert.True(t, errors.HasCode(err, ErrDeviceCountFailed))
	assert.Equal(t, 1, lib.shutdowns)
}

func TestProbeCloseIsIdempotent(t *testing.T) {
	lib := &fakeLib{devices: []nvml.Device{&fakeDevice{ret: nvml.SUCCESS}}}

	p, err := newProbe(lib, 0, logger.Default())
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, lib.shutdowns)

	_, err = p.Temperature()
	assert.True(t, errors.HasCode(err, ErrNotInitialized))
}
