// Package gpu reads NVIDIA GPU temperatures through NVML so they can be
// folded into the device thermal state.
package gpu

import (
	"sync"

	"codeberg.org/mutker/devicectl/internal/errors"
	"codeberg.org/mutker/devicectl/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// Probe reports the temperature of one GPU.
type Probe struct {
	lib    library
	device nvml.Device
	name   string
	mu     sync.Mutex
	closed bool
	logger logger.Logger
}

// NewProbe initializes NVML and attaches to the GPU at index.
func NewProbe(index int, log logger.Logger) (*Probe, error) {
	return newProbe(driver{}, index, log)
}

func newProbe(lib library, index int, log logger.Logger) (*Probe, error) {
	errFactory := errors.New()

	if err := lib.Init(); err != nil {
		return nil, err
	}

	devices, err := lib.Devices()
	if err != nil {
		_ = lib.Shutdown()
		return nil, err
	}
	if index < 0 || index >= len(devices) {
		_ = lib.Shutdown()
		return nil, errFactory.WithData(ErrDeviceNotFound, struct {
			Index int
			Count int
		}{index, len(devices)})
	}
	device := devices[index]

	p := &Probe{lib: lib, device: device, logger: log}
	if name, ret := device.GetName(); IsNVMLSuccess(ret) {
		p.name = name
		log.Info().Str("gpu", name).Msg("Detected GPU")
	} else {
		log.Warn().Msgf("Failed to get GPU name: %v", nvml.ErrorString(ret))
	}

	return p, nil
}

// Name returns the GPU model, or an empty string when NVML could not
// report it.
func (p *Probe) Name() string {
	return p.name
}

// Temperature returns the GPU core temperature in degrees Celsius.
func (p *Probe) Temperature() (float64, error) {
	errFactory := errors.New()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, errFactory.New(ErrNotInitialized)
	}

	temp, ret := p.device.GetTemperature(nvml.TEMPERATURE_GPU)
	if !IsNVMLSuccess(ret) {
		return 0, errFactory.Wrap(ErrTemperatureReadFailed, newNVMLError(ret))
	}

	p.logger.Debug().Uint32("temperature", temp).Msg("GPU temperature retrieved")

	return float64(temp), nil
}

// Close shuts NVML down. It is safe to call more than once.
func (p *Probe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.lib.Shutdown()
}
