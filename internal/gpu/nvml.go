package gpu

import (
	"codeberg.org/mutker/devicectl/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// library is the slice of NVML a Probe uses.
type library interface {
	Init() error
	Shutdown() error
	Devices() ([]nvml.Device, error)
}

// driver talks to the installed NVML. NVML reference-counts Init and
// Shutdown, so every Probe holds its own.
type driver struct{}

func (driver) Init() error {
	if ret := nvml.Init(); !IsNVMLSuccess(ret) {
		return errors.New().Wrap(ErrInitFailed, newNVMLError(ret))
	}
	return nil
}

func (driver) Shutdown() error {
	if ret := nvml.Shutdown(); !IsNVMLSuccess(ret) {
		return errors.New().Wrap(ErrShutdownFailed, newNVMLError(ret))
	}
	return nil
}

// Devices returns a handle for every GPU NVML enumerates, in index order.
func (driver) Devices() ([]nvml.Device, error) {
	errFactory := errors.New()

	count, ret := nvml.DeviceGetCount()
	if !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrDeviceCountFailed, newNVMLError(ret))
	}

	devices := make([]nvml.Device, 0, count)
	for i := range count {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if !IsNVMLSuccess(ret) {
			return nil, errFactory.Wrap(ErrDeviceNotFound, newNVMLError(ret)).WithData(i)
		}
		devices = append(devices, device)
	}
	return devices, nil
}
