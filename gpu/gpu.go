// Package gpu provides the wgpu compute accelerator for inkpad.
//
// Pass the accelerator to a painter and enable the compute path:
//
//	p, err := inkpad.New(desc,
//		inkpad.WithCompute(true),
//		inkpad.WithAccelerator(gpu.New(nil)),
//	)
//
// If no GPU device can be opened the painter logs a warning and uses a
// fragment path instead. Build with -tags nogpu to drop the Vulkan backend.
package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/inkpad"
	gpuimpl "github.com/gogpu/inkpad/internal/gpu"
)

// Accelerator is the wgpu stamp accelerator.
type Accelerator = gpuimpl.StampAccelerator

// New returns a GPU accelerator. With a nil provider the accelerator opens
// its own device when the compositor initializes it.
//
// A non-nil provider (typically from gogpu.App.GPUContextProvider()) lets
// the accelerator share the host's device. Providers that do not expose
// HAL types are logged and ignored; the accelerator then opens its own
// device.
func New(provider gpucontext.DeviceProvider) *Accelerator {
	a := &Accelerator{}
	if provider != nil {
		if err := a.SetDeviceProvider(provider); err != nil {
			inkpad.Logger().Warn("gpu: device provider not usable, using own device", "err", err)
		}
	}
	return a
}
