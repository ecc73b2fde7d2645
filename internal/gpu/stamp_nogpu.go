//go:build nogpu

package gpu

import (
	"log/slog"

	"github.com/gogpu/inkpad"
)

// StampAccelerator is unavailable in nogpu builds. Init always fails with
// inkpad.ErrNoComputeSupport, so the compositor stays on a fragment path.
type StampAccelerator struct{}

var _ inkpad.StampAccelerator = (*StampAccelerator)(nil)

func (a *StampAccelerator) Name() string                     { return "wgpu" }
func (a *StampAccelerator) SetLogger(l *slog.Logger)         { setLogger(l) }
func (a *StampAccelerator) Init(int, int) error              { return inkpad.ErrNoComputeSupport }
func (a *StampAccelerator) Dispatch(inkpad.ComputeJob) error { return inkpad.ErrFallbackToFragment }
func (a *StampAccelerator) Close()                           {}

// SetDeviceProvider reports ErrNoComputeSupport in nogpu builds.
func (a *StampAccelerator) SetDeviceProvider(any) error { return inkpad.ErrNoComputeSupport }
