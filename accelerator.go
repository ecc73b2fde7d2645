package inkpad

import (
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/inkpad/internal/parallel"
)

// StampAccelerator runs the compute render path: a per-pixel kernel over a
// region that composites a whole batch of stamps in one pass.
//
// Accelerators are injected with WithAccelerator; there is no global
// registry. If Init fails, or Dispatch returns an error, the compositor
// logs it and switches to a fragment path for the rest of the session.
// ErrFallbackToFragment is the conventional error for "cannot handle this".
//
// Implementations: ParallelAccelerator (CPU worker pool) and the wgpu
// accelerator in package gpu.
type StampAccelerator interface {
	// Name returns the accelerator name (e.g., "cpu-parallel", "wgpu").
	Name() string

	// Init prepares resources for a canvas of the given size.
	Init(width, height int) error

	// Dispatch renders job. On success every pixel of job.Rect in
	// job.Target holds the composited result.
	Dispatch(job ComputeJob) error

	// Close releases resources.
	Close()
}

// DeviceProviderAware is an optional interface for accelerators that can
// share a GPU device with the host application instead of creating one.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

// ParallelAccelerator runs the stamp kernel on the CPU, splitting the
// region into row bands across a worker pool. It is always available.
type ParallelAccelerator struct {
	workers int

	mu     sync.Mutex
	pool   *parallel.WorkerPool
	logger *slog.Logger
}

// Compile-time interface check.
var _ StampAccelerator = (*ParallelAccelerator)(nil)

// minBandRows keeps bands large enough that scheduling does not dominate.
const minBandRows = 16

// NewParallelAccelerator creates a CPU accelerator with the given number of
// workers; 0 means GOMAXPROCS.
func NewParallelAccelerator(workers int) *ParallelAccelerator {
	return &ParallelAccelerator{workers: workers}
}

// Name returns the accelerator name.
func (a *ParallelAccelerator) Name() string { return "cpu-parallel" }

// SetLogger sets the logger used for diagnostics.
func (a *ParallelAccelerator) SetLogger(l *slog.Logger) {
	a.mu.Lock()
	a.logger = l
	a.mu.Unlock()
}

// Init starts the worker pool. Calling Init again is a no-op.
func (a *ParallelAccelerator) Init(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool == nil {
		a.pool = parallel.NewWorkerPool(a.workers)
		if a.logger != nil {
			a.logger.Debug("inkpad: parallel accelerator ready", "workers", a.pool.Workers())
		}
	}
	return nil
}

// Dispatch renders the job across the worker pool.
func (a *ParallelAccelerator) Dispatch(job ComputeJob) error {
	a.mu.Lock()
	pool := a.pool
	a.mu.Unlock()
	if pool == nil || !pool.IsRunning() {
		return ErrFallbackToFragment
	}
	pool.ForRows(job.Rect, minBandRows, func(band image.Rectangle) {
		RenderStamps(job.Target, job.Source, band, job.Stamps, job.Masks)
	})
	return nil
}

// Close stops the worker pool.
func (a *ParallelAccelerator) Close() {
	a.mu.Lock()
	pool := a.pool
	a.pool = nil
	a.mu.Unlock()
	if pool != nil {
		pool.Close()
	}
}
