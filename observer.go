package inkpad

import (
	"image"
	"time"
)

// BatchInfo describes one rendered sub-batch.
type BatchInfo struct {
	Path     RenderPath
	Stamps   int
	Region   image.Rectangle
	Implicit bool // rendered because the batch filled up mid-stroke
	Duration time.Duration
}

// FlushInfo describes one completed logical flush.
type FlushInfo struct {
	Batches int
	Stamps  int

	// Region is the unpadded pixel bounds of the dirty region cleared by
	// this flush; zero when dirty tracking is off.
	Region    image.Rectangle
	HadRegion bool
}

// Observer receives engine events synchronously on the painting goroutine.
// Implementations must be fast and must not call back into the Painter.
type Observer interface {
	StampsQueued(n int)
	BatchRendered(info BatchInfo)
	Flushed(info FlushInfo)
	PathDowngraded(from, to RenderPath, err error)
	SnapshotPushed(reason SnapshotReason, depth int)
	Undone(steps, depth int)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) StampsQueued(int)                             {}
func (NopObserver) BatchRendered(BatchInfo)                      {}
func (NopObserver) Flushed(FlushInfo)                            {}
func (NopObserver) PathDowngraded(RenderPath, RenderPath, error) {}
func (NopObserver) SnapshotPushed(SnapshotReason, int)           {}
func (NopObserver) Undone(int, int)                              {}

var _ Observer = NopObserver{}
