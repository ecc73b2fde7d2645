package inkpad

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"golang.org/x/image/draw"

	internalimage "github.com/gogpu/inkpad/internal/image"
)

// CompositorConfig configures a Compositor.
type CompositorConfig struct {
	Path          PathConfig
	BatchCapacity int
	Accelerator   StampAccelerator
	Observer      Observer

	// Brush and BrushSize are the current brush; BrushSize (normalized)
	// sizes the padding around dirty rectangles.
	Brush     *Brush
	BrushSize float64
}

// CompositorStats counts compositor activity since creation.
type CompositorStats struct {
	StampsQueued uint64
	Batches      uint64
	Flushes      uint64
	Downgrades   uint64
}

// Compositor owns the canvas. It queues stamps, renders them in batches
// through the selected RenderPath, and tracks the dirty region.
//
// A Compositor is not safe for concurrent use; all calls must come from
// the painting goroutine.
type Compositor struct {
	canvas        *Pixmap
	width, height int
	aspect        float64

	batch *StampBatch
	dirty DirtyRegion

	cfg   PathConfig
	path  RenderPath
	accel StampAccelerator

	brush    *Brush
	baseSize float64

	temps  *internalimage.Pool
	source *Pixmap // compute-path snapshot

	observer Observer
	logger   *slog.Logger

	flushBatches int
	flushStamps  int

	stats CompositorStats
}

// tempsPerSize bounds idle region temporaries kept per size.
const tempsPerSize = 4

// NewCompositor creates a compositor painting onto canvas. desc supplies
// the surface capabilities; its dimensions must match the canvas.
//
// A compute path that cannot be used is not an error: it is logged and the
// compositor uses a fragment path instead.
func NewCompositor(canvas *Pixmap, desc SurfaceDescriptor, cfg CompositorConfig) (*Compositor, error) {
	if canvas == nil {
		return nil, ErrNilCanvas
	}
	if desc.Width != canvas.Width() || desc.Height != canvas.Height() {
		return nil, fmt.Errorf("inkpad: surface %dx%d does not match canvas %dx%d: %w",
			desc.Width, desc.Height, canvas.Width(), canvas.Height(), ErrInvalidDimensions)
	}

	c := &Compositor{
		canvas:   canvas,
		width:    canvas.Width(),
		height:   canvas.Height(),
		aspect:   float64(canvas.Width()) / float64(canvas.Height()),
		batch:    NewStampBatch(cfg.BatchCapacity),
		cfg:      cfg.Path,
		brush:    cfg.Brush,
		baseSize: cfg.BrushSize,
		temps:    internalimage.NewPool(tempsPerSize),
		observer: cfg.Observer,
		logger:   Logger(),
	}
	if c.brush == nil {
		c.brush = DefaultBrush()
	}
	if c.observer == nil {
		c.observer = NopObserver{}
	}

	accel := cfg.Accelerator
	if accel != nil && cfg.Path.Compute {
		propagateLogger(accel, c.logger)
		if err := accel.Init(c.width, c.height); err != nil {
			c.logger.Warn("inkpad: accelerator init failed", "accelerator", accel.Name(), "err", err)
			accel = nil
		}
	}

	path, err := SelectRenderPath(desc, cfg.Path, accel != nil)
	if err != nil {
		c.logger.Warn("inkpad: compute path unavailable, using fragment path", "path", path, "err", err)
	}
	c.path = path
	if path == PathCompute {
		c.accel = accel
	} else if accel != nil {
		accel.Close()
	}

	attrs := []any{"path", c.path, "width", c.width, "height", c.height, "batch", c.batch.Cap()}
	if c.accel != nil {
		attrs = append(attrs, "accelerator", c.accel.Name())
	}
	c.logger.Info("inkpad: compositor configured", attrs...)
	return c, nil
}

// Path returns the active render path.
func (c *Compositor) Path() RenderPath { return c.path }

// Dirty returns a copy of the current dirty region.
func (c *Compositor) Dirty() DirtyRegion { return c.dirty }

// Pending returns the number of queued, unrendered stamps.
func (c *Compositor) Pending() int { return c.batch.Len() }

// Stats returns activity counters.
func (c *Compositor) Stats() CompositorStats { return c.stats }

// Brush returns the current brush.
func (c *Compositor) Brush() *Brush { return c.brush }

// SetBrush changes the brush used by stamps without their own brush.
// Pending stamps are flushed first so they keep the brush they were
// queued with.
func (c *Compositor) SetBrush(b *Brush) {
	if b == nil {
		b = DefaultBrush()
	}
	c.Flush()
	c.brush = b
}

// SetBrushSize changes the size used to pad dirty rectangles.
func (c *Compositor) SetBrushSize(size float64) {
	c.Flush()
	c.baseSize = size
}

// Queue adds a stamp, grows the dirty region by its footprint, and renders
// the batch as soon as it is full so no stamp is ever dropped.
func (c *Compositor) Queue(s Stamp) {
	if c.cfg.DirtyTracking {
		c.dirty.ExpandStamp(s, c.aspect)
	}
	c.batch.Push(s)
	c.stats.StampsQueued++
	c.observer.StampsQueued(1)

	if c.batch.Full() {
		c.renderBatch(true)
	}
}

// Flush renders all pending stamps and then clears the dirty region once.
func (c *Compositor) Flush() {
	if c.batch.Len() > 0 {
		c.renderBatch(false)
	}
	if c.flushBatches == 0 {
		return
	}

	info := FlushInfo{
		Batches:   c.flushBatches,
		Stamps:    c.flushStamps,
		HadRegion: c.dirty.Has(),
	}
	if info.HadRegion {
		info.Region = c.dirty.PixelRect(c.width, c.height, 0)
	}
	c.dirty.Clear()
	c.flushBatches, c.flushStamps = 0, 0
	c.stats.Flushes++

	c.logger.Debug("inkpad: flush", "batches", info.Batches, "stamps", info.Stamps, "region", info.Region)
	c.observer.Flushed(info)
}

// region returns the pixel rectangle a batch must update.
func (c *Compositor) region(stamps []Stamp) image.Rectangle {
	if c.path == PathFragmentFull || !c.dirty.Has() {
		return c.canvas.Bounds()
	}
	size := c.baseSize
	for i := range stamps {
		size = math.Max(size, math.Abs(stamps[i].Size))
	}
	return c.dirty.PixelRect(c.width, c.height, regionPad(size, c.width))
}

func (c *Compositor) renderBatch(implicit bool) {
	stamps := c.batch.Stamps()
	n := len(stamps)
	ks, masks := prepareStamps(stamps, c.brush, c.width, c.height)
	rect := c.region(stamps)
	start := time.Now()

	path := c.path
	if path == PathCompute {
		if err := c.renderCompute(rect, ks, masks); err != nil {
			c.downgrade(err)
			path = c.path
			rect = c.region(stamps)
			c.renderFragment(path, rect, ks, masks)
		}
	} else {
		c.renderFragment(path, rect, ks, masks)
	}

	c.batch.Reset()
	c.flushBatches++
	c.flushStamps += n
	c.stats.Batches++

	c.observer.BatchRendered(BatchInfo{
		Path:     path,
		Stamps:   n,
		Region:   rect,
		Implicit: implicit,
		Duration: time.Since(start),
	})
}

// renderFragment emulates a blit through the stamp material. Every path
// reads one buffer and writes another.
func (c *Compositor) renderFragment(path RenderPath, rect image.Rectangle, ks []KernelStamp, masks []KernelMask) {
	switch path {
	case PathFragmentFull:
		buf := c.temps.Get(c.width, c.height)
		tmp := pixmapFromBuf(buf)
		RenderStamps(newTargetView(tmp, image.Point{}), newSourceView(c.canvas, image.Point{}), rect, ks, masks)
		copy(c.canvas.data, tmp.data)
		c.temps.Put(buf)

	case PathFragmentRegionSafe:
		bufA := c.temps.Get(rect.Dx(), rect.Dy())
		bufB := c.temps.Get(rect.Dx(), rect.Dy())
		a, b := pixmapFromBuf(bufA), pixmapFromBuf(bufB)
		bufA.CopyRect(0, 0, c.canvas.data, c.canvas.Stride(), rect)
		RenderStamps(newTargetView(b, rect.Min), newSourceView(a, rect.Min), rect, ks, masks)
		c.copyBack(b, rect)
		c.temps.Put(bufA)
		c.temps.Put(bufB)

	default:
		buf := c.temps.Get(rect.Dx(), rect.Dy())
		tmp := pixmapFromBuf(buf)
		buf.CopyRect(0, 0, c.canvas.data, c.canvas.Stride(), rect)
		RenderStamps(newTargetView(tmp, rect.Min), newSourceView(c.canvas, image.Point{}), rect, ks, masks)
		c.copyBack(tmp, rect)
		c.temps.Put(buf)
	}
}

// copyBack writes a region temporary into the canvas at rect.Min.
func (c *Compositor) copyBack(tmp *Pixmap, rect image.Rectangle) {
	internalimage.CopyRect(c.canvas.data, c.canvas.Stride(), c.width, c.height,
		rect.Min.X, rect.Min.Y, tmp.data, tmp.Stride(), image.Rect(0, 0, rect.Dx(), rect.Dy()))
}

// renderCompute snapshots the region and dispatches the accelerator, which
// reads the snapshot and writes the canvas.
func (c *Compositor) renderCompute(rect image.Rectangle, ks []KernelStamp, masks []KernelMask) error {
	if c.source == nil {
		src, err := NewPixmap(c.width, c.height)
		if err != nil {
			return err
		}
		c.source = src
	}
	c.source.copyRectFrom(c.canvas, rect)

	return c.accel.Dispatch(ComputeJob{
		Width:  c.width,
		Height: c.height,
		Rect:   rect,
		Source: newSourceView(c.source, image.Point{}),
		Target: newTargetView(c.canvas, image.Point{}),
		Stamps: ks,
		Masks:  masks,
	})
}

// downgrade permanently leaves the compute path for this compositor.
func (c *Compositor) downgrade(err error) {
	from := c.path
	c.path = fragmentPath(c.cfg)
	c.stats.Downgrades++
	c.logger.Warn("inkpad: accelerator failed, falling back", "accelerator", c.accel.Name(), "from", from, "to", c.path, "err", err)
	c.accel.Close()
	c.accel = nil
	c.source = nil
	c.observer.PathDowngraded(from, c.path, err)
}

// Fill flushes pending stamps and clears the canvas to col.
func (c *Compositor) Fill(col RGBA) {
	c.Flush()
	c.canvas.Fill(col)
}

// DrawImageContained flushes, clears the canvas to bg, and draws img
// scaled to fit inside the canvas with its aspect ratio preserved and
// centered (letterboxed).
func (c *Compositor) DrawImageContained(img image.Image, bg RGBA) {
	c.Flush()
	c.canvas.Fill(bg)
	if img == nil || img.Bounds().Empty() {
		return
	}
	dst := containRect(img.Bounds().Dx(), img.Bounds().Dy(), c.width, c.height)
	draw.CatmullRom.Scale(c.canvas.rgbaView(), dst, img, img.Bounds(), draw.Over, nil)
}

// containRect fits a srcW x srcH image into a canvas, centered.
func containRect(srcW, srcH, canvasW, canvasH int) image.Rectangle {
	srcAspect := float64(srcW) / float64(srcH)
	canvasAspect := float64(canvasW) / float64(canvasH)
	if srcAspect > canvasAspect {
		h := int(math.Round(float64(canvasW) / srcAspect))
		y := int(math.Round(float64(canvasH-h) * 0.5))
		return image.Rect(0, y, canvasW, y+h)
	}
	w := int(math.Round(float64(canvasH) * srcAspect))
	x := int(math.Round(float64(canvasW-w) * 0.5))
	return image.Rect(x, 0, x+w, canvasH)
}

// Snapshot copies the canvas into dst, which must match its size.
func (c *Compositor) Snapshot(dst *Pixmap) error {
	return dst.CopyFrom(c.canvas)
}

// Restore replaces the canvas contents with src. Pending stamps are
// discarded and the dirty region cleared.
func (c *Compositor) Restore(src *Pixmap) error {
	c.batch.Reset()
	c.dirty.Clear()
	c.flushBatches, c.flushStamps = 0, 0
	return c.canvas.CopyFrom(src)
}

// Result returns a read-only view of the canvas.
func (c *Compositor) Result() image.Image {
	return readOnlyImage{p: c.canvas}
}

// Close releases the accelerator.
func (c *Compositor) Close() {
	if c.accel != nil {
		c.accel.Close()
		c.accel = nil
	}
}
