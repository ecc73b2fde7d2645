package inkpad

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
)

// Input is one frame of pointer input.
type Input struct {
	// Pos is the normalized surface coordinate of the pointer. It is
	// meaningful only when Hit is true.
	Pos Vec2
	Hit bool

	// Screen is the pointer position in device pixels. It drives the
	// velocity window and is sampled even when Hit is false.
	Screen Vec2

	// DT is the time since the previous frame, in seconds.
	DT float64
}

// Stats counts Painter activity.
type Stats struct {
	Path         RenderPath
	StampsQueued uint64
	Batches      uint64
	Flushes      uint64
	Downgrades   uint64
	Undos        uint64
	UndoDepth    int

	// Mask cache counters are shared by every painter in the process.
	MaskCacheHits      uint64
	MaskCacheMisses    uint64
	MaskCacheEvictions uint64
}

// Painter is a painting session on one canvas. It turns per-frame pointer
// input into stamps, composites them, and keeps an undo history.
//
// A Painter is driven once per frame from a single goroutine and is not
// safe for concurrent use.
type Painter struct {
	canvas *Pixmap
	comp   *Compositor
	rast   *Rasterizer
	est    *PressureEstimator
	hist   *History

	opts     options
	observer Observer
	rng      *rand.Rand
	logger   *slog.Logger

	effects Effects
	fx      effectState

	tier       SizeTier
	mediumSize float64

	drawing       bool
	pendingReseed bool
	uiBlocked     bool
	wasDrawing    bool

	clock       float64
	lastUV      Vec2
	lastValid   Vec2
	lastValidAt float64
	hasValid    bool
	nextChunkAt float64 // negative when chunking is off for this stroke

	bridge        Vec2
	bridgePending bool

	undos  uint64
	closed bool
}

// New creates a painting session on a new canvas described by desc,
// cleared to the canvas color (black by default) and recorded as the
// first undo snapshot.
func New(desc SurfaceDescriptor, opts ...Option) (*Painter, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("inkpad: surface %dx%d: %w", desc.Width, desc.Height, ErrInvalidDimensions)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	mediumSize := o.stroke.Size
	o.stroke.Size = mediumSize * o.tier.Scale()

	canvas, err := NewPixmap(desc.Width, desc.Height)
	if err != nil {
		return nil, err
	}
	canvas.Fill(o.canvasColor)

	comp, err := NewCompositor(canvas, desc, CompositorConfig{
		Path:          o.path,
		BatchCapacity: o.batchCapacity,
		Accelerator:   o.accel,
		Observer:      o.observer,
		Brush:         o.brush,
		BrushSize:     o.stroke.Size,
	})
	if err != nil {
		return nil, err
	}

	p := &Painter{
		canvas:      canvas,
		comp:        comp,
		rast:        NewRasterizer(comp, desc.Width, desc.Height, o.stroke, o.rng),
		est:         NewPressureEstimator(o.velocity, desc.Width, desc.Height),
		hist:        NewHistory(o.undoCapacity),
		opts:        o,
		observer:    o.observer,
		rng:         o.rng,
		logger:      Logger(),
		effects:     o.effects,
		tier:        o.tier,
		mediumSize:  mediumSize,
		lastValidAt: -1,
		nextChunkAt: -1,
	}
	p.rast.SetMode(o.mode)
	p.est.SetSource(o.source)
	p.pushSnapshot(ReasonInitial)

	p.logger.Info("inkpad: painter ready",
		"width", desc.Width, "height", desc.Height,
		"mode", p.rast.Mode(), "path", comp.Path(),
		"undo", p.hist.Cap(), "chunk", o.chunkSeconds)
	return p, nil
}

// Width returns the canvas width in pixels.
func (p *Painter) Width() int { return p.canvas.Width() }

// Height returns the canvas height in pixels.
func (p *Painter) Height() int { return p.canvas.Height() }

// Path returns the active render path.
func (p *Painter) Path() RenderPath { return p.comp.Path() }

// Drawing reports whether a stroke is active.
func (p *Painter) Drawing() bool { return p.drawing }

// Reconfigure applies brush, stroke, pressure and effect options to a
// running session. Pending stamps are flushed first. Options that only
// matter at construction (render path, batch and undo capacity,
// accelerator, observer) are ignored.
func (p *Painter) Reconfigure(opts ...Option) error {
	if p.closed {
		return ErrClosed
	}
	o := p.opts
	o.stroke = p.rast.Config()
	o.mode = p.rast.Mode()
	o.brush = p.comp.Brush()
	o.source = p.est.Source()
	o.effects = p.effects
	o.tier = p.tier
	for _, opt := range opts {
		opt(&o)
	}
	if o.tier != p.tier {
		o.stroke.Size = o.stroke.Size / p.tier.Scale() * o.tier.Scale()
		p.tier = o.tier
	}

	p.comp.Flush()
	p.comp.SetBrush(o.brush)
	p.comp.SetBrushSize(o.stroke.Size)
	p.rast.SetConfig(o.stroke)
	p.rast.SetMode(o.mode)
	if o.velocity != p.opts.velocity {
		p.est = NewPressureEstimator(o.velocity, p.Width(), p.Height())
	}
	p.est.SetSource(o.source)
	p.effects = o.effects
	p.mediumSize = o.stroke.Size / p.tier.Scale()
	p.opts.velocity = o.velocity
	p.opts.canvasColor = o.canvasColor
	p.opts.graceSeconds = o.graceSeconds
	p.opts.chunkSeconds = o.chunkSeconds
	return nil
}

// Mode returns the stroke mode.
func (p *Painter) Mode() Mode { return p.rast.Mode() }

// SetMode changes the stroke mode.
func (p *Painter) SetMode(m Mode) {
	p.comp.Flush()
	p.rast.SetMode(m)
	p.logger.Debug("inkpad: mode changed", "mode", p.rast.Mode())
}

// CycleMode switches to the next mode and returns it.
func (p *Painter) CycleMode() Mode {
	p.SetMode(p.rast.Mode().Next())
	return p.rast.Mode()
}

// BrushColor returns the brush color.
func (p *Painter) BrushColor() RGBA { return p.rast.Config().Color }

// SetBrushColor changes the brush color.
func (p *Painter) SetBrushColor(c RGBA) {
	p.updateStroke(func(cfg *StrokeConfig) { cfg.Color = c })
}

// SetBrushTexture changes the brush texture. Nil selects DefaultBrush.
func (p *Painter) SetBrushTexture(b *Brush) {
	p.comp.SetBrush(b)
}

// BrushSize returns the stamp radius as a fraction of the canvas width.
func (p *Painter) BrushSize() float64 { return p.rast.Config().Size }

// SetBrushSize sets the stamp radius as a fraction of the canvas width.
func (p *Painter) SetBrushSize(size float64) {
	p.updateStroke(func(cfg *StrokeConfig) { cfg.Size = size })
	p.comp.SetBrushSize(size)
	p.mediumSize = size / p.tier.Scale()
}

// SizeTier returns the current size tier.
func (p *Painter) SizeTier() SizeTier { return p.tier }

// SetSizeTier scales the medium brush size by the tier.
func (p *Painter) SetSizeTier(t SizeTier) {
	p.tier = t
	size := p.mediumSize * t.Scale()
	p.updateStroke(func(cfg *StrokeConfig) { cfg.Size = size })
	p.comp.SetBrushSize(size)
}

// SetStampInterval sets the interval of ModeStampInterval, at least
// MinStampInterval.
func (p *Painter) SetStampInterval(seconds float64) {
	p.updateStroke(func(cfg *StrokeConfig) { cfg.Interval = max(seconds, MinStampInterval) })
}

// SetDistanceThreshold sets the spacing of ModeStampDistance.
func (p *Painter) SetDistanceThreshold(d float64) {
	p.updateStroke(func(cfg *StrokeConfig) { cfg.Distance = d })
}

// ApplyPreset switches to a brush preset at the current size tier.
func (p *Painter) ApplyPreset(pr Preset) {
	p.comp.Flush()
	cfg := p.rast.Config()
	mode := p.rast.Mode()
	brush := p.comp.Brush()
	pr.apply(&cfg, &mode, &p.effects, &brush, p.tier)

	p.rast.SetConfig(cfg)
	p.rast.SetMode(mode)
	p.comp.SetBrush(brush)
	p.comp.SetBrushSize(cfg.Size)
	p.mediumSize = pr.Size
	p.logger.Debug("inkpad: preset applied", "preset", pr.Name, "mode", mode, "size", cfg.Size)
}

// Effects returns the effect configuration.
func (p *Painter) Effects() Effects { return p.effects }

// SetEffects replaces the effect configuration.
func (p *Painter) SetEffects(e Effects) {
	p.comp.Flush()
	p.effects = e
}

func (p *Painter) updateStroke(fn func(cfg *StrokeConfig)) {
	p.comp.Flush()
	cfg := p.rast.Config()
	fn(&cfg)
	p.rast.SetConfig(cfg)
}

// SetPressureSource selects the velocity-mode pressure source.
func (p *Painter) SetPressureSource(s PressureSource) { p.est.SetSource(s) }

// SetExternalPressure supplies the pressure used by PressureExternal.
func (p *Painter) SetExternalPressure(v float64) { p.est.SetExternal(v) }

// Pressure returns the current pressure.
func (p *Painter) Pressure() float64 { return p.rast.Pressure() }

// BeginStroke starts a stroke and records a snapshot of the canvas. If the
// pointer is off the surface the stroke waits for the first hit before
// painting. It does nothing while the UI is blocked.
func (p *Painter) BeginStroke(in Input) {
	if p.closed || p.uiBlocked {
		return
	}
	if p.drawing {
		p.rast.FinishStroke()
	}
	p.drawing = true
	p.pendingReseed = !in.Hit
	p.bridgePending = false

	p.est.Reset()
	p.est.Prime(in.Screen, p.clock)
	p.rast.ResetPressure()
	if in.Hit {
		p.lastUV = in.Pos
		p.markValid(in.Pos)
	}

	p.pushSnapshot(ReasonStrokeStart)
	p.scheduleChunk()
}

// UpdateStroke advances the session by one frame.
func (p *Painter) UpdateStroke(in Input) {
	if p.closed {
		return
	}
	dt := max(in.DT, 0)
	p.clock += dt
	if p.uiBlocked || !p.drawing {
		p.tickEffects(dt, in.Pos, false)
		return
	}

	p.rast.SetExternalPressure(p.est.Sample(in.Screen, p.clock))

	if in.Hit {
		p.markValid(in.Pos)
		p.pendingReseed = false
	}

	if p.nextChunkAt >= 0 && p.clock >= p.nextChunkAt {
		p.chunk(in.Hit)
	}

	grace := !in.Hit && p.hasValid &&
		p.rast.Mode() == ModeStampInterval &&
		p.clock-p.lastValidAt <= p.opts.graceSeconds

	pos := p.lastValid
	painted := false
	if (in.Hit || grace) && !p.pendingReseed {
		if in.Hit {
			pos = in.Pos
		}
		if p.bridgePending {
			p.bridgePending = false
			p.rast.UpdateStroke(p.bridge, 0)
		}
		p.rast.UpdateStroke(pos, dt)
		p.comp.Flush()
		p.lastUV = pos
		painted = true
	}

	p.tickEffects(dt, pos, painted)
}

// chunk ends the current stroke segment, snapshots it, and arranges for
// the next segment to start where this one ended.
func (p *Painter) chunk(hit bool) {
	prev := p.lastUV
	p.rast.FinishStroke()
	p.pushSnapshot(ReasonChunk)
	p.scheduleChunk()

	if hit {
		p.bridge = prev
		p.bridgePending = true
	} else {
		p.pendingReseed = true
	}
	p.logger.Debug("inkpad: stroke chunked", "clock", p.clock, "depth", p.hist.Len())
}

// EndStroke finishes the stroke and flushes pending stamps.
func (p *Painter) EndStroke() {
	if p.closed {
		return
	}
	p.drawing = false
	p.pendingReseed = false
	p.bridgePending = false
	p.rast.FinishStroke()
	p.nextChunkAt = -1
}

func (p *Painter) markValid(pos Vec2) {
	p.lastValid = pos
	p.lastValidAt = p.clock
	p.hasValid = true
}

func (p *Painter) scheduleChunk() {
	if p.opts.chunkSeconds > 0 {
		p.nextChunkAt = p.clock + p.opts.chunkSeconds
	} else {
		p.nextChunkAt = -1
	}
}

// Undo rewinds up to steps snapshots and returns how many were undone. The
// first snapshot is never removed. An active stroke is finished first and
// resumes afterwards from the next valid pointer position.
func (p *Painter) Undo(steps int) int {
	if p.closed {
		return 0
	}
	resume := p.drawing
	p.drawing = false
	p.pendingReseed = false
	p.rast.FinishStroke()
	p.nextChunkAt = -1

	n := p.hist.Undo(p.canvas, steps)

	if resume && !p.uiBlocked {
		p.drawing = true
		p.pendingReseed = true
		p.scheduleChunk()
	}
	p.bridgePending = false

	p.undos += uint64(n)
	p.observer.Undone(n, p.hist.Len())
	p.logger.Debug("inkpad: undo", "requested", steps, "undone", n, "depth", p.hist.Len())
	return n
}

// PushCheckpoint flushes pending stamps and records a snapshot.
func (p *Painter) PushCheckpoint() {
	if p.closed {
		return
	}
	p.comp.Flush()
	p.pushSnapshot(ReasonCheckpoint)
}

// HistoryLen returns the number of undo snapshots.
func (p *Painter) HistoryLen() int { return p.hist.Len() }

// History returns the snapshot identities, oldest first.
func (p *Painter) History() []Snapshot { return p.hist.Snapshots() }

func (p *Painter) pushSnapshot(reason SnapshotReason) {
	if _, err := p.hist.Push(p.canvas, reason); err != nil {
		p.logger.Warn("inkpad: snapshot failed", "reason", reason, "err", err)
		return
	}
	p.observer.SnapshotPushed(reason, p.hist.Len())
}

// BeginUIBlock suspends drawing while modal UI is shown. An active stroke
// is finished and resumes on EndUIBlock.
func (p *Painter) BeginUIBlock() {
	if p.closed {
		return
	}
	p.uiBlocked = true
	p.wasDrawing = p.drawing
	p.drawing = false
	p.pendingReseed = false
	p.rast.FinishStroke()
	p.nextChunkAt = -1
	p.bridgePending = false
}

// EndUIBlock resumes drawing if a stroke was active at BeginUIBlock. The
// stroke re-anchors at the next valid pointer position.
func (p *Painter) EndUIBlock() {
	if p.closed {
		return
	}
	p.uiBlocked = false
	p.bridgePending = false
	if p.wasDrawing {
		p.drawing = true
		p.pendingReseed = true
		p.scheduleChunk()
	}
}

// UIBlocked reports whether drawing is suspended.
func (p *Painter) UIBlocked() bool { return p.uiBlocked }

// CanvasColor returns the color the canvas was last cleared to.
func (p *Painter) CanvasColor() RGBA { return p.opts.canvasColor }

// Fill clears the canvas to c, remembers c as the canvas color, and
// records a snapshot.
func (p *Painter) Fill(c RGBA) {
	if p.closed {
		return
	}
	p.comp.Fill(c)
	p.opts.canvasColor = c
	p.pushSnapshot(ReasonCheckpoint)
}

// DrawImageContained clears the canvas to bg and draws img scaled to
// fit, centered, with its aspect ratio kept. A snapshot is recorded.
func (p *Painter) DrawImageContained(img image.Image, bg RGBA) {
	if p.closed {
		return
	}
	p.comp.DrawImageContained(img, bg)
	p.pushSnapshot(ReasonCheckpoint)
}

// Flush renders pending stamps.
func (p *Painter) Flush() { p.comp.Flush() }

// Result returns a read-only view of the canvas. It reflects later
// painting.
func (p *Painter) Result() image.Image { return p.comp.Result() }

// Snapshot returns a copy of the canvas.
func (p *Painter) Snapshot() *Pixmap { return p.canvas.Clone() }

// Stats returns activity counters.
func (p *Painter) Stats() Stats {
	cs := p.comp.Stats()
	ms := maskCache.Stats()
	return Stats{
		Path:               p.comp.Path(),
		StampsQueued:       cs.StampsQueued,
		Batches:            cs.Batches,
		Flushes:            cs.Flushes,
		Downgrades:         cs.Downgrades,
		Undos:              p.undos,
		UndoDepth:          p.hist.Len(),
		MaskCacheHits:      ms.Hits,
		MaskCacheMisses:    ms.Misses,
		MaskCacheEvictions: ms.Evictions,
	}
}

// Close flushes pending stamps and releases the accelerator and
// snapshots. Further calls are no-ops.
func (p *Painter) Close() error {
	if p.closed {
		return nil
	}
	p.comp.Flush()
	p.comp.Close()
	p.hist.Clear()
	p.closed = true
	p.logger.Info("inkpad: painter closed")
	return nil
}
