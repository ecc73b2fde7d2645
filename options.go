package inkpad

import (
	"math/rand/v2"
)

// Option configures a Painter during creation.
// Use functional options to customize Painter behavior.
//
// Example:
//
//	// CPU fragment path, default brush
//	p, err := inkpad.New(inkpad.SurfaceDescriptor{Width: 1920, Height: 1080})
//
//	// Compute path on the CPU worker pool
//	p, err := inkpad.New(desc,
//		inkpad.WithCompute(true),
//		inkpad.WithAccelerator(inkpad.NewParallelAccelerator(0)))
type Option func(*options)

// options holds the configuration of a Painter.
type options struct {
	path          PathConfig
	batchCapacity int
	undoCapacity  int
	chunkSeconds  float64 // 0 disables chunking
	graceSeconds  float64

	accel    StampAccelerator
	observer Observer
	rng      *rand.Rand

	brush    *Brush
	stroke   StrokeConfig
	mode     Mode
	velocity VelocityConfig
	source   PressureSource
	effects  Effects
	tier     SizeTier

	canvasColor RGBA
}

const (
	// DefaultChunkSeconds is the stroke duration between automatic
	// snapshots.
	DefaultChunkSeconds = 2.0

	// MinChunkSeconds is the shortest accepted chunk duration.
	MinChunkSeconds = 0.05

	// DefaultGraceSeconds is how long interval mode keeps stamping at the
	// last valid position after the pointer leaves the surface.
	DefaultGraceSeconds = 0.15
)

// defaultOptions returns the default painter options.
func defaultOptions() options {
	return options{
		path:          DefaultPathConfig(),
		batchCapacity: DefaultBatchCapacity,
		undoCapacity:  DefaultUndoCapacity,
		chunkSeconds:  DefaultChunkSeconds,
		graceSeconds:  DefaultGraceSeconds,
		stroke:        DefaultStrokeConfig(),
		mode:          ModeStampInterval,
		velocity:      DefaultVelocityConfig(),
		tier:          SizeMedium,
		canvasColor:   Black,
	}
}

// WithBatchCapacity sets the number of stamps rendered per pass.
func WithBatchCapacity(n int) Option {
	return func(o *options) {
		o.batchCapacity = n
	}
}

// WithUndoCapacity sets the number of snapshots kept.
func WithUndoCapacity(n int) Option {
	return func(o *options) {
		o.undoCapacity = n
	}
}

// WithChunkSeconds sets how often a long stroke is split by an automatic
// snapshot. Zero or a negative value disables chunking; positive values
// below MinChunkSeconds are raised to it.
func WithChunkSeconds(s float64) Option {
	return func(o *options) {
		switch {
		case s <= 0:
			o.chunkSeconds = 0
		case s < MinChunkSeconds:
			o.chunkSeconds = MinChunkSeconds
		default:
			o.chunkSeconds = s
		}
	}
}

// WithGraceSeconds sets the no-hit grace period of interval mode.
func WithGraceSeconds(s float64) Option {
	return func(o *options) {
		o.graceSeconds = max(s, 0)
	}
}

// WithPathConfig replaces the render path selection inputs.
func WithPathConfig(cfg PathConfig) Option {
	return func(o *options) {
		o.path = cfg
	}
}

// WithRenderPath requests a specific render path. PathCompute also needs
// an accelerator and a surface with RandomWrite.
func WithRenderPath(p RenderPath) Option {
	return func(o *options) {
		o.path.Compute = p == PathCompute
		o.path.DirtyTracking = p != PathFragmentFull
		o.path.SafeBlit = p == PathFragmentRegionSafe
	}
}

// WithDirtyTracking enables region-limited rendering.
func WithDirtyTracking(on bool) Option {
	return func(o *options) {
		o.path.DirtyTracking = on
	}
}

// WithSafeBlit selects the ping-pong region path.
func WithSafeBlit(on bool) Option {
	return func(o *options) {
		o.path.SafeBlit = on
	}
}

// WithCompute opts in to the compute path.
func WithCompute(on bool) Option {
	return func(o *options) {
		o.path.Compute = on
	}
}

// WithAccelerator sets the accelerator used by the compute path.
// The painter takes ownership and closes it.
func WithAccelerator(a StampAccelerator) Option {
	return func(o *options) {
		o.accel = a
	}
}

// WithObserver sets the event observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithRand sets the random source for rotation, jitter and effects.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithBrush sets the brush texture.
func WithBrush(b *Brush) Option {
	return func(o *options) {
		o.brush = b
	}
}

// WithStroke replaces the stroke configuration. Its pressure range also
// becomes the velocity window's.
func WithStroke(cfg StrokeConfig) Option {
	return func(o *options) {
		o.stroke = cfg
		o.setPressureRange(cfg.MinPressure, cfg.MaxPressure)
	}
}

// WithBrushColor sets the brush color.
func WithBrushColor(c RGBA) Option {
	return func(o *options) {
		o.stroke.Color = c
	}
}

// WithBrushSize sets the stamp radius as a fraction of the canvas width.
func WithBrushSize(size float64) Option {
	return func(o *options) {
		o.stroke.Size = size
	}
}

// WithStampInterval sets the interval of ModeStampInterval.
func WithStampInterval(seconds float64) Option {
	return func(o *options) {
		o.stroke.Interval = max(seconds, MinStampInterval)
	}
}

// WithDistanceThreshold sets the spacing of ModeStampDistance.
func WithDistanceThreshold(d float64) Option {
	return func(o *options) {
		o.stroke.Distance = d
	}
}

// WithPressureRange sets the pressure range and the speed mapped to the
// minimum.
func WithPressureRange(minP, maxP, maxSpeed float64) Option {
	return func(o *options) {
		o.setPressureRange(minP, maxP)
		o.stroke.MaxSpeed = maxSpeed
	}
}

// setPressureRange stores one pressure range for both the velocity
// window and the rasterizer, which clamps the pressure it is given.
func (o *options) setPressureRange(minP, maxP float64) {
	if maxP < minP {
		minP, maxP = maxP, minP
	}
	o.stroke.MinPressure, o.stroke.MaxPressure = minP, maxP
	o.velocity.MinPressure, o.velocity.MaxPressure = minP, maxP
}

// WithMode sets the initial mode.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithVelocity sets the velocity window estimator configuration. Its
// pressure range also becomes the stroke's pressure range.
func WithVelocity(cfg VelocityConfig) Option {
	return func(o *options) {
		o.velocity = cfg
		o.setPressureRange(cfg.MinPressure, cfg.MaxPressure)
	}
}

// WithPressureSource selects where velocity-mode pressure comes from.
func WithPressureSource(s PressureSource) Option {
	return func(o *options) {
		o.source = s
	}
}

// WithEffects sets the effect configuration.
func WithEffects(e Effects) Option {
	return func(o *options) {
		o.effects = e
	}
}

// WithCanvasColor sets the color the canvas is cleared to.
func WithCanvasColor(c RGBA) Option {
	return func(o *options) {
		o.canvasColor = c
	}
}

// WithSizeTier selects the brush size tier. At construction the brush
// size is the medium size and the tier scales it; in Reconfigure the
// current size is rescaled from the old tier to the new one.
func WithSizeTier(t SizeTier) Option {
	return func(o *options) {
		o.tier = t
	}
}

// WithPreset applies a brush preset on top of the stroke configuration.
func WithPreset(p Preset) Option {
	return func(o *options) {
		p.apply(&o.stroke, &o.mode, &o.effects, &o.brush, SizeMedium)
	}
}
