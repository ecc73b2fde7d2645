package inkpad

import (
	"math"
	"math/rand/v2"
	"strings"
)

// Mode selects how pointer samples become stamps.
type Mode int

const (
	// ModeStampInterval places one stamp every StrokeConfig.Interval
	// seconds at the current position.
	ModeStampInterval Mode = iota

	// ModeStampDistance places a stamp whenever the pointer has moved
	// StrokeConfig.Distance from the last stamp.
	ModeStampDistance

	// ModeInterpolatedLine connects consecutive samples with a gap-free
	// line of full-pressure stamps.
	ModeInterpolatedLine

	// ModeVelocityLineWidth connects samples with a line whose width
	// follows the current pressure.
	ModeVelocityLineWidth

	modeCount
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeStampInterval:
		return "interval"
	case ModeStampDistance:
		return "distance"
	case ModeInterpolatedLine:
		return "line"
	case ModeVelocityLineWidth:
		return "velocity"
	default:
		return "unknown"
	}
}

// Next returns the mode after m in cycling order.
func (m Mode) Next() Mode {
	return (m + 1) % modeCount
}

// ParseMode parses a mode name as returned by Mode.String.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "interval":
		return ModeStampInterval, true
	case "distance":
		return ModeStampDistance, true
	case "line":
		return ModeInterpolatedLine, true
	case "velocity":
		return ModeVelocityLineWidth, true
	}
	return ModeStampInterval, false
}

// Jitter re-rolls stamp size and opacity at emission. Each range is a
// [min, max] multiplier; [1, 1] disables it.
type Jitter struct {
	SizeRange    [2]float64
	OpacityRange [2]float64
}

// NoJitter leaves stamps unchanged.
var NoJitter = Jitter{SizeRange: [2]float64{1, 1}, OpacityRange: [2]float64{1, 1}}

// StrokeConfig holds the brush and stroke tuning of a Rasterizer.
type StrokeConfig struct {
	// Size is the stamp radius as a fraction of the canvas width.
	Size  float64
	Color RGBA

	Interval float64 // seconds, ModeStampInterval
	Distance float64 // normalized units, ModeStampDistance

	// RandomRotation picks a rotation in [-30°, 30°] per stamp; otherwise
	// every stamp uses Rotation degrees.
	RandomRotation bool
	Rotation       float64

	// Speed-to-pressure mapping used when no external pressure is set.
	MinPressure   float64
	MaxPressure   float64
	MaxSpeed      float64 // normalized units per second
	SpeedDeadZone float64

	// SmoothPressure eases pressure changes with separate rates toward
	// thinner (Attack) and thicker (Release) strokes.
	SmoothPressure bool
	AttackRate     float64
	ReleaseRate    float64

	// Overlap is the step between line stamps as a fraction of the
	// effective stamp diameter. Smoothness caps the step as a fraction
	// of the base brush diameter.
	Overlap    float64
	Smoothness float64

	Jitter Jitter
}

// DefaultStrokeConfig returns the stock brush: white, size 0.05, one stamp
// per 50 ms or per 0.01 units of travel.
func DefaultStrokeConfig() StrokeConfig {
	return StrokeConfig{
		Size:        0.05,
		Color:       White,
		Interval:    0.05,
		Distance:    0.01,
		MinPressure: 0.2,
		MaxPressure: 1,
		MaxSpeed:    2000,
		AttackRate:  50,
		ReleaseRate: 50,
		Overlap:     0.20,
		Smoothness:  0.35,
		Jitter:      NoJitter,
	}
}

const (
	// MinStampInterval is the smallest accepted interval.
	MinStampInterval = 0.0001

	// MaxLineSteps bounds the stamps of one interpolated segment.
	MaxLineSteps = 2048

	randomRotationDeg = 30.0
	lineEpsilon       = 1e-7
	intervalEpsilon   = 1e-9
	minLineStepPx     = 0.5
	minStampPx        = 0.25
	minLinePressure   = 0.01
	maxLinePressure   = 10
)

// StampSink receives the stamps a Rasterizer emits. Compositor
// implements it.
type StampSink interface {
	Queue(s Stamp)
	Flush()
}

// Rasterizer turns a stream of pointer samples into stamps.
type Rasterizer struct {
	sink   StampSink
	width  int
	height int
	rng    *rand.Rand

	mode  Mode
	cfg   StrokeConfig
	brush *Brush

	prev     Vec2
	hasPrev  bool
	timer    float64
	pressure speedPressure
}

// NewRasterizer creates a rasterizer for a width x height canvas that
// emits into sink. A nil rng uses a randomly seeded source.
func NewRasterizer(sink StampSink, width, height int, cfg StrokeConfig, rng *rand.Rand) *Rasterizer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	r := &Rasterizer{
		sink:   sink,
		width:  width,
		height: height,
		rng:    rng,
	}
	r.SetConfig(cfg)
	r.pressure.reset()
	return r
}

// Mode returns the current mode.
func (r *Rasterizer) Mode() Mode { return r.mode }

// SetMode changes the mode. It does not end the current stroke.
func (r *Rasterizer) SetMode(m Mode) {
	if m < 0 || m >= modeCount {
		m = ModeStampInterval
	}
	r.mode = m
}

// Config returns the stroke configuration.
func (r *Rasterizer) Config() StrokeConfig { return r.cfg }

// SetConfig replaces the stroke configuration.
func (r *Rasterizer) SetConfig(cfg StrokeConfig) {
	cfg.Interval = math.Max(cfg.Interval, MinStampInterval)
	if cfg.Jitter == (Jitter{}) {
		cfg.Jitter = NoJitter
	}
	r.cfg = cfg

	p := &r.pressure
	p.minP, p.maxP = cfg.MinPressure, cfg.MaxPressure
	p.maxSpeed = cfg.MaxSpeed
	p.deadZone = cfg.SpeedDeadZone
	p.smooth = cfg.SmoothPressure
	p.attackRate, p.releaseRate = cfg.AttackRate, cfg.ReleaseRate
}

// SetBrush sets the brush attached to emitted stamps. Nil means the
// compositor's current brush.
func (r *Rasterizer) SetBrush(b *Brush) { r.brush = b }

// SetExternalPressure makes ModeVelocityLineWidth use p (clamped to the
// pressure range) instead of the speed it measures itself.
func (r *Rasterizer) SetExternalPressure(p float64) {
	r.pressure.useExternal = true
	r.pressure.externalPres = p
}

// ClearExternalPressure returns to measured speed.
func (r *Rasterizer) ClearExternalPressure() {
	r.pressure.useExternal = false
}

// Pressure returns the current pressure.
func (r *Rasterizer) Pressure() float64 { return r.pressure.current }

// Previous returns the last anchored position, if any.
func (r *Rasterizer) Previous() (Vec2, bool) { return r.prev, r.hasPrev }

// UpdateStroke advances the stroke to p after dt seconds.
func (r *Rasterizer) UpdateStroke(p Vec2, dt float64) {
	if r.sink == nil {
		return
	}
	r.timer += dt
	cur := r.pressure.update(r.prev, r.hasPrev, p, dt, r.mode == ModeVelocityLineWidth)

	switch r.mode {
	case ModeStampInterval:
		if r.timer+intervalEpsilon >= r.cfg.Interval {
			r.stamp(p, r.cfg.Size)
			r.timer = 0
		}

	case ModeStampDistance:
		if !r.hasPrev || r.prev.Dist(p) >= r.cfg.Distance {
			r.stamp(p, r.cfg.Size)
			r.prev, r.hasPrev = p, true
		}

	case ModeInterpolatedLine:
		if r.hasPrev {
			r.line(r.prev, p, 1, 1)
		} else {
			r.stamp(p, r.cfg.Size)
		}
		r.prev, r.hasPrev = p, true

	case ModeVelocityLineWidth:
		if r.hasPrev {
			r.line(r.prev, p, cur, cur)
		} else {
			r.stamp(p, r.cfg.Size*cur)
		}
		r.prev, r.hasPrev = p, true
	}
}

// FinishStroke forgets the previous position, resets the interval timer
// and flushes the sink.
func (r *Rasterizer) FinishStroke() {
	r.hasPrev = false
	r.timer = 0
	if r.sink != nil {
		r.sink.Flush()
	}
}

// ResetPressure restores full pressure and forgets measured speed.
func (r *Rasterizer) ResetPressure() { r.pressure.reset() }

// line emits a gap-free run of stamps from a to b. Step spacing follows
// the effective stamp diameter so thin strokes get denser stamps.
func (r *Rasterizer) line(a, b Vec2, pa, pb float64) {
	dist := a.Dist(b)
	if dist <= lineEpsilon {
		r.stamp(b, r.cfg.Size*pb)
		return
	}

	steps := r.lineSteps(dist, clamp01((pa+pb)*0.5))
	pa = clamp(pa, minLinePressure, maxLinePressure)
	pb = clamp(pb, minLinePressure, maxLinePressure)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		r.stamp(a.Lerp(b, t), r.cfg.Size*SmoothStep(pa, pb, t))
	}
}

// lineSteps returns the number of intervals for a segment of dist
// normalized units drawn at average pressure avgP.
func (r *Rasterizer) lineSteps(dist, avgP float64) int {
	w := float64(r.width)
	distPx := dist * w
	stampPx := math.Max(minStampPx, r.cfg.Size*avgP*w)

	basePx := math.Max(0.0001, r.cfg.Size*w)
	maxStep := math.Max(minLineStepPx, basePx*r.cfg.Smoothness)
	step := clamp(stampPx*r.cfg.Overlap, minLineStepPx, maxStep)

	steps := math.Ceil(distPx / math.Max(0.0001, step))
	return int(clamp(steps, 1, MaxLineSteps))
}

func (r *Rasterizer) stamp(p Vec2, size float64) {
	col := r.cfg.Color
	if j := r.cfg.Jitter; j != NoJitter {
		size *= r.uniform(j.SizeRange[0], j.SizeRange[1])
		col.A = clamp01(col.A * r.uniform(j.OpacityRange[0], j.OpacityRange[1]))
	}

	rot := r.cfg.Rotation
	if r.cfg.RandomRotation {
		rot = r.uniform(-randomRotationDeg, randomRotationDeg)
	}

	r.sink.Queue(Stamp{
		Pos:      p,
		Size:     size,
		Rotation: rot * math.Pi / 180,
		Color:    col,
		Brush:    r.brush,
	})
}

// uniform returns a value in [lo, hi); lo when the range is empty.
func (r *Rasterizer) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.rng.Float64()*(hi-lo)
}
