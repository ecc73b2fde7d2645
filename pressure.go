package inkpad

import "math"

// PressureSource selects where the Painter's per-frame pressure comes from.
type PressureSource uint8

const (
	// PressureVelocityWindow derives pressure from pointer speed over a
	// sliding window of device-pixel samples.
	PressureVelocityWindow PressureSource = iota

	// PressureExternal uses a value supplied by the caller, for devices
	// that produce their own pressure-like signal (gaze dwell, stylus).
	PressureExternal
)

// String returns the source name.
func (s PressureSource) String() string {
	switch s {
	case PressureVelocityWindow:
		return "velocity"
	case PressureExternal:
		return "external"
	default:
		return "unknown"
	}
}

// VelocityConfig tunes the velocity window estimator.
type VelocityConfig struct {
	// Window is the number of samples kept, clamped to [2, 8].
	Window int

	// VelMin and VelMax bound the speed band, in canvas-minimum-dimensions
	// per second. Speeds at or below VelMin give MaxPressure; at or above
	// VelMax give MinPressure.
	VelMin, VelMax float64

	MinPressure, MaxPressure float64

	// Smoothing is the exponential smoothing rate per second.
	// Zero disables smoothing.
	Smoothing float64
}

// DefaultVelocityConfig returns the stock estimator tuning.
func DefaultVelocityConfig() VelocityConfig {
	return VelocityConfig{
		Window:      4,
		VelMin:      0.0025,
		VelMax:      0.08,
		MinPressure: 0.2,
		MaxPressure: 1.0,
		Smoothing:   18,
	}
}

const (
	minVelocityWindow = 2
	maxVelocityWindow = 8
	minElapsed        = 1e-5
)

type velSample struct {
	pos Vec2
	t   float64
}

// PressureEstimator turns a stream of pointer samples into a smoothed
// pressure in [MinPressure, MaxPressure]. Faster movement gives lower
// pressure.
type PressureEstimator struct {
	cfg       VelocityConfig
	canvasMin float64

	samples  []velSample
	smoothed float64

	source   PressureSource
	external float64
}

// NewPressureEstimator creates an estimator for a canvas of the given
// pixel dimensions, which normalize speed.
func NewPressureEstimator(cfg VelocityConfig, canvasWidth, canvasHeight int) *PressureEstimator {
	cfg.Window = min(max(cfg.Window, minVelocityWindow), maxVelocityWindow)
	if cfg.MaxPressure < cfg.MinPressure {
		cfg.MinPressure, cfg.MaxPressure = cfg.MaxPressure, cfg.MinPressure
	}
	return &PressureEstimator{
		cfg:       cfg,
		canvasMin: math.Max(1, float64(min(canvasWidth, canvasHeight))),
		samples:   make([]velSample, 0, cfg.Window),
		smoothed:  cfg.MaxPressure,
		external:  cfg.MaxPressure,
	}
}

// Config returns the estimator configuration after clamping.
func (e *PressureEstimator) Config() VelocityConfig { return e.cfg }

// SetSource switches between the velocity window and external pressure.
func (e *PressureEstimator) SetSource(s PressureSource) { e.source = s }

// Source returns the active pressure source.
func (e *PressureEstimator) Source() PressureSource { return e.source }

// SetExternal stores the pressure used in PressureExternal mode.
func (e *PressureEstimator) SetExternal(p float64) { e.external = p }

// Prime starts a new window at pos and resets the smoothed pressure to
// MaxPressure, so strokes start at full width.
func (e *PressureEstimator) Prime(pos Vec2, t float64) {
	e.samples = append(e.samples[:0], velSample{pos: pos, t: t})
	e.smoothed = e.cfg.MaxPressure
}

// Reset empties the window and restores full pressure.
func (e *PressureEstimator) Reset() {
	e.samples = e.samples[:0]
	e.smoothed = e.cfg.MaxPressure
}

// Pressure returns the last computed pressure.
func (e *PressureEstimator) Pressure() float64 {
	if e.source == PressureExternal {
		return clamp(e.external, e.cfg.MinPressure, e.cfg.MaxPressure)
	}
	return e.smoothed
}

// Sample records a pointer position (device pixels) taken at time t
// (seconds) and returns the updated pressure. With fewer than two samples
// in the window the previous pressure is returned unchanged.
func (e *PressureEstimator) Sample(pos Vec2, t float64) float64 {
	dt := 0.0
	if n := len(e.samples); n > 0 {
		dt = t - e.samples[n-1].t
	}
	if len(e.samples) == e.cfg.Window {
		copy(e.samples, e.samples[1:])
		e.samples = e.samples[:len(e.samples)-1]
	}
	e.samples = append(e.samples, velSample{pos: pos, t: t})

	if e.source == PressureExternal {
		return e.Pressure()
	}
	if len(e.samples) < 2 {
		return e.smoothed
	}

	dist := 0.0
	for i := 1; i < len(e.samples); i++ {
		dist += e.samples[i-1].pos.Dist(e.samples[i].pos)
	}
	elapsed := math.Max(minElapsed, e.samples[len(e.samples)-1].t-e.samples[0].t)
	speed := dist / elapsed / e.canvasMin

	x := inverseLerp(e.cfg.VelMin, e.cfg.VelMax, speed)
	target := lerp(e.cfg.MaxPressure, e.cfg.MinPressure, x)

	if e.cfg.Smoothing > 0 {
		a := 1 - math.Exp(-e.cfg.Smoothing*math.Max(minElapsed, dt))
		e.smoothed = lerp(e.smoothed, target, a)
	} else {
		e.smoothed = target
	}
	return e.smoothed
}

// speedPressure maps surface-space speed to pressure inside the
// rasterizer. It is used when no external pressure is injected.
type speedPressure struct {
	minP, maxP float64
	maxSpeed   float64
	deadZone   float64

	smooth       bool
	attackRate   float64 // toward thinner
	releaseRate  float64 // toward thicker
	smoothedSpd  float64
	current      float64
	useExternal  bool
	externalPres float64
}

const (
	minStepDT          = 0.0001
	speedSmoothingTime = 0.005
	speedCurve         = 4.0
)

func (s *speedPressure) reset() {
	s.smoothedSpd = 0
	s.current = s.maxP
}

// update advances the pressure for a move from prev to p over dt seconds.
// hasPrev is false at stroke start, where speed cannot be measured.
func (s *speedPressure) update(prev Vec2, hasPrev bool, p Vec2, dt float64, velocityMode bool) float64 {
	dt = math.Max(dt, minStepDT)
	target := s.current

	switch {
	case velocityMode && s.useExternal:
		target = clamp(s.externalPres, s.minP, s.maxP)
	case hasPrev:
		speed := prev.Dist(p) / dt
		if s.deadZone > 0 && speed < s.deadZone {
			speed = 0
		}
		k := 1 - math.Exp(-dt/speedSmoothingTime)
		s.smoothedSpd = lerp(s.smoothedSpd, speed, k)

		x := clamp01(s.smoothedSpd / math.Max(minStepDT, s.maxSpeed))
		x = math.Pow(x, speedCurve)
		target = lerp(s.maxP, s.minP, x)
	}

	if s.smooth {
		rate := s.releaseRate
		if target < s.current {
			rate = s.attackRate
		}
		a := 1 - math.Exp(-rate*dt)
		s.current = lerp(s.current, target, a)
	} else {
		s.current = target
	}
	return s.current
}
