package inkpad

import "math"

// Effects are per-frame brush animations. A Painter ticks them once per
// UpdateStroke; the caller owns the values and changes them with
// Painter.SetEffects.
type Effects struct {
	Rainbow       Rainbow
	Spin          Spin
	TextureCycle  TextureCycle
	OpacityJitter OpacityJitter
	Drip          Drip
}

// Rainbow rotates the brush hue by RainbowStep degrees every Period
// seconds.
type Rainbow struct {
	Enabled bool
	Period  float64
}

// RainbowStep is the hue rotation per Rainbow period, in degrees.
const RainbowStep = 5.0

// Spin adds Step degrees to the fixed stamp rotation every frame.
type Spin struct {
	Enabled bool
	Step    float64
}

// TextureCycle switches to a random brush from Textures every frame.
type TextureCycle struct {
	Enabled  bool
	Textures []*Brush
}

// OpacityJitter re-rolls the brush alpha in [0, Max) every frame.
type OpacityJitter struct {
	Enabled bool
	Max     float64
}

// DefaultOpacityJitterMax is used when OpacityJitter.Max is zero.
const DefaultOpacityJitterMax = 0.7

// Drip places one extra stamp every Interval seconds while painting.
// Its size is the brush size times a random factor in SizeRange, times
// the current pressure, times DripScale. The stamp uses a random brush
// from Textures when Cycle is set and the first one otherwise; with no
// Textures it uses the current brush.
type Drip struct {
	Enabled   bool
	Interval  float64
	Textures  []*Brush
	Cycle     bool
	SizeRange [2]float64
}

// DripScale shrinks drip stamps relative to the stroke.
const DripScale = 0.8

type effectState struct {
	rainbowTimer float64
	dripTimer    float64
}

// tickEffects advances the effects by dt. painted reports whether this
// frame painted at pos.
func (p *Painter) tickEffects(dt float64, pos Vec2, painted bool) {
	e := &p.effects
	cfg := p.rast.Config()
	changed := false

	if e.Rainbow.Enabled {
		p.fx.rainbowTimer += dt
		if p.fx.rainbowTimer >= e.Rainbow.Period {
			p.fx.rainbowTimer = 0
			cfg.Color = cfg.Color.RotateHue(RainbowStep)
			changed = true
		}
	}
	if e.Spin.Enabled {
		cfg.Rotation = math.Mod(cfg.Rotation+e.Spin.Step, 360)
		changed = true
	}
	if e.OpacityJitter.Enabled {
		hi := e.OpacityJitter.Max
		if hi <= 0 {
			hi = DefaultOpacityJitterMax
		}
		cfg.Color.A = p.rng.Float64() * hi
		changed = true
	}
	if changed {
		p.comp.Flush()
		p.rast.SetConfig(cfg)
	}

	if e.TextureCycle.Enabled && len(e.TextureCycle.Textures) > 0 {
		p.comp.SetBrush(e.TextureCycle.Textures[p.rng.IntN(len(e.TextureCycle.Textures))])
	}

	if e.Drip.Enabled && painted {
		p.fx.dripTimer += dt
		if p.fx.dripTimer >= e.Drip.Interval {
			p.fx.dripTimer = 0
			p.drip(pos, cfg)
		}
	}
}

func (p *Painter) drip(pos Vec2, cfg StrokeConfig) {
	d := p.effects.Drip
	var brush *Brush
	switch {
	case len(d.Textures) == 0:
	case d.Cycle:
		brush = d.Textures[p.rng.IntN(len(d.Textures))]
	default:
		brush = d.Textures[0]
	}

	lo, hi := d.SizeRange[0], d.SizeRange[1]
	if lo == 0 && hi == 0 {
		lo, hi = 1, 1
	}
	f := lo
	if hi > lo {
		f += p.rng.Float64() * (hi - lo)
	}

	p.comp.Queue(Stamp{
		Pos:      pos,
		Size:     cfg.Size * f * p.rast.Pressure() * DripScale,
		Rotation: p.rng.Float64() * 2 * math.Pi,
		Color:    cfg.Color,
		Brush:    brush,
	})
	p.comp.Flush()
}
