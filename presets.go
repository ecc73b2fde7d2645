package inkpad

import "strings"

// SizeTier scales a preset's medium brush size.
type SizeTier int

const (
	SizeSmall SizeTier = iota
	SizeMedium
	SizeLarge
)

// Scale returns the size multiplier of the tier.
func (t SizeTier) Scale() float64 {
	switch t {
	case SizeSmall:
		return 0.5
	case SizeLarge:
		return 2
	default:
		return 1
	}
}

// String returns the tier name.
func (t SizeTier) String() string {
	switch t {
	case SizeSmall:
		return "small"
	case SizeMedium:
		return "medium"
	case SizeLarge:
		return "large"
	default:
		return "unknown"
	}
}

// ParseSizeTier parses a tier name.
func ParseSizeTier(s string) (SizeTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small":
		return SizeSmall, true
	case "medium":
		return SizeMedium, true
	case "large":
		return SizeLarge, true
	}
	return SizeMedium, false
}

// Preset is a named brush setup.
type Preset struct {
	Name string
	Mode Mode

	// Size is the medium-tier stamp radius.
	Size float64

	// Brush replaces the brush texture when non-nil.
	Brush *Brush

	RandomRotation bool

	// Spin is added to the stamp rotation every frame, in degrees.
	Spin float64

	// Interval replaces the stamp interval when positive.
	Interval float64

	CycleTextures bool
	OpacityJitter bool
	Jitter        Jitter

	Drip      bool
	DripEvery float64
	DripCycle bool
	DripRange [2]float64
}

// Built-in presets.
var (
	PresetLine = Preset{
		Name: "line",
		Mode: ModeInterpolatedLine,
		Size: 0.01,
	}
	PresetAction = Preset{
		Name:      "action",
		Mode:      ModeVelocityLineWidth,
		Size:      0.01,
		Drip:      true,
		DripEvery: 0.5,
		DripCycle: true,
		DripRange: [2]float64{0.5, 1},
	}
	PresetLeaf = Preset{
		Name: "leaf",
		Mode: ModeStampDistance,
		Size: 0.01,
		Spin: 10,
	}
	PresetSpinLine = Preset{
		Name: "spin-line",
		Mode: ModeStampDistance,
		Size: 0.05,
		Spin: 0.5,
	}
	PresetSprayCycle = Preset{
		Name:          "spray-cycle",
		Mode:          ModeStampInterval,
		Size:          0.05,
		Spin:          1,
		Interval:      0.0005,
		CycleTextures: true,
		OpacityJitter: true,
	}
	PresetDots = Preset{
		Name:           "dots",
		Mode:           ModeStampDistance,
		Size:           0.05,
		RandomRotation: true,
		Jitter: Jitter{
			SizeRange:    [2]float64{0.2, 1},
			OpacityRange: [2]float64{0.5, 1},
		},
		Drip:      true,
		DripEvery: 0.05,
		DripRange: [2]float64{0.2, 1},
	}
)

// Presets returns the built-in presets.
func Presets() []Preset {
	return []Preset{PresetLine, PresetAction, PresetLeaf, PresetSpinLine, PresetSprayCycle, PresetDots}
}

// PresetByName looks up a built-in preset.
func PresetByName(name string) (Preset, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Presets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// apply writes the preset into a painter configuration. Texture lists in
// effects are kept; only the switches change.
func (p Preset) apply(stroke *StrokeConfig, mode *Mode, fx *Effects, brush **Brush, tier SizeTier) {
	*mode = p.Mode
	stroke.Size = p.Size * tier.Scale()
	stroke.RandomRotation = p.RandomRotation
	stroke.Rotation = 0
	if p.Interval > 0 {
		stroke.Interval = p.Interval
	}
	stroke.Jitter = p.Jitter
	if stroke.Jitter == (Jitter{}) {
		stroke.Jitter = NoJitter
	}
	if p.Brush != nil {
		*brush = p.Brush
	}

	fx.Spin = Spin{Enabled: p.Spin != 0, Step: p.Spin}
	fx.TextureCycle.Enabled = p.CycleTextures
	fx.OpacityJitter.Enabled = p.OpacityJitter
	fx.Drip.Enabled = p.Drip
	fx.Drip.Interval = p.DripEvery
	fx.Drip.Cycle = p.DripCycle
	fx.Drip.SizeRange = p.DripRange
}
