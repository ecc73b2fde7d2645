// Package config loads and saves inkpad settings as TOML.
//
// A settings file has one table per concern:
//
//	[canvas]
//	size = "1920x1080"
//	color = "#000000"
//
//	[brush]
//	preset = "line"
//	mode = "line"
//	tier = "medium"
//	color = "#ff8800"
//
//	[velocity]
//	window = 4
//
//	[undo]
//	capacity = 10
//	chunk_seconds = 2.0
//
//	[render]
//	path = "auto"
//
//	[input]
//	grace_seconds = 0.15
//
// Keys the decoder does not recognise are an error (ErrUndecoded), so a
// misspelled setting is never silently ignored.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/disintegration/imaging"

	"github.com/gogpu/inkpad"
)

var (
	// ErrUndecoded reports keys in the file that match no setting.
	ErrUndecoded = errors.New("config: undecoded keys")

	// ErrUnknownMode reports an unrecognised stroke mode.
	ErrUnknownMode = errors.New("config: unknown mode")

	// ErrUnknownPreset reports an unrecognised canvas size, brush preset,
	// size tier, pressure source or render path name.
	ErrUnknownPreset = errors.New("config: unknown preset")

	// ErrInvalid reports a value outside its accepted range.
	ErrInvalid = errors.New("config: invalid value")
)

// CanvasSizes are the accepted canvas size presets.
var CanvasSizes = []string{"1024x1024", "1920x1080", "2560x1440", "5120x2880"}

// Config is the settings file.
type Config struct {
	Canvas   Canvas   `toml:"canvas"`
	Brush    Brush    `toml:"brush"`
	Velocity Velocity `toml:"velocity"`
	Undo     Undo     `toml:"undo"`
	Render   Render   `toml:"render"`
	Input    Input    `toml:"input"`
}

// Canvas configures the drawing surface.
type Canvas struct {
	// Size is one of CanvasSizes.
	Size  string `toml:"size"`
	Color string `toml:"color"`
}

// Brush configures the brush. Zero values keep the preset's or the
// engine's defaults; Mode, Size, Color, Interval and Distance override
// the preset.
type Brush struct {
	Preset   string  `toml:"preset"`
	Mode     string  `toml:"mode"`
	Tier     string  `toml:"tier"`
	Size     float64 `toml:"size"`
	Color    string  `toml:"color"`
	Interval float64 `toml:"interval"`
	Distance float64 `toml:"distance"`

	// Texture is an image file used as the brush mask.
	Texture string `toml:"texture"`
}

// Velocity configures the velocity window pressure estimator.
type Velocity struct {
	Source      string  `toml:"source"`
	Window      int     `toml:"window"`
	VelMin      float64 `toml:"vel_min"`
	VelMax      float64 `toml:"vel_max"`
	MinPressure float64 `toml:"min_pressure"`
	MaxPressure float64 `toml:"max_pressure"`
	Smoothing   float64 `toml:"smoothing"`
}

// Undo configures the snapshot history.
type Undo struct {
	Capacity int `toml:"capacity"`

	// ChunkSeconds splits long strokes; 0 disables chunking.
	ChunkSeconds float64 `toml:"chunk_seconds"`
}

// Render configures render path selection.
type Render struct {
	// Path is "auto" or a RenderPath name.
	Path          string `toml:"path"`
	Compute       bool   `toml:"compute"`
	BatchCapacity int    `toml:"batch_capacity"`
}

// Input configures pointer handling.
type Input struct {
	GraceSeconds float64 `toml:"grace_seconds"`
}

// Default returns the settings the engine uses without a file.
func Default() Config {
	v := inkpad.DefaultVelocityConfig()
	return Config{
		Canvas: Canvas{Size: "1920x1080", Color: inkpad.Black.Hex()},
		Brush:  Brush{Tier: inkpad.SizeMedium.String()},
		Velocity: Velocity{
			Source:      inkpad.PressureVelocityWindow.String(),
			Window:      v.Window,
			VelMin:      v.VelMin,
			VelMax:      v.VelMax,
			MinPressure: v.MinPressure,
			MaxPressure: v.MaxPressure,
			Smoothing:   v.Smoothing,
		},
		Undo:   Undo{Capacity: inkpad.DefaultUndoCapacity, ChunkSeconds: inkpad.DefaultChunkSeconds},
		Render: Render{Path: "auto", BatchCapacity: inkpad.DefaultBatchCapacity},
		Input:  Input{GraceSeconds: inkpad.DefaultGraceSeconds},
	}
}

// Load reads and validates a settings file. Settings missing from the
// file keep their Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes and validates settings from TOML text.
func Parse(text string) (Config, error) {
	c := Default()
	md, err := toml.Decode(text, &c)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s", ErrUndecoded, strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks names and ranges.
func (c Config) Validate() error {
	if _, _, err := c.CanvasSize(); err != nil {
		return err
	}
	if c.Brush.Preset != "" {
		if _, ok := inkpad.PresetByName(c.Brush.Preset); !ok {
			return fmt.Errorf("%w: brush preset %q", ErrUnknownPreset, c.Brush.Preset)
		}
	}
	if c.Brush.Mode != "" {
		if _, ok := inkpad.ParseMode(c.Brush.Mode); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMode, c.Brush.Mode)
		}
	}
	if c.Brush.Tier != "" {
		if _, ok := inkpad.ParseSizeTier(c.Brush.Tier); !ok {
			return fmt.Errorf("%w: size tier %q", ErrUnknownPreset, c.Brush.Tier)
		}
	}
	if _, err := parseSource(c.Velocity.Source); err != nil {
		return err
	}
	if _, err := c.renderPath(); err != nil {
		return err
	}

	checks := []struct {
		name string
		bad  bool
	}{
		{"brush.size", c.Brush.Size < 0 || c.Brush.Size > 1},
		{"brush.interval", c.Brush.Interval < 0},
		{"brush.distance", c.Brush.Distance < 0},
		{"velocity.window", c.Velocity.Window < 0},
		{"velocity.vel_max", c.Velocity.VelMax > 0 && c.Velocity.VelMax <= c.Velocity.VelMin},
		{"velocity.min_pressure", c.Velocity.MinPressure < 0 || c.Velocity.MinPressure > c.Velocity.MaxPressure},
		{"velocity.smoothing", c.Velocity.Smoothing < 0},
		{"undo.capacity", c.Undo.Capacity < 0},
		{"undo.chunk_seconds", c.Undo.ChunkSeconds < 0},
		{"render.batch_capacity", c.Render.BatchCapacity < 0},
		{"input.grace_seconds", c.Input.GraceSeconds < 0},
	}
	for _, ch := range checks {
		if ch.bad {
			return fmt.Errorf("%w: %s", ErrInvalid, ch.name)
		}
	}
	return nil
}

// CanvasSize returns the pixel size of the canvas preset.
func (c Config) CanvasSize() (w, h int, err error) {
	for _, s := range CanvasSizes {
		if s == c.Canvas.Size {
			return parseSize(s)
		}
	}
	return 0, 0, fmt.Errorf("%w: canvas size %q", ErrUnknownPreset, c.Canvas.Size)
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: canvas size %q", ErrUnknownPreset, s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: canvas size %q", ErrUnknownPreset, s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: canvas size %q", ErrUnknownPreset, s)
	}
	return w, h, nil
}

// Surface returns the surface descriptor for the canvas preset.
func (c Config) Surface() (inkpad.SurfaceDescriptor, error) {
	w, h, err := c.CanvasSize()
	if err != nil {
		return inkpad.SurfaceDescriptor{}, err
	}
	return inkpad.SurfaceDescriptor{Width: w, Height: h, RandomWrite: c.Render.Compute}, nil
}

func parseSource(s string) (inkpad.PressureSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", inkpad.PressureVelocityWindow.String():
		return inkpad.PressureVelocityWindow, nil
	case inkpad.PressureExternal.String():
		return inkpad.PressureExternal, nil
	}
	return 0, fmt.Errorf("%w: pressure source %q", ErrUnknownPreset, s)
}

// renderPath returns the requested path, or nil for "auto".
func (c Config) renderPath() (*inkpad.RenderPath, error) {
	if c.Render.Path == "" || strings.EqualFold(c.Render.Path, "auto") {
		return nil, nil
	}
	p, ok := inkpad.ParseRenderPath(c.Render.Path)
	if !ok {
		return nil, fmt.Errorf("%w: render path %q", ErrUnknownPreset, c.Render.Path)
	}
	return &p, nil
}

// Options converts the settings to painter options. Call Validate (or use
// Load/Parse) first; invalid names are skipped here.
func (c Config) Options() ([]inkpad.Option, error) {
	var opts []inkpad.Option

	if c.Canvas.Color != "" {
		opts = append(opts, inkpad.WithCanvasColor(inkpad.Hex(c.Canvas.Color)))
	}

	if pr, ok := inkpad.PresetByName(c.Brush.Preset); ok {
		opts = append(opts, inkpad.WithPreset(pr))
	}
	if m, ok := inkpad.ParseMode(c.Brush.Mode); ok {
		opts = append(opts, inkpad.WithMode(m))
	}
	if c.Brush.Size > 0 {
		opts = append(opts, inkpad.WithBrushSize(c.Brush.Size))
	}
	if t, ok := inkpad.ParseSizeTier(c.Brush.Tier); ok {
		opts = append(opts, inkpad.WithSizeTier(t))
	}
	if c.Brush.Color != "" {
		opts = append(opts, inkpad.WithBrushColor(inkpad.Hex(c.Brush.Color)))
	}
	if c.Brush.Interval > 0 {
		opts = append(opts, inkpad.WithStampInterval(c.Brush.Interval))
	}
	if c.Brush.Distance > 0 {
		opts = append(opts, inkpad.WithDistanceThreshold(c.Brush.Distance))
	}
	if c.Brush.Texture != "" {
		b, err := LoadTexture(c.Brush.Texture)
		if err != nil {
			return nil, err
		}
		opts = append(opts, inkpad.WithBrush(b))
	}

	v := inkpad.DefaultVelocityConfig()
	if c.Velocity.Window > 0 {
		v.Window = c.Velocity.Window
	}
	if c.Velocity.VelMax > 0 {
		v.VelMin, v.VelMax = c.Velocity.VelMin, c.Velocity.VelMax
	}
	if c.Velocity.MaxPressure > 0 {
		v.MinPressure, v.MaxPressure = c.Velocity.MinPressure, c.Velocity.MaxPressure
	}
	v.Smoothing = c.Velocity.Smoothing
	opts = append(opts, inkpad.WithVelocity(v))
	if src, err := parseSource(c.Velocity.Source); err == nil {
		opts = append(opts, inkpad.WithPressureSource(src))
	}

	if c.Undo.Capacity > 0 {
		opts = append(opts, inkpad.WithUndoCapacity(c.Undo.Capacity))
	}
	opts = append(opts, inkpad.WithChunkSeconds(c.Undo.ChunkSeconds))

	if p, err := c.renderPath(); err == nil && p != nil {
		opts = append(opts, inkpad.WithRenderPath(*p))
	} else if c.Render.Compute {
		opts = append(opts, inkpad.WithCompute(true))
	}
	if c.Render.BatchCapacity > 0 {
		opts = append(opts, inkpad.WithBatchCapacity(c.Render.BatchCapacity))
	}

	opts = append(opts, inkpad.WithGraceSeconds(c.Input.GraceSeconds))
	return opts, nil
}

// LoadTexture opens an image file and turns it into a brush.
func LoadTexture(path string) (*inkpad.Brush, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: brush texture: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	b, err := inkpad.NewBrush(name, img)
	if err != nil {
		return nil, fmt.Errorf("config: brush texture: %w", err)
	}
	return b, nil
}
