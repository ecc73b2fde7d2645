package inkpad

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/gogpu/inkpad/internal/cache"
	internalimage "github.com/gogpu/inkpad/internal/image"
)

// Brush is the shape of a stamp: a coverage mask that is scaled to the
// stamp diameter, rotated, and tinted with the stamp color.
//
// Brushes are immutable and safe for concurrent use.
type Brush struct {
	id   uint64
	name string
	src  *internalimage.Mask
}

const (
	// maxBrushSource caps the stored source mask; larger textures are
	// downscaled on import.
	maxBrushSource = 512

	// maxMaskDiameter caps resampled masks. Larger stamps sample the
	// capped mask bilinearly.
	maxMaskDiameter = 1024

	maskCacheEntries = 64
)

var (
	brushIDs atomic.Uint64

	// maskCache holds masks resampled per (brush, diameter).
	maskCache = cache.New[maskKey, *internalimage.Mask](maskCacheEntries)
)

type maskKey struct {
	brush    uint64
	diameter int
}

// NewBrush creates a brush from an image. Coverage is taken from the alpha
// channel; fully opaque images use their luminance instead, so both
// "white on transparent" and "white on black" textures work.
func NewBrush(name string, img image.Image) (*Brush, error) {
	if img == nil {
		return nil, fmt.Errorf("inkpad: brush %q: nil image", name)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("inkpad: brush %q: %w", name, ErrInvalidDimensions)
	}

	if b.Dx() > maxBrushSource || b.Dy() > maxBrushSource {
		scale := float64(maxBrushSource) / float64(max(b.Dx(), b.Dy()))
		w := max(1, int(math.Round(float64(b.Dx())*scale)))
		h := max(1, int(math.Round(float64(b.Dy())*scale)))
		scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
		img, b = scaled, scaled.Bounds()
	}

	m, err := internalimage.NewMask(b.Dx(), b.Dy())
	if err != nil {
		return nil, fmt.Errorf("inkpad: brush %q: %w", name, err)
	}

	opaque := true
	for y := b.Min.Y; y < b.Max.Y && opaque; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				opaque = false
				break
			}
		}
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			if opaque {
				m.Set(x, y, color.GrayModel.Convert(c).(color.Gray).Y)
			} else {
				m.Set(x, y, color.AlphaModel.Convert(c).(color.Alpha).A)
			}
		}
	}

	return &Brush{id: brushIDs.Add(1), name: name, src: m}, nil
}

// NewRoundBrush creates a procedural round brush with the given diameter in
// texels. hardness in [0, 1) controls where the edge falloff starts.
func NewRoundBrush(name string, diameter int, hardness float64) *Brush {
	diameter = max(diameter, 1)
	hardness = clamp(hardness, 0, 0.999)
	m, _ := internalimage.NewMask(diameter, diameter)

	r := float64(diameter) / 2
	for y := 0; y < diameter; y++ {
		for x := 0; x < diameter; x++ {
			dx := (float64(x) + 0.5 - r) / r
			dy := (float64(y) + 0.5 - r) / r
			d := math.Hypot(dx, dy)
			t := clamp01((1 - d) / (1 - hardness))
			m.Set(x, y, uint8(math.Round(SmoothStep(0, 1, t)*255)))
		}
	}
	return &Brush{id: brushIDs.Add(1), name: name, src: m}
}

var defaultBrush = sync.OnceValue(func() *Brush {
	return NewRoundBrush("soft-round", 64, 0.5)
})

// DefaultBrush returns the shared soft round brush.
func DefaultBrush() *Brush {
	return defaultBrush()
}

// Name returns the brush name.
func (b *Brush) Name() string { return b.name }

// Bounds returns the source mask dimensions.
func (b *Brush) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.src.Width(), b.src.Height())
}

// CoverageAt returns the source mask coverage at texel (x, y).
func (b *Brush) CoverageAt(x, y int) uint8 {
	return b.src.At(x, y)
}

// maskFor returns the brush mask resampled to a square of the given pixel
// diameter. Results are cached.
func (b *Brush) maskFor(diameter int) *internalimage.Mask {
	d := min(max(diameter, 1), maxMaskDiameter)
	if d == b.src.Width() && d == b.src.Height() {
		return b.src
	}
	return maskCache.GetOrCreate(maskKey{brush: b.id, diameter: d}, func() *internalimage.Mask {
		return resampleMask(b.src, d)
	})
}

// resampleMask scales m to d x d with a Lanczos filter.
func resampleMask(m *internalimage.Mask, d int) *internalimage.Mask {
	gray := &image.Gray{
		Pix:    m.Data(),
		Stride: m.Width(),
		Rect:   image.Rect(0, 0, m.Width(), m.Height()),
	}
	scaled := imaging.Resize(gray, d, d, imaging.Lanczos)

	out, _ := internalimage.NewMask(d, d)
	for y := 0; y < d; y++ {
		row := scaled.Pix[y*scaled.Stride:]
		for x := 0; x < d; x++ {
			out.Set(x, y, row[x*4])
		}
	}
	return out
}
