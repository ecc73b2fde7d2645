package inkpad

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	internalimage "github.com/gogpu/inkpad/internal/image"
)

// Pixmap is a premultiplied RGBA8 pixel buffer. The canvas, undo
// snapshots and region temporaries all share this layout, which is the
// same as image.RGBA.
type Pixmap struct {
	width  int
	height int
	data   []uint8 // premultiplied RGBA, 4 bytes per pixel
}

// NewPixmap creates a transparent pixmap with the given dimensions.
func NewPixmap(width, height int) (*Pixmap, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}, nil
}

// pixmapFromBuf wraps a pooled buffer without copying.
func pixmapFromBuf(b *internalimage.Buf) *Pixmap {
	return &Pixmap{width: b.Width(), height: b.Height(), data: b.Data()}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Stride returns the number of bytes per row.
func (p *Pixmap) Stride() int {
	return p.width * 4
}

// Data returns the raw premultiplied pixel data.
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// SetPixel stores a straight-alpha color at (x, y).
func (p *Pixmap) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	px := c.premul8()
	copy(p.data[i:i+4], px[:])
}

// GetPixel returns the straight-alpha color at (x, y).
func (p *Pixmap) GetPixel(x, y int) RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return Transparent
	}
	i := (y*p.width + x) * 4
	a := float64(p.data[i+3])
	if a == 0 {
		return Transparent
	}
	return RGBA{
		R: float64(p.data[i+0]) / a,
		G: float64(p.data[i+1]) / a,
		B: float64(p.data[i+2]) / a,
		A: a / 255,
	}
}

// Fill sets every pixel to c.
func (p *Pixmap) Fill(c RGBA) {
	px := c.premul8()
	if len(p.data) == 0 {
		return
	}
	copy(p.data[0:4], px[:])
	// Double the filled prefix until the buffer is full.
	for n := 4; n < len(p.data); n *= 2 {
		copy(p.data[n:], p.data[:n])
	}
}

// Clone returns a deep copy of the pixmap.
func (p *Pixmap) Clone() *Pixmap {
	data := make([]uint8, len(p.data))
	copy(data, p.data)
	return &Pixmap{width: p.width, height: p.height, data: data}
}

// CopyFrom replaces the contents of p with src. Both must have the same
// dimensions.
func (p *Pixmap) CopyFrom(src *Pixmap) error {
	if src == nil {
		return ErrNilCanvas
	}
	if src.width != p.width || src.height != p.height {
		return ErrInvalidDimensions
	}
	copy(p.data, src.data)
	return nil
}

// copyRectFrom copies rectangle r of src into p at the same coordinates.
func (p *Pixmap) copyRectFrom(src *Pixmap, r image.Rectangle) {
	internalimage.CopyRect(p.data, p.Stride(), p.width, p.height, r.Min.X, r.Min.Y, src.data, src.Stride(), r)
}

// ToImage returns a copy of the pixmap as an *image.RGBA.
func (p *Pixmap) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// FromImage creates a pixmap from any image.
func FromImage(img image.Image) (*Pixmap, error) {
	b := img.Bounds()
	pm, err := NewPixmap(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	draw.Draw(pm.rgbaView(), pm.Bounds(), img, b.Min, draw.Src)
	return pm, nil
}

// rgbaView returns an *image.RGBA sharing p's pixels.
func (p *Pixmap) rgbaView() *image.RGBA {
	return &image.RGBA{Pix: p.data, Stride: p.Stride(), Rect: image.Rect(0, 0, p.width, p.height)}
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return p.RGBAAt(x, y)
}

// RGBAAt returns the premultiplied color at (x, y).
func (p *Pixmap) RGBAAt(x, y int) color.RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return color.RGBA{}
	}
	i := (y*p.width + x) * 4
	return color.RGBA{R: p.data[i], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.RGBAModel
}

// readOnlyImage exposes a pixmap as an image.Image without its mutators.
type readOnlyImage struct{ p *Pixmap }

func (r readOnlyImage) At(x, y int) color.Color    { return r.p.RGBAAt(x, y) }
func (r readOnlyImage) Bounds() image.Rectangle    { return r.p.Bounds() }
func (r readOnlyImage) ColorModel() color.Model    { return color.RGBAModel }
func (r readOnlyImage) RGBAAt(x, y int) color.RGBA { return r.p.RGBAAt(x, y) }
