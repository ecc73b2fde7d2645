package inkpad

import (
	"image"
	"math"

	"github.com/gogpu/inkpad/internal/blend"
	internalimage "github.com/gogpu/inkpad/internal/image"
)

// SourceView is a read-only window onto premultiplied RGBA8 pixels,
// addressed in canvas coordinates. A render pass reads only from its
// SourceView and writes only to its TargetView; the two are never backed
// by the same pixels within one pass.
type SourceView struct {
	pix    []byte
	stride int
	rect   image.Rectangle // canvas-space area backed by pix
}

// TargetView is a write-only window onto premultiplied RGBA8 pixels,
// addressed in canvas coordinates.
type TargetView struct {
	pix    []byte
	stride int
	rect   image.Rectangle
}

func newSourceView(p *Pixmap, origin image.Point) SourceView {
	return SourceView{pix: p.data, stride: p.Stride(), rect: image.Rectangle{Min: origin, Max: origin.Add(image.Pt(p.width, p.height))}}
}

func newTargetView(p *Pixmap, origin image.Point) TargetView {
	return TargetView{pix: p.data, stride: p.Stride(), rect: image.Rectangle{Min: origin, Max: origin.Add(image.Pt(p.width, p.height))}}
}

// Bounds returns the canvas-space area the view covers.
func (v SourceView) Bounds() image.Rectangle { return v.rect }

// At returns the pixel at canvas coordinate (x, y), or zero outside the view.
func (v SourceView) At(x, y int) [4]byte {
	if !image.Pt(x, y).In(v.rect) {
		return [4]byte{}
	}
	i := (y-v.rect.Min.Y)*v.stride + (x-v.rect.Min.X)*4
	return [4]byte{v.pix[i], v.pix[i+1], v.pix[i+2], v.pix[i+3]}
}

// AppendRect appends the pixels of canvas rectangle r, row by row with
// stride r.Dx()*4, to dst. r must lie inside the view.
func (v SourceView) AppendRect(dst []byte, r image.Rectangle) []byte {
	r = r.Intersect(v.rect)
	n := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		o := (y-v.rect.Min.Y)*v.stride + (r.Min.X-v.rect.Min.X)*4
		dst = append(dst, v.pix[o:o+n]...)
	}
	return dst
}

// Bounds returns the canvas-space area the view covers.
func (v TargetView) Bounds() image.Rectangle { return v.rect }

// Set stores px at canvas coordinate (x, y). Writes outside the view are
// dropped.
func (v TargetView) Set(x, y int, px [4]byte) {
	if !image.Pt(x, y).In(v.rect) {
		return
	}
	i := (y-v.rect.Min.Y)*v.stride + (x-v.rect.Min.X)*4
	copy(v.pix[i:i+4], px[:])
}

// WriteRect stores tightly packed pixels (stride r.Dx()*4) into canvas
// rectangle r.
func (v TargetView) WriteRect(r image.Rectangle, src []byte) {
	internalimage.CopyRect(v.pix, v.stride, v.rect.Dx(), v.rect.Dy(),
		r.Min.X-v.rect.Min.X, r.Min.Y-v.rect.Min.Y,
		src, r.Dx()*4, image.Rect(0, 0, r.Dx(), r.Dy()))
}

// KernelMask is a brush coverage mask as seen by a stamp kernel.
type KernelMask struct {
	m *internalimage.Mask
}

// Width returns the mask width in texels.
func (k KernelMask) Width() int { return k.m.Width() }

// Height returns the mask height in texels.
func (k KernelMask) Height() int { return k.m.Height() }

// Data returns the coverage texels, row-major. Callers must not modify it.
func (k KernelMask) Data() []uint8 { return k.m.Data() }

// KernelStamp is a stamp resolved to canvas pixels.
type KernelStamp struct {
	// CX, CY is the center in pixels; Radius is half the stamp diameter.
	CX, CY, Radius float64
	// Cos and Sin of the stamp rotation.
	Cos, Sin float64
	// Color is premultiplied RGBA8.
	Color [4]byte
	// Mask indexes the job's mask list.
	Mask int
	// Bounds is the pixel bounding box of the rotated stamp.
	Bounds image.Rectangle
}

// ComputeJob is one batch dispatched to a StampAccelerator: composite
// every stamp, in order, onto every pixel of Rect, reading from Source
// and writing to Target.
type ComputeJob struct {
	Width, Height int
	Rect          image.Rectangle
	Source        SourceView
	Target        TargetView
	Stamps        []KernelStamp
	Masks         []KernelMask
}

// ResolveStamps converts stamps to kernel form for a w x h canvas, the
// way the compositor does before a compute dispatch. Stamps without a
// brush use fallback; invisible stamps are dropped.
func ResolveStamps(stamps []Stamp, fallback *Brush, w, h int) ([]KernelStamp, []KernelMask) {
	if fallback == nil {
		fallback = DefaultBrush()
	}
	return prepareStamps(stamps, fallback, w, h)
}

// prepareStamps resolves stamps against a w x h canvas. Stamps without a
// brush use fallback.
func prepareStamps(stamps []Stamp, fallback *Brush, w, h int) ([]KernelStamp, []KernelMask) {
	out := make([]KernelStamp, 0, len(stamps))
	var masks []KernelMask
	index := make(map[*internalimage.Mask]int)

	fw, fh := float64(w), float64(h)
	for _, s := range stamps {
		r := math.Abs(s.Size) * fw
		if r <= 0 || s.Color.A <= 0 {
			continue
		}
		b := s.Brush
		if b == nil {
			b = fallback
		}
		m := b.maskFor(int(math.Ceil(2 * r)))
		mi, ok := index[m]
		if !ok {
			mi = len(masks)
			index[m] = mi
			masks = append(masks, KernelMask{m: m})
		}

		sin, cos := math.Sincos(s.Rotation)
		cx, cy := s.Pos.X*fw, s.Pos.Y*fh
		e := r * (math.Abs(cos) + math.Abs(sin))
		bounds := image.Rect(
			int(math.Floor(cx-e)), int(math.Floor(cy-e)),
			int(math.Ceil(cx+e)), int(math.Ceil(cy+e)),
		)
		out = append(out, KernelStamp{
			CX:     cx,
			CY:     cy,
			Radius: r,
			Cos:    cos,
			Sin:    sin,
			Color:  s.Color.premul8(),
			Mask:   mi,
			Bounds: bounds,
		})
	}
	return out, masks
}

// RenderStamps is the reference stamp kernel. For each pixel of band it
// reads the source pixel, composites every stamp covering it in order,
// and writes the result to the target. Bands may run concurrently as
// long as they do not overlap.
func RenderStamps(dst TargetView, src SourceView, band image.Rectangle, stamps []KernelStamp, masks []KernelMask) {
	for y := band.Min.Y; y < band.Max.Y; y++ {
		py := float64(y) + 0.5
		for x := band.Min.X; x < band.Max.X; x++ {
			px := src.At(x, y)
			pt := image.Pt(x, y)
			for i := range stamps {
				s := &stamps[i]
				if !pt.In(s.Bounds) {
					continue
				}
				cov := s.coverage(float64(x)+0.5, py, masks[s.Mask])
				blend.StampOver(px[:], s.Color, cov)
			}
			dst.Set(x, y, px)
		}
	}
}

// coverage samples the stamp's mask at pixel center (px, py).
func (s *KernelStamp) coverage(px, py float64, m KernelMask) uint8 {
	dx, dy := px-s.CX, py-s.CY
	lx := s.Cos*dx + s.Sin*dy
	ly := -s.Sin*dx + s.Cos*dy
	d := 2 * s.Radius
	return m.m.Sample(lx/d+0.5, ly/d+0.5)
}
