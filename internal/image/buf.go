// Package image provides pixel buffer management for inkpad: pooled
// premultiplied RGBA8 buffers for render temporaries and undo snapshots,
// and single-channel masks for brush shapes.
package image

import (
	"errors"
	stdimage "image"
)

// ErrInvalidDimensions is returned when width or height is non-positive.
var ErrInvalidDimensions = errors.New("image: invalid dimensions")

// Buf is a premultiplied RGBA8 pixel buffer with a tight stride.
//
// Thread safety: Buf is safe for concurrent reads. Writes to disjoint rows
// may proceed concurrently; everything else requires external
// synchronization.
type Buf struct {
	data   []byte
	width  int
	height int
}

// NewBuf creates a zeroed buffer with the given dimensions.
func NewBuf(width, height int) (*Buf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Buf{
		data:   make([]byte, width*height*4),
		width:  width,
		height: height,
	}, nil
}

// Width returns the buffer width in pixels.
func (b *Buf) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buf) Height() int { return b.height }

// Stride returns the number of bytes per row.
func (b *Buf) Stride() int { return b.width * 4 }

// Data returns the raw pixel bytes.
func (b *Buf) Data() []byte { return b.data }

// Row returns the bytes of row y.
func (b *Buf) Row(y int) []byte {
	s := b.Stride()
	return b.data[y*s : (y+1)*s]
}

// Clear zeroes all pixels.
func (b *Buf) Clear() {
	clear(b.data)
}

// Clone returns a deep copy of the buffer.
func (b *Buf) Clone() *Buf {
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return &Buf{data: data, width: b.width, height: b.height}
}

// CopyRect copies rectangle r of src (stride srcStride) into b, placing
// r.Min at (dx, dy). The rectangle is clipped to both buffers.
func (b *Buf) CopyRect(dx, dy int, src []byte, srcStride int, r stdimage.Rectangle) {
	CopyRect(b.data, b.Stride(), b.width, b.height, dx, dy, src, srcStride, r)
}

// CopyRect copies rectangle r of src into dst at (dx, dy). dst has
// dimensions dw x dh; rows outside either buffer are skipped.
func CopyRect(dst []byte, dstStride, dw, dh, dx, dy int, src []byte, srcStride int, r stdimage.Rectangle) {
	if r.Empty() {
		return
	}
	srcH := len(src) / max(srcStride, 1)
	srcW := srcStride / 4

	// Clip against the source.
	if r.Min.X < 0 {
		dx -= r.Min.X
		r.Min.X = 0
	}
	if r.Min.Y < 0 {
		dy -= r.Min.Y
		r.Min.Y = 0
	}
	r.Max.X = min(r.Max.X, srcW)
	r.Max.Y = min(r.Max.Y, srcH)

	// Clip against the destination.
	if dx < 0 {
		r.Min.X -= dx
		dx = 0
	}
	if dy < 0 {
		r.Min.Y -= dy
		dy = 0
	}
	w := min(r.Dx(), dw-dx)
	h := min(r.Dy(), dh-dy)
	if w <= 0 || h <= 0 {
		return
	}

	n := w * 4
	for y := 0; y < h; y++ {
		so := (r.Min.Y+y)*srcStride + r.Min.X*4
		do := (dy+y)*dstStride + dx*4
		copy(dst[do:do+n], src[so:so+n])
	}
}
