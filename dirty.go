package inkpad

import (
	"image"
	"math"
)

// DirtyRegion is the normalized bounding box of everything queued since
// the last logical flush. Once Has reports true, Min <= Max componentwise.
type DirtyRegion struct {
	min, max Vec2
	has      bool
}

// Expand grows the region to include the box [lo, hi]. The corners may be
// given in any order.
func (d *DirtyRegion) Expand(lo, hi Vec2) {
	lo, hi = lo.Min(hi), lo.Max(hi)
	if !d.has {
		d.min, d.max, d.has = lo, hi, true
		return
	}
	d.min = d.min.Min(lo)
	d.max = d.max.Max(hi)
}

// ExpandStamp grows the region to include the stamp's footprint.
func (d *DirtyRegion) ExpandStamp(s Stamp, aspect float64) {
	d.Expand(s.Footprint(aspect))
}

// Has reports whether anything has been added since the last Clear.
func (d DirtyRegion) Has() bool { return d.has }

// Bounds returns the region corners; ok is false when the region is empty.
func (d DirtyRegion) Bounds() (lo, hi Vec2, ok bool) {
	return d.min, d.max, d.has
}

// Clear resets the region to the empty state.
func (d *DirtyRegion) Clear() {
	*d = DirtyRegion{}
}

// PixelRect converts the region to a pixel rectangle on a w x h canvas,
// grown by pad pixels on every side and clamped to the canvas. The result
// is always at least 1x1 and inside the canvas. An empty region maps to
// the whole canvas.
func (d DirtyRegion) PixelRect(w, h, pad int) image.Rectangle {
	if !d.has {
		return image.Rect(0, 0, w, h)
	}
	fw, fh := float64(w), float64(h)
	x0 := clampPixel(math.Floor(d.min.X*fw)-float64(pad), 0, w-1)
	y0 := clampPixel(math.Floor(d.min.Y*fh)-float64(pad), 0, h-1)
	x1 := clampPixel(math.Ceil(d.max.X*fw)+float64(pad), x0+1, w)
	y1 := clampPixel(math.Ceil(d.max.Y*fh)+float64(pad), y0+1, h)
	return image.Rect(x0, y0, x1, y1)
}

// clampPixel converts v to an int clamped to [lo, hi]. NaN maps to lo.
func clampPixel(v float64, lo, hi int) int {
	if !(v >= float64(lo)) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}

// regionPad is the pixel padding around a dirty rectangle for a brush of
// the given normalized size: twice the brush radius in pixels.
func regionPad(size float64, canvasWidth int) int {
	return int(math.Round(math.Abs(size) * float64(canvasWidth) * 2))
}
