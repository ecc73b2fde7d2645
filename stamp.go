package inkpad

import "math"

// DefaultBatchCapacity is the number of stamps uploaded per render pass.
const DefaultBatchCapacity = 128

// Stamp is one placed brush mark. Pos and Size are in normalized surface
// units; Size is the stamp radius as a fraction of the canvas width, so a
// stamp is round in pixels regardless of aspect ratio. Rotation is in
// radians.
type Stamp struct {
	Pos      Vec2
	Size     float64
	Rotation float64
	Color    RGBA

	// Brush overrides the compositor's current brush for this stamp.
	// Nil means the current brush.
	Brush *Brush
}

// Footprint returns the normalized bounding box of the stamp on a canvas
// with the given aspect ratio (width / height).
func (s Stamp) Footprint(aspect float64) (lo, hi Vec2) {
	r := math.Abs(s.Size)
	ry := r * aspect
	return Vec2{X: s.Pos.X - r, Y: s.Pos.Y - ry}, Vec2{X: s.Pos.X + r, Y: s.Pos.Y + ry}
}

// StampBatch is a fixed-capacity FIFO of pending stamps. Later stamps
// render on top of earlier ones.
type StampBatch struct {
	stamps []Stamp
}

// NewStampBatch creates an empty batch. A non-positive capacity selects
// DefaultBatchCapacity.
func NewStampBatch(capacity int) *StampBatch {
	if capacity <= 0 {
		capacity = DefaultBatchCapacity
	}
	return &StampBatch{stamps: make([]Stamp, 0, capacity)}
}

// Push appends s. It returns false, leaving the batch unchanged, when the
// batch is full.
func (b *StampBatch) Push(s Stamp) bool {
	if len(b.stamps) == cap(b.stamps) {
		return false
	}
	b.stamps = append(b.stamps, s)
	return true
}

// Len returns the number of queued stamps.
func (b *StampBatch) Len() int { return len(b.stamps) }

// Cap returns the batch capacity.
func (b *StampBatch) Cap() int { return cap(b.stamps) }

// Full reports whether another Push would fail.
func (b *StampBatch) Full() bool { return len(b.stamps) == cap(b.stamps) }

// Stamps returns the queued stamps in insertion order. The slice is only
// valid until the next Push or Reset.
func (b *StampBatch) Stamps() []Stamp { return b.stamps }

// Reset discards all queued stamps, keeping the capacity.
func (b *StampBatch) Reset() {
	clear(b.stamps)
	b.stamps = b.stamps[:0]
}
