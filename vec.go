package inkpad

import "math"

// Vec2 is a 2D coordinate. Stroke positions use normalized surface
// coordinates where the canvas spans [0,1]x[0,1]; values outside that
// range are legal and simply fall off the canvas.
type Vec2 struct {
	X, Y float64
}

// V2 is a convenience function to create a Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Len returns the length of the vector.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the Euclidean distance between v and w.
func (v Vec2) Dist(w Vec2) float64 {
	return math.Hypot(w.X-v.X, w.Y-v.Y)
}

// Lerp performs linear interpolation between v and w.
// t=0 returns v, t=1 returns w.
func (v Vec2) Lerp(w Vec2, t float64) Vec2 {
	return Vec2{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
	}
}

// Min returns the componentwise minimum of v and w.
func (v Vec2) Min(w Vec2) Vec2 {
	return Vec2{X: math.Min(v.X, w.X), Y: math.Min(v.Y, w.Y)}
}

// Max returns the componentwise maximum of v and w.
func (v Vec2) Max(w Vec2) Vec2 {
	return Vec2{X: math.Max(v.X, w.X), Y: math.Max(v.Y, w.Y)}
}

// clamp restricts x to [lo, hi].
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// clamp01 restricts x to [0, 1].
func clamp01(x float64) float64 {
	return clamp(x, 0, 1)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// inverseLerp returns where v lies between a and b, clamped to [0, 1].
// A degenerate range returns 0.
func inverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return clamp01((v - a) / (b - a))
}

// SmoothStep interpolates between a and b with a cubic Hermite ease,
// t clamped to [0, 1].
func SmoothStep(a, b, t float64) float64 {
	t = clamp01(t)
	t = t * t * (3 - 2*t)
	return a + (b-a)*t
}
