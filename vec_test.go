package inkpad

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestVec2_Dist(t *testing.T) {
	if got := V2(0, 0).Dist(V2(3, 4)); math.Abs(got-5) > epsilon {
		t.Errorf("Dist = %v, want 5", got)
	}
	if got := V2(3, 4).Len(); math.Abs(got-5) > epsilon {
		t.Errorf("Len = %v, want 5", got)
	}
}

func TestVec2_Lerp(t *testing.T) {
	a, b := V2(0, 10), V2(10, 20)
	tests := []struct {
		t    float64
		want Vec2
	}{
		{0, a},
		{1, b},
		{0.5, V2(5, 15)},
	}
	for _, tt := range tests {
		got := a.Lerp(b, tt.t)
		if math.Abs(got.X-tt.want.X) > epsilon || math.Abs(got.Y-tt.want.Y) > epsilon {
			t.Errorf("Lerp(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestVec2_MinMax(t *testing.T) {
	a, b := V2(1, 5), V2(3, 2)
	if got := a.Min(b); got != V2(1, 2) {
		t.Errorf("Min = %v", got)
	}
	if got := a.Max(b); got != V2(3, 5) {
		t.Errorf("Max = %v", got)
	}
	if got := a.Add(b).Sub(b); got != a {
		t.Errorf("Add/Sub = %v", got)
	}
	if got := a.Mul(2); got != V2(2, 10) {
		t.Errorf("Mul = %v", got)
	}
}

func TestSmoothStep(t *testing.T) {
	tests := []struct {
		name    string
		a, b, t float64
		want    float64
	}{
		{"start", 1, 3, 0, 1},
		{"end", 1, 3, 1, 3},
		{"mid", 1, 3, 0.5, 2},
		{"clamped low", 1, 3, -1, 1},
		{"clamped high", 1, 3, 2, 3},
		{"quarter", 0, 1, 0.25, 0.15625},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SmoothStep(tt.a, tt.b, tt.t); math.Abs(got-tt.want) > epsilon {
				t.Errorf("SmoothStep(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.t, got, tt.want)
			}
		})
	}
}

func TestInverseLerp(t *testing.T) {
	tests := []struct {
		name    string
		a, b, v float64
		want    float64
	}{
		{"inside", 0, 10, 5, 0.5},
		{"below", 0, 10, -5, 0},
		{"above", 0, 10, 50, 1},
		{"degenerate", 2, 2, 7, 0},
		{"reversed", 10, 0, 2.5, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inverseLerp(tt.a, tt.b, tt.v); math.Abs(got-tt.want) > epsilon {
				t.Errorf("inverseLerp = %v, want %v", got, tt.want)
			}
		})
	}
}
