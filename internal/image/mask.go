package image

import "math"

// Mask is a single-channel 8-bit coverage map, used for brush shapes.
type Mask struct {
	data   []uint8
	width  int
	height int
}

// NewMask creates a zeroed mask.
func NewMask(width, height int) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Mask{data: make([]uint8, width*height), width: width, height: height}, nil
}

// Width returns the mask width.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height.
func (m *Mask) Height() int { return m.height }

// Data returns the raw coverage values, row-major.
func (m *Mask) Data() []uint8 { return m.data }

// Set stores the coverage at (x, y). Out-of-bounds writes are ignored.
func (m *Mask) Set(x, y int, v uint8) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.data[y*m.width+x] = v
}

// At returns the coverage at (x, y), or 0 outside the mask.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0
	}
	return m.data[y*m.width+x]
}

// Sample samples the mask bilinearly at normalized coordinates (u, v) in
// [0,1]. Coordinates outside [0,1] return 0 so stamps never smear their
// edges.
func (m *Mask) Sample(u, v float64) uint8 {
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return 0
	}
	fx := u*float64(m.width) - 0.5
	fy := v*float64(m.height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := clampInt(x0+1, 0, m.width-1)
	y1 := clampInt(y0+1, 0, m.height-1)
	x0 = clampInt(x0, 0, m.width-1)
	y0 = clampInt(y0, 0, m.height-1)

	v00 := float64(m.data[y0*m.width+x0])
	v10 := float64(m.data[y0*m.width+x1])
	v01 := float64(m.data[y1*m.width+x0])
	v11 := float64(m.data[y1*m.width+x1])

	top := v00 + (v10-v00)*tx
	bottom := v01 + (v11-v01)*tx
	return uint8(math.Round(top + (bottom-top)*ty))
}

func clampInt(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
