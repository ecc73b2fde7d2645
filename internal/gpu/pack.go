package gpu

import (
	"encoding/binary"
	"image"
	"math"
	"unsafe"

	"github.com/gogpu/inkpad"
)

// gpuStamp mirrors the Stamp struct in shaders/stamp.wgsl (std430, 64 bytes).
type gpuStamp struct {
	CX, CY, Radius, Cos, Sin float32
	Color                    uint32 // premultiplied RGBA8, R in the low byte
	MaskOffset               uint32 // byte offset into the mask buffer
	MaskW, MaskH             uint32
	MinX, MinY, MaxX, MaxY   int32
	_                        [3]uint32
}

// gpuParams mirrors the Params uniform in shaders/stamp.wgsl (32 bytes).
type gpuParams struct {
	OriginX, OriginY int32
	Width, Height    uint32
	StampCount       uint32
	_                [3]uint32
}

const (
	stampSize  = int(unsafe.Sizeof(gpuStamp{}))
	paramsSize = int(unsafe.Sizeof(gpuParams{}))
)

// visibleStamps returns the indices of stamps whose bounds overlap r, in
// batch order. Stamps that miss the region are not uploaded.
func visibleStamps(stamps []inkpad.KernelStamp, r image.Rectangle) []uint32 {
	var out []uint32
	for i := range stamps {
		if stamps[i].Bounds.Overlaps(r) {
			out = append(out, uint32(i)) //nolint:gosec // batch sizes fit uint32
		}
	}
	return out
}

// packMasks concatenates mask texels into a word-aligned buffer and returns
// the byte offset of each mask.
func packMasks(masks []inkpad.KernelMask) ([]byte, []uint32) {
	offsets := make([]uint32, len(masks))
	var buf []byte
	for i, m := range masks {
		offsets[i] = uint32(len(buf)) //nolint:gosec // mask buffers stay far below 4 GiB
		buf = append(buf, m.Data()...)
	}
	// Storage buffers are read as u32 words and may not be empty.
	for len(buf) == 0 || len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf, offsets
}

// packStamps serializes stamps in gpuStamp layout.
func packStamps(stamps []inkpad.KernelStamp, masks []inkpad.KernelMask, offsets []uint32) []byte {
	out := make([]byte, 0, stampSize*len(stamps))
	for i := range stamps {
		s := &stamps[i]
		m := masks[s.Mask]
		g := gpuStamp{
			CX:         float32(s.CX),
			CY:         float32(s.CY),
			Radius:     float32(s.Radius),
			Cos:        float32(s.Cos),
			Sin:        float32(s.Sin),
			Color:      packRGBA(s.Color),
			MaskOffset: offsets[s.Mask],
			MaskW:      uint32(m.Width()),  //nolint:gosec // mask sizes are small
			MaskH:      uint32(m.Height()), //nolint:gosec // mask sizes are small
			MinX:       clampInt32(s.Bounds.Min.X),
			MinY:       clampInt32(s.Bounds.Min.Y),
			MaxX:       clampInt32(s.Bounds.Max.X),
			MaxY:       clampInt32(s.Bounds.Max.Y),
		}
		out = append(out, structToBytes(unsafe.Pointer(&g), unsafe.Sizeof(g))...) //nolint:gosec // safe struct access
	}
	return out
}

// makeParams returns the uniform block for a dispatch of stampCount stamps
// over r.
func makeParams(r image.Rectangle, stampCount uint32) []byte {
	p := gpuParams{
		OriginX:    clampInt32(r.Min.X),
		OriginY:    clampInt32(r.Min.Y),
		Width:      uint32(r.Dx()), //nolint:gosec // region sizes are positive
		Height:     uint32(r.Dy()), //nolint:gosec // region sizes are positive
		StampCount: stampCount,
	}
	b := structToBytes(unsafe.Pointer(&p), unsafe.Sizeof(p)) //nolint:gosec // safe struct access
	return append([]byte(nil), b...)
}

func packRGBA(c [4]byte) uint32 {
	return uint32(c[0]) | uint32(c[1])<<8 | uint32(c[2])<<16 | uint32(c[3])<<24
}

func clampInt32(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // safe struct serialization
}

// packPixels converts tightly packed RGBA8 bytes to little-endian u32 words.
func packPixels(data []uint8, pixelCount int) []byte {
	out := make([]byte, pixelCount*4)
	for i := 0; i < pixelCount; i++ {
		si := i * 4
		binary.LittleEndian.PutUint32(out[si:], packRGBA([4]byte{data[si], data[si+1], data[si+2], data[si+3]}))
	}
	return out
}

// unpackPixels is the inverse of packPixels.
func unpackPixels(packed []byte, dst []uint8, pixelCount int) {
	for i := 0; i < pixelCount; i++ {
		val := binary.LittleEndian.Uint32(packed[i*4:])
		di := i * 4
		dst[di+0] = uint8(val & 0xFF)         //nolint:gosec // masked to 8 bits
		dst[di+1] = uint8((val >> 8) & 0xFF)  //nolint:gosec // masked to 8 bits
		dst[di+2] = uint8((val >> 16) & 0xFF) //nolint:gosec // masked to 8 bits
		dst[di+3] = uint8((val >> 24) & 0xFF) //nolint:gosec // masked to 8 bits
	}
}
