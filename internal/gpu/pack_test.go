package gpu

import (
	"encoding/binary"
	"image"
	"math"
	"testing"

	"github.com/gogpu/inkpad"
)

func TestLayoutSizes(t *testing.T) {
	// Must match the WGSL structs in shaders/stamp.wgsl.
	if stampSize != 64 {
		t.Errorf("gpuStamp size = %d, want 64", stampSize)
	}
	if paramsSize != 32 {
		t.Errorf("gpuParams size = %d, want 32", paramsSize)
	}
}

func testBatch(t *testing.T) ([]inkpad.KernelStamp, []inkpad.KernelMask) {
	t.Helper()
	small := inkpad.NewRoundBrush("small", 3, 0.5)
	stamps := []inkpad.Stamp{
		{Pos: inkpad.V2(0.25, 0.25), Size: 0.1, Color: inkpad.RGB(1, 0, 0)},
		{Pos: inkpad.V2(0.75, 0.75), Size: 0.05, Rotation: math.Pi / 2, Color: inkpad.White, Brush: small},
		{Pos: inkpad.V2(0.5, 0.5), Size: 0.1, Color: inkpad.RGB(0, 0, 1).WithAlpha(0.5)},
	}
	ks, masks := inkpad.ResolveStamps(stamps, nil, 100, 100)
	if len(ks) != 3 || len(masks) != 2 {
		t.Fatalf("resolved %d stamps, %d masks; want 3, 2", len(ks), len(masks))
	}
	return ks, masks
}

func TestPackMasks(t *testing.T) {
	_, masks := testBatch(t)
	buf, offsets := packMasks(masks)
	if len(buf)%4 != 0 {
		t.Errorf("mask buffer length %d is not word aligned", len(buf))
	}
	for i, m := range masks {
		got := buf[offsets[i] : int(offsets[i])+len(m.Data())]
		if string(got) != string(m.Data()) {
			t.Errorf("mask %d not found at offset %d", i, offsets[i])
		}
	}

	empty, off := packMasks(nil)
	if len(empty) != 4 || len(off) != 0 {
		t.Errorf("packMasks(nil) = %d bytes, %d offsets; want 4, 0", len(empty), len(off))
	}
}

func TestPackStamps(t *testing.T) {
	ks, masks := testBatch(t)
	_, offsets := packMasks(masks)
	b := packStamps(ks, masks, offsets)
	if len(b) != len(ks)*stampSize {
		t.Fatalf("len = %d, want %d", len(b), len(ks)*stampSize)
	}

	le := binary.LittleEndian
	for i, s := range ks {
		rec := b[i*stampSize:]
		if got := math.Float32frombits(le.Uint32(rec[0:])); got != float32(s.CX) {
			t.Errorf("stamp %d cx = %v, want %v", i, got, s.CX)
		}
		if got := math.Float32frombits(le.Uint32(rec[8:])); got != float32(s.Radius) {
			t.Errorf("stamp %d radius = %v, want %v", i, got, s.Radius)
		}
		if got := le.Uint32(rec[20:]); got != packRGBA(s.Color) {
			t.Errorf("stamp %d color = %#x", i, got)
		}
		if got := le.Uint32(rec[24:]); got != offsets[s.Mask] {
			t.Errorf("stamp %d mask offset = %d, want %d", i, got, offsets[s.Mask])
		}
		if got := int32(le.Uint32(rec[36:])); int(got) != s.Bounds.Min.X {
			t.Errorf("stamp %d min_x = %d, want %d", i, got, s.Bounds.Min.X)
		}
		if got := int32(le.Uint32(rec[48:])); int(got) != s.Bounds.Max.Y {
			t.Errorf("stamp %d max_y = %d, want %d", i, got, s.Bounds.Max.Y)
		}
	}
}

func TestMakeParams(t *testing.T) {
	b := makeParams(image.Rect(-2, 5, 30, 25), 7)
	if len(b) != paramsSize {
		t.Fatalf("len = %d, want %d", len(b), paramsSize)
	}
	le := binary.LittleEndian
	want := []uint32{uint32(0xFFFFFFFE), 5, 32, 20, 7}
	for i, w := range want {
		if got := le.Uint32(b[i*4:]); got != w {
			t.Errorf("word %d = %d, want %d", i, got, w)
		}
	}
}

func TestVisibleStamps(t *testing.T) {
	ks, _ := testBatch(t)
	tests := []struct {
		name string
		r    image.Rectangle
		want []uint32
	}{
		{"all", image.Rect(0, 0, 100, 100), []uint32{0, 1, 2}},
		{"top left", image.Rect(0, 0, 20, 20), []uint32{0}},
		{"bottom right", image.Rect(75, 75, 100, 100), []uint32{1}},
		{"none", image.Rect(0, 90, 5, 100), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := visibleStamps(ks, tt.r)
			if len(got) != len(tt.want) {
				t.Fatalf("visibleStamps = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("visibleStamps = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestPackPixels(t *testing.T) {
	src := []uint8{1, 2, 3, 4, 250, 251, 252, 253}
	packed := packPixels(src, 2)
	if got := binary.LittleEndian.Uint32(packed); got != 0x04030201 {
		t.Errorf("first word = %#x, want 0x04030201", got)
	}
	dst := make([]uint8, len(src))
	unpackPixels(packed, dst, 2)
	if string(dst) != string(src) {
		t.Errorf("unpackPixels = %v, want %v", dst, src)
	}
}

func TestClampInt32(t *testing.T) {
	if clampInt32(math.MaxInt32+10) != math.MaxInt32 {
		t.Error("high value not clamped")
	}
	if clampInt32(math.MinInt32-10) != math.MinInt32 {
		t.Error("low value not clamped")
	}
	if clampInt32(-3) != -3 {
		t.Error("in-range value changed")
	}
}
