package blend

import "testing"

func TestMulDiv255(t *testing.T) {
	tests := []struct {
		a, b, want byte
	}{
		{0, 0, 0},
		{255, 255, 255},
		{255, 0, 0},
		{128, 255, 128},
		{255, 128, 128},
		{128, 128, 64},
	}
	for _, tt := range tests {
		if got := MulDiv255(tt.a, tt.b); got != tt.want {
			t.Errorf("MulDiv255(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMulDiv255_MatchesDivision(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			want := byte((a*b + 127) / 255)
			if got := MulDiv255(byte(a), byte(b)); got != want {
				t.Fatalf("MulDiv255(%d, %d) = %d, want %d", a, b, got, want)
			}
		}
	}
}

func TestBlendSourceOver(t *testing.T) {
	tests := []struct {
		name string
		src  [4]byte
		dst  [4]byte
		want [4]byte
	}{
		{"opaque", [4]byte{255, 0, 0, 255}, [4]byte{0, 0, 255, 255}, [4]byte{255, 0, 0, 255}},
		{"transparent", [4]byte{0, 0, 0, 0}, [4]byte{0, 0, 255, 255}, [4]byte{0, 0, 255, 255}},
		{"half", [4]byte{128, 0, 0, 128}, [4]byte{0, 0, 255, 255}, [4]byte{128, 0, 127, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := blendSourceOver(tt.src[0], tt.src[1], tt.src[2], tt.src[3], tt.dst[0], tt.dst[1], tt.dst[2], tt.dst[3])
			if got := [4]byte{r, g, b, a}; got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStampOver(t *testing.T) {
	t.Run("zero coverage leaves pixel", func(t *testing.T) {
		px := []byte{1, 2, 3, 4}
		StampOver(px, [4]byte{255, 255, 255, 255}, 0)
		if px[0] != 1 || px[3] != 4 {
			t.Errorf("pixel changed: %v", px)
		}
	})

	t.Run("full coverage opaque replaces", func(t *testing.T) {
		px := []byte{0, 0, 0, 255}
		StampOver(px, [4]byte{255, 255, 255, 255}, 255)
		if px[0] != 255 || px[3] != 255 {
			t.Errorf("pixel = %v, want white", px)
		}
	})

	t.Run("half coverage blends", func(t *testing.T) {
		px := []byte{0, 0, 0, 255}
		StampOver(px, [4]byte{255, 255, 255, 255}, 128)
		if px[0] != 128 || px[3] != 255 {
			t.Errorf("pixel = %v, want [128 128 128 255]", px)
		}
	})
}
