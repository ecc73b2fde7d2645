package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := range 20 {
		for x := range 40 {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 12), B: 128, A: 255})
		}
	}
	return img
}

func TestEncodePNG(t *testing.T) {
	src := testImage()
	var buf bytes.Buffer
	if err := EncodePNG(&buf, src); err != nil {
		t.Fatal(err)
	}
	got, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v", got.Bounds())
	}
	r1, g1, b1, a1 := got.At(7, 3).RGBA()
	r2, g2, b2, a2 := src.At(7, 3).RGBA()
	if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
		t.Error("pixel changed by the round trip")
	}
}

func TestEmptyImage(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		img  image.Image
	}{
		{"nil", nil},
		{"zero size", image.NewRGBA(image.Rect(0, 0, 0, 5))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := EncodePNG(&bytes.Buffer{}, tt.img); !errors.Is(err, ErrEmptyImage) {
				t.Errorf("EncodePNG = %v", err)
			}
			path := filepath.Join(dir, "out.png")
			if err := SavePNG(path, tt.img); !errors.Is(err, ErrEmptyImage) {
				t.Errorf("SavePNG = %v", err)
			}
			if err := SavePDF(filepath.Join(dir, "out.pdf"), tt.img, PDFOptions{}); !errors.Is(err, ErrEmptyImage) {
				t.Errorf("SavePDF = %v", err)
			}
			if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
				t.Error("failed export left a file")
			}
		})
	}
}

// failWriter rejects every write.
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncodePNG_WriterError(t *testing.T) {
	if err := EncodePNG(failWriter{}, testImage()); !errors.Is(err, ErrEncode) {
		t.Errorf("EncodePNG = %v, want ErrEncode", err)
	}
}

func TestSavePNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canvas.png")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SavePNG(path, testImage()); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("saved file is not a PNG: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestSavePNG_BadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "canvas.png")
	if err := SavePNG(path, testImage()); !errors.Is(err, ErrWrite) {
		t.Errorf("SavePNG = %v, want ErrWrite", err)
	}
}

func TestSavePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.pdf")
	if err := SavePDF(path, testImage(), PDFOptions{Title: "Canvas", Author: "inkpad tests", DPI: 72}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("missing PDF header: %q", data[:min(8, len(data))])
	}
	// 40x20 px at 72 DPI is a 40x20 pt page.
	if !strings.Contains(string(data), "/MediaBox [0 0 40.00 20.00]") {
		t.Error("page size does not match the image")
	}
}
