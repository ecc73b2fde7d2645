// Package export writes painted images to PNG and PDF files.
//
// File writes are atomic: data goes to a temporary file in the target
// directory that is renamed over the destination only after encoding
// succeeded, so a failed export never leaves a truncated file behind.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
)

var (
	// ErrEmptyImage is returned for nil or zero-sized images.
	ErrEmptyImage = errors.New("export: empty image")

	// ErrEncode wraps image or document encoding failures.
	ErrEncode = errors.New("export: encode failed")

	// ErrWrite wraps file system failures.
	ErrWrite = errors.New("export: write failed")
)

// DefaultDPI maps image pixels to PDF points when PDFOptions.DPI is zero.
const DefaultDPI = 96

// PDFOptions configures SavePDF.
type PDFOptions struct {
	Title  string
	Author string

	// DPI sets the physical page size: one pixel is 72/DPI points.
	DPI float64
}

func checkImage(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return ErrEmptyImage
	}
	return nil
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := checkImage(img); err != nil {
		return err
	}
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("%w: png: %w", ErrEncode, err)
	}
	return nil
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return err
	}
	return writeAtomic(path, buf.Bytes())
}

// EncodePDF writes a single-page PDF to w with img filling the page.
func EncodePDF(w io.Writer, img image.Image, opts PDFOptions) error {
	if err := checkImage(img); err != nil {
		return err
	}
	var png bytes.Buffer
	if err := EncodePNG(&png, img); err != nil {
		return err
	}

	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	b := img.Bounds()
	pw, ph := float64(b.Dx())*72/dpi, float64(b.Dy())*72/dpi

	// Portrait with an explicit size: "L" would swap width and height.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	pdf.SetCreator("inkpad", true)
	pdf.AddPage()

	const name = "canvas"
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &png)
	pdf.ImageOptions(name, 0, 0, pw, ph, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: pdf: %w", ErrEncode, err)
	}
	return nil
}

// SavePDF writes img to path as a single-page PDF.
func SavePDF(path string, img image.Image, opts PDFOptions) error {
	var buf bytes.Buffer
	if err := EncodePDF(&buf, img, opts); err != nil {
		return err
	}
	return writeAtomic(path, buf.Bytes())
}

// writeAtomic writes data to a temporary sibling of path and renames it.
func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmp := f.Name()
	fail := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if _, err := f.Write(data); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
