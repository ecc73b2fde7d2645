package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/inkpad"
)

// Remember copies the session state a user expects to find again next
// time (brush mode, size tier, brush color and canvas color) into c.
// The canvas size is kept when it matches one of CanvasSizes.
func Remember(c Config, p *inkpad.Painter) Config {
	c.Brush.Mode = p.Mode().String()
	c.Brush.Tier = p.SizeTier().String()
	c.Brush.Color = p.BrushColor().Hex()
	c.Canvas.Color = p.CanvasColor().Hex()
	size := fmt.Sprintf("%dx%d", p.Width(), p.Height())
	for _, s := range CanvasSizes {
		if s == size {
			c.Canvas.Size = s
		}
	}
	return c
}

// Encode returns c as TOML.
func Encode(c Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Save validates c and writes it to path. The file is written to a
// temporary sibling and renamed, so an interrupted save keeps the old
// settings.
func Save(path string, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := Encode(c)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("config: save: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("config: save: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("config: save: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("config: save: %w", err)
	}
	return nil
}
