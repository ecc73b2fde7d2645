//go:build !nogpu

package gpu

import (
	"strings"
	"testing"
)

func TestStampShader_Layout(t *testing.T) {
	for _, want := range []string{
		"@binding(3) var<storage, read> src_pixels",
		"@binding(4) var<storage, read_write> dst_pixels",
		"i < params.stamp_count",
	} {
		if !strings.Contains(stampShaderSource, want) {
			t.Errorf("stamp shader lacks %q", want)
		}
	}
	if strings.Contains(stampShaderSource, "stamp_index") {
		t.Error("stamp shader still selects a single stamp per dispatch")
	}
}

func TestStampShader_Compiles(t *testing.T) {
	code, err := compileSPIRV(stampShaderSource)
	if err != nil {
		if strings.Contains(err.Error(), "not yet implemented") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("compile stamp shader: %v", err)
	}
	if len(code) == 0 {
		t.Fatal("SPIR-V output is empty")
	}
	if code[0] != 0x07230203 {
		t.Errorf("SPIR-V magic = %#x, want 0x07230203", code[0])
	}
}
