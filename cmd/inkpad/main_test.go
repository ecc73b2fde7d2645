package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/inkpad/config"
	"github.com/gogpu/inkpad/recording"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "inkpad.toml")
	text := "[canvas]\nsize = \"1024x1024\"\n\n[undo]\nchunk_seconds = 1.0\n"
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")
	pdf := filepath.Join(dir, "out.pdf")
	saved := filepath.Join(dir, "saved.toml")

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-config", writeConfig(t, dir),
		"-preset", "line",
		"-frames", "120",
		"-undo", "1",
		"-compute",
		"-metrics",
		"-out", out, "-pdf", pdf, "-save-config", saved,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	for _, f := range []string{out, pdf, saved} {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("missing output %s: %v", filepath.Base(f), err)
		}
	}
	got := stdout.String()
	for _, want := range []string{"undid 1 of 1 steps", "1024x1024 line path=Compute", "inkpad_stamps_queued_total"} {
		if !strings.Contains(got, want) {
			t.Errorf("stdout lacks %q:\n%s", want, got)
		}
	}

	c, err := config.Load(saved)
	if err != nil {
		t.Fatal(err)
	}
	if c.Brush.Mode != "line" || c.Canvas.Size != "1024x1024" {
		t.Errorf("saved settings = %+v", c)
	}
}

func TestRun_RecordScript(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	session := filepath.Join(dir, "session.toml")

	var stdout bytes.Buffer
	if err := run([]string{"-config", cfg, "-frames", "60", "-undo", "1", "-record", session, "-out", filepath.Join(dir, "a.png")}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	r, err := recording.Load(session)
	if err != nil {
		t.Fatal(err)
	}
	// 60 frames, the release and the undo.
	if r.Len() != 62 || r.Strokes() != 1 {
		t.Errorf("recorded %d commands in %d strokes", r.Len(), r.Strokes())
	}

	stdout.Reset()
	if err := run([]string{"-config", cfg, "-script", session, "-out", filepath.Join(dir, "b.png")}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(stdout.String(), "undid") {
		t.Errorf("scripted undo should not be reported: %s", stdout.String())
	}

	err = run([]string{"-script", filepath.Join(dir, "missing.toml"), "-out", filepath.Join(dir, "c.png")}, &bytes.Buffer{}, &bytes.Buffer{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing script: %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown mode", []string{"-mode", "spray"}, config.ErrUnknownMode},
		{"unknown preset", []string{"-preset", "crayon"}, config.ErrUnknownPreset},
		{"help", []string{"-h"}, flag.ErrHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "-out", filepath.Join(dir, "x.png"))
			err := run(args, &bytes.Buffer{}, &bytes.Buffer{})
			if !errors.Is(err, tt.want) {
				t.Errorf("run = %v, want %v", err, tt.want)
			}
		})
	}

	if err := run([]string{"-frames", "0"}, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Error("-frames 0 should fail")
	}
}

func TestFigureEight(t *testing.T) {
	path := figureEight(100)
	if len(path) != 100 {
		t.Fatalf("len = %d", len(path))
	}
	misses := 0
	for _, s := range path {
		if s.pos.X < 0 || s.pos.X > 1 || s.pos.Y < 0 || s.pos.Y > 1 {
			t.Fatalf("sample %+v leaves the unit square", s.pos)
		}
		if !s.hit {
			misses++
		}
	}
	if misses != 5 {
		t.Errorf("misses = %d, want 5", misses)
	}
	if !path[0].hit {
		t.Error("first sample should hit")
	}
}
