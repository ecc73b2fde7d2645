// Command inkpad replays a pointer path through a painter and exports the
// canvas.
//
// The path is a generated figure-eight sampled at 60 frames per second,
// with a short stretch off the surface in the middle, or a session saved
// earlier with -record. Settings come from an optional TOML file; flags
// override it.
//
//	inkpad -preset dots -frames 240 -out dots.png -pdf dots.pdf
//	inkpad -script session.toml -out session.png
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/inkpad"
	"github.com/gogpu/inkpad/config"
	"github.com/gogpu/inkpad/export"
	"github.com/gogpu/inkpad/gpu"
	"github.com/gogpu/inkpad/metrics"
	"github.com/gogpu/inkpad/recording"
)

const frameDT = 1.0 / 60

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("inkpad: %v", err)
	}
}

type settings struct {
	configPath string
	savePath   string
	out        string
	pdf        string
	script     string
	record     string
	mode       string
	preset     string
	frames     int
	undo       int
	compute    bool
	useGPU     bool
	verbose    bool
	metrics    bool
}

func parseFlags(args []string, stderr io.Writer) (settings, error) {
	var s settings
	fs := flag.NewFlagSet("inkpad", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&s.configPath, "config", "", "TOML settings file")
	fs.StringVar(&s.savePath, "save-config", "", "write the session settings to this TOML file")
	fs.StringVar(&s.out, "out", "inkpad.png", "PNG output file")
	fs.StringVar(&s.pdf, "pdf", "", "optional PDF output file")
	fs.StringVar(&s.script, "script", "", "replay a recorded session instead of the figure-eight")
	fs.StringVar(&s.record, "record", "", "save the replayed session to this TOML file")
	fs.StringVar(&s.mode, "mode", "", "stroke mode: interval, distance, line or velocity")
	fs.StringVar(&s.preset, "preset", "", "brush preset")
	fs.IntVar(&s.frames, "frames", 180, "frames to replay")
	fs.IntVar(&s.undo, "undo", 0, "undo steps after replay")
	fs.BoolVar(&s.compute, "compute", false, "use the CPU compute path")
	fs.BoolVar(&s.useGPU, "gpu", false, "use the GPU compute path")
	fs.BoolVar(&s.verbose, "v", false, "debug logging to stderr")
	fs.BoolVar(&s.metrics, "metrics", false, "print metrics when done")
	if err := fs.Parse(args); err != nil {
		return s, err
	}
	if s.frames < 1 {
		return s, fmt.Errorf("-frames must be positive, got %d", s.frames)
	}
	return s, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	s, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if s.verbose {
		inkpad.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer inkpad.SetLogger(nil)
	}

	cfg := config.Default()
	if s.configPath != "" {
		if cfg, err = config.Load(s.configPath); err != nil {
			return err
		}
	}
	if s.preset != "" {
		cfg.Brush.Preset = s.preset
	}
	if s.mode != "" {
		cfg.Brush.Mode = s.mode
	}
	if s.compute || s.useGPU {
		cfg.Render.Compute = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	desc, err := cfg.Surface()
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	if s.metrics {
		col, err := metrics.NewCollector(reg)
		if err != nil {
			return err
		}
		opts = append(opts, inkpad.WithObserver(col))
	}
	switch {
	case s.useGPU:
		opts = append(opts, inkpad.WithAccelerator(gpu.New(nil)))
	case s.compute:
		opts = append(opts, inkpad.WithAccelerator(inkpad.NewParallelAccelerator(0)))
	}

	p, err := inkpad.New(desc, opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	rec := recording.NewRecorder(p)
	if s.script != "" {
		r, err := recording.Load(s.script)
		if err != nil {
			return err
		}
		if err := r.Playback(rec); err != nil {
			return err
		}
	} else {
		replay(rec, p.Width(), p.Height(), figureEight(s.frames))
	}
	if s.undo > 0 {
		n := rec.Undo(s.undo)
		fmt.Fprintf(stdout, "undid %d of %d steps\n", n, s.undo)
	}
	if s.record != "" {
		if err := recording.Save(s.record, rec.FinishRecording()); err != nil {
			return err
		}
	}
	p.Flush()

	img := p.Result()
	if err := export.SavePNG(s.out, img); err != nil {
		return err
	}
	if s.pdf != "" {
		if err := export.SavePDF(s.pdf, img, export.PDFOptions{Title: "inkpad"}); err != nil {
			return err
		}
	}
	if s.savePath != "" {
		if err := config.Save(s.savePath, config.Remember(cfg, p)); err != nil {
			return err
		}
	}

	st := p.Stats()
	fmt.Fprintf(stdout, "%dx%d %s path=%s stamps=%d batches=%d flushes=%d undo=%d masks=%d/%d -> %s\n",
		desc.Width, desc.Height, p.Mode(), st.Path, st.StampsQueued, st.Batches, st.Flushes, st.UndoDepth,
		st.MaskCacheHits, st.MaskCacheHits+st.MaskCacheMisses, s.out)
	if s.metrics {
		return metrics.WriteText(stdout, reg)
	}
	return nil
}

// sample is one frame of pointer input.
type sample struct {
	pos inkpad.Vec2
	hit bool
}

// figureEight samples a figure-eight over n frames. Frames between 45% and
// 50% of the way are off the surface.
func figureEight(n int) []sample {
	out := make([]sample, n)
	for i := range out {
		f := float64(i) / float64(n)
		t := 2 * math.Pi * f
		out[i] = sample{
			pos: inkpad.V2(0.5+0.35*math.Sin(t), 0.5+0.25*math.Sin(2*t)),
			hit: f < 0.45 || f >= 0.5,
		}
	}
	return out
}

// replay drives one stroke through t, one sample per frame, for a
// w x h surface.
func replay(t recording.Target, w, h int, path []sample) {
	fw, fh := float64(w), float64(h)
	input := func(s sample) inkpad.Input {
		return inkpad.Input{Pos: s.pos, Hit: s.hit, Screen: inkpad.V2(s.pos.X*fw, s.pos.Y*fh), DT: frameDT}
	}
	for i, s := range path {
		if i == 0 {
			t.BeginStroke(input(s))
			continue
		}
		t.UpdateStroke(input(s))
	}
	t.EndStroke()
}
