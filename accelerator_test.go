package inkpad

import (
	"errors"
	"image"
	"log/slog"
	"testing"
)

// mockAccelerator is a StampAccelerator that runs the reference kernel on
// the calling goroutine and can be told to fail.
type mockAccelerator struct {
	name        string
	logger      *slog.Logger
	initErr     error
	dispatchErr error

	inits, dispatches int
	closed            bool
}

func (m *mockAccelerator) Name() string             { return m.name }
func (m *mockAccelerator) SetLogger(l *slog.Logger) { m.logger = l }
func (m *mockAccelerator) Close()                   { m.closed = true }

func (m *mockAccelerator) Init(width, height int) error {
	m.inits++
	return m.initErr
}

func (m *mockAccelerator) Dispatch(job ComputeJob) error {
	m.dispatches++
	if m.dispatchErr != nil {
		return m.dispatchErr
	}
	RenderStamps(job.Target, job.Source, job.Rect, job.Stamps, job.Masks)
	return nil
}

var _ StampAccelerator = (*mockAccelerator)(nil)

func TestParallelAccelerator_Lifecycle(t *testing.T) {
	a := NewParallelAccelerator(2)
	if a.Name() != "cpu-parallel" {
		t.Errorf("Name = %q", a.Name())
	}
	if err := a.Dispatch(ComputeJob{}); !errors.Is(err, ErrFallbackToFragment) {
		t.Errorf("Dispatch before Init = %v, want ErrFallbackToFragment", err)
	}
	if err := a.Init(0, 10); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Init(0, 10) = %v", err)
	}
	if err := a.Init(64, 64); err != nil {
		t.Fatal(err)
	}
	if err := a.Init(64, 64); err != nil {
		t.Fatalf("second Init = %v", err)
	}
	a.Close()
	a.Close()
	if err := a.Dispatch(ComputeJob{}); !errors.Is(err, ErrFallbackToFragment) {
		t.Errorf("Dispatch after Close = %v, want ErrFallbackToFragment", err)
	}
}

// TestParallelAccelerator_MatchesKernel renders the same batch serially
// and across the worker pool and expects identical pixels.
func TestParallelAccelerator_MatchesKernel(t *testing.T) {
	const w, h = 97, 61
	stamps := []Stamp{
		{Pos: V2(0.2, 0.3), Size: 0.1, Color: RGB(1, 0, 0).WithAlpha(0.7)},
		{Pos: V2(0.5, 0.5), Size: 0.2, Rotation: 0.4, Color: RGB(0, 0.5, 1).WithAlpha(0.5)},
		{Pos: V2(0.8, 0.9), Size: 0.05, Color: White},
	}
	ks, masks := prepareStamps(stamps, DefaultBrush(), w, h)

	base := mustPixmap(t, w, h)
	base.Fill(RGB(0.1, 0.1, 0.1))
	rect := image.Rect(3, 2, 90, 60)

	want := base.Clone()
	RenderStamps(newTargetView(want, image.Point{}), newSourceView(base, image.Point{}), rect, ks, masks)

	a := NewParallelAccelerator(4)
	if err := a.Init(w, h); err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	got := base.Clone()
	err := a.Dispatch(ComputeJob{
		Width: w, Height: h, Rect: rect,
		Source: newSourceView(base, image.Point{}),
		Target: newTargetView(got, image.Point{}),
		Stamps: ks, Masks: masks,
	})
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Data()) != string(want.Data()) {
		t.Error("parallel result differs from the serial kernel")
	}
}

func TestPropagateLogger(t *testing.T) {
	m := &mockAccelerator{}
	l := slog.New(nopHandler{})
	propagateLogger(m, l)
	if m.logger != l {
		t.Error("logger not propagated")
	}
	// Accelerators without SetLogger are left alone.
	propagateLogger(plainAccelerator{}, l)
}

type plainAccelerator struct{}

func (plainAccelerator) Name() string              { return "plain" }
func (plainAccelerator) Init(int, int) error       { return nil }
func (plainAccelerator) Dispatch(ComputeJob) error { return nil }
func (plainAccelerator) Close()                    {}
