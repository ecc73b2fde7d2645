package inkpad

import (
	"math"
	"testing"
)

func TestNewPressureEstimator_ClampsWindow(t *testing.T) {
	tests := []struct {
		window, want int
	}{
		{0, 2},
		{1, 2},
		{4, 4},
		{8, 8},
		{20, 8},
	}
	for _, tt := range tests {
		cfg := DefaultVelocityConfig()
		cfg.Window = tt.window
		if got := NewPressureEstimator(cfg, 100, 100).Config().Window; got != tt.want {
			t.Errorf("Window %d clamped to %d, want %d", tt.window, got, tt.want)
		}
	}
}

func TestPressureEstimator_SingleSampleKeepsPressure(t *testing.T) {
	e := NewPressureEstimator(DefaultVelocityConfig(), 100, 100)
	if got := e.Sample(V2(10, 10), 0); got != 1 {
		t.Errorf("first sample = %v, want MaxPressure", got)
	}
	if got := e.Pressure(); got != 1 {
		t.Errorf("Pressure = %v, want 1", got)
	}
}

func TestPressureEstimator_SpeedMapping(t *testing.T) {
	cfg := DefaultVelocityConfig()
	cfg.Smoothing = 0

	tests := []struct {
		name      string
		stepPx    float64
		want      float64
		tolerance float64
	}{
		// 100 px per 10 ms on a 100 px canvas is 100 canvases per second.
		{"fast", 100, cfg.MinPressure, 1e-9},
		{"still", 0, cfg.MaxPressure, 1e-9},
		{"slow", 0.001, cfg.MaxPressure, 1e-9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewPressureEstimator(cfg, 100, 100)
			e.Prime(V2(0, 0), 0)
			var got float64
			for i := 1; i <= 10; i++ {
				got = e.Sample(V2(float64(i)*tt.stepPx, 0), float64(i)*0.01)
			}
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("pressure = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPressureEstimator_SmoothingConverges(t *testing.T) {
	cfg := DefaultVelocityConfig()
	e := NewPressureEstimator(cfg, 200, 100)
	e.Prime(V2(0, 0), 0)

	prev := 1.0
	var got float64
	for i := 1; i <= 200; i++ {
		got = e.Sample(V2(float64(i)*50, 0), float64(i)/60)
		if got > prev+1e-12 {
			t.Fatalf("sample %d: pressure rose from %v to %v at constant speed", i, prev, got)
		}
		if got < cfg.MinPressure-1e-12 || got > cfg.MaxPressure+1e-12 {
			t.Fatalf("sample %d: pressure %v outside range", i, got)
		}
		prev = got
	}
	if math.Abs(got-cfg.MinPressure) > 1e-3 {
		t.Errorf("pressure after a long fast stroke = %v, want ~%v", got, cfg.MinPressure)
	}
}

func TestPressureEstimator_ZeroElapsed(t *testing.T) {
	cfg := DefaultVelocityConfig()
	cfg.Smoothing = 0
	e := NewPressureEstimator(cfg, 100, 100)
	e.Prime(V2(0, 0), 1)
	got := e.Sample(V2(50, 50), 1)
	if math.IsNaN(got) || math.Abs(got-cfg.MinPressure) > 1e-9 {
		t.Errorf("zero elapsed time gave %v, want %v", got, cfg.MinPressure)
	}
}

func TestPressureEstimator_External(t *testing.T) {
	e := NewPressureEstimator(DefaultVelocityConfig(), 100, 100)
	e.SetSource(PressureExternal)
	if e.Source() != PressureExternal || e.Source().String() != "external" {
		t.Fatalf("Source = %v", e.Source())
	}

	tests := []struct {
		in, want float64
	}{
		{0.5, 0.5},
		{5, 1},
		{0, 0.2},
	}
	for _, tt := range tests {
		e.SetExternal(tt.in)
		if got := e.Sample(V2(float64(tt.in)*1000, 0), tt.in); got != tt.want {
			t.Errorf("external %v: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPressureEstimator_PrimeResets(t *testing.T) {
	cfg := DefaultVelocityConfig()
	cfg.Smoothing = 0
	e := NewPressureEstimator(cfg, 100, 100)
	e.Prime(V2(0, 0), 0)
	e.Sample(V2(100, 0), 0.01)
	if e.Pressure() == cfg.MaxPressure {
		t.Fatal("fast move did not lower pressure")
	}
	e.Prime(V2(0, 0), 1)
	if e.Pressure() != cfg.MaxPressure {
		t.Errorf("Prime left pressure at %v", e.Pressure())
	}
	e.Reset()
	if got := e.Sample(V2(1, 1), 2); got != cfg.MaxPressure {
		t.Errorf("sample after Reset = %v", got)
	}
}

func TestSpeedPressure(t *testing.T) {
	newSP := func() *speedPressure {
		s := &speedPressure{minP: 0.2, maxP: 1, maxSpeed: 1}
		s.reset()
		return s
	}

	t.Run("no previous position", func(t *testing.T) {
		s := newSP()
		if got := s.update(Vec2{}, false, V2(0.5, 0.5), 0.01, true); got != 1 {
			t.Errorf("got %v, want 1", got)
		}
	})

	t.Run("fast clamps to min", func(t *testing.T) {
		s := newSP()
		prev := V2(0, 0)
		var got float64
		for i := 1; i <= 5; i++ {
			p := V2(float64(i)*0.05, 0)
			got = s.update(prev, true, p, 0.01, true)
			prev = p
		}
		if math.Abs(got-0.2) > 1e-9 {
			t.Errorf("got %v, want 0.2", got)
		}
	})

	t.Run("slow approaches max", func(t *testing.T) {
		s := newSP()
		prev := V2(0, 0)
		var got float64
		for i := 1; i <= 5; i++ {
			p := V2(float64(i)*1e-6, 0)
			got = s.update(prev, true, p, 0.01, true)
			prev = p
		}
		if got < 0.999 {
			t.Errorf("got %v, want ~1", got)
		}
	})

	t.Run("external in velocity mode", func(t *testing.T) {
		s := newSP()
		s.useExternal = true
		s.externalPres = 0.05
		if got := s.update(V2(0, 0), true, V2(0, 0), 0.01, true); got != 0.2 {
			t.Errorf("got %v, want clamp to 0.2", got)
		}
		s.externalPres = 0.6
		if got := s.update(V2(0, 0), true, V2(0, 0), 0.01, true); got != 0.6 {
			t.Errorf("got %v, want 0.6", got)
		}
	})

	t.Run("smoothing eases", func(t *testing.T) {
		s := newSP()
		s.smooth = true
		s.attackRate, s.releaseRate = 50, 50
		s.useExternal = true
		s.externalPres = 0.2
		got := s.update(Vec2{}, false, Vec2{}, 0.01, true)
		want := lerp(1, 0.2, 1-math.Exp(-0.5))
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}
