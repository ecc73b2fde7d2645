package parallel

import (
	"image"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewWorkerPool(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		wantPos bool
	}{
		{"explicit", 3, true},
		{"zero uses GOMAXPROCS", 0, true},
		{"negative uses GOMAXPROCS", -2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewWorkerPool(tt.workers)
			t.Cleanup(p.Close)
			if p.Workers() <= 0 {
				t.Errorf("Workers = %d, want > 0", p.Workers())
			}
			if tt.workers > 0 && p.Workers() != tt.workers {
				t.Errorf("Workers = %d, want %d", p.Workers(), tt.workers)
			}
			if !p.IsRunning() {
				t.Error("new pool should be running")
			}
		})
	}
}

func TestExecuteAll(t *testing.T) {
	p := NewWorkerPool(4)
	t.Cleanup(p.Close)

	var count atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { count.Add(1) }
	}
	p.ExecuteAll(work)

	if got := count.Load(); got != 100 {
		t.Errorf("executed %d items, want 100", got)
	}
}

func TestExecuteAll_AfterClose(t *testing.T) {
	p := NewWorkerPool(2)
	p.Close()
	p.Close() // idempotent

	ran := 0
	p.ExecuteAll([]func(){func() { ran++ }, func() { ran++ }})
	if ran != 2 {
		t.Errorf("ran = %d, want 2 (inline after close)", ran)
	}
}

func TestForRows_CoversRectOnce(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		r       image.Rectangle
		minRows int
	}{
		{"single worker", 1, image.Rect(0, 0, 10, 10), 1},
		{"many bands", 4, image.Rect(2, 3, 20, 103), 8},
		{"fewer rows than workers", 8, image.Rect(0, 0, 5, 3), 1},
		{"min rows forces one band", 4, image.Rect(0, 0, 5, 10), 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewWorkerPool(tt.workers)
			t.Cleanup(p.Close)

			var mu sync.Mutex
			seen := make(map[int]int)
			p.ForRows(tt.r, tt.minRows, func(band image.Rectangle) {
				if band.Min.X != tt.r.Min.X || band.Max.X != tt.r.Max.X {
					t.Errorf("band %v does not span full width of %v", band, tt.r)
				}
				mu.Lock()
				for y := band.Min.Y; y < band.Max.Y; y++ {
					seen[y]++
				}
				mu.Unlock()
			})

			for y := tt.r.Min.Y; y < tt.r.Max.Y; y++ {
				if seen[y] != 1 {
					t.Errorf("row %d visited %d times, want 1", y, seen[y])
				}
			}
			if len(seen) != tt.r.Dy() {
				t.Errorf("visited %d rows, want %d", len(seen), tt.r.Dy())
			}
		})
	}
}

func TestForRows_Empty(t *testing.T) {
	p := NewWorkerPool(2)
	t.Cleanup(p.Close)
	p.ForRows(image.Rectangle{}, 1, func(image.Rectangle) {
		t.Error("fn called for empty rect")
	})
}
