package inkpad

import (
	"image"
	"testing"
)

// BenchmarkPixmap_Fill benchmarks clearing canvases of various sizes.
func BenchmarkPixmap_Fill(b *testing.B) {
	sizes := []struct {
		name          string
		width, height int
	}{
		{"512x512", 512, 512},
		{"1920x1080", 1920, 1080},
		{"2560x1440", 2560, 1440},
	}
	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			pm := mustPixmap(b, size.width, size.height)
			b.SetBytes(int64(size.width * size.height * 4))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				pm.Fill(Black)
			}
		})
	}
}

// BenchmarkRenderStamps runs the reference kernel over one full batch.
func BenchmarkRenderStamps(b *testing.B) {
	const w, h = 1024, 1024
	ks, masks := prepareStamps(testStamps(DefaultBatchCapacity), DefaultBrush(), w, h)
	src := mustPixmap(b, w, h)
	dst := mustPixmap(b, w, h)
	rect := image.Rect(0, 0, w, h)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		RenderStamps(newTargetView(dst, image.Point{}), newSourceView(src, image.Point{}), rect, ks, masks)
	}
}

// BenchmarkRenderPaths compares the render paths on a short stroke.
func BenchmarkRenderPaths(b *testing.B) {
	paths := []RenderPath{PathFragmentFull, PathFragmentRegion, PathFragmentRegionSafe, PathCompute}
	for _, path := range paths {
		b.Run(path.String(), func(b *testing.B) {
			opts := []Option{WithRenderPath(path)}
			if path == PathCompute {
				opts = append(opts, WithAccelerator(NewParallelAccelerator(0)))
			}
			p, err := New(SurfaceDescriptor{Width: 1920, Height: 1080, RandomWrite: true}, opts...)
			if err != nil {
				b.Fatal(err)
			}
			defer p.Close()
			p.SetMode(ModeInterpolatedLine)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				x := 0.1 + 0.8*float64(i%100)/100
				if i%100 == 0 {
					p.EndStroke()
					p.BeginStroke(hit(x, 0.5, 0))
				}
				p.UpdateStroke(hit(x, 0.5, 1.0/60))
			}
		})
	}
}

// BenchmarkRasterizer_Line measures stamp generation without compositing.
func BenchmarkRasterizer_Line(b *testing.B) {
	r := NewRasterizer(&recordSink{}, 1920, 1080, DefaultStrokeConfig(), nil)
	r.SetMode(ModeInterpolatedLine)
	sink := r.sink.(*recordSink)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sink.stamps = sink.stamps[:0]
		r.UpdateStroke(V2(float64(i%2)*0.5, 0.5), 1.0/60)
	}
}
