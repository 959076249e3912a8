package render

import (
	"bytes"
	"image/png"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/gg"
)

// screenOver is the canvas "screen" result for an opaque backdrop:
// Cb + α·(screen(Cb, Cs) − Cb).
func screenOver(cb uint8, cs, alpha float64) float64 {
	b := float64(cb) / 255
	return (b + alpha*(b+cs-b*cs-b)) * 255
}

func sourceOver(cb uint8, cs, alpha float64) float64 {
	b := float64(cb) / 255
	return (b + alpha*(cs-b)) * 255
}

func TestCanvasSurfaceRadialScreen(t *testing.T) {
	white := gg.RGBA{R: 1, G: 1, B: 1, A: 0.5}
	gray := gg.RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1}
	tests := []struct {
		name     string
		backdrop gg.RGBA
		core     gg.RGBA
		x        int     // sampled pixel column; row is the center row
		coverage float64 // fraction of core alpha at that pixel
	}{
		{"layer center", Backdrop, DefaultLayers()[0].Color(DefaultLayers()[0].Alpha), 100, 1},
		{"layer half radius", Backdrop, DefaultLayers()[0].Color(DefaultLayers()[0].Alpha), 140, 0.5},
		{"gray center", gray, white, 100, 1},
		{"gray half radius", gray, white, 140, 0.5},
		{"outside radius", gray, white, 190, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCanvasSurface(200, 200)
			s.Fill(tt.backdrop)
			_ = s.Present(Frame{})
			before := s.Latest().RGBAAt(tt.x, 100)

			// Centered on pixel (100,100) so column 140 sits at exactly r/2.
			if err := s.FillRadial(100.5, 100.5, 80, tt.core); err != nil {
				t.Fatalf("FillRadial: %v", err)
			}
			_ = s.Present(Frame{})
			got := s.Latest().RGBAAt(tt.x, 100)

			alpha := tt.core.A * tt.coverage
			channels := []struct {
				name    string
				cb, got uint8
				cs      float64
			}{
				{"R", before.R, got.R, tt.core.R},
				{"G", before.G, got.G, tt.core.G},
				{"B", before.B, got.B, tt.core.B},
			}
			for _, c := range channels {
				want := screenOver(c.cb, c.cs, alpha)
				if math.Abs(float64(c.got)-want) > 1.5 {
					t.Errorf("%s = %d, want %.1f (backdrop %d)", c.name, c.got, want, c.cb)
				}
				if over := sourceOver(c.cb, c.cs, alpha); float64(c.got) < over-1.5 {
					t.Errorf("%s = %d darker than source-over %.1f", c.name, c.got, over)
				}
			}
			if got.A != 0xFF {
				t.Errorf("alpha = %d, want opaque", got.A)
			}
		})
	}
}

func TestScreenPremul(t *testing.T) {
	px := []uint8{128, 128, 128, 255}
	screenPremul(px, gg.RGBA{R: 1, G: 1, B: 1, A: 0.5})
	// 0.5 + 0.5 - 0.25 on the color channels.
	for i, want := range []uint8{192, 192, 192, 255} {
		if d := int(px[i]) - int(want); d < -1 || d > 1 {
			t.Fatalf("channel %d = %d, want %d", i, px[i], want)
		}
	}

	clear := []uint8{0, 0, 0, 0}
	screenPremul(clear, gg.RGBA{R: 1, A: 0.5})
	if clear[0] != 128 || clear[3] != 128 || clear[1] != 0 {
		t.Fatalf("over transparent = %v, want premultiplied red at half alpha", clear)
	}
}

func TestCanvasSurfaceResize(t *testing.T) {
	s := NewCanvasSurface(0, 0)
	if b := s.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Fatalf("initial bounds = %v, want 1x1", b)
	}
	if err := s.Resize(64, 32); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if b := s.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("bounds = %v, want 64x32", b)
	}
}

func TestCanvasSurfaceLatestNilBeforePresent(t *testing.T) {
	if NewCanvasSurface(4, 4).Latest() != nil {
		t.Fatal("expected nil before the first frame")
	}
}

func TestBackgroundOnCanvasProducesPNG(t *testing.T) {
	canvas := NewCanvasSurface(1, 1)
	queue := NewFrameQueue()
	clock := NewManualClock(epoch)
	New(canvas, NewSizedViewport(320, 180, 1), queue,
		WithClock(clock),
		WithGrainSource(rand.NewPCG(3, 4)),
		WithPresenter(canvas),
	)
	clock.Advance(DefaultFrameInterval)
	queue.Flush()

	img := canvas.Latest()
	if img == nil || img.Bounds().Dx() != 320 || img.Bounds().Dy() != 180 {
		t.Fatalf("unexpected frame %v", img)
	}
	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestCanvasSurfaceDot(t *testing.T) {
	s := NewCanvasSurface(8, 8)
	s.Fill(gg.RGB(1, 1, 1))
	if err := s.Dot(3, 3, gg.RGBA{A: 1}); err != nil {
		t.Fatalf("Dot: %v", err)
	}
	_ = s.Present(Frame{})
	if c := s.Latest().RGBAAt(3, 3); c.R > 10 {
		t.Fatalf("dot pixel = %v, want black", c)
	}
}
