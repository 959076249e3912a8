package render

import (
	"image"
	"io"
	"math"
	"sync"

	"github.com/gogpu/gg"
)

// CanvasSurface is a Surface backed by a software gg context. It also acts
// as a Presenter: each presented frame is copied out as the latest image so
// hosts and the control API can read it from other goroutines.
type CanvasSurface struct {
	mu     sync.Mutex
	dc     *gg.Context
	latest *image.RGBA
}

func NewCanvasSurface(width, height int) *CanvasSurface {
	return &CanvasSurface{dc: gg.NewContext(max(1, width), max(1, height))}
}

func (s *CanvasSurface) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc.Resize(max(1, width), max(1, height))
}

// Bounds returns the current backing buffer size.
func (s *CanvasSurface) Bounds() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return image.Rect(0, 0, s.dc.Width(), s.dc.Height())
}

func (s *CanvasSurface) Fill(c gg.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dc.ClearWithColor(c)
}

// FillRadial screens a radial gradient from core at (cx, cy) to transparent
// at radius onto the buffer. The gradient's alpha is applied once per pixel,
// so a blob is never darker than the same color drawn source-over.
func (s *CanvasSurface) FillRadial(cx, cy, radius float64, core gg.RGBA) error {
	if !(radius > 0) || !(core.A > 0) || math.IsInf(cx, 0) || math.IsInf(cy, 0) || math.IsNaN(cx) || math.IsNaN(cy) {
		return nil
	}
	edge := core
	edge.A = 0
	gradient := gg.NewRadialGradientBrush(cx, cy, 0, radius).
		AddColorStop(0, core).
		AddColorStop(1, edge)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dc.FlushGPU(); err != nil {
		return err
	}
	pm := s.dc.ResizeTarget()
	w, h := pm.Width(), pm.Height()
	bounds := image.Rect(
		int(math.Floor(cx-radius)), int(math.Floor(cy-radius)),
		int(math.Ceil(cx+radius))+1, int(math.Ceil(cy+radius))+1,
	).Intersect(image.Rect(0, 0, w, h))
	if bounds.Empty() {
		return nil
	}

	data := pm.Data()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			src := gradient.ColorAt(float64(x)+0.5, float64(y)+0.5)
			if src.A <= 0 {
				continue
			}
			i := (y*w + x) * 4
			screenPremul(data[i:i+4:i+4], src)
		}
	}
	pm.NotifyPixelsChanged()
	return nil
}

// screenPremul screens a straight-alpha source onto a premultiplied pixel.
// In premultiplied form screen is s + d - s·d on every channel, alpha
// included.
func screenPremul(px []uint8, src gg.RGBA) {
	a := clamp01(src.A)
	sp := [4]float64{clamp01(src.R) * a, clamp01(src.G) * a, clamp01(src.B) * a, a}
	for i, sv := range sp {
		d := float64(px[i]) / 255
		px[i] = uint8(math.Round(clamp01(sv+d-sv*d) * 255))
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func (s *CanvasSurface) Dot(x, y float64, c gg.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dc.SetRGBA(c.R, c.G, c.B, c.A)
	s.dc.DrawRectangle(x, y, 1, 1)
	return s.dc.Fill()
}

// Present publishes the buffer as the latest complete frame.
func (s *CanvasSurface) Present(Frame) error {
	s.mu.Lock()
	img, _ := s.dc.Image().(*image.RGBA)
	s.latest = img
	s.mu.Unlock()
	return nil
}

// Latest returns the most recently presented frame, or nil before the first.
// The returned image must not be modified.
func (s *CanvasSurface) Latest() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// EncodePNG writes the current buffer, presented or not.
func (s *CanvasSurface) EncodePNG(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc.EncodePNG(w)
}
