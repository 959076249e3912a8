package render

import (
	"math"
	"sync"

	"github.com/gogpu/gg"
)

// Surface is the drawing target of the backdrop. Coordinates are in
// backing-buffer (device) pixels.
type Surface interface {
	// Resize reallocates the backing buffer. Both sides are at least 1.
	Resize(width, height int) error
	// Fill replaces every pixel with c.
	Fill(c gg.RGBA)
	// FillRadial paints a disc whose color fades from core at the center
	// to fully transparent at radius, screen-blended onto the buffer.
	FillRadial(cx, cy, radius float64, core gg.RGBA) error
	// Dot paints a single pixel source-over.
	Dot(x, y float64, c gg.RGBA) error
}

// Viewport reports the logical output size and its device pixel ratio.
type Viewport interface {
	Size() (width, height float64)
	DevicePixelRatio() float64
}

// Dimensions is the render state derived from a Viewport on resize.
type Dimensions struct {
	Width, Height float64 // logical (displayed) size
	DPR           float64
	BufferWidth   int
	BufferHeight  int
}

// ComputeDimensions derives the backing buffer size, never below 1×1.
// A non-positive ratio falls back to 1.
func ComputeDimensions(width, height, dpr float64) Dimensions {
	if !(dpr > 0) || math.IsInf(dpr, 0) {
		dpr = 1
	}
	if !(width > 0) {
		width = 0
	}
	if !(height > 0) {
		height = 0
	}
	return Dimensions{
		Width:        width,
		Height:       height,
		DPR:          dpr,
		BufferWidth:  max(1, int(math.Floor(width*dpr))),
		BufferHeight: max(1, int(math.Floor(height*dpr))),
	}
}

// SizedViewport is a Viewport whose size is pushed by a host.
type SizedViewport struct {
	mu            sync.RWMutex
	width, height float64
	dpr           float64
}

func NewSizedViewport(width, height, dpr float64) *SizedViewport {
	return &SizedViewport{width: width, height: height, dpr: dpr}
}

// Set updates the viewport and reports whether anything changed.
func (v *SizedViewport) Set(width, height, dpr float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.width == width && v.height == height && v.dpr == dpr {
		return false
	}
	v.width, v.height, v.dpr = width, height, dpr
	return true
}

func (v *SizedViewport) Size() (float64, float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

func (v *SizedViewport) DevicePixelRatio() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dpr
}
