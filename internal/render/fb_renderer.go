package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"

	fb "github.com/gonutz/framebuffer"
	xdraw "golang.org/x/image/draw"
)

const DefaultFramebuffer = "/dev/fb0"

// FBRenderer presents backdrop frames on the Linux framebuffer. It is both
// the Viewport (framebuffer size divided by DPR) and a Presenter that
// scales the latest canvas frame onto the device.
type FBRenderer struct {
	// Path of the framebuffer device; DefaultFramebuffer when empty.
	Path string
	// DPR is the device pixel ratio reported to the backdrop; 1 when unset.
	DPR     float64
	Overlay *Overlay
	Logger  Logger

	canvas  *CanvasSurface
	fbDev   *fb.Device
	frame   *image.RGBA
	running atomic.Bool
}

func NewFBRenderer(canvas *CanvasSurface) *FBRenderer {
	return &FBRenderer{canvas: canvas, Logger: noopLogger{}}
}

func (r *FBRenderer) Start(ctx context.Context) error {
	path := r.Path
	if path == "" {
		path = DefaultFramebuffer
	}
	dev, err := fb.Open(path)
	if err != nil {
		return fmt.Errorf("open framebuffer %s: %w", path, err)
	}
	r.fbDev = dev
	bounds := dev.Bounds()
	r.frame = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	r.logger().Infof("fb", "framebuffer open, bounds=%dx%d", bounds.Dx(), bounds.Dy())

	r.running.Store(true)
	return nil
}

func (r *FBRenderer) Stop() error {
	if !r.running.CompareAndSwap(true, false) {
		return nil
	}
	if r.fbDev != nil {
		r.fbDev.Close()
	}
	return nil
}

// Size reports the framebuffer in logical pixels.
func (r *FBRenderer) Size() (float64, float64) {
	if r.fbDev == nil {
		return 0, 0
	}
	bounds := r.fbDev.Bounds()
	dpr := r.DevicePixelRatio()
	return float64(bounds.Dx()) / dpr, float64(bounds.Dy()) / dpr
}

func (r *FBRenderer) DevicePixelRatio() float64 {
	if r.DPR > 0 {
		return r.DPR
	}
	return 1
}

// Present scales the latest canvas frame to the framebuffer, draws the
// overlay and blits it.
func (r *FBRenderer) Present(f Frame) error {
	if !r.running.Load() || r.fbDev == nil || r.canvas == nil {
		return nil
	}
	src := r.canvas.Latest()
	if src == nil {
		return nil
	}
	xdraw.ApproxBiLinear.Scale(r.frame, r.frame.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	if r.Overlay != nil {
		r.Overlay.Draw(r.frame, f)
	}
	blitToFB(r.fbDev, r.frame)
	return nil
}

func (r *FBRenderer) logger() Logger {
	if r.Logger == nil {
		return noopLogger{}
	}
	return r.Logger
}

// Helper: copy an opaque frame of framebuffer size to the device.
func blitToFB(dev *fb.Device, frame *image.RGBA) {
	bounds := dev.Bounds()
	width := min(bounds.Dx(), frame.Bounds().Dx())
	height := min(bounds.Dy(), frame.Bounds().Dy())
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixel := frame.RGBAAt(x, y)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}
