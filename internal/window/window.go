// Package window runs the backdrop in a desktop window.
package window

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"

	"github.com/rook-computer/backdrop/internal/render"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 540
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// Window is a render.Host backed by an ebiten game. Frame callbacks run on
// ebiten's update goroutine; Run must be called from the main goroutine.
type Window struct {
	Title  string
	Logger Logger
	// PauseOnBlur treats a window without focus as hidden. A minimized
	// window is always hidden.
	PauseOnBlur bool

	canvas *render.CanvasSurface
	queue  *render.FrameQueue

	mu      sync.Mutex
	w, h    int
	dpr     float64
	hooks   render.Hooks
	frame   *image.RGBA
	dirty   bool
	visible bool

	screen  *ebiten.Image
	closing atomic.Bool
	saving  atomic.Bool
}

func New(canvas *render.CanvasSurface, width, height int) *Window {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Window{
		Title:   "backdrop",
		Logger:  noopLogger{},
		canvas:  canvas,
		queue:   render.NewFrameQueue(),
		w:       width,
		h:       height,
		dpr:     1,
		visible: true,
	}
}

// Start arms the window; the game loop itself runs in Run.
func (win *Window) Start(ctx context.Context) error {
	win.closing.Store(false)
	go func() {
		<-ctx.Done()
		win.closing.Store(true)
	}()
	return nil
}

// Stop makes the next Update end the game loop.
func (win *Window) Stop() error {
	win.closing.Store(true)
	return nil
}

// Run opens the window and blocks until it is closed.
func (win *Window) Run() error {
	win.mu.Lock()
	w, h := win.w, win.h
	win.mu.Unlock()

	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(win.Title + " - Space: start/stop, S: save frame, Esc/Q: quit")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetRunnableOnUnfocused(true)
	if err := ebiten.RunGame(win); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("window: %w", err)
	}
	return nil
}

func (win *Window) Scheduler() render.FrameScheduler { return win.queue }

func (win *Window) SetHooks(h render.Hooks) {
	win.mu.Lock()
	win.hooks = h
	win.mu.Unlock()
}

func (win *Window) Size() (float64, float64) {
	win.mu.Lock()
	defer win.mu.Unlock()
	return float64(win.w), float64(win.h)
}

func (win *Window) DevicePixelRatio() float64 {
	win.mu.Lock()
	defer win.mu.Unlock()
	return win.dpr
}

// Present takes the latest canvas frame for the next Draw.
func (win *Window) Present(render.Frame) error {
	if win.canvas == nil {
		return nil
	}
	img := win.canvas.Latest()
	if img == nil {
		return nil
	}
	win.mu.Lock()
	win.frame = img
	win.dirty = true
	win.mu.Unlock()
	return nil
}

func (win *Window) Update() error {
	if win.closing.Load() {
		return ebiten.Termination
	}
	win.mu.Lock()
	hooks := win.hooks
	win.mu.Unlock()

	visible := !ebiten.IsWindowMinimized() && (!win.PauseOnBlur || ebiten.IsFocused())
	if win.setVisible(visible) {
		hooks.OnVisible(visible)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		hooks.OnExit(nil)
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		hooks.OnToggle()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		win.saveFrame()
	}

	win.queue.Flush()
	return nil
}

func (win *Window) setVisible(visible bool) bool {
	win.mu.Lock()
	defer win.mu.Unlock()
	if win.visible == visible {
		return false
	}
	win.visible = visible
	return true
}

func (win *Window) Draw(screen *ebiten.Image) {
	win.mu.Lock()
	frame, dirty := win.frame, win.dirty
	win.dirty = false
	win.mu.Unlock()
	if frame == nil {
		return
	}

	fw, fh := frame.Bounds().Dx(), frame.Bounds().Dy()
	if win.screen == nil || win.screen.Bounds().Dx() != fw || win.screen.Bounds().Dy() != fh {
		if win.screen != nil {
			win.screen.Deallocate()
		}
		win.screen = ebiten.NewImage(fw, fh)
		dirty = true
	}
	if dirty {
		win.screen.WritePixels(frame.Pix)
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sw)/float64(fw), float64(sh)/float64(fh))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(win.screen, op)
}

// Layout tracks the logical window size and the monitor scale; the
// screen is laid out in device pixels.
func (win *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	dpr := 1.0
	if m := ebiten.Monitor(); m != nil {
		dpr = m.DeviceScaleFactor()
	}
	if !(dpr > 0) {
		dpr = 1
	}

	win.mu.Lock()
	changed := outsideWidth != win.w || outsideHeight != win.h || dpr != win.dpr
	win.w, win.h, win.dpr = outsideWidth, outsideHeight, dpr
	hooks := win.hooks
	win.mu.Unlock()
	if changed {
		hooks.OnResize()
	}
	return max(1, int(float64(outsideWidth)*dpr)), max(1, int(float64(outsideHeight)*dpr))
}

// saveFrame asks for a file name and writes the latest frame as PNG.
func (win *Window) saveFrame() {
	if win.canvas == nil || !win.saving.CompareAndSwap(false, true) {
		return
	}
	img := win.canvas.Latest()
	if img == nil {
		win.saving.Store(false)
		return
	}
	go func() {
		defer win.saving.Store(false)
		path, err := zenity.SelectFileSave(
			zenity.Title("Save backdrop frame"),
			zenity.Filename("backdrop.png"),
			zenity.ConfirmOverwrite(),
			zenity.FileFilters{{
				Name:     "PNG image",
				Patterns: []string{"*.png"},
			}},
		)
		if err != nil {
			if !errors.Is(err, zenity.ErrCanceled) {
				win.logger().Errorf("window", "save dialog: %v", err)
			}
			return
		}
		if err := writePNG(path, img); err != nil {
			win.logger().Errorf("window", "save frame: %v", err)
			return
		}
		win.logger().Infof("window", "frame saved to %s", path)
	}()
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (win *Window) logger() Logger {
	if win.Logger == nil {
		return noopLogger{}
	}
	return win.Logger
}
