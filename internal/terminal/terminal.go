// Package terminal shows the backdrop in a terminal using half-block cells:
// every cell carries two vertically stacked buffer pixels.
package terminal

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/rook-computer/backdrop/internal/render"
)

// Logical pixels covered by one cell. With DPR 1/CellWidth the backing
// buffer has one column per cell and two rows per cell.
const (
	CellWidth  = 8
	CellHeight = 16
)

const upperHalf = '▀'

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// Terminal is a render.Host on a tcell screen.
type Terminal struct {
	Logger Logger

	screen tcell.Screen
	canvas *render.CanvasSurface

	mu         sync.Mutex
	cols, rows int
	hooks      render.Hooks
	running    bool
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// New wraps screen, or the terminal tcell detects when screen is nil.
// Frames are read from canvas.
func New(screen tcell.Screen, canvas *render.CanvasSurface) *Terminal {
	return &Terminal{screen: screen, canvas: canvas, Logger: noopLogger{}}
}

func (t *Terminal) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}
	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	t.screen.EnableFocus()
	t.screen.HideCursor()
	t.screen.Clear()
	t.cols, t.rows = t.screen.Size()
	t.running = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	t.logger().Infof("terminal", "screen %dx%d cells", t.cols, t.rows)

	go t.pollLoop(t.stopCh, t.doneCh)
	return nil
}

// Stop ends input polling and restores the terminal.
func (t *Terminal) Stop() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = false
	stopCh, doneCh := t.stopCh, t.doneCh
	t.mu.Unlock()

	close(stopCh)
	// Unblock PollEvent.
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
	<-doneCh
	t.screen.Fini()
	return nil
}

func (t *Terminal) SetHooks(h render.Hooks) {
	t.mu.Lock()
	t.hooks = h
	t.mu.Unlock()
}

func (t *Terminal) Size() (float64, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(t.cols * CellWidth), float64(t.rows * CellHeight)
}

func (t *Terminal) DevicePixelRatio() float64 { return 1.0 / CellWidth }

// Present paints the latest canvas frame into the cells and shows it.
func (t *Terminal) Present(render.Frame) error {
	t.mu.Lock()
	running, cols, rows := t.running, t.cols, t.rows
	t.mu.Unlock()
	if !running || t.canvas == nil {
		return nil
	}
	img := t.canvas.Latest()
	if img == nil {
		return nil
	}
	paint(t.screen, img, cols, rows)
	t.screen.Show()
	return nil
}

func paint(screen tcell.Screen, img *image.RGBA, cols, rows int) {
	b := img.Bounds()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := cellColor(img, b.Min.X+x, b.Min.Y+2*y)
			bottom := cellColor(img, b.Min.X+x, b.Min.Y+2*y+1)
			screen.SetContent(x, y, upperHalf, nil, tcell.StyleDefault.Foreground(top).Background(bottom))
		}
	}
}

func cellColor(img *image.RGBA, x, y int) tcell.Color {
	if !(image.Point{X: x, Y: y}.In(img.Bounds())) {
		return tcell.ColorBlack
	}
	c := img.RGBAAt(x, y)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (t *Terminal) pollLoop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		t.handle(ev)
	}
}

func (t *Terminal) handle(ev tcell.Event) {
	t.mu.Lock()
	hooks := t.hooks
	t.mu.Unlock()

	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		t.mu.Lock()
		t.cols, t.rows = cols, rows
		t.mu.Unlock()
		t.screen.Sync()
		t.logger().Infof("terminal", "resized to %dx%d cells", cols, rows)
		hooks.OnResize()
	case *tcell.EventFocus:
		hooks.OnVisible(ev.Focused)
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			hooks.OnExit(nil)
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			hooks.OnExit(nil)
		case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			hooks.OnToggle()
		}
	}
}

func (t *Terminal) logger() Logger {
	if t.Logger == nil {
		return noopLogger{}
	}
	return t.Logger
}
