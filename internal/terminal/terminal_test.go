package terminal

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/rook-computer/backdrop/internal/render"
)

type hookEvents struct {
	resized chan struct{}
	visible chan bool
	toggled chan struct{}
	exited  chan error
}

func newHookEvents() *hookEvents {
	return &hookEvents{
		resized: make(chan struct{}, 4),
		visible: make(chan bool, 4),
		toggled: make(chan struct{}, 4),
		exited:  make(chan error, 4),
	}
}

func (h *hookEvents) hooks() render.Hooks {
	return render.Hooks{
		Resize:  func() { h.resized <- struct{}{} },
		Visible: func(v bool) { h.visible <- v },
		Toggle:  func() { h.toggled <- struct{}{} },
		Exit:    func(err error) { h.exited <- err },
	}
}

func startSim(t *testing.T) (*Terminal, tcell.SimulationScreen, *render.CanvasSurface) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	canvas := render.NewCanvasSurface(1, 1)
	term := New(screen, canvas)
	if err := term.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = term.Stop() })
	return term, screen, canvas
}

func wait[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		var zero T
		return zero
	}
}

func TestViewportFromCells(t *testing.T) {
	term, _, _ := startSim(t)

	w, h := term.Size()
	if w != 80*CellWidth || h != 25*CellHeight {
		t.Fatalf("size = %vx%v", w, h)
	}
	d := render.ComputeDimensions(w, h, term.DevicePixelRatio())
	if d.BufferWidth != 80 || d.BufferHeight != 50 {
		t.Fatalf("buffer = %dx%d, want one column per cell and two rows per cell", d.BufferWidth, d.BufferHeight)
	}
}

func TestPresentPaintsHalfBlocks(t *testing.T) {
	term, screen, canvas := startSim(t)

	queue := render.NewFrameQueue()
	bg := render.New(canvas, term, queue, render.WithPresenter(render.Presenters{canvas, term}))
	defer bg.Stop()
	if queue.Flush() != 1 {
		t.Fatal("expected one frame")
	}

	cells, cols, rows := screen.GetContents()
	if cols != 80 || rows != 25 {
		t.Fatalf("contents %dx%d", cols, rows)
	}
	img := canvas.Latest()
	for _, pos := range [][2]int{{0, 0}, {40, 12}, {79, 24}} {
		x, y := pos[0], pos[1]
		cell := cells[y*cols+x]
		if len(cell.Runes) == 0 || cell.Runes[0] != upperHalf {
			t.Fatalf("cell %d,%d runes = %q", x, y, cell.Runes)
		}
		fg, bgc, _ := cell.Style.Decompose()
		top, bottom := img.RGBAAt(x, 2*y), img.RGBAAt(x, 2*y+1)
		if fg != tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B)) {
			t.Fatalf("cell %d,%d fg = %v, want %v", x, y, fg, top)
		}
		if bgc != tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)) {
			t.Fatalf("cell %d,%d bg = %v, want %v", x, y, bgc, bottom)
		}
	}
}

func TestEventsReachHooks(t *testing.T) {
	term, screen, _ := startSim(t)
	events := newHookEvents()
	term.SetHooks(events.hooks())

	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	wait(t, events.toggled, "toggle")

	_ = screen.PostEvent(tcell.NewEventFocus(false))
	if v := wait(t, events.visible, "blur"); v {
		t.Fatal("blur reported visible")
	}
	_ = screen.PostEvent(tcell.NewEventFocus(true))
	if v := wait(t, events.visible, "focus"); !v {
		t.Fatal("focus reported hidden")
	}

	screen.SetSize(20, 6)
	_ = screen.PostEvent(tcell.NewEventResize(20, 6))
	wait(t, events.resized, "resize")
	deadline := time.Now().Add(2 * time.Second)
	for {
		w, h := term.Size()
		if w == 20*CellWidth && h == 6*CellHeight {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("size after resize = %vx%v", w, h)
		}
		time.Sleep(5 * time.Millisecond)
	}

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	if err := wait(t, events.exited, "exit"); err != nil {
		t.Fatalf("exit err = %v", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	term, _, _ := startSim(t)
	if err := term.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := term.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if err := term.Present(render.Frame{}); err != nil {
		t.Fatalf("present after stop: %v", err)
	}
}
