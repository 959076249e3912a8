package render

import "context"

// Host is an output the backdrop runs on: it reports the viewport and
// receives every presented frame.
type Host interface {
	Start(ctx context.Context) error
	Stop() error
	Viewport
	Presenter
}

// Hooks carries the notifications a host forwards to the app. Any field
// may be nil.
type Hooks struct {
	Resize  func()
	Visible func(visible bool)
	Toggle  func()
	Exit    func(err error)
}

func (h Hooks) OnResize() {
	if h.Resize != nil {
		h.Resize()
	}
}

func (h Hooks) OnVisible(visible bool) {
	if h.Visible != nil {
		h.Visible(visible)
	}
}

func (h Hooks) OnToggle() {
	if h.Toggle != nil {
		h.Toggle()
	}
}

func (h Hooks) OnExit(err error) {
	if h.Exit != nil {
		h.Exit(err)
	}
}

// HookedHost is implemented by hosts that observe resize, visibility or
// input on their own.
type HookedHost interface {
	SetHooks(h Hooks)
}

// PumpedHost is implemented by hosts that drive frame callbacks from their
// own loop instead of a ticker.
type PumpedHost interface {
	Scheduler() FrameScheduler
}
