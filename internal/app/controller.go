package app

import (
	"github.com/rook-computer/backdrop/internal/render"
	"github.com/rook-computer/backdrop/internal/state"
)

// Controller is the single entry point for loop transitions. It keeps the
// store's phase in step with the backdrop.
type Controller struct {
	bg     *render.Background
	store  *state.Store
	logger Logger
}

func NewController(bg *render.Background, store *state.Store, logger Logger) *Controller {
	if logger == nil {
		logger = NoopLogger{}
	}
	c := &Controller{bg: bg, store: store, logger: logger}
	c.sync()
	c.store.UpdateSurface(SurfaceInfo(bg.Dimensions()))
	return c
}

func (c *Controller) Start() {
	c.bg.Start()
	c.sync()
}

func (c *Controller) Stop() {
	c.bg.Stop()
	c.sync()
}

func (c *Controller) Toggle() {
	if c.bg.Running() {
		c.Stop()
		return
	}
	c.Start()
}

// SetVisible forwards a visibility notification from a host or signal.
func (c *Controller) SetVisible(visible bool) {
	c.logger.Infof("app", "visible=%t", visible)
	c.bg.SetVisible(visible)
	c.sync()
}

func (c *Controller) Resize() {
	c.bg.Resize()
	c.store.UpdateSurface(SurfaceInfo(c.bg.Dimensions()))
}

func (c *Controller) Running() bool { return c.bg.Running() }

func (c *Controller) Background() *render.Background { return c.bg }

func (c *Controller) sync() {
	if c.bg.Running() {
		c.store.SetPhase(state.RUNNING)
	} else {
		c.store.SetPhase(state.STOPPED)
	}
}

// Hooks routes host notifications through the controller; exit ends the app.
func (c *Controller) Hooks(exit func(error)) render.Hooks {
	return render.Hooks{Resize: c.Resize, Visible: c.SetVisible, Toggle: c.Toggle, Exit: exit}
}

// RecordFrames publishes every presented frame to the store.
func RecordFrames(store *state.Store) render.Presenter {
	return render.PresenterFunc(func(f render.Frame) error {
		store.UpdateFrame(state.FrameInfo{Number: f.Number, Phase: f.Phase, Delta: f.Delta, At: f.Time})
		store.UpdateSurface(SurfaceInfo(f.Dimensions))
		return nil
	})
}

func SurfaceInfo(d render.Dimensions) state.SurfaceInfo {
	return state.SurfaceInfo{
		Width:        d.Width,
		Height:       d.Height,
		DPR:          d.DPR,
		BufferWidth:  d.BufferWidth,
		BufferHeight: d.BufferHeight,
	}
}
