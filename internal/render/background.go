package render

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rook-computer/backdrop/internal/noise"
)

// State of the animation loop.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Frame describes a completed repaint.
type Frame struct {
	Number     uint64
	Time       time.Time
	Phase      float64
	Delta      time.Duration // since the previous frame or the last Start
	Dimensions Dimensions
}

// Presenter receives every completed frame. Present runs on the frame
// callback and must not call back into the Background.
type Presenter interface {
	Present(f Frame) error
}

type PresenterFunc func(f Frame) error

func (fn PresenterFunc) Present(f Frame) error { return fn(f) }

// Presenters fans a frame out in order.
type Presenters []Presenter

func (ps Presenters) Present(f Frame) error {
	var errs []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.Present(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// Stats is a snapshot of the render state.
type Stats struct {
	State      State
	Frames     uint64
	LastFrame  Frame
	Dimensions Dimensions
}

type Option func(*Background)

func WithClock(c Clock) Option { return func(b *Background) { b.clock = c } }

// WithReducedMotion keeps the loop stopped at construction.
func WithReducedMotion(reduced bool) Option {
	return func(b *Background) { b.reducedMotion = reduced }
}

func WithPresenter(p Presenter) Option { return func(b *Background) { b.presenter = p } }

// WithGrainSource makes the grain pattern reproducible.
func WithGrainSource(src rand.Source) Option {
	return func(b *Background) { b.grain = rand.New(src) }
}

func WithLogger(l Logger) Option {
	return func(b *Background) {
		if l != nil {
			b.logger = l
		}
	}
}

// Background owns the animated backdrop: a noise grid, three layers and the
// start/stop state of its redraw loop. Frames are driven by the injected
// FrameScheduler; each frame is a full repaint of the Surface.
type Background struct {
	mu sync.Mutex

	surface   Surface
	viewport  Viewport
	scheduler FrameScheduler
	clock     Clock
	presenter Presenter
	logger    Logger
	grain     *rand.Rand

	grid   *noise.Grid
	layers [3]Layer

	reducedMotion bool

	origin    time.Time
	last      time.Time
	dims      Dimensions
	running   bool
	frame     FrameID
	gen       uint64
	frames    uint64
	lastFrame Frame
}

// New builds the backdrop, sizes the surface from the viewport and starts
// the loop unless reduced motion was requested.
func New(surface Surface, viewport Viewport, scheduler FrameScheduler, opts ...Option) *Background {
	b := &Background{
		surface:   surface,
		viewport:  viewport,
		scheduler: scheduler,
		clock:     SystemClock{},
		logger:    noopLogger{},
		grain:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		grid:      noise.NewGrid(noise.DefaultSeed),
		layers:    DefaultLayers(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.origin = b.clock.Now()
	b.last = b.origin

	b.Resize()
	if b.reducedMotion {
		b.logger.Infof("backdrop", "reduced motion preferred, animation stays stopped")
		return b
	}
	b.Start()
	return b
}

// Resize re-reads the viewport and resizes the surface's backing buffer.
func (b *Background) Resize() {
	w, h := b.viewport.Size()
	dims := ComputeDimensions(w, h, b.viewport.DevicePixelRatio())

	b.mu.Lock()
	defer b.mu.Unlock()
	if dims == b.dims {
		return
	}
	if err := b.surface.Resize(dims.BufferWidth, dims.BufferHeight); err != nil {
		b.logger.Errorf("backdrop", "surface resize to %dx%d failed: %v", dims.BufferWidth, dims.BufferHeight, err)
		return
	}
	b.dims = dims
	b.logger.Infof("backdrop", "resized to %.0fx%.0f@%gx (buffer %dx%d)", dims.Width, dims.Height, dims.DPR, dims.BufferWidth, dims.BufferHeight)
}

// Start resumes the loop. It is a no-op while a frame is already pending.
func (b *Background) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frame != 0 {
		return
	}
	b.running = true
	b.last = b.clock.Now()
	b.scheduleLocked()
	b.logger.Infof("backdrop", "started")
}

// Stop cancels the pending frame. It is a no-op when already stopped.
func (b *Background) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running && b.frame == 0 {
		return
	}
	b.running = false
	if b.frame != 0 {
		b.scheduler.CancelFrame(b.frame)
		b.frame = 0
	}
	b.logger.Infof("backdrop", "stopped")
}

// SetVisible maps visibility notifications onto Start and Stop.
func (b *Background) SetVisible(visible bool) {
	if visible {
		b.Start()
		return
	}
	b.Stop()
}

func (b *Background) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *Background) Dimensions() Dimensions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dims
}

func (b *Background) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := Stopped
	if b.running {
		st = Running
	}
	return Stats{State: st, Frames: b.frames, LastFrame: b.lastFrame, Dimensions: b.dims}
}

// Draw repaints one frame immediately, regardless of the loop state.
func (b *Background) Draw() Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drawLocked()
}

func (b *Background) scheduleLocked() {
	b.gen++
	gen := b.gen
	b.frame = b.scheduler.RequestFrame(func() { b.onFrame(gen) })
}

func (b *Background) onFrame(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen || b.frame == 0 {
		return
	}
	b.frame = 0
	if !b.running {
		return
	}
	b.drawLocked()
	if b.running {
		b.scheduleLocked()
	}
}

func (b *Background) drawLocked() Frame {
	now := b.clock.Now()
	delta := now.Sub(b.last)
	b.last = now
	phase := now.Sub(b.origin).Seconds() * PhaseRate
	d := b.dims

	b.surface.Fill(Backdrop)
	for _, blob := range Blobs(b.layers[:], phase, d.Width, d.Height, b.grid) {
		if err := b.surface.FillRadial(blob.X*d.DPR, blob.Y*d.DPR, blob.Radius*d.DPR, blob.Color); err != nil {
			b.logger.Errorf("backdrop", "blob fill failed: %v", err)
		}
	}
	bw, bh := max(1, d.BufferWidth), max(1, d.BufferHeight)
	for i := 0; i < GrainDots; i++ {
		x := float64(b.grain.IntN(bw))
		y := float64(b.grain.IntN(bh))
		if err := b.surface.Dot(x, y, Grain); err != nil {
			b.logger.Errorf("backdrop", "grain dot failed: %v", err)
			break
		}
	}

	b.frames++
	f := Frame{Number: b.frames, Time: now, Phase: phase, Delta: delta, Dimensions: d}
	b.lastFrame = f
	if b.presenter != nil {
		if err := b.presenter.Present(f); err != nil {
			b.logger.Errorf("backdrop", "present frame %d failed: %v", f.Number, err)
		}
	}
	return f
}
