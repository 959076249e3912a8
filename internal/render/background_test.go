package render

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gg"
)

type radialCall struct {
	cx, cy, radius float64
	core           gg.RGBA
}

// recordingSurface counts drawing operations instead of rasterizing.
type recordingSurface struct {
	mu      sync.Mutex
	width   int
	height  int
	resizes int
	fills   int
	radials []radialCall
	dots    int
}

func (s *recordingSurface) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.resizes++
	return nil
}

func (s *recordingSurface) Fill(gg.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fills++
	s.radials = s.radials[:0]
	s.dots = 0
}

func (s *recordingSurface) FillRadial(cx, cy, radius float64, core gg.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.radials = append(s.radials, radialCall{cx, cy, radius, core})
	return nil
}

func (s *recordingSurface) Dot(x, y float64, _ gg.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x < 0 || y < 0 || int(x) >= s.width || int(y) >= s.height {
		panic("dot outside buffer")
	}
	s.dots++
	return nil
}

func (s *recordingSurface) frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fills
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	surface  *recordingSurface
	viewport *SizedViewport
	queue    *FrameQueue
	clock    *ManualClock
	bg       *Background
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		surface:  &recordingSurface{},
		viewport: NewSizedViewport(1280, 720, 2),
		queue:    NewFrameQueue(),
		clock:    NewManualClock(epoch),
	}
	opts = append([]Option{WithClock(h.clock), WithGrainSource(rand.NewPCG(1, 2))}, opts...)
	h.bg = New(h.surface, h.viewport, h.queue, opts...)
	return h
}

// tick advances the clock by one refresh and pumps the queue.
func (h *harness) tick() int {
	h.clock.Advance(DefaultFrameInterval)
	return h.queue.Flush()
}

func TestNewStartsRunning(t *testing.T) {
	h := newHarness(t)
	if !h.bg.Running() {
		t.Fatal("expected running after New")
	}
	if got := h.queue.Pending(); got != 1 {
		t.Fatalf("pending frames = %d, want 1", got)
	}
	if h.surface.width != 2560 || h.surface.height != 1440 {
		t.Fatalf("buffer = %dx%d, want 2560x1440", h.surface.width, h.surface.height)
	}
	h.tick()
	if got := h.surface.frames(); got != 1 {
		t.Fatalf("frames drawn = %d, want 1", got)
	}
	if got := h.queue.Pending(); got != 1 {
		t.Fatalf("pending after frame = %d, want 1", got)
	}
}

func TestReducedMotionStartsStopped(t *testing.T) {
	h := newHarness(t, WithReducedMotion(true))
	if h.bg.Running() {
		t.Fatal("expected stopped with reduced motion")
	}
	for i := 0; i < 5; i++ {
		h.tick()
	}
	if got := h.surface.frames(); got != 0 {
		t.Fatalf("frames drawn = %d, want 0", got)
	}

	h.bg.Start()
	h.tick()
	if got := h.surface.frames(); got != 1 {
		t.Fatalf("frames after Start = %d, want 1", got)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.bg.Start()
	h.bg.Start()
	if got := h.queue.Pending(); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}
	if ran := h.tick(); ran != 1 {
		t.Fatalf("callbacks run = %d, want 1", ran)
	}
	h.bg.Start()
	if got := h.queue.Pending(); got != 1 {
		t.Fatalf("pending after frame = %d, want 1", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.bg.Stop()
	h.bg.Stop()
	if h.bg.Running() {
		t.Fatal("expected stopped")
	}
	if got := h.queue.Pending(); got != 0 {
		t.Fatalf("pending = %d, want 0", got)
	}
}

func TestNoDrawAfterStop(t *testing.T) {
	h := newHarness(t)
	h.tick()
	h.tick()
	h.bg.Stop()
	before := h.surface.frames()
	for i := 0; i < 10; i++ {
		h.tick()
	}
	if got := h.surface.frames(); got != before {
		t.Fatalf("frames = %d after stop, want %d", got, before)
	}
	if got := h.bg.Stats().Frames; got != uint64(before) {
		t.Fatalf("stats frames = %d, want %d", got, before)
	}

	h.bg.Start()
	h.tick()
	if got := h.surface.frames(); got != before+1 {
		t.Fatalf("frames after restart = %d, want %d", got, before+1)
	}
}

func TestStopThenStartBeforeStaleCallback(t *testing.T) {
	h := newHarness(t)
	// Take the pending frame out of the queue the way a flush would, then
	// stop and restart before it runs.
	h.queue.mu.Lock()
	stale := h.queue.pending
	h.queue.pending = nil
	h.queue.mu.Unlock()

	h.bg.Stop()
	h.bg.Start()
	for _, f := range stale {
		f.fn()
	}
	if got := h.surface.frames(); got != 0 {
		t.Fatalf("stale callback drew %d frames", got)
	}
	if got := h.queue.Pending(); got != 1 {
		t.Fatalf("pending = %d, want exactly 1", got)
	}
}

func TestStartResetsTimeReference(t *testing.T) {
	h := newHarness(t)
	h.tick()
	h.bg.Stop()
	h.clock.Advance(time.Hour)
	h.bg.Start()
	h.tick()
	if got := h.bg.Stats().LastFrame.Delta; got != DefaultFrameInterval {
		t.Fatalf("delta after restart = %v, want %v", got, DefaultFrameInterval)
	}
}

func TestSetVisible(t *testing.T) {
	h := newHarness(t)
	h.bg.SetVisible(false)
	if h.bg.Running() {
		t.Fatal("hidden should stop")
	}
	h.bg.SetVisible(true)
	if !h.bg.Running() {
		t.Fatal("visible should start")
	}
	if got := h.queue.Pending(); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}
}

func TestDrawPaintsFullFrame(t *testing.T) {
	h := newHarness(t)
	h.tick()
	h.tick()

	s := h.surface
	if len(s.radials) != 3 {
		t.Fatalf("radial fills = %d, want 3", len(s.radials))
	}
	if s.dots != GrainDots {
		t.Fatalf("grain dots = %d, want %d", s.dots, GrainDots)
	}
	for i, r := range s.radials {
		if r.radius < MinBlobRadius*2 {
			t.Errorf("blob %d device radius %v below %v", i, r.radius, MinBlobRadius*2)
		}
		if r.core.A != DefaultLayers()[i].Alpha {
			t.Errorf("blob %d alpha = %v", i, r.core.A)
		}
	}
}

func TestResizeClampsZeroViewport(t *testing.T) {
	h := newHarness(t)
	h.viewport.Set(0, 0, 0)
	h.bg.Resize()
	d := h.bg.Dimensions()
	if d.BufferWidth < 1 || d.BufferHeight < 1 {
		t.Fatalf("buffer = %dx%d, want at least 1x1", d.BufferWidth, d.BufferHeight)
	}
	if h.surface.width != 1 || h.surface.height != 1 {
		t.Fatalf("surface = %dx%d, want 1x1", h.surface.width, h.surface.height)
	}
	h.tick()
	if got := h.surface.frames(); got != 1 {
		t.Fatalf("frames = %d, want 1", got)
	}
}

func TestResizeSkipsUnchanged(t *testing.T) {
	h := newHarness(t)
	h.bg.Resize()
	h.bg.Resize()
	if h.surface.resizes != 1 {
		t.Fatalf("resizes = %d, want 1", h.surface.resizes)
	}
}

func TestPresenterReceivesFrames(t *testing.T) {
	var got []Frame
	p := PresenterFunc(func(f Frame) error {
		got = append(got, f)
		return nil
	})
	h := newHarness(t, WithPresenter(p))
	h.tick()
	h.tick()
	if len(got) != 2 {
		t.Fatalf("presented %d frames, want 2", len(got))
	}
	if got[0].Number != 1 || got[1].Number != 2 {
		t.Fatalf("frame numbers = %d,%d", got[0].Number, got[1].Number)
	}
	if got[1].Phase <= got[0].Phase {
		t.Fatalf("phase did not advance: %v then %v", got[0].Phase, got[1].Phase)
	}
	wantPhase := (2 * DefaultFrameInterval).Seconds() * PhaseRate
	if diff := got[1].Phase - wantPhase; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("phase = %v, want %v", got[1].Phase, wantPhase)
	}
}

func TestStateString(t *testing.T) {
	if Running.String() != "running" || Stopped.String() != "stopped" {
		t.Fatal("unexpected state names")
	}
}
