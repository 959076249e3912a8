package render

import (
	"context"
	"sync"
	"time"
)

// Clock supplies frame timestamps. It must be monotonic.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to. Used for offline rendering.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock { return &ManualClock{now: start} }

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// FrameID identifies a requested frame. Zero is never issued.
type FrameID uint64

// FrameScheduler invokes requested callbacks once, on the next display
// refresh, in request order. A callback must not run concurrently with
// another callback from the same scheduler.
type FrameScheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

type queuedFrame struct {
	id FrameID
	fn func()
}

// FrameQueue is a FrameScheduler pumped by its host: every Flush is one
// display refresh.
type FrameQueue struct {
	mu      sync.Mutex
	nextID  FrameID
	pending []queuedFrame
}

func NewFrameQueue() *FrameQueue { return &FrameQueue{} }

func (q *FrameQueue) RequestFrame(fn func()) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.pending = append(q.pending, queuedFrame{id: q.nextID, fn: fn})
	return q.nextID
}

func (q *FrameQueue) CancelFrame(id FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, f := range q.pending {
		if f.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Pending returns the number of callbacks waiting for the next refresh.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush runs the callbacks that were pending when it was called and
// returns how many ran. Frames requested by those callbacks wait for the
// next Flush.
func (q *FrameQueue) Flush() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, f := range batch {
		f.fn()
	}
	return len(batch)
}

// TickerScheduler pumps a FrameQueue from a time.Ticker.
type TickerScheduler struct {
	FrameQueue
	Interval time.Duration
}

func NewTickerScheduler(fps int) *TickerScheduler {
	interval := DefaultFrameInterval
	if fps > 0 {
		interval = time.Second / time.Duration(fps)
	}
	return &TickerScheduler{Interval: interval}
}

// RunLoop flushes once per interval until the context is done.
func (s *TickerScheduler) RunLoop(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush()
		}
	}
}
