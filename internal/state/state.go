package state

import (
	"sync"
	"time"
)

type Phase int

const (
	STOPPED Phase = iota
	RUNNING
)

func (p Phase) String() string {
	if p == RUNNING {
		return "running"
	}
	return "stopped"
}

type FrameInfo struct {
	Number uint64
	Phase  float64
	Delta  time.Duration
	At     time.Time
}

type SurfaceInfo struct {
	Width        float64
	Height       float64
	DPR          float64
	BufferWidth  int
	BufferHeight int
}

type State struct {
	Phase         Phase
	ReducedMotion bool
	Frame         FrameInfo
	Surface       SurfaceInfo
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: STOPPED}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

func (store *Store) SetReducedMotion(reduced bool) {
	store.mu.Lock()
	store.state.ReducedMotion = reduced
	store.mu.Unlock()
}

func (store *Store) UpdateFrame(frame FrameInfo) {
	store.mu.Lock()
	store.state.Frame = frame
	store.mu.Unlock()
}

func (store *Store) UpdateSurface(surface SurfaceInfo) {
	store.mu.Lock()
	store.state.Surface = surface
	store.mu.Unlock()
}
