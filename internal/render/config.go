package render

import (
	"image/color"
	"time"

	"github.com/gogpu/gg"
)

// Global render configuration for the backdrop.
var (
	// Backdrop is the near-black base every frame starts from.
	Backdrop = gg.RGBA{R: 8.0 / 255, G: 10.0 / 255, B: 14.0 / 255, A: 1}

	// Grain is the color of the anti-banding dots.
	Grain = gg.RGBA{R: 0, G: 0, B: 0, A: GrainAlpha}

	// Foreground is used by the framebuffer overlay text.
	Foreground = color.RGBA{R: 0xD8, G: 0xE0, B: 0xEA, A: 0xFF} // #d8e0ea
)

const (
	// PhaseRate converts clock seconds into the slow noise phase.
	PhaseRate = 0.08

	// MinBlobRadius is in device-independent pixels.
	MinBlobRadius = 200

	GrainDots  = 200
	GrainAlpha = 0.03

	DefaultFPS = 60

	// DefaultFrameInterval is the refresh interval of the ticker scheduler.
	DefaultFrameInterval = time.Second / DefaultFPS
)
