// Package export renders backdrop frames offline, on a fixed clock with
// reproducible grain.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math/rand/v2"
	"time"

	"github.com/kettek/apng"

	"github.com/rook-computer/backdrop/internal/render"
)

var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type Options struct {
	Width, Height float64 // logical pixels
	DPR           float64
	Frames        int
	FPS           int
	// Offset is the animation time of the first frame.
	Offset    time.Duration
	GrainSeed uint64
	Logger    render.Logger
}

func (o Options) withDefaults() Options {
	if o.DPR <= 0 {
		o.DPR = 1
	}
	if o.Frames <= 0 {
		o.Frames = 1
	}
	if o.FPS <= 0 {
		o.FPS = 30
	}
	return o
}

func (o Options) interval() time.Duration {
	return time.Second / time.Duration(o.FPS)
}

// Render draws opts.Frames frames and hands each one to fn. The image is
// owned by fn.
func Render(opts Options, fn func(f render.Frame, img *image.RGBA) error) error {
	opts = opts.withDefaults()
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("export: size must be positive (got %vx%v)", opts.Width, opts.Height)
	}

	clock := render.NewManualClock(epoch)
	canvas := render.NewCanvasSurface(1, 1)
	queue := render.NewFrameQueue()
	bgOpts := []render.Option{
		render.WithClock(clock),
		render.WithGrainSource(rand.NewPCG(opts.GrainSeed, opts.GrainSeed^0x9e3779b97f4a7c15)),
		render.WithPresenter(canvas),
	}
	if opts.Logger != nil {
		bgOpts = append(bgOpts, render.WithLogger(opts.Logger))
	}
	bg := render.New(canvas, render.NewSizedViewport(opts.Width, opts.Height, opts.DPR), queue, bgOpts...)
	defer bg.Stop()

	clock.Advance(opts.Offset)
	for i := 0; i < opts.Frames; i++ {
		if queue.Flush() != 1 {
			return errors.New("export: frame loop stalled")
		}
		img := canvas.Latest()
		if img == nil {
			return errors.New("export: no frame presented")
		}
		if err := fn(bg.Stats().LastFrame, img); err != nil {
			return err
		}
		clock.Advance(opts.interval())
	}
	return nil
}

// Frames renders and collects every frame.
func Frames(opts Options) ([]*image.RGBA, error) {
	var frames []*image.RGBA
	err := Render(opts, func(_ render.Frame, img *image.RGBA) error {
		frames = append(frames, img)
		return nil
	})
	return frames, err
}

// WriteAPNG encodes frames as an endlessly looping animated PNG at fps.
func WriteAPNG(w io.Writer, frames []*image.RGBA, fps int) error {
	if len(frames) == 0 {
		return errors.New("export: no frames")
	}
	if fps <= 0 || fps > 0xffff {
		return fmt.Errorf("export: fps out of range (got %d)", fps)
	}
	a := apng.APNG{Frames: make([]apng.Frame, len(frames))}
	for i, img := range frames {
		a.Frames[i] = apng.Frame{
			Image:            img,
			DelayNumerator:   1,
			DelayDenominator: uint16(fps),
		}
	}
	if err := apng.Encode(w, a); err != nil {
		return fmt.Errorf("export: encode apng: %w", err)
	}
	return nil
}

// Animation renders opts and writes the result as an animated PNG.
func Animation(w io.Writer, opts Options) error {
	opts = opts.withDefaults()
	frames, err := Frames(opts)
	if err != nil {
		return err
	}
	return WriteAPNG(w, frames, opts.FPS)
}

// Still renders the first frame of opts as a plain PNG.
func Still(w io.Writer, opts Options) error {
	opts.Frames = 1
	var encodeErr error
	err := Render(opts, func(_ render.Frame, img *image.RGBA) error {
		encodeErr = png.Encode(w, img)
		return encodeErr
	})
	if err != nil {
		return err
	}
	return encodeErr
}
