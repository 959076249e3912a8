package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rook-computer/backdrop/internal/app"
	"github.com/rook-computer/backdrop/internal/export"
)

func main() {
	out := flag.String("o", "backdrop.png", "output file; a single frame is written as a plain PNG")
	width := flag.Float64("width", 640, "logical width")
	height := flag.Float64("height", 360, "logical height")
	dpr := flag.Float64("dpr", 1, "device pixel ratio")
	frames := flag.Int("frames", 90, "number of frames")
	fps := flag.Int("fps", 30, "frames per second")
	offset := flag.Duration("offset", 0, "animation time of the first frame")
	seed := flag.Uint64("seed", 1, "grain seed")
	verbose := flag.Bool("v", false, "log to stderr")
	flag.Parse()

	var logger app.Logger = app.NoopLogger{}
	if *verbose {
		logger = app.NewFileLogger(os.Stderr)
	}

	opts := export.Options{
		Width:     *width,
		Height:    *height,
		DPR:       *dpr,
		Frames:    *frames,
		FPS:       *fps,
		Offset:    *offset,
		GrainSeed: *seed,
		Logger:    logger,
	}

	if err := run(*out, opts); err != nil {
		fmt.Fprintln(os.Stderr, "export error:", err)
		os.Exit(1)
	}
}

func run(path string, opts export.Options) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}

	start := time.Now()
	frames := max(1, opts.Frames)
	if frames == 1 {
		err = export.Still(f, opts)
	} else {
		err = export.Animation(f, opts)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames, %s)\n", path, frames, time.Since(start).Round(time.Millisecond))
	return nil
}
