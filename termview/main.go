package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/backdrop/internal/app"
	"github.com/rook-computer/backdrop/internal/render"
	"github.com/rook-computer/backdrop/internal/state"
	"github.com/rook-computer/backdrop/internal/system"
	"github.com/rook-computer/backdrop/internal/terminal"
)

func main() {
	defaults, err := app.DefaultConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", "", "control API listen address, empty to disable")
	debug := flag.Bool("debug", defaults.Debug, "log to ./backdrop-debug.log")
	fps := flag.Int("fps", 30, "frame rate of the animation loop")
	reducedMotion := flag.Bool("reduced-motion", false, "keep the animation stopped; otherwise "+system.EnvReducedMotion+" or the desktop setting decides")
	flag.Parse()

	// The terminal owns stdout, so logging only goes to the file.
	var logger app.Logger = app.NoopLogger{}
	if *debug {
		fileLogger, f, err := app.OpenDebugLog("./backdrop-debug.log")
		if err != nil {
			fmt.Println("debug log open error:", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = fileLogger
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	canvas := render.NewCanvasSurface(1, 1)
	term := terminal.New(nil, canvas)
	term.Logger = logger

	a := app.New(state.NewStore(), term)
	a.Canvas = canvas
	a.Logger = logger
	a.FPS = *fps
	a.Runner = system.ShellRunner{}
	a.ReducedMotion = *reducedMotion
	if *listenAddr != "" {
		cfg := defaults.Server
		cfg.ListenAddr = *listenAddr
		a.Server = &cfg
		a.OnListening = func(url string) { logger.Infof("main", "control API at %s", url) }
	}

	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("app error:", err)
		os.Exit(1)
	}
}
