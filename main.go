package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/gg"

	"github.com/rook-computer/backdrop/internal/app"
	"github.com/rook-computer/backdrop/internal/render"
	"github.com/rook-computer/backdrop/internal/state"
	"github.com/rook-computer/backdrop/internal/system"
	"github.com/rook-computer/backdrop/internal/web"
)

func main() {
	fmt.Println("backdrop starting")

	defaults, err := app.DefaultConfigFromEnv(":80")
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	// Flags
	debug := flag.Bool("debug", defaults.Debug, "enable debug logging to ./backdrop-debug.log; also configurable via "+app.EnvDebug)
	stdioLog := flag.String("stdio-log", defaults.StdioLog, "redirect stdout+stderr (including panics) to this file; also configurable via "+app.EnvStdioLog)
	dpr := flag.Float64("dpr", defaults.DPR, "device pixel ratio of the framebuffer; also configurable via "+app.EnvDPR)
	fps := flag.Int("fps", defaults.FPS, "frame rate of the animation loop; also configurable via "+app.EnvFPS)
	fbPath := flag.String("fb", render.DefaultFramebuffer, "framebuffer device")
	listen := flag.String("listen", defaults.Server.ListenAddr, "control API listen address, empty to disable")
	devMode := flag.Bool("dev", defaults.Server.DevMode, "permissive CORS on the control API")
	overlay := flag.Bool("overlay", false, "draw the status line over the backdrop")
	qr := flag.Bool("qr", false, "with -overlay, show a QR code of the control API")
	reducedMotion := flag.Bool("reduced-motion", false, "keep the animation stopped; otherwise "+system.EnvReducedMotion+" decides")
	flag.Parse()

	// Panics stay readable while the console is in graphics mode.
	if err := system.RedirectStdio(*stdioLog); err != nil {
		fmt.Println("stdio log redirect error:", err)
	}

	// Local file logger when debug enabled
	var logger app.Logger = app.NoopLogger{}
	if *debug {
		fileLogger, f, err := app.OpenDebugLog("./backdrop-debug.log")
		if err == nil {
			defer f.Close()
			logger = fileLogger
			gg.SetLogger(app.NewSlog(logger, "gg"))
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	canvas := render.NewCanvasSurface(1, 1)
	fb := render.NewFBRenderer(canvas)
	fb.Path = *fbPath
	fb.DPR = *dpr
	fb.Logger = logger
	if *overlay {
		fb.Overlay = render.NewOverlay(logger)
	}

	a := app.New(state.NewStore(), fb)
	a.Canvas = canvas
	a.Logger = logger
	a.FPS = *fps
	a.ReducedMotion = *reducedMotion
	a.Console = true
	if *listen != "" {
		addr, err := web.NormalizeListenAddr(*listen)
		if err != nil {
			fmt.Println("config error:", err)
			os.Exit(2)
		}
		cfg := web.ServerConfig{ListenAddr: addr, DevMode: *devMode}
		a.Server = &cfg
		a.OnListening = func(url string) {
			logger.Infof("main", "control API at %s", url)
			if fb.Overlay != nil && *qr {
				if err := fb.Overlay.SetControlURL(url + "/api/v1/status"); err != nil {
					logger.Errorf("main", "qr: %v", err)
				}
			}
		}
	}

	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("app error:", err)
		os.Exit(1)
	}
}
