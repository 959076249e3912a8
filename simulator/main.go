package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/gg"

	"github.com/rook-computer/backdrop/internal/app"
	"github.com/rook-computer/backdrop/internal/render"
	"github.com/rook-computer/backdrop/internal/state"
	"github.com/rook-computer/backdrop/internal/system"
	"github.com/rook-computer/backdrop/internal/window"
)

func main() {
	defaults, err := app.DefaultConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.Server.ListenAddr, "control API listen address, empty to disable")
	devMode := flag.Bool("dev", defaults.Server.DevMode, "permissive CORS on the control API")
	debug := flag.Bool("debug", defaults.Debug, "log to ./backdrop-debug.log")
	width := flag.Int("width", window.DefaultWidth, "initial window width")
	height := flag.Int("height", window.DefaultHeight, "initial window height")
	pauseOnBlur := flag.Bool("pause-on-blur", false, "treat an unfocused window as hidden")
	reducedMotion := flag.Bool("reduced-motion", false, "keep the animation stopped; otherwise "+system.EnvReducedMotion+" or the desktop setting decides")
	flag.Parse()

	var logger app.Logger = app.NoopLogger{}
	if *debug {
		fileLogger, f, err := app.OpenDebugLog("./backdrop-debug.log")
		if err != nil {
			fmt.Println("debug log open error:", err)
		} else {
			defer f.Close()
			logger = fileLogger
			gg.SetLogger(app.NewSlog(logger, "gg"))
		}
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	canvas := render.NewCanvasSurface(1, 1)
	win := window.New(canvas, *width, *height)
	win.Title = "backdrop simulator"
	win.Logger = logger
	win.PauseOnBlur = *pauseOnBlur

	a := app.New(state.NewStore(), win)
	a.Canvas = canvas
	a.Logger = logger
	a.Runner = system.ShellRunner{}
	a.ReducedMotion = *reducedMotion
	if *listenAddr != "" {
		cfg := defaults.Server
		cfg.ListenAddr, cfg.DevMode = *listenAddr, *devMode
		a.Server = &cfg
		a.OnListening = func(url string) {
			fmt.Println("backdrop simulator API:", url+"/api/v1/")
		}
		a.Routes = func(mux *http.ServeMux, ctrl *app.Controller) {
			registerSimEndpoints(mux, NewSimControl(ctrl))
		}
	}

	done := make(chan error, 1)
	go func() { done <- a.Start(processCtx) }()

	// ebiten owns the main goroutine until the window closes.
	if err := win.Run(); err != nil {
		fmt.Println("window error:", err)
	}
	stop()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("app error:", err)
		os.Exit(1)
	}
}
