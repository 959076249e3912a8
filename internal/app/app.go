package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/backdrop/internal/render"
	"github.com/rook-computer/backdrop/internal/state"
	"github.com/rook-computer/backdrop/internal/system"
	"github.com/rook-computer/backdrop/internal/web"
)

type App struct {
	Store  *state.Store
	Host   render.Host
	Canvas *render.CanvasSurface
	Logger Logger

	// Runner probes the desktop reduced-motion setting when
	// ReducedMotion is not forced.
	Runner        system.Runner
	ReducedMotion bool
	FPS           int

	// Server, when set, serves the control API for the running backdrop.
	Server      *web.ServerConfig
	OnListening func(url string)
	// Routes registers host-specific endpoints on the control server.
	Routes func(mux *http.ServeMux, ctrl *Controller)

	// Console switches the VT to graphics mode, watches evdev ExitKeys
	// and ToggleKeys and treats SIGUSR1/SIGUSR2 as visibility notifications.
	Console    bool
	ExitKeys   []uint16
	ToggleKeys []uint16

	// Options are appended to the backdrop options the app builds.
	Options []render.Option

	mu         sync.Mutex
	controller *Controller

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store *state.Store, host render.Host) *App {
	return &App{
		Store:      store,
		Host:       host,
		Logger:     NoopLogger{},
		FPS:        render.DefaultFPS,
		ExitKeys:   []uint16{system.KeyF4},
		ToggleKeys: []uint16{system.KeySpace},
		exitCh:     make(chan error, 1),
	}
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Controller returns the loop controller once Start has built it.
func (app *App) Controller() *Controller {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.controller
}

// Start builds the backdrop on the host and blocks until ctx is done or
// Exit is called.
func (app *App) Start(ctx context.Context) error {
	if app.Host == nil {
		return errors.New("app: no host")
	}
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	if app.Store == nil {
		app.Store = state.NewStore()
	}
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)

	if err := app.Host.Start(ctx); err != nil {
		app.Logger.Errorf("app", "host start error: %v", err)
		return err
	}
	defer app.Host.Stop()

	if app.Console {
		defer system.AcquireConsole(app.Logger)()
	}

	reduced := app.reducedMotion(ctx)
	app.Store.SetReducedMotion(reduced)

	if app.Canvas == nil {
		app.Canvas = render.NewCanvasSurface(1, 1)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup

	var scheduler render.FrameScheduler
	if pumped, ok := app.Host.(render.PumpedHost); ok {
		scheduler = pumped.Scheduler()
	} else {
		ticker := render.NewTickerScheduler(app.FPS)
		scheduler = ticker
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker.RunLoop(loopCtx)
		}()
	}

	// The canvas publishes its frame first so the host reads the new one.
	opts := append([]render.Option{
		render.WithReducedMotion(reduced),
		render.WithLogger(app.Logger),
		render.WithPresenter(render.Presenters{app.Canvas, app.Host, RecordFrames(app.Store)}),
	}, app.Options...)
	bg := render.New(app.Canvas, app.Host, scheduler, opts...)

	ctrl := NewController(bg, app.Store, app.Logger)
	app.mu.Lock()
	app.controller = ctrl
	app.mu.Unlock()
	defer ctrl.Stop()

	if hooked, ok := app.Host.(render.HookedHost); ok {
		hooked.SetHooks(ctrl.Hooks(app.Exit))
	}

	if app.Console {
		system.WatchKeys(loopCtx, app.Logger, app.consoleKeys(ctrl))
		system.WatchVisibility(loopCtx, app.Logger, ctrl.SetVisible)
	}

	if app.Server != nil {
		srv := web.NewHTTPServer(*app.Server, web.APIV1Config{Controller: ctrl, Store: app.Store, Frames: app.Canvas})
		srv.Logger = app.Logger
		if app.Routes != nil {
			srv.Routes = func(mux *http.ServeMux) { app.Routes(mux, ctrl) }
		}
		if err := srv.Start(loopCtx); err != nil {
			app.Logger.Errorf("web", "server start error: %v", err)
		} else {
			defer srv.Stop()
			if app.OnListening != nil {
				ip, err := system.PrimaryIPv4()
				if err != nil {
					app.Logger.Infof("web", "no LAN address: %v", err)
				}
				app.OnListening(web.AdvertisedURL(srv.URL(), ip))
			}
		}
	}

	app.Logger.Infof("app", "backdrop up, running=%t reducedMotion=%t", ctrl.Running(), reduced)

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	}
	cancel()
	wg.Wait()
	return err
}

func (app *App) consoleKeys(ctrl *Controller) system.KeyMap {
	keys := system.KeyMap{}
	for _, k := range app.ToggleKeys {
		keys[k] = ctrl.Toggle
	}
	for _, k := range app.ExitKeys {
		keys[k] = func() { app.Exit(nil) }
	}
	return keys
}

func (app *App) reducedMotion(ctx context.Context) bool {
	if app.ReducedMotion {
		app.Logger.Infof("app", "reduced motion forced")
		return true
	}
	reduced, source, err := system.PrefersReducedMotion(ctx, app.Runner)
	if err != nil {
		app.Logger.Errorf("app", "reduced motion probe (%s): %v", source, err)
	}
	app.Logger.Infof("app", "reduced motion=%t (%s)", reduced, source)
	return reduced
}

// Stop asks a running app to return from Start.
func (app *App) Stop() error {
	app.Exit(nil)
	return nil
}
