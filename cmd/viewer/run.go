package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/Carmen-Shannon/oxy-viewer/rpc"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// liveSettings is the part of the engine a config reload can change without a restart.
type liveSettings interface {
	SetRenderFrameLimit(fps float64)
	SetClearColor(c common.Color)
	SetProfiling(enabled bool)
}

// runViewer serves remote calls for one dimensionality and, unless headless, drives the window on
// the calling goroutine until it closes, a client calls KillServer or the process is signalled.
func runViewer(ctx context.Context, logOut io.Writer, dim geometry.Dim, cfg config.Config, opts *viewerOptions) error {
	level := new(slog.LevelVar)
	if l, err := cfg.Level(); err == nil {
		level.Set(l)
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	common.SetLogger(logger)

	store := scene.NewStore(dim, scene.WithLogger(logger))
	srv := rpc.NewServer(
		rpc.WithService(store),
		rpc.WithAddress(cfg.Address()),
		rpc.WithWorkers(cfg.Server.Workers),
		rpc.WithServerLogger(logger),
	)

	var eng engine.Engine
	if !opts.headless {
		var err error
		if eng, err = newEngine(dim, cfg, store, logger); err != nil {
			return err
		}
		defer eng.Window().Close()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-srv.Done():
			logger.Info("[Viewer] shutting down on client request")
		}
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		err := srv.Shutdown(shutdownCtx)
		if eng != nil {
			eng.Quit()
		}
		cancel()
		return err
	})
	if opts.configPath != "" {
		g.Go(func() error {
			return config.Watch(gctx, opts.configPath, func(next config.Config) {
				applyConfig(eng, level, next)
			})
		})
	}

	logger.Info("[Viewer] started", "dim", dim.String(), "addr", cfg.Address(), "headless", opts.headless)
	if eng == nil {
		return g.Wait()
	}

	runErr := eng.Run()
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	return runErr
}

// newEngine opens the window and renderer on the calling goroutine and wires them to store.
func newEngine(dim geometry.Dim, cfg config.Config, store scene.Store, logger *slog.Logger) (engine.Engine, error) {
	win, err := window.NewWindow(
		window.WithTitle(fmt.Sprintf("%s [%s]", cfg.Window.Title, dim)),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return nil, fmt.Errorf("viewer: open window: %w", err)
	}

	r, err := renderer.NewRenderer(win,
		renderer.WithMSAA(cfg.Render.MSAA),
		renderer.WithVSync(cfg.Render.VSync),
		renderer.WithClearColor(cfg.ClearColor()),
		renderer.WithSoftwareFallback(cfg.Render.SoftwareFallback),
	)
	if err != nil {
		_ = win.Close()
		return nil, fmt.Errorf("viewer: create renderer: %w", err)
	}

	return engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithStore(store),
		engine.WithProfiling(cfg.Profiling),
		engine.WithRenderFrameLimit(cfg.Render.FrameLimit),
		engine.WithLogger(logger),
	), nil
}

// applyConfig pushes the settings that take effect without a restart. target may be nil when
// running headless.
func applyConfig(target liveSettings, level *slog.LevelVar, cfg config.Config) {
	if l, err := cfg.Level(); err == nil {
		level.Set(l)
	}
	if target == nil {
		return
	}
	target.SetRenderFrameLimit(cfg.Render.FrameLimit)
	target.SetClearColor(cfg.ClearColor())
	target.SetProfiling(cfg.Profiling)
}
