package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/fxbuild/internal/bundler"
	"github.com/vk/fxbuild/internal/ctxlog"
	"github.com/vk/fxbuild/internal/manifest"
	"github.com/vk/fxbuild/internal/scheduler"
	"github.com/vk/fxbuild/internal/watcher"
	"golang.org/x/sync/errgroup"
)

// Run executes the selected profile. In production it returns after one
// build pass; in development it blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "mode", a.config.Mode)
	defer a.logger.Debug("App.Run method finished.")

	if !a.profile.Watch {
		return a.runOnce(ctx)
	}
	return a.runDevelopment(ctx)
}

func (a *App) runOnce(ctx context.Context) error {
	a.logger.Info("🚀 Building resource.", "resource", a.resource)
	res, err := a.builder.Build(ctx)
	a.status.record(res, err)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if a.profile.Publish && a.publisher != nil {
		if err := a.publisher.Publish(ctx, res.Files); err != nil {
			return fmt.Errorf("publish failed: %w", err)
		}
	}
	a.logger.Info("🏁 Build complete.", "build_id", res.ID, "files", len(res.Files))
	return nil
}

func (a *App) runDevelopment(ctx context.Context) error {
	defer a.notifier.Close()
	if err := a.notifier.Connect(ctx); err != nil {
		// Sends redial on their own; the host may simply not be up yet.
		a.logger.Warn("Remote command channel unavailable.", "error", err)
	}

	coalescer := scheduler.New(a.rebuild)
	layout := a.builder.Layout()
	w, err := watcher.New(ctx, watcher.Options{
		SourceDir:    layout.Source(),
		ManifestPath: layout.Manifest(),
		Include:      a.project.Watch.Include,
		Ignore:       a.project.Watch.Ignore,
	}, func(ev watcher.Event) {
		coalescer.Trigger(requestFor(ev))
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	// The initial pass also reloads the resource on the host, so a fresh
	// session starts from the current sources.
	coalescer.Trigger(scheduler.Request{Refresh: true})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(gctx) })
	g.Go(func() error { return coalescer.Run(gctx) })
	return g.Wait()
}

// requestFor maps a watch event to a rebuild request. Manifest changes may
// add or rename files the host has not indexed yet, so they also refresh.
func requestFor(ev watcher.Event) scheduler.Request {
	return scheduler.Request{Refresh: ev.Kind == watcher.ManifestChanged}
}

// rebuild runs one build pass and then reloads the resource on the host. A
// failed pass is logged and the host is still told to reload, so it picks up
// whatever outputs are on disk. Nothing here stops the loop.
func (a *App) rebuild(ctx context.Context, req scheduler.Request) {
	logger := ctxlog.FromContext(ctx)

	res, err := a.builder.Build(ctx)
	a.status.record(res, err)
	if err != nil {
		switch {
		case errors.Is(err, manifest.ErrParse):
			logger.Error("❌ Invalid manifest, build skipped.", "error", err)
		case errors.Is(err, bundler.ErrSourceRead):
			logger.Error("❌ Source file unreadable, build aborted.", "error", err)
		case ctx.Err() != nil:
			logger.Debug("Build cancelled.", "error", err)
		default:
			logger.Error("❌ Build failed.", "error", err)
		}
	}
	if ctx.Err() != nil {
		return
	}

	if req.Refresh {
		if err := a.notifier.Refresh(ctx); err != nil {
			logger.Warn("Failed to refresh host resources.", "error", err)
		}
	}
	if err := a.notifier.Ensure(ctx, a.resource); err != nil {
		logger.Warn("Failed to ensure resource.", "resource", a.resource, "error", err)
	}
}
