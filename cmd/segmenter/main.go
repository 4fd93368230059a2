package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"rsvp-chunker/internal/app"
	"rsvp-chunker/internal/engine"
	"rsvp-chunker/internal/httputil"
	"rsvp-chunker/internal/queue"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	if err := run(deps); err != nil {
		deps.Log.Error("segmenter service stopped", "err", err)
		_ = deps.Close()
		os.Exit(1)
	}
	_ = deps.Close()
}

func run(deps app.Deps) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps.Log.Info("segmenter worker starting")
	eng := engine.New(deps.Log, deps.Tokenizer, engine.Options{
		ProgressEvery: deps.Config.ProgressEvery,
		EventBuffer:   deps.Config.EventBuffer,
	})
	eng.Start(ctx)
	if err := engine.WaitReady(ctx, eng.Events()); err != nil {
		return err
	}

	w := newWorker(deps, eng)
	g, ctx := errgroup.WithContext(ctx)

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeSegment, w.handle)
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps.Log, deps.Config.Port, "segmenter")
	})

	return g.Wait()
}
