package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rsvp-chunker/internal/app"
	"rsvp-chunker/internal/cache"
	"rsvp-chunker/internal/chunker"
	"rsvp-chunker/internal/engine"
	"rsvp-chunker/internal/queue"
	"rsvp-chunker/internal/store"
)

// jobEngine is the part of *engine.Engine the worker drives.
type jobEngine interface {
	Submit(engine.Submit) error
	Events() <-chan engine.Event
}

type worker struct {
	log      *slog.Logger
	store    store.Store
	cache    cache.Cache
	engine   jobEngine
	timeout  time.Duration
	cacheTTL time.Duration
}

func newWorker(deps app.Deps, eng jobEngine) *worker {
	return &worker{
		log:      deps.Log,
		store:    deps.Store,
		cache:    deps.Cache,
		engine:   eng,
		timeout:  deps.Config.JobTimeout,
		cacheTTL: time.Duration(deps.Config.CacheTTL) * time.Second,
	}
}

// handle processes one segment task. A Failed reply from the engine is recorded on
// the job and not retried; infrastructure errors are returned so the queue retries.
func (w *worker) handle(ctx context.Context, task queue.Task) error {
	payload, err := queue.DecodeSegment(task)
	if err != nil {
		w.log.Error("dropping malformed segment task", "task_id", task.ID, "err", err)
		return nil
	}
	log := w.log.With("job_id", payload.JobID, "attempt", task.Attempts+1)

	job, err := w.store.GetJob(ctx, payload.JobID)
	if errors.Is(err, store.ErrJobNotFound) {
		log.Warn("job no longer exists")
		return nil
	}
	if err != nil {
		return err
	}
	if job.Status == store.StatusCompleted {
		log.Info("job already completed")
		return nil
	}

	err = w.process(ctx, log, job)
	if err == nil {
		return nil
	}

	var failed engine.Failed
	if errors.As(err, &failed) {
		log.Warn("job failed", "reason", failed.Reason)
		return w.store.UpdateJobStatus(ctx, job.ID, store.StatusFailed, failed.Reason)
	}
	if task.LastAttempt() {
		log.Error("job out of retries", "err", err)
		if upErr := w.store.UpdateJobStatus(ctx, job.ID, store.StatusFailed, err.Error()); upErr != nil {
			log.Error("failed to mark job failed", "err", upErr)
		}
	}
	return err
}

func (w *worker) process(ctx context.Context, log *slog.Logger, job store.Job) error {
	if err := w.store.UpdateJobStatus(ctx, job.ID, store.StatusRunning, ""); err != nil {
		return err
	}

	key := cache.GenerateCacheKey(job.Text, job.TargetLength)
	cached, err := w.cache.GetResult(ctx, key)
	if err != nil {
		log.Warn("cache lookup failed", "err", err)
	}
	if cached != nil {
		log.Info("cache hit", "chunks", len(cached.Chunks))
		return w.store.SaveResult(ctx, job.ID, *cached)
	}

	result, err := w.segment(ctx, log, job)
	if err != nil {
		return err
	}
	if err := w.store.SaveResult(ctx, job.ID, result); err != nil {
		return err
	}
	if err := w.cache.SetResult(ctx, key, &result, w.cacheTTL); err != nil {
		log.Warn("cache store failed", "err", err)
	}
	return nil
}

func (w *worker) segment(ctx context.Context, log *slog.Logger, job store.Job) (chunker.Result, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	err := w.engine.Submit(engine.Submit{JobID: job.ID, Text: job.Text, TargetLength: job.TargetLength})
	if err != nil {
		return chunker.Result{}, err
	}
	return engine.Await(ctx, w.engine.Events(), job.ID, func(p engine.Progress) {
		if err := w.store.UpdateJobProgress(ctx, job.ID, p.Processed, p.Total); err != nil {
			log.Warn("failed to record progress", "err", err)
		}
	})
}
