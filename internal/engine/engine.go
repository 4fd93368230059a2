package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"rsvp-chunker/internal/chunker"
	"rsvp-chunker/internal/tokenizer"
)

// Options tunes an Engine.
type Options struct {
	ProgressEvery int // tokens between Progress messages
	EventBuffer   int // capacity of the Events channel
}

type state int

const (
	stateLoading state = iota
	stateReady
	stateBusy
	stateUnavailable
)

// Engine runs segmentation jobs one at a time on a background goroutine and talks
// to its host only through messages.
type Engine struct {
	log  *slog.Logger
	load tokenizer.Loader
	opts Options

	submits chan Submit
	events  chan Event

	mu      sync.Mutex
	state   state
	serving bool // run is reading submits
	tok     tokenizer.Tokenizer
}

func New(log *slog.Logger, load tokenizer.Loader, opts Options) *Engine {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = chunker.DefaultProgressEvery
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	return &Engine{
		log:     log,
		load:    load,
		opts:    opts,
		submits: make(chan Submit, 1),
		events:  make(chan Event, opts.EventBuffer),
	}
}

// Events delivers Ready, Progress, Done and Failed messages. It is closed once the
// worker started by Start returns.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Load initializes the tokenizer on the calling goroutine. A failure is permanent.
func (e *Engine) Load(ctx context.Context) error {
	start := time.Now()
	tok, err := e.load(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = stateUnavailable
		e.log.Error("tokenizer failed to load", "err", err)
		return fmt.Errorf("%w: load tokenizer: %w", ErrUnavailable, err)
	}
	e.tok = tok
	e.state = stateReady
	e.log.Info("tokenizer loaded", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Start loads the tokenizer and serves submissions on a new goroutine until ctx ends.
// The outcome of loading arrives on Events as Ready or Failed.
func (e *Engine) Start(ctx context.Context) {
	go e.run(ctx)
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.events)

	if err := e.Load(ctx); err != nil {
		e.send(ctx, failed(uuid.Nil, err))
		return
	}
	e.mu.Lock()
	e.serving = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.serving = false
		e.mu.Unlock()
	}()
	e.send(ctx, Ready{})

	for {
		select {
		case <-ctx.Done():
			e.setState(stateUnavailable)
			return
		case s := <-e.submits:
			ev := e.execute(s, func(ev Event) { e.send(ctx, ev) })
			// Free the engine before the host hears the outcome so it can resubmit at once.
			e.setState(stateReady)
			e.send(ctx, ev)
		}
	}
}

// Submit hands a job to the worker started by Start. It never queues: a job already
// running or a failed tokenizer is rejected, and so is any Submit before the worker
// has sent Ready. Engines driven by Load use Process instead.
func (e *Engine) Submit(s Submit) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.state == stateUnavailable:
		return ErrUnavailable
	case e.state == stateLoading || !e.serving:
		// Without the worker from Start nothing would ever read the job.
		return ErrNotReady
	case e.state == stateBusy:
		return ErrBusy
	}
	e.state = stateBusy
	e.submits <- s
	return nil
}

// Process runs one job on the calling goroutine and passes every message, the
// terminal one last, to emit. It is meant for hosts that call Load instead of Start.
func (e *Engine) Process(s Submit, emit func(Event)) {
	emit(e.execute(s, emit))
}

// execute returns the terminal message; only Progress goes through emit.
func (e *Engine) execute(s Submit, emit func(Event)) (ev Event) {
	log := e.log.With("job_id", s.JobID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("job panicked", "panic", r)
			ev = failed(s.JobID, fmt.Errorf("%w: %v", ErrProcessing, r))
		}
	}()

	if s.Text == "" {
		return failed(s.JobID, ErrEmptyText)
	}
	if s.TargetLength <= 0 {
		return failed(s.JobID, ErrInvalidTarget)
	}
	tok := e.tokenizer()
	if tok == nil {
		return failed(s.JobID, ErrNotReady)
	}

	start := time.Now()
	raw, err := tok.Tokenize(s.Text)
	if err != nil {
		log.Warn("tokenize failed", "err", err)
		return failed(s.JobID, fmt.Errorf("%w: tokenize: %w", ErrDependency, err))
	}
	tokens := chunker.Annotate(s.Text, raw)

	chunks, err := chunker.Segment(tokens, chunker.Options{
		TargetLength:  s.TargetLength,
		ProgressEvery: e.opts.ProgressEvery,
		OnProgress: func(processed, total int) {
			emit(Progress{JobID: s.JobID, Processed: processed, Total: total})
		},
	})
	if err != nil {
		return failed(s.JobID, fmt.Errorf("%w: segment: %w", ErrProcessing, err))
	}
	if err := chunker.Verify(chunks, len(tokens)); err != nil {
		log.Error("segmentation broke chunk invariants", "err", err)
		return failed(s.JobID, fmt.Errorf("%w: %w", ErrProcessing, err))
	}

	log.Info("job completed",
		"tokens", len(tokens),
		"chunks", len(chunks),
		"target_length", s.TargetLength,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Done{JobID: s.JobID, Result: chunker.Result{Tokens: tokens, Chunks: chunks}}
}

// send drops Progress when the host is not keeping up; other messages wait for room.
func (e *Engine) send(ctx context.Context, ev Event) {
	if p, ok := ev.(Progress); ok {
		select {
		case e.events <- ev:
		default:
			e.log.Debug("progress dropped", "job_id", p.JobID, "processed", p.Processed)
		}
		return
	}
	select {
	case e.events <- ev:
	case <-ctx.Done():
	}
}

func (e *Engine) tokenizer() tokenizer.Tokenizer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tok
}

func (e *Engine) setState(s state) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}
