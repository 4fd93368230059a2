package engine

import (
	"errors"
	"fmt"

	"rsvp-chunker/internal/chunker"
)

// Error kinds. Every error the engine reports wraps exactly one of these.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrDependency    = errors.New("dependency error")
	ErrProcessing    = errors.New("processing error")
)

var (
	ErrEmptyText     = fmt.Errorf("%w: text is empty", ErrConfiguration)
	ErrInvalidTarget = fmt.Errorf("%w: %w", ErrConfiguration, chunker.ErrInvalidTarget)
	ErrNotReady      = fmt.Errorf("%w: tokenizer is not ready", ErrConfiguration)
	ErrBusy          = fmt.Errorf("%w: a job is already running", ErrConfiguration)

	// ErrUnavailable means the tokenizer failed to load. The engine must be recreated.
	ErrUnavailable = fmt.Errorf("%w: engine is unavailable", ErrDependency)

	ErrStopped = errors.New("engine stopped")
)
