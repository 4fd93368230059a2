package engine

import (
	"context"

	"github.com/google/uuid"

	"rsvp-chunker/internal/chunker"
)

// WaitReady blocks until the engine reports Ready, or returns the load failure.
func WaitReady(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrStopped
			}
			switch ev := ev.(type) {
			case Ready:
				return nil
			case Failed:
				if ev.JobID == uuid.Nil {
					return ev
				}
			}
		}
	}
}

// Await reads events until the terminal message for jobID. Messages belonging to
// other jobs are discarded. A Failed outcome is returned as the error.
func Await(ctx context.Context, events <-chan Event, jobID uuid.UUID, onProgress func(Progress)) (chunker.Result, error) {
	for {
		select {
		case <-ctx.Done():
			return chunker.Result{}, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return chunker.Result{}, ErrStopped
			}
			switch ev := ev.(type) {
			case Progress:
				if ev.JobID == jobID && onProgress != nil {
					onProgress(ev)
				}
			case Done:
				if ev.JobID == jobID {
					return ev.Result, nil
				}
			case Failed:
				if ev.JobID == jobID {
					return chunker.Result{}, ev
				}
			}
		}
	}
}
