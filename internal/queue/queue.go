package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rsvp-chunker/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

const (
	TaskTypeSegment TaskType = "segment"
)

// Task represents a unit of work handed from the gateway to a worker.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

// LastAttempt reports whether a failure of this delivery exhausts the task's retries.
func (t Task) LastAttempt() bool {
	limit := t.MaxAttempts
	if limit == 0 {
		limit = defaultMaxAttempts
	}
	return t.Attempts+1 >= limit
}

type Handler func(context.Context, Task) error

// Queue exposes a minimal contract to enqueue and consume tasks.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
}

// SegmentPayload names the stored job a segment task refers to.
type SegmentPayload struct {
	JobID uuid.UUID `json:"job_id"`
}

// NewSegmentTask builds a segment task for jobID.
func NewSegmentTask(jobID uuid.UUID) (Task, error) {
	body, err := json.Marshal(SegmentPayload{JobID: jobID})
	if err != nil {
		return Task{}, err
	}
	return Task{Type: TaskTypeSegment, Payload: body}, nil
}

// DecodeSegment reads the payload of a segment task.
func DecodeSegment(task Task) (SegmentPayload, error) {
	var p SegmentPayload
	if err := json.Unmarshal(task.Payload, &p); err != nil {
		return SegmentPayload{}, fmt.Errorf("decode segment payload: %w", err)
	}
	if p.JobID == uuid.Nil {
		return SegmentPayload{}, fmt.Errorf("segment payload has no job id")
	}
	return p, nil
}

// EnqueueWithRetry attempts to enqueue with retries and exponential backoff.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := q.Enqueue(ctx, task); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base, 0)):
		}
	}
	return nil
}
