package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"rsvp-chunker/internal/chunker"
)

type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

var (
	ErrJobNotFound      = errors.New("job not found")
	ErrBookmarkNotFound = errors.New("bookmark not found")
)

// Job is one segmentation request and its lifecycle.
type Job struct {
	ID           uuid.UUID
	Text         string
	TargetLength int
	Status       JobStatus
	Processed    int
	Total        int
	Reason       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Bookmark pins a reading position. TokenIndex stays valid because segmenting the
// same text with the same target always yields the same chunks.
type Bookmark struct {
	ID           uuid.UUID
	Title        string
	Text         string
	TargetLength int
	TokenIndex   int
	CreatedAt    time.Time
}

// Store defines the persistence contract of the host services.
type Store interface {
	CreateJob(ctx context.Context, text string, targetLength int) (Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status JobStatus, reason string) error
	UpdateJobProgress(ctx context.Context, id uuid.UUID, processed, total int) error
	// SaveResult replaces any stored result and marks the job completed.
	SaveResult(ctx context.Context, id uuid.UUID, result chunker.Result) error
	GetResult(ctx context.Context, id uuid.UUID) (chunker.Result, error)

	CreateBookmark(ctx context.Context, b Bookmark) (Bookmark, error)
	GetBookmark(ctx context.Context, id uuid.UUID) (Bookmark, error)
	ListBookmarks(ctx context.Context) ([]Bookmark, error)
	DeleteBookmark(ctx context.Context, id uuid.UUID) error
}
