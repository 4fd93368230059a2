package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"rsvp-chunker/internal/chunker"
)

var _ Store = (*MockStore)(nil)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateJob(ctx context.Context, text string, targetLength int) (Job, error) {
	args := m.Called(ctx, text, targetLength)
	return args.Get(0).(Job), args.Error(1)
}

func (m *MockStore) GetJob(ctx context.Context, id uuid.UUID) (Job, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Job), args.Error(1)
}

func (m *MockStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status JobStatus, reason string) error {
	args := m.Called(ctx, id, status, reason)
	return args.Error(0)
}

func (m *MockStore) UpdateJobProgress(ctx context.Context, id uuid.UUID, processed, total int) error {
	args := m.Called(ctx, id, processed, total)
	return args.Error(0)
}

func (m *MockStore) SaveResult(ctx context.Context, id uuid.UUID, result chunker.Result) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

func (m *MockStore) GetResult(ctx context.Context, id uuid.UUID) (chunker.Result, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(chunker.Result), args.Error(1)
}

func (m *MockStore) CreateBookmark(ctx context.Context, b Bookmark) (Bookmark, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(Bookmark), args.Error(1)
}

func (m *MockStore) GetBookmark(ctx context.Context, id uuid.UUID) (Bookmark, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Bookmark), args.Error(1)
}

func (m *MockStore) ListBookmarks(ctx context.Context) ([]Bookmark, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Bookmark), args.Error(1)
}

func (m *MockStore) DeleteBookmark(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
