package tokenizer

import (
	"github.com/stretchr/testify/mock"

	"rsvp-chunker/internal/chunker"
)

// MockTokenizer is a mock implementation of Tokenizer using testify/mock.
type MockTokenizer struct {
	mock.Mock
}

func (m *MockTokenizer) Tokenize(text string) ([]chunker.Token, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]chunker.Token), args.Error(1)
}
