package tokenizer

import (
	"context"
	"errors"
	"fmt"

	"rsvp-chunker/internal/chunker"
)

var (
	ErrUnknownProvider = errors.New("unknown tokenizer provider")
	ErrOutOfOrder      = errors.New("tokenizer returned tokens out of order")
)

// Tokenizer maps source text to an ordered, gap-free token stream with character offsets.
type Tokenizer interface {
	Tokenize(text string) ([]chunker.Token, error)
}

// Loader builds a Tokenizer. Dictionary loading is slow, so callers run it off the
// interactive goroutine.
type Loader func(ctx context.Context) (Tokenizer, error)

// NewLoader returns the loader registered under name.
func NewLoader(name string) (Loader, error) {
	switch name {
	case "kagome":
		return LoadKagome, nil
	default:
		return nil, fmt.Errorf("%q (valid option: kagome): %w", name, ErrUnknownProvider)
	}
}
