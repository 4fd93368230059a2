package chunker

import (
	"errors"
	"fmt"
)

var (
	ErrCoverage  = errors.New("chunk ranges do not cover the token sequence")
	ErrLineOrder = errors.New("chunk lines go backward")
)

// Verify checks that chunks own every token index in [0, tokenCount) exactly once,
// in order, and that their lines never decrease. An empty chunk list is accepted.
func Verify(chunks []Chunk, tokenCount int) error {
	if len(chunks) == 0 {
		return nil
	}
	want := 0
	for k, c := range chunks {
		if c.StartToken != want || c.EndToken < c.StartToken {
			return fmt.Errorf("chunk %d spans [%d,%d], want start %d: %w", k, c.StartToken, c.EndToken, want, ErrCoverage)
		}
		if k > 0 && c.Line < chunks[k-1].Line {
			return fmt.Errorf("chunk %d on line %d follows line %d: %w", k, c.Line, chunks[k-1].Line, ErrLineOrder)
		}
		want = c.EndToken + 1
	}
	if want != tokenCount {
		return fmt.Errorf("chunks end at token %d of %d: %w", want-1, tokenCount, ErrCoverage)
	}
	return nil
}
