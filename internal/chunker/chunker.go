package chunker

import (
	"errors"
)

// DefaultProgressEvery is the progress cadence used when Options leaves it unset.
const DefaultProgressEvery = 100

var ErrInvalidTarget = errors.New("target length must be positive")

// Options controls how tokens are grouped into chunks.
type Options struct {
	// TargetLength is the desired chunk length in characters. It is a soft bound:
	// particles may overshoot it and a single long token always stands alone.
	TargetLength int
	// ProgressEvery sets how many tokens pass between OnProgress calls.
	// The final token always reports.
	ProgressEvery int
	OnProgress    func(processed, total int)
}

// Segment groups line-annotated tokens into display chunks in one left-to-right pass.
// Tokens are never split. Chunk ranges cover every token index exactly once, except
// when the input holds nothing but sentence terminators, in which case no chunk is made.
func Segment(tokens []Token, opts Options) ([]Chunk, error) {
	if opts.TargetLength <= 0 {
		return nil, ErrInvalidTarget
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}

	s := segmenter{target: opts.TargetLength}
	for i, tok := range tokens {
		s.step(i, tok)
		if opts.OnProgress != nil && ((i+1)%opts.ProgressEvery == 0 || i == len(tokens)-1) {
			opts.OnProgress(i+1, len(tokens))
		}
	}
	s.flush()
	return s.chunks, nil
}

// accumulator is the chunk under construction.
type accumulator struct {
	text   string
	length int
	line   int
	start  int
	last   int
	count  int
}

func (a *accumulator) empty() bool {
	return a.count == 0
}

func (a *accumulator) add(i int, tok Token) {
	a.text += tok.Surface
	a.length += tok.Len()
	a.last = i
	a.count++
}

type segmenter struct {
	target int
	acc    accumulator
	next   int // first token index not yet owned by any chunk
	chunks []Chunk
}

func (s *segmenter) step(i int, tok Token) {
	switch {
	case tok.Surface == SentenceTerminator:
		if s.acc.empty() {
			s.drop(i)
			return
		}
		s.acc.add(i, tok)
		s.finalize()

	case tok.IsParticle() && !s.acc.empty():
		// A short chunk absorbs its particle even past the target.
		if s.acc.length+tok.Len() <= s.target || 2*s.acc.length < s.target {
			s.acc.add(i, tok)
			return
		}
		s.finalize()
		s.seed(i, tok)

	default:
		if !s.acc.empty() && s.acc.length+tok.Len() > s.target {
			s.finalize()
		}
		if s.acc.empty() {
			s.seed(i, tok)
		} else {
			s.acc.add(i, tok)
		}
		if s.acc.count == 1 && s.acc.length > s.target {
			s.finalize()
		}
	}
}

// seed starts a new chunk at tok. Leading terminators dropped before the first
// chunk are folded into its range.
func (s *segmenter) seed(i int, tok Token) {
	s.acc = accumulator{start: s.next, line: tok.Line}
	s.acc.add(i, tok)
}

// drop discards a terminator that has nothing to terminate. Its index joins the
// previous chunk so ranges stay contiguous.
func (s *segmenter) drop(i int) {
	if len(s.chunks) == 0 {
		return
	}
	s.chunks[len(s.chunks)-1].EndToken = i
	s.next = i + 1
}

func (s *segmenter) finalize() {
	s.chunks = append(s.chunks, Chunk{
		Text:       s.acc.text,
		Line:       s.acc.line,
		StartToken: s.acc.start,
		EndToken:   s.acc.last,
	})
	s.next = s.acc.last + 1
	s.acc = accumulator{}
}

func (s *segmenter) flush() {
	if !s.acc.empty() {
		s.finalize()
	}
}
