package tokenizer

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/ikawaha/kagome-dict/ipa"
	kagome "github.com/ikawaha/kagome/v2/tokenizer"

	"rsvp-chunker/internal/chunker"
)

// Kagome tokenizes Japanese text with the IPA dictionary.
type Kagome struct {
	t *kagome.Tokenizer
}

// NewKagome loads the embedded IPA dictionary. It blocks for a noticeable time.
func NewKagome() (*Kagome, error) {
	t, err := kagome.New(ipa.Dict(), kagome.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("kagome: %w", err)
	}
	return &Kagome{t: t}, nil
}

// LoadKagome is a Loader that gives up waiting when ctx ends.
func LoadKagome(ctx context.Context) (Tokenizer, error) {
	type result struct {
		k   *Kagome
		err error
	}
	done := make(chan result, 1)
	go func() {
		k, err := NewKagome()
		done <- result{k, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return r.k, nil
	}
}

// Tokenize converts kagome's byte positions into character offsets. The first
// part-of-speech feature becomes the token category.
func (k *Kagome) Tokenize(text string) ([]chunker.Token, error) {
	toks := k.t.Tokenize(text)
	out := make([]chunker.Token, 0, len(toks))
	bytePos, offset := 0, 0
	for _, tok := range toks {
		if tok.Position < bytePos || tok.Position > len(text) {
			return nil, fmt.Errorf("token %q at byte %d after byte %d: %w", tok.Surface, tok.Position, bytePos, ErrOutOfOrder)
		}
		offset += utf8.RuneCountInString(text[bytePos:tok.Position])
		bytePos = tok.Position

		var category string
		if pos := tok.POS(); len(pos) > 0 {
			category = pos[0]
		}
		out = append(out, chunker.Token{
			Surface:  tok.Surface,
			Category: category,
			Offset:   offset,
		})
	}
	return out, nil
}
