package chunker

import "sort"

// LineIndex maps character offsets to 0-based line numbers.
type LineIndex struct {
	breaks []int // character offsets of '\n', ascending
}

// NewLineIndex records every newline position in text.
func NewLineIndex(text string) LineIndex {
	var breaks []int
	offset := 0
	for _, r := range text {
		if r == '\n' {
			breaks = append(breaks, offset)
		}
		offset++
	}
	return LineIndex{breaks: breaks}
}

// Line returns the number of newlines at offsets strictly less than offset.
func (x LineIndex) Line(offset int) int {
	return sort.SearchInts(x.breaks, offset)
}

// Annotate returns a copy of tokens with Line resolved against text.
func Annotate(text string, tokens []Token) []Token {
	idx := NewLineIndex(text)
	out := make([]Token, len(tokens))
	for i, tok := range tokens {
		tok.Line = idx.Line(tok.Offset)
		out[i] = tok
	}
	return out
}
