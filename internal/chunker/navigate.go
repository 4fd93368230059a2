package chunker

import "sort"

// ChunkAt returns the index of the chunk whose range contains tokenIndex.
func ChunkAt(chunks []Chunk, tokenIndex int) (int, bool) {
	if tokenIndex < 0 {
		return 0, false
	}
	i := sort.Search(len(chunks), func(i int) bool {
		return chunks[i].EndToken >= tokenIndex
	})
	if i == len(chunks) || chunks[i].StartToken > tokenIndex {
		return 0, false
	}
	return i, true
}

// ChunkAtLine returns the first chunk starting on or after line.
func ChunkAtLine(chunks []Chunk, line int) (int, bool) {
	i := sort.Search(len(chunks), func(i int) bool {
		return chunks[i].Line >= line
	})
	if i == len(chunks) {
		return 0, false
	}
	return i, true
}

// SourceLine is one line of the original text as a run of tokens.
type SourceLine struct {
	Number     int     `json:"line_number"`
	FirstToken int     `json:"first_token_index"`
	Tokens     []Token `json:"tokens"`
}

// GroupByLine splits annotated tokens into runs sharing a line number.
func GroupByLine(tokens []Token) []SourceLine {
	var lines []SourceLine
	for i, tok := range tokens {
		if len(lines) == 0 || lines[len(lines)-1].Number != tok.Line {
			lines = append(lines, SourceLine{Number: tok.Line, FirstToken: i})
		}
		last := &lines[len(lines)-1]
		last.Tokens = append(last.Tokens, tok)
	}
	return lines
}
