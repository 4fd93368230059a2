package chunker

import "unicode/utf8"

const (
	// SentenceTerminator closes the chunk it is appended to.
	SentenceTerminator = "。"

	// CategoryParticle is the part-of-speech tag of grammatical particles.
	CategoryParticle = "助詞"
)

// Token is one morpheme from the tokenizer, decorated with its source line.
type Token struct {
	Surface  string `json:"surface"`
	Category string `json:"category"`
	Offset   int    `json:"source_offset"` // in characters
	Line     int    `json:"line_number"`
}

// Len returns the surface length in characters.
func (t Token) Len() int {
	return utf8.RuneCountInString(t.Surface)
}

func (t Token) IsParticle() bool {
	return t.Category == CategoryParticle
}

// Chunk is one display frame and the inclusive token range it was built from.
type Chunk struct {
	Text       string `json:"text"`
	Line       int    `json:"line_number"`
	StartToken int    `json:"start_token_index"`
	EndToken   int    `json:"end_token_index"`
}

// Result is the complete output of one segmentation job.
type Result struct {
	Tokens []Token `json:"tokens"`
	Chunks []Chunk `json:"chunks"`
}
