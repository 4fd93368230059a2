package chunker

import (
	"strings"
	"testing"
)

func naiveLine(text string, offset int) int {
	line := 0
	for i, r := range []rune(text) {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
		}
	}
	return line
}

func TestLineIndexMatchesLinearCount(t *testing.T) {
	texts := []string{
		"",
		"一行だけ",
		"一行目\n二行目\n三行目",
		"\n\n先頭に空行",
		"末尾に改行\n",
		"混在 mixed\nテキスト\n\nend",
	}
	for _, text := range texts {
		idx := NewLineIndex(text)
		n := len([]rune(text))
		for offset := 0; offset <= n; offset++ {
			if got, want := idx.Line(offset), naiveLine(text, offset); got != want {
				t.Errorf("%q offset %d: got line %d, want %d", text, offset, got, want)
			}
		}
	}
}

func TestLineIndexNewlineBelongsToItsLine(t *testing.T) {
	idx := NewLineIndex("ab\ncd")
	if got := idx.Line(2); got != 0 {
		t.Errorf("newline itself should be on line 0, got %d", got)
	}
	if got := idx.Line(3); got != 1 {
		t.Errorf("character after newline should be on line 1, got %d", got)
	}
}

func TestAnnotateUsesCharacterOffsets(t *testing.T) {
	text := "雨が\n降る"
	in := []Token{
		{Surface: "雨", Offset: 0},
		{Surface: "が", Offset: 1},
		{Surface: "\n", Offset: 2},
		{Surface: "降る", Offset: 3},
	}
	out := Annotate(text, in)

	wantLines := []int{0, 0, 0, 1}
	for i, tok := range out {
		if tok.Line != wantLines[i] {
			t.Errorf("token %d %q: got line %d, want %d", i, tok.Surface, tok.Line, wantLines[i])
		}
	}
	for _, tok := range in {
		if tok.Line != 0 {
			t.Fatal("Annotate must not modify its input")
		}
	}
}

func TestAnnotateLongText(t *testing.T) {
	text := strings.Repeat("字\n", 1000)
	var toks []Token
	for i, r := range []rune(text) {
		toks = append(toks, Token{Surface: string(r), Offset: i})
	}
	out := Annotate(text, toks)
	if got := out[1999].Line; got != 999 {
		t.Errorf("last newline on line %d, want 999", got)
	}
	if got := out[1998].Line; got != 999 {
		t.Errorf("last character on line %d, want 999", got)
	}
}
