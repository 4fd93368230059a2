package chunker

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

// tokens builds a gap-free token sequence on line 0. A "/p" suffix marks a particle.
func tokens(surfaces ...string) []Token {
	var out []Token
	offset := 0
	for _, s := range surfaces {
		cat := "名詞"
		if strings.HasSuffix(s, "/p") {
			s = strings.TrimSuffix(s, "/p")
			cat = CategoryParticle
		}
		if s == SentenceTerminator {
			cat = "記号"
		}
		tok := Token{Surface: s, Category: cat, Offset: offset}
		out = append(out, tok)
		offset += tok.Len()
	}
	return out
}

func texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func mustSegment(t *testing.T, toks []Token, target int) []Chunk {
	t.Helper()
	chunks, err := Segment(toks, Options{TargetLength: target})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if err := Verify(chunks, len(toks)); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return chunks
}

func TestSegmentScenarios(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
		target int
		want   []Chunk
	}{
		{
			name:   "short sentence fits in one chunk",
			tokens: tokens("今日", "は/p", "晴れ", "です", "。"),
			target: 10,
			want:   []Chunk{{Text: "今日は晴れです。", StartToken: 0, EndToken: 4}},
		},
		{
			name:   "sentence split at target",
			tokens: tokens("今日", "は/p", "晴れ", "です", "。"),
			target: 4,
			want: []Chunk{
				{Text: "今日は", StartToken: 0, EndToken: 1},
				{Text: "晴れです。", StartToken: 2, EndToken: 4},
			},
		},
		{
			name:   "particle starts new chunk when current chunk is long",
			tokens: tokens("あいうえおかきくけこ", "は/p", "晴れ"),
			target: 10,
			want: []Chunk{
				{Text: "あいうえおかきくけこ", StartToken: 0, EndToken: 0},
				{Text: "は晴れ", StartToken: 1, EndToken: 2},
			},
		},
		{
			name:   "short chunk absorbs particle past the target",
			tokens: tokens("あいうえ", "からまでよりの/p", "晴れ"),
			target: 10,
			want: []Chunk{
				{Text: "あいうえからまでよりの", StartToken: 0, EndToken: 1},
				{Text: "晴れ", StartToken: 2, EndToken: 2},
			},
		},
		{
			name:   "particle that fits is appended",
			tokens: tokens("あいうえ", "からまでより/p", "晴れ"),
			target: 10,
			want: []Chunk{
				{Text: "あいうえからまでより", StartToken: 0, EndToken: 1},
				{Text: "晴れ", StartToken: 2, EndToken: 2},
			},
		},
		{
			name:   "half target is not rounded down",
			tokens: tokens("あい", "からまで/p"),
			target: 5,
			want:   []Chunk{{Text: "あいからまで", StartToken: 0, EndToken: 1}},
		},
		{
			name:   "one character tokens merge two at a time",
			tokens: tokens("a", "b", "c"),
			target: 2,
			want: []Chunk{
				{Text: "ab", StartToken: 0, EndToken: 1},
				{Text: "c", StartToken: 2, EndToken: 2},
			},
		},
		{
			name:   "oversize singleton",
			tokens: tokens(strings.Repeat("長", 50)),
			target: 10,
			want:   []Chunk{{Text: strings.Repeat("長", 50), StartToken: 0, EndToken: 0}},
		},
		{
			name:   "oversize token between short ones stands alone",
			tokens: tokens("ab", strings.Repeat("x", 12), "c"),
			target: 10,
			want: []Chunk{
				{Text: "ab", StartToken: 0, EndToken: 0},
				{Text: strings.Repeat("x", 12), StartToken: 1, EndToken: 1},
				{Text: "c", StartToken: 2, EndToken: 2},
			},
		},
		{
			name:   "second consecutive terminator is dropped",
			tokens: tokens("雨", "。", "。"),
			target: 10,
			want:   []Chunk{{Text: "雨。", StartToken: 0, EndToken: 2}},
		},
		{
			name:   "dropped terminator joins previous chunk range",
			tokens: tokens("雨", "。", "。", "雪"),
			target: 10,
			want: []Chunk{
				{Text: "雨。", StartToken: 0, EndToken: 2},
				{Text: "雪", StartToken: 3, EndToken: 3},
			},
		},
		{
			name:   "leading terminator folds into first chunk",
			tokens: tokens("。", "雪"),
			target: 10,
			want:   []Chunk{{Text: "雪", StartToken: 0, EndToken: 1}},
		},
		{
			name:   "terminators only yield no chunks",
			tokens: tokens("。", "。"),
			target: 10,
			want:   nil,
		},
		{
			name:   "particle with empty accumulator is a default token",
			tokens: tokens("は/p", "晴れ"),
			target: 10,
			want:   []Chunk{{Text: "は晴れ", StartToken: 0, EndToken: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustSegment(t, tt.tokens, tt.target)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSegmentInvalidTarget(t *testing.T) {
	for _, target := range []int{0, -3} {
		if _, err := Segment(tokens("a"), Options{TargetLength: target}); err != ErrInvalidTarget {
			t.Errorf("target %d: expected ErrInvalidTarget, got %v", target, err)
		}
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	chunks := mustSegment(t, nil, 10)
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty input, got %d", len(chunks))
	}
}

func TestSegmentChunkLineIsFirstContributingToken(t *testing.T) {
	text := "。\n雨が\n降る"
	toks := Annotate(text, []Token{
		{Surface: "。", Offset: 0},
		{Surface: "\n", Offset: 1},
		{Surface: "雨", Offset: 2},
		{Surface: "が", Category: CategoryParticle, Offset: 3},
		{Surface: "\n", Offset: 4},
		{Surface: "降る", Offset: 5},
	})
	chunks := mustSegment(t, toks, 2)

	want := []Chunk{
		{Text: "\n雨", Line: 0, StartToken: 0, EndToken: 2},
		{Text: "が\n", Line: 1, StartToken: 3, EndToken: 4},
		{Text: "降る", Line: 2, StartToken: 5, EndToken: 5},
	}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("got %+v, want %+v", chunks, want)
	}
}

func TestSegmentProgressCadence(t *testing.T) {
	tests := []struct {
		name   string
		count  int
		every  int
		expect [][2]int
	}{
		{"partial last batch", 250, 100, [][2]int{{100, 250}, {200, 250}, {250, 250}}},
		{"exact multiple reports once at end", 100, 100, [][2]int{{100, 100}}},
		{"default cadence", 150, 0, [][2]int{{100, 150}, {150, 150}}},
		{"single token", 1, 100, [][2]int{{1, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surfaces := make([]string, tt.count)
			for i := range surfaces {
				surfaces[i] = "字"
			}
			var got [][2]int
			_, err := Segment(tokens(surfaces...), Options{
				TargetLength:  5,
				ProgressEvery: tt.every,
				OnProgress: func(processed, total int) {
					got = append(got, [2]int{processed, total})
				},
			})
			if err != nil {
				t.Fatalf("Segment: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expect) {
				t.Errorf("progress calls %v, want %v", got, tt.expect)
			}
		})
	}
}

// randomTokens produces a gap-free multi-line token stream mixing nouns, particles,
// terminators and newlines.
func randomTokens(r *rand.Rand, n int) (string, []Token) {
	var b strings.Builder
	var toks []Token
	offset := 0
	for i := 0; i < n; i++ {
		var tok Token
		switch k := r.Intn(10); {
		case k == 0:
			tok = Token{Surface: SentenceTerminator, Category: "記号"}
		case k == 1:
			tok = Token{Surface: "\n", Category: "記号"}
		case k < 5:
			tok = Token{Surface: strings.Repeat("は", 1+r.Intn(3)), Category: CategoryParticle}
		default:
			tok = Token{Surface: strings.Repeat("語", 1+r.Intn(14)), Category: "名詞"}
		}
		tok.Offset = offset
		offset += tok.Len()
		b.WriteString(tok.Surface)
		toks = append(toks, tok)
	}
	text := b.String()
	return text, Annotate(text, toks)
}

func TestSegmentProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for run := 0; run < 300; run++ {
		text, toks := randomTokens(r, r.Intn(120))
		target := 1 + r.Intn(20)

		chunks := mustSegment(t, toks, target)

		// order preservation
		var joined strings.Builder
		for _, c := range chunks {
			joined.WriteString(c.Text)
		}
		strip := func(s string) string { return strings.ReplaceAll(s, SentenceTerminator, "") }
		if strip(joined.String()) != strip(text) {
			t.Fatalf("run %d: chunk text %q does not reproduce %q", run, joined.String(), text)
		}

		// length discipline
		for _, c := range chunks {
			span := toks[c.StartToken : c.EndToken+1]
			contributing, particles := 0, 0
			for _, tok := range span {
				if tok.Surface == SentenceTerminator {
					continue
				}
				contributing++
				if tok.IsParticle() {
					particles++
				}
			}
			length := len([]rune(strip(c.Text)))
			if contributing > 1 && particles == 0 && length > target {
				t.Fatalf("run %d: chunk %q has length %d over target %d", run, c.Text, length, target)
			}
		}

		// idempotence
		again := mustSegment(t, toks, target)
		if !reflect.DeepEqual(chunks, again) {
			t.Fatalf("run %d: second pass differs", run)
		}
	}
}
