package chunker

import (
	"errors"
	"testing"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []Chunk
		count   int
		wantErr error
	}{
		{"no chunks", nil, 3, nil},
		{"exact cover", []Chunk{{StartToken: 0, EndToken: 1}, {StartToken: 2, EndToken: 4}}, 5, nil},
		{"gap", []Chunk{{StartToken: 0, EndToken: 1}, {StartToken: 3, EndToken: 4}}, 5, ErrCoverage},
		{"overlap", []Chunk{{StartToken: 0, EndToken: 2}, {StartToken: 2, EndToken: 4}}, 5, ErrCoverage},
		{"does not start at zero", []Chunk{{StartToken: 1, EndToken: 4}}, 5, ErrCoverage},
		{"short of the end", []Chunk{{StartToken: 0, EndToken: 3}}, 5, ErrCoverage},
		{"inverted range", []Chunk{{StartToken: 0, EndToken: -1}}, 0, ErrCoverage},
		{"line goes backward", []Chunk{{Line: 2, StartToken: 0, EndToken: 0}, {Line: 1, StartToken: 1, EndToken: 1}}, 2, ErrLineOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.chunks, tt.count)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
