package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "short text stays whole",
			text:       "hello world",
			chunkSize:  100,
			overlap:    10,
			wantChunks: 1,
		},
		{
			name:       "exact chunk size stays whole",
			text:       strings.Repeat("a", 50),
			chunkSize:  50,
			overlap:    10,
			wantChunks: 1,
		},
		{
			name:       "long text splits with overlap",
			text:       strings.Repeat("a", 250),
			chunkSize:  100,
			overlap:    20,
			wantChunks: 3, // steps of 80: 0, 80, 160 cover 250
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Fatalf("SplitText() returned %d chunks, want %d", len(chunks), tt.wantChunks)
			}
			for i, c := range chunks {
				if len([]rune(c)) > tt.chunkSize {
					t.Errorf("chunk %d exceeds chunk size: %d", i, len(c))
				}
			}
		})
	}
}

func TestSplitTextOverlapPreservesBoundary(t *testing.T) {
	text := strings.Repeat("x", 90) + strings.Repeat("y", 90)
	chunks := SplitText(text, 100, 20)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	// The second chunk starts inside the first chunk's tail.
	tail := chunks[0][len(chunks[0])-20:]
	if !strings.HasPrefix(chunks[1], tail) {
		t.Errorf("second chunk does not overlap first chunk's tail")
	}
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	// Degenerate overlap must not loop forever.
	chunks := SplitText(strings.Repeat("a", 30), 10, 10)
	if len(chunks) != 3 {
		t.Errorf("got %d chunks, want 3", len(chunks))
	}
}
