package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		wantMin   int // minimum chunk count
	}{
		{
			name:      "empty input",
			text:      "",
			chunkSize: 800,
			overlap:   100,
			wantMin:   0,
		},
		{
			name:      "short input fits one chunk",
			text:      "A short note about homework.",
			chunkSize: 800,
			overlap:   100,
			wantMin:   1,
		},
		{
			name:      "long input splits",
			text:      strings.Repeat("The school calendar lists every holiday. ", 100),
			chunkSize: 800,
			overlap:   100,
			wantMin:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)

			if tt.wantMin == 0 {
				if len(chunks) != 0 {
					t.Fatalf("expected no chunks, got %d", len(chunks))
				}
				return
			}
			if len(chunks) < tt.wantMin {
				t.Fatalf("expected at least %d chunks, got %d", tt.wantMin, len(chunks))
			}

			for i, chunk := range chunks {
				if chunk == "" {
					t.Errorf("chunk %d is empty", i)
				}
				if got := len([]rune(chunk)); got > tt.chunkSize {
					t.Errorf("chunk %d has %d runes, exceeds %d", i, got, tt.chunkSize)
				}
			}
		})
	}
}

// Every rune of the input must appear in at least one chunk, in order.
func TestSplitTextCoversInput(t *testing.T) {
	text := strings.Repeat("abcdefghij", 500) // no natural breakpoints at all
	chunks := SplitText(text, 800, 100)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	pos := 0
	for i, chunk := range chunks {
		idx := strings.Index(text[pos:], chunk)
		if idx < 0 {
			t.Fatalf("chunk %d not found in remaining input", i)
		}
		// overlap allows backward starts, but coverage must advance
		pos += idx + 1
	}

	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Error("last chunk does not reach the end of the input")
	}
}

func TestSplitTextPrefersSentenceBreaks(t *testing.T) {
	sentence := "This sentence is exactly some length. "
	text := strings.Repeat(sentence, 50)

	chunks := SplitText(text, 200, 20)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Non-final chunks should end on a sentence or word boundary, not
	// mid-word, because breakpoints exist in every window here.
	for i, chunk := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(chunk, " ") && !strings.HasSuffix(chunk, ".") {
			t.Errorf("chunk %d ends mid-word: %q", i, chunk[len(chunk)-10:])
		}
	}
}

func TestSplitTextDegenerateOverlap(t *testing.T) {
	text := strings.Repeat("x", 1000)

	// overlap >= chunkSize must not loop forever
	chunks := SplitText(text, 100, 100)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total < 1000 {
		t.Errorf("chunks cover %d runes, want at least 1000", total)
	}
}
