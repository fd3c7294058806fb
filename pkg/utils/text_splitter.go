package utils

import "strings"

// breakpoints in preference order: paragraph, newline, sentence end, word gap.
var breakpoints = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// SplitText splits a long string into chunks of at most 'chunkSize' runes with
// 'overlap' runes carried over between consecutive chunks. Chunk boundaries
// prefer natural breakpoints (paragraph, sentence, word) searched in the last
// quarter of the window, so a chunk may end short of chunkSize but never
// exceeds it. Every rune of the input is covered by at least one chunk.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	totalLen := len(runes)

	if totalLen == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	if totalLen <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < totalLen {
		end := start + chunkSize
		if end >= totalLen {
			chunks = append(chunks, string(runes[start:totalLen]))
			break
		}

		if cut := findBreakpoint(runes[start:end]); cut > 0 {
			end = start + cut
		}

		chunks = append(chunks, string(runes[start:end]))

		next := end - overlap
		if next <= start {
			next = start + 1 // always make progress, even with degenerate overlap
		}
		start = next
	}

	return chunks
}

// findBreakpoint returns the offset just past the best natural break inside
// the last quarter of the window, or 0 when none is found there.
func findBreakpoint(window []rune) int {
	s := string(window)
	minCut := len(s) * 3 / 4

	for _, bp := range breakpoints {
		idx := strings.LastIndex(s, bp)
		if idx < 0 {
			continue
		}
		cut := idx + len(bp)
		if cut >= minCut && cut < len(s) {
			// byte offset back to rune offset
			return len([]rune(s[:cut]))
		}
	}
	return 0
}
