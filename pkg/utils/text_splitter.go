package utils

import "strings"

// separators are tried in order when looking for a clean place to end a chunk.
var separators = []string{"\n\n", "\n", " "}

// SplitText splits a long string into chunks of at most 'chunkSize' characters (runes).
// Consecutive chunks share up to 'overlap' characters to preserve context at boundaries.
// A chunk ends at the last paragraph, line or word break in its second half when there is one,
// otherwise it is cut at exactly chunkSize.
func SplitText(text string, chunkSize int, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		return []string{text}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0 // fallback if overlap >= chunkSize
	}

	runes := []rune(text)
	totalLen := len(runes)
	if totalLen <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < totalLen {
		end := start + chunkSize
		if end >= totalLen {
			end = totalLen
		} else {
			end = breakPoint(runes, start, end)
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == totalLen {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// breakPoint moves end back to just after a separator if one exists past the window's midpoint.
func breakPoint(runes []rune, start, end int) int {
	window := string(runes[start:end])
	minKeep := (end - start) / 2
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := len([]rune(window[:idx])) + len([]rune(sep))
		if cut > minKeep {
			return start + cut
		}
	}
	return end
}
