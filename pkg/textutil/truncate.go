package textutil

import (
	"strings"
	"unicode/utf8"
)

// TruncationMarker is appended whenever content is cut to fit a budget.
const TruncationMarker = "\n\n[Content truncated...]"

// Truncate cuts text down to at most budget characters, marker included, so the
// operation is idempotent. The cut prefers, in order:
//  1. a paragraph boundary ("\n\n") within the last 20% of the budget
//  2. a sentence boundary (". ", "! ", "? ") within the last 20% of the budget
//  3. a hard cut (aligned to a rune boundary)
//
// Text already within the budget is returned unchanged, without a marker.
func Truncate(text string, budget int) string {
	if len(text) <= budget {
		return text
	}

	limit := budget - len(TruncationMarker)
	if limit <= 0 {
		return TruncationMarker[:budget]
	}
	floor := limit * 4 / 5

	if cut := strings.LastIndex(text[:limit], "\n\n"); cut >= floor {
		return text[:cut] + TruncationMarker
	}

	cut := -1
	for _, boundary := range []string{". ", "! ", "? "} {
		if idx := strings.LastIndex(text[:limit], boundary); idx >= floor {
			// Keep the punctuation, drop the trailing space.
			if end := idx + 1; end > cut {
				cut = end
			}
		}
	}
	if cut >= 0 {
		return text[:cut] + TruncationMarker
	}

	// Hard cut. Back up so we never split a multi-byte rune.
	cut = limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + TruncationMarker
}

// SplitText splits a long string into chunks of approximately chunkSize
// characters with an overlap to preserve context at boundaries. Character-based;
// embedding chunking does not need token-exact splits.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// WordCount reports the number of whitespace-separated words in text. Used to
// reject transcripts too thin to generate from.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
