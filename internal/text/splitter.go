// Package text provides sentence segmentation for the speech backend.
//
// The splitter mirrors the segmentation performed by the web frontend so
// that chunk timings line up with what the player highlights.
package text

import (
	"regexp"
	"strings"
)

// sentenceBoundary matches the three kinds of split points: whitespace
// following sentence-ending punctuation, a run of two or more whitespace
// characters following a word character, and runs of newlines. RE2 has no
// lookbehind, so boundaries that start with a punctuation or word character
// keep that character in the preceding sentence (see cut index below).
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+|\w\s{2,}|\n+`)

// SplitSentences splits raw text into trimmed, non-empty sentences. It never
// returns an empty slice: when no split point produces a non-empty piece,
// the trimmed input is returned as a single element.
func SplitSentences(text string) []string {
	var sentences []string

	start := 0

	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		boundary := text[loc[0]:loc[1]]

		cut := loc[0]
		if !strings.HasPrefix(boundary, "\n") {
			// The first byte is the [.!?] or word character that
			// anchored the match; it belongs to the sentence.
			cut = loc[0] + 1
		}

		piece := strings.TrimSpace(text[start:cut])
		if piece != "" {
			sentences = append(sentences, piece)
		}

		start = loc[1]
	}

	tail := strings.TrimSpace(text[start:])
	if tail != "" {
		sentences = append(sentences, tail)
	}

	if len(sentences) == 0 {
		return []string{strings.TrimSpace(text)}
	}

	return sentences
}
