package textmodel

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"
)

// OffsetSpan is one element of the sentence stream: either a regular
// sentence (ID != 0, IsOffset false) or an offset span capturing
// whitespace/punctuation gaps between sentences (IsOffset true, no ID).
type OffsetSpan struct {
	Start, End int
	Text       string
	ID         int
	IsOffset   bool
}

// Tokenize splits a block's text into an offset-preserving sentence stream,
// per spec.md §4.1: run a UAX #29 sentence tokenizer to get rough sentence
// texts, then locate each one's first occurrence in T at or after the
// previous sentence's end, inserting the skipped substring as a preceding
// offset span. Any residual suffix after the last sentence is a trailing
// offset span. IDs are assigned base, base+1, ... in order; it returns the
// next free id for the following block/chapter.
func Tokenize(text string, base int) ([]OffsetSpan, int) {
	rough := roughSentences(text)

	var spans []OffsetSpan
	lastEnd := 0
	nextID := base
	for _, r := range rough {
		trimmed := strings.TrimSpace(r)
		if trimmed == "" {
			continue
		}
		idx := strings.Index(text[lastEnd:], trimmed)
		if idx < 0 {
			// The tokenizer produced something not findable in the
			// remaining text; skip it rather than corrupt offsets.
			continue
		}
		start := lastEnd + idx
		if start > lastEnd {
			spans = append(spans, OffsetSpan{Start: lastEnd, End: start, Text: text[lastEnd:start], IsOffset: true})
		}
		end := start + len(trimmed)
		spans = append(spans, OffsetSpan{Start: start, End: end, Text: trimmed, ID: nextID})
		nextID++
		lastEnd = end
	}
	if lastEnd < len(text) {
		spans = append(spans, OffsetSpan{Start: lastEnd, End: len(text), Text: text[lastEnd:], IsOffset: true})
	}
	return spans, nextID
}

func roughSentences(text string) []string {
	var out []string
	seg := sentences.FromString(text)
	for seg.Next() {
		out = append(out, seg.Value())
	}
	return out
}
