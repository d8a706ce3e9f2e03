// Package anchor implements the chapter locator (spec.md §4.4, component
// C4): for each text chapter, find where its narration begins in the
// concatenated transcript projection.
package anchor

import (
	"context"

	"github.com/unalkalkan/TwelveReader/internal/cache"
	"github.com/unalkalkan/TwelveReader/internal/fuzzy"
	"github.com/unalkalkan/TwelveReader/internal/textmodel"
)

// Thresholds holds C4's tunables, loaded from config/SyncConfig
// (spec.md §4.4's literal defaults below).
type Thresholds struct {
	MaxDistRatio     float64 // max_dist = floor(k * |query|)
	QuerySentences   int     // "first N (≈6) sentences"
	WindowChars      int     // "windows of W characters (≈5000)"
	SentenceSkipStep int     // "advance start_sentence by 3"
}

// DefaultThresholds returns spec.md §4.4's literal values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDistRatio:     0.10,
		QuerySentences:   6,
		WindowChars:      5000,
		SentenceSkipStep: 3,
	}
}

// Result is one chapter's located anchor: which sentence narration starts
// at, and where in the projection it begins (absent when skipped).
type Result struct {
	StartSentence    int
	TranscriptOffset *int // nil = chapter skipped, no match found anywhere
}

// Locate finds the anchor for one chapter, per spec.md §4.4's algorithm:
// try the cache first, else slide a W-character window across the
// projection starting at cursor, and at each window position try every
// start_sentence skip (0, 3, 6, ...) of the chapter's leading sentences
// before advancing the window by W/2, wrapping the whole projection once
// before giving up.
//
// cursor is the projection offset to search from (the previous chapter's
// match position, or 0 for the first chapter); it returns the new cursor
// to use for the following chapter (== the match position on a hit, or
// the input cursor unchanged on a skip).
func Locate(ctx context.Context, sc *cache.Cache, chapterIdx int, sentences []textmodel.Sentence, projection string, cursor int, th Thresholds) (Result, int, error) {
	if cached, ok := sc.Get(chapterIdx); ok {
		next := cursor
		if cached.TranscriptOffset != nil {
			next = *cached.TranscriptOffset
		}
		return Result{StartSentence: cached.StartSentence, TranscriptOffset: cached.TranscriptOffset}, next, nil
	}

	result, newCursor := search(sentences, projection, cursor, th)

	var toCache int
	anchor := cache.Anchor{StartSentence: result.StartSentence}
	if result.TranscriptOffset != nil {
		toCache = *result.TranscriptOffset
		anchor.TranscriptOffset = &toCache
	}
	if err := sc.Set(ctx, chapterIdx, anchor); err != nil {
		return result, newCursor, err
	}
	return result, newCursor, nil
}

func search(sentences []textmodel.Sentence, projection string, cursor int, th Thresholds) (Result, int) {
	n := len(projection)
	if n == 0 || len(sentences) == 0 {
		return Result{}, cursor
	}

	for advanced := 0; advanced <= n; advanced += th.WindowChars / 2 {
		wstart := (cursor + advanced) % n
		wend := wstart + th.WindowChars
		if th.WindowChars > n {
			wend = wstart + n
		}
		var window string
		if wend <= n {
			window = projection[wstart:wend]
		} else {
			// wrap-around window
			window = projection[wstart:] + projection[:wend-n]
		}

		for startSentence := 0; startSentence < len(sentences); startSentence += th.SentenceSkipStep {
			query := buildQuery(sentences, startSentence, th.QuerySentences)
			if query == "" {
				continue
			}
			maxDist := int(th.MaxDistRatio * float64(len(query)))

			if m, ok := fuzzy.FindNear(query, window, maxDist); ok {
				abs := (wstart + m.Start) % n
				return Result{StartSentence: startSentence, TranscriptOffset: &abs}, abs
			}
		}
		if advanced+th.WindowChars/2 > n {
			break
		}
	}

	return Result{StartSentence: 0, TranscriptOffset: nil}, cursor
}

// buildQuery concatenates up to count sentences starting at index start
// into a single needle for C3 (which handles case-folding itself).
func buildQuery(sentences []textmodel.Sentence, start, count int) string {
	end := start + count
	if end > len(sentences) {
		end = len(sentences)
	}
	if start >= end {
		return ""
	}
	var b []byte
	for i := start; i < end; i++ {
		if i > start {
			b = append(b, ' ')
		}
		b = append(b, sentences[i].Text...)
	}
	return string(b)
}
