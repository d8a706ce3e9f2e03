// Package align implements the sentence aligner (spec.md §4.5, component
// C5): a sliding sentence-count-window state machine mapping each chapter
// sentence, from its chapter's anchor onward, to a (track, time) range.
package align

import (
	"strings"

	"github.com/unalkalkan/TwelveReader/internal/fuzzy"
	"github.com/unalkalkan/TwelveReader/internal/textmodel"
	"github.com/unalkalkan/TwelveReader/internal/transcript"
)

const (
	notFoundLimit = 3
	giveUpSpan    = 30 // "if W == last_good_window + 30, reset and skip"
)

// Thresholds holds C5's tunables, loaded from config/SyncConfig
// (spec.md §9's literal defaults below).
type Thresholds struct {
	MaxDistRatio float64 // max_dist = floor(k * |needle|)
	WindowWidth  int     // sentence-count window width
}

// DefaultThresholds returns spec.md §9's literal values.
func DefaultThresholds() Thresholds {
	return Thresholds{MaxDistRatio: 0.25, WindowWidth: 10}
}

// Range is one emitted SentenceRange (spec.md §3).
type Range struct {
	SentenceID int
	Start      float64
	End        float64
	TrackIdx   int
	Unmatched  bool // true when C5 gave up on this sentence (left for C6)
}

// Prev identifies the previous chapter's final range, for closing across
// a chapter boundary per spec.md §4.5.1.
type Prev struct {
	TrackIdx int
	End      float64
	Valid    bool
}

// projectedSentence is one sentence-count unit of the transcript
// projection used as the sliding window's alphabet: the ConcatTranscript
// projection re-tokenized into its own sentence-like spans, per spec.md
// §9's choice of sentence-count (not character-length) windows.
type projectedSentence struct {
	start, end int // byte offsets into the projection
}

// Align maps chapter sentences (already narrowed to start_sentence
// onward) to SentenceRanges, given the chapter's transcript_offset into
// the projection and the previous chapter's closing range, if any.
func Align(sentences []textmodel.Sentence, chapterOffset int, concat *transcript.Concat, prev Prev, th Thresholds) []Range {
	projSentences := splitProjectedSentences(concat.Projection()[chapterOffset:], chapterOffset)
	if len(projSentences) == 0 {
		return unmatchedAll(sentences)
	}

	ranges := make([]Range, 0, len(sentences))
	window := 0
	notFound := 0
	lastGoodWindow := 0
	missRunStart := -1
	var previous *Range
	var prevClosing = prev

	for i := 0; i < len(sentences); i++ {
		s := sentences[i]
		needle := strings.ToLower(strings.TrimSpace(s.Text))

		candStart, candEnd := windowRange(projSentences, window, th.WindowWidth)
		candidate := sliceProjection(concat.Projection(), candStart, candEnd)
		maxDist := int(th.MaxDistRatio * float64(len(needle)))

		m, ok := fuzzy.FindNear(needle, candidate, maxDist)
		if ok {
			abs := candStart + m.Start
			resolved := concat.Resolve(abs)
			r := Range{SentenceID: s.ID, Start: resolved.Time, End: resolved.Time, TrackIdx: resolved.TrackIdx}
			closePrevious(&r, previous, &prevClosing, concat)
			ranges = append(ranges, r)
			last := &ranges[len(ranges)-1]
			previous = last

			window = advanceWindow(projSentences, abs)
			lastGoodWindow = window
			notFound = 0
			missRunStart = -1
			continue
		}

		if missRunStart < 0 {
			missRunStart = i
		}
		notFound++
		isLast := i == len(sentences)-1
		if notFound == notFoundLimit || isLast {
			window++
			notFound = 0
			if window >= lastGoodWindow+giveUpSpan {
				window = lastGoodWindow
				for j := missRunStart; j <= i; j++ {
					ranges = append(ranges, Range{SentenceID: sentences[j].ID, Unmatched: true})
				}
				missRunStart = -1
				continue
			}
			// Retry the same run of sentences against the shifted window.
			i = missRunStart - 1
			missRunStart = -1
			continue
		}
	}

	return ranges
}

func unmatchedAll(sentences []textmodel.Sentence) []Range {
	out := make([]Range, len(sentences))
	for i, s := range sentences {
		out[i] = Range{SentenceID: s.ID, Unmatched: true}
	}
	return out
}

// closePrevious applies spec.md §4.5.1: close the previous range (within
// this chapter, or carried from the prior chapter) against the new
// range's track and time.
func closePrevious(r *Range, previous *Range, prevClosing *Prev, concat *transcript.Concat) {
	if previous != nil {
		if previous.TrackIdx == r.TrackIdx {
			previous.End = r.Start
			return
		}
		previous.End = concat.TrackDuration(previous.TrackIdx)
		r.Start = 0
		r.End = r.Start
		return
	}
	if prevClosing.Valid {
		if prevClosing.TrackIdx == r.TrackIdx {
			r.Start = prevClosing.End
			r.End = r.Start
			return
		}
		r.Start = 0
		r.End = r.Start
		return
	}
	r.Start = 0
	r.End = r.Start
}

func windowRange(proj []projectedSentence, window, width int) (int, int) {
	if window >= len(proj) {
		window = len(proj) - 1
	}
	end := window + width
	if end >= len(proj) {
		end = len(proj) - 1
	}
	return proj[window].start, proj[end].end
}

func sliceProjection(projection string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(projection) {
		end = len(projection)
	}
	if start >= end {
		return ""
	}
	return projection[start:end]
}

// advanceWindow returns the index of the projected sentence containing
// absolute projection offset pos, so the window tracks the match.
func advanceWindow(proj []projectedSentence, pos int) int {
	for i, ps := range proj {
		if pos >= ps.start && pos < ps.end {
			return i
		}
	}
	if len(proj) == 0 {
		return 0
	}
	return len(proj) - 1
}

// splitProjectedSentences re-tokenizes the projection tail starting at
// chapterOffset into sentence-count units. offset is added to every
// resulting span so spans are expressed in absolute projection
// coordinates.
func splitProjectedSentences(tail string, offset int) []projectedSentence {
	spans, _ := textmodel.Tokenize(tail, 1)
	out := make([]projectedSentence, 0, len(spans))
	for _, sp := range spans {
		if sp.IsOffset {
			continue
		}
		out = append(out, projectedSentence{start: offset + sp.Start, end: offset + sp.End})
	}
	return out
}
