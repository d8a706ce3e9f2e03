// Package interpolate implements gap filling and duration accounting
// (spec.md §4.6, component C6): after alignment, fill gaps between
// matched sentence ranges and compute each chapter's narrated duration.
package interpolate

import "github.com/unalkalkan/TwelveReader/internal/align"

// Fill scans a chapter's ranges (in ascending sentence-id order, some
// possibly Unmatched) and linearly interpolates any run of unmatched
// sentences bounded on both sides by a match on the same track. A run
// bounded by matches on different tracks is left unmapped, per spec.md
// §4.6. The matched endpoints are never modified; the returned slice is
// the same length and order as the input.
func Fill(ranges []align.Range) []align.Range {
	out := make([]align.Range, len(ranges))
	copy(out, ranges)

	i := 0
	for i < len(out) {
		if out[i].Unmatched {
			i++
			continue
		}
		j := i + 1
		for j < len(out) && out[j].Unmatched {
			j++
		}
		if j < len(out) && j > i+1 {
			fillRun(out, i, j)
		}
		i = j
	}
	return out
}

// fillRun fills the unmatched run (i, j) exclusive, given matched
// endpoints at i and j.
func fillRun(ranges []align.Range, i, j int) {
	if ranges[i].TrackIdx != ranges[j].TrackIdx {
		return // different tracks: leave the run unmapped, per spec.md §4.6
	}
	span := ranges[j].Start - ranges[i].End
	n := j - i - 1
	step := span / float64(n)

	prevEnd := ranges[i].End
	for k := i + 1; k < j; k++ {
		start := prevEnd
		end := start + step
		ranges[k] = align.Range{
			SentenceID: ranges[k].SentenceID,
			Start:      start,
			End:        end,
			TrackIdx:   ranges[i].TrackIdx,
			Unmatched:  false,
		}
		prevEnd = end
	}
}

// ChapterDuration sums the span of every maximal same-track run of
// ranges, per spec.md §4.6: "sum over maximal same-track runs of
// (run.last.end − run.first.start)". Unmatched ranges break a run.
func ChapterDuration(ranges []align.Range) float64 {
	var total float64
	i := 0
	for i < len(ranges) {
		if ranges[i].Unmatched {
			i++
			continue
		}
		j := i
		for j+1 < len(ranges) && !ranges[j+1].Unmatched && ranges[j+1].TrackIdx == ranges[i].TrackIdx {
			j++
		}
		total += ranges[j].End - ranges[i].Start
		i = j + 1
	}
	return total
}
