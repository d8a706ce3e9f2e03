package interpolate

import (
	"math"
	"testing"

	"github.com/unalkalkan/TwelveReader/internal/align"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFillMissingMiddleSentence(t *testing.T) {
	// S2: ranges for ids 1 and 3 matched; id 2 missing.
	ranges := []align.Range{
		{SentenceID: 1, Start: 65.163, End: 71.648, TrackIdx: 0},
		{SentenceID: 2, Unmatched: true},
		{SentenceID: 3, Start: 77.954, End: 82.078, TrackIdx: 0},
	}
	out := Fill(ranges)
	if out[1].Unmatched {
		t.Fatalf("expected id 2 to be filled")
	}
	if !almostEqual(out[1].Start, 71.648) || !almostEqual(out[1].End, 77.954) {
		t.Fatalf("unexpected interpolated range: %+v", out[1])
	}
	if out[0].Start != 65.163 || out[0].End != 71.648 {
		t.Fatalf("matched endpoint 0 mutated: %+v", out[0])
	}
	if out[2].Start != 77.954 || out[2].End != 82.078 {
		t.Fatalf("matched endpoint 2 mutated: %+v", out[2])
	}
}

func TestFillSimpleGap(t *testing.T) {
	// S3
	ranges := []align.Range{
		{SentenceID: 1, Start: 0, End: 38.22, TrackIdx: 0},
		{SentenceID: 2, Unmatched: true},
		{SentenceID: 3, Start: 53.036, End: 65.122, TrackIdx: 0},
	}
	out := Fill(ranges)
	if !almostEqual(out[1].Start, 38.22) || !almostEqual(out[1].End, 53.036) {
		t.Fatalf("unexpected gap fill: %+v", out[1])
	}
}

func TestFillLargeGapTwoSentences(t *testing.T) {
	// S4
	ranges := []align.Range{
		{SentenceID: 1, Start: 0, End: 38.22, TrackIdx: 0},
		{SentenceID: 2, Unmatched: true},
		{SentenceID: 3, Unmatched: true},
		{SentenceID: 4, Start: 65.122, End: 69.384, TrackIdx: 0},
	}
	out := Fill(ranges)
	if !almostEqual(out[1].Start, 38.22) || !almostEqual(out[1].End, 51.671) {
		t.Fatalf("unexpected range 2: %+v", out[1])
	}
	if !almostEqual(out[2].Start, 51.671) || !almostEqual(out[2].End, 65.122) {
		t.Fatalf("unexpected range 3: %+v", out[2])
	}
}

func TestFillDoesNotInterpolateAcrossTrackBoundary(t *testing.T) {
	ranges := []align.Range{
		{SentenceID: 1, Start: 0, End: 10, TrackIdx: 0},
		{SentenceID: 2, Unmatched: true},
		{SentenceID: 3, Start: 0, End: 5, TrackIdx: 1},
	}
	out := Fill(ranges)
	if !out[1].Unmatched {
		t.Fatalf("expected cross-track gap to remain unmapped, got %+v", out[1])
	}
}

func TestFillPreservesSortOrderAndMatchedSubset(t *testing.T) {
	in := []align.Range{
		{SentenceID: 1, Start: 0, End: 1, TrackIdx: 0},
		{SentenceID: 2, Unmatched: true},
		{SentenceID: 3, Start: 2, End: 3, TrackIdx: 0},
	}
	out := Fill(in)
	if len(out) != len(in) {
		t.Fatalf("expected same length")
	}
	for i := 1; i < len(out); i++ {
		if out[i].SentenceID <= out[i-1].SentenceID {
			t.Fatalf("output not sorted by id: %+v", out)
		}
	}
}

func TestChapterDurationSumsSameTrackRuns(t *testing.T) {
	ranges := []align.Range{
		{SentenceID: 1, Start: 65.163, End: 72.349, TrackIdx: 0},
		{SentenceID: 2, Start: 72.349, End: 77.954, TrackIdx: 0},
		{SentenceID: 3, Start: 77.954, End: 82.078, TrackIdx: 0},
	}
	got := ChapterDuration(ranges)
	want := 82.078 - 65.163
	if !almostEqual(got, want) {
		t.Fatalf("expected duration %v, got %v", want, got)
	}
}
