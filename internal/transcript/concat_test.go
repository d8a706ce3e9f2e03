package transcript

import (
	"strings"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestConcatProjection(t *testing.T) {
	tracks := []Track{
		{
			ID:       "t1",
			Duration: 10,
			Segments: []Segment{
				{Text: "hello world", Start: 0, End: 1, Words: []Word{
					{Word: "hello", Start: f(0), End: f(0.5)},
					{Word: "world", Start: f(0.5), End: f(1)},
				}},
				{Text: "goodbye now", Start: 1, End: 2, Words: []Word{
					{Word: "goodbye", Start: f(1), End: f(1.5)},
					{Word: "now", Start: f(1.5), End: f(2)},
				}},
			},
		},
	}

	c := NewConcat(tracks)
	if c.Projection() != "hello world goodbye now" {
		t.Fatalf("unexpected projection: %q", c.Projection())
	}
}

func TestConcatResolve(t *testing.T) {
	tracks := []Track{
		{
			ID:       "t1",
			Duration: 10,
			Segments: []Segment{
				{Text: "hello world", Start: 0, End: 1, Words: []Word{
					{Word: "hello", Start: f(0), End: f(0.5)},
					{Word: "world", Start: f(0.5), End: f(1)},
				}},
			},
		},
		{
			ID:       "t2",
			Duration: 8,
			Segments: []Segment{
				{Text: "second track", Start: 2, End: 3, Words: []Word{
					{Word: "second", Start: f(2), End: f(2.5)},
					{Word: "track", Start: f(2.5), End: f(3)},
				}},
			},
		},
	}
	c := NewConcat(tracks)

	// "hello world second track"
	pos := strings.Index(c.Projection(), "world")
	res := c.Resolve(pos)
	if res.TrackIdx != 0 || res.Time != 0.5 {
		t.Fatalf("expected track 0 @ 0.5, got %+v", res)
	}

	pos = strings.Index(c.Projection(), "second")
	res = c.Resolve(pos)
	if res.TrackIdx != 1 || res.Time != 2 {
		t.Fatalf("expected track 1 @ 2, got %+v", res)
	}
}

func TestConcatResolveSingleWordSegmentFallsBackToSegmentStart(t *testing.T) {
	tracks := []Track{
		{
			ID:       "t1",
			Duration: 10,
			Segments: []Segment{
				{Text: "ok", Start: 5, End: 5.4, Words: nil},
			},
		},
	}
	c := NewConcat(tracks)
	res := c.Resolve(0)
	if res.Time != 5 {
		t.Fatalf("expected segment-level start 5, got %v", res.Time)
	}
}

func TestSegmentValidate(t *testing.T) {
	seg := Segment{Text: "hello  world", Words: []Word{{Word: "hello"}, {Word: "world"}}}
	if err := seg.Validate(); err != nil {
		t.Fatalf("expected whitespace-normalized match, got %v", err)
	}

	bad := Segment{Text: "hello there", Words: []Word{{Word: "hello"}, {Word: "world"}}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected mismatch error")
	}
}
