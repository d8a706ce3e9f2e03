package transcript

import "sort"

// segmentRef locates one Segment within the concatenation: which track,
// which segment in that track, and where its text begins in the
// projection string.
type segmentRef struct {
	trackIdx  int
	segIdx    int
	projStart int // offset in Concat.projection where this segment's text begins
	// wordOffsets[i] is the offset (relative to projStart) where word i begins.
	wordOffsets []int
}

// Concat is the virtual, ordered concatenation of every Track's Segments
// in track order (spec.md §3 "ConcatTranscript"). It never copies word
// text into a flat per-word slice; position resolution binary-searches
// the segment offset table the way spec.md §4.2 specifies.
type Concat struct {
	tracks     []Track
	refs       []segmentRef
	projection string
}

// NewConcat builds the projection and offset index for a set of tracks,
// in the order given (spec.md §6: "Tracks are ordered by filename sort
// within a book directory" — callers are expected to have sorted tracks
// before calling this).
func NewConcat(tracks []Track) *Concat {
	c := &Concat{tracks: tracks}
	var b []byte
	for ti, t := range tracks {
		for si, seg := range t.Segments {
			ref := segmentRef{trackIdx: ti, segIdx: si, projStart: len(b)}
			ref.wordOffsets = wordOffsets(seg)
			c.refs = append(c.refs, ref)
			b = append(b, seg.Text...)
			b = append(b, ' ')
		}
	}
	if len(b) > 0 {
		b = b[:len(b)-1] // drop trailing join separator
	}
	c.projection = string(b)
	return c
}

// wordOffsets returns, for each word in the segment, its character
// offset relative to the segment's own text start, mirroring the
// single-space join used to build segment.Text from its words.
func wordOffsets(seg Segment) []int {
	offsets := make([]int, len(seg.Words))
	pos := 0
	for i, w := range seg.Words {
		offsets[i] = pos
		pos += len(w.Word) + 1
	}
	return offsets
}

// Projection returns the flat textual view searched by C3/C4/C5.
func (c *Concat) Projection() string { return c.projection }

// Len returns the projection's length in bytes.
func (c *Concat) Len() int { return len(c.projection) }

// TrackDuration returns the declared duration of the track at index
// trackIdx in concat order, used to close cross-track ranges.
func (c *Concat) TrackDuration(trackIdx int) float64 {
	return c.tracks[trackIdx].Duration
}

// TrackID returns the stable id of a track by its index in concat order.
func (c *Concat) TrackID(trackIdx int) string {
	return c.tracks[trackIdx].ID
}

// NumTracks returns how many tracks were concatenated.
func (c *Concat) NumTracks() int { return len(c.tracks) }

// Resolved is the result of resolving a projection position: a time and
// the index (within NewConcat's track ordering) of the track it falls on.
type Resolved struct {
	Time     float64
	TrackIdx int
}

// Resolve maps a character position in the projection back to a
// (time, track) pair per spec.md §4.2's three-step algorithm: binary
// search segment offsets, walk words within that segment, fall back to
// the segment's own start when the containing word has no timing.
func (c *Concat) Resolve(pos int) Resolved {
	if len(c.refs) == 0 {
		return Resolved{}
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(c.projection) {
		pos = len(c.projection)
	}

	// Binary search for the segment s with refs[s].projStart <= pos < refs[s+1].projStart.
	// Ties at a boundary resolve to the earlier segment (sort.Search finds
	// the first index whose projStart > pos, then we step back one).
	i := sort.Search(len(c.refs), func(i int) bool { return c.refs[i].projStart > pos })
	if i == 0 {
		i = 1
	}
	ref := c.refs[i-1]
	seg := c.tracks[ref.trackIdx].Segments[ref.segIdx]

	localPos := pos - ref.projStart
	trackIdx := ref.trackIdx
	start := seg.Start

	if len(seg.Words) > 0 {
		wi := sort.Search(len(ref.wordOffsets), func(w int) bool { return ref.wordOffsets[w] > localPos })
		if wi == 0 {
			wi = 1
		}
		w := seg.Words[wi-1]
		if w.Start != nil {
			start = *w.Start
		}
	}

	return Resolved{Time: start, TrackIdx: trackIdx}
}
