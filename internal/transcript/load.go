package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Load decodes a single track's transcript document (spec.md §6) and
// validates each segment's word reconstruction. A validation failure is
// not fatal to the whole transcript (spec.md §4.2 only requires
// validating, not rejecting) — callers decide whether to surface it as
// a diagnostic.
func Load(r io.Reader, id string, duration float64) (Track, []error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Track{}, []error{fmt.Errorf("transcript %s: decode: %w", id, err)}
	}

	var warnings []error
	for i, seg := range doc.Segments {
		if err := seg.Validate(); err != nil {
			warnings = append(warnings, fmt.Errorf("transcript %s: segment %d: %w", id, i, err))
		}
	}

	return Track{ID: id, Duration: duration, Segments: doc.Segments}, warnings
}

// SortByFilename orders tracks the way spec.md §6 requires: "Tracks are
// ordered by filename sort within a book directory". Callers supply the
// filename alongside each track; this returns tracks reordered to match
// sorted filenames.
func SortByFilename(tracks []Track, filenames []string) []Track {
	type pair struct {
		track    Track
		filename string
	}
	pairs := make([]pair, len(tracks))
	for i := range tracks {
		pairs[i] = pair{tracks[i], filenames[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].filename < pairs[j].filename })
	out := make([]Track, len(pairs))
	for i, p := range pairs {
		out[i] = p.track
	}
	return out
}
