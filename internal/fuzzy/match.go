// Package fuzzy implements the bounded edit-distance substring search
// contract of spec.md §4.3 (component C3): find the leftmost substring
// of a haystack within a given Levenshtein distance of a needle.
package fuzzy

import (
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Match is a byte-offset span within the haystack passed to FindNear.
type Match struct {
	Start int
	End   int
}

// FindNear returns the leftmost substring of haystack within maxDist
// Levenshtein edits of needle, case-insensitive and Unicode-aware.
// Ties break to the smallest start, then the smallest end, per
// spec.md §4.3. It returns ok=false when no such substring exists, when
// either input is empty, or when needle is longer than haystack.
func FindNear(needle, haystack string, maxDist int) (m Match, ok bool) {
	if len(needle) == 0 || len(haystack) == 0 {
		return Match{}, false
	}

	needleRunes := foldRunes(needle)
	haystackRunes, byteOffsets := foldHaystack(haystack)
	n := len(needleRunes)
	h := len(haystackRunes)
	if n > h {
		return Match{}, false
	}
	needleFolded := string(needleRunes)

	// Candidate substring lengths bracket the needle's own length by
	// maxDist on either side: an edit distance of d can only be realized
	// by a substring whose length differs from the needle's by at most d.
	minLen := n - maxDist
	if minLen < 0 {
		minLen = 0
	}
	maxLen := n + maxDist

	for start := 0; start < h; start++ {
		limit := maxLen
		if start+limit > h {
			limit = h - start
		}
		// Lengths are tried shortest-first so the first hit at this start
		// is already the shortest-end match for it.
		for l := minLen; l <= limit; l++ {
			end := start + l
			candidate := string(haystackRunes[start:end])
			if levenshtein.ComputeDistance(needleFolded, candidate) <= maxDist {
				return Match{Start: byteOffsets[start], End: byteOffsets[end]}, true
			}
		}
	}

	return Match{}, false
}

// foldRunes lowercases needle rune-by-rune (simple case folding, so the
// rune count is preserved even though byte lengths may not be).
func foldRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

// foldHaystack returns haystack's folded runes plus a parallel array
// mapping each rune index (including one past the end) to its original
// byte offset, so results can be reported in the caller's byte space.
func foldHaystack(s string) ([]rune, []int) {
	runes := make([]rune, 0, len(s))
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		offsets = append(offsets, i)
		runes = append(runes, unicode.ToLower(r))
	}
	offsets = append(offsets, len(s))
	return runes, offsets
}
