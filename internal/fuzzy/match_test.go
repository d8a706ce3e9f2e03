package fuzzy

import "testing"

func TestFindNearExactMatch(t *testing.T) {
	m, ok := FindNear("fox jumps", "the quick fox jumps over", 0)
	if !ok {
		t.Fatalf("expected a match")
	}
	if got := "the quick fox jumps over"[m.Start:m.End]; got != "fox jumps" {
		t.Fatalf("unexpected span: %q", got)
	}
}

func TestFindNearCaseInsensitive(t *testing.T) {
	m, ok := FindNear("Fox Jumps", "the quick fox jumps over", 0)
	if !ok {
		t.Fatalf("expected a case-insensitive match")
	}
	if got := "the quick fox jumps over"[m.Start:m.End]; got != "fox jumps" {
		t.Fatalf("unexpected span: %q", got)
	}
}

func TestFindNearAtMaxDistBoundary(t *testing.T) {
	// "fox jumps" vs "fox dumps" is a single substitution.
	haystack := "the quick fox dumps over"
	if _, ok := FindNear("fox jumps", haystack, 0); ok {
		t.Fatalf("expected no match at maxDist 0")
	}
	m, ok := FindNear("fox jumps", haystack, 1)
	if !ok {
		t.Fatalf("expected a match at maxDist 1")
	}
	if got := haystack[m.Start:m.End]; got != "fox dumps" {
		t.Fatalf("unexpected span: %q", got)
	}
}

func TestFindNearOneEditBeyondBoundaryFails(t *testing.T) {
	// "fox jumps" vs "fix dumps" is two substitutions.
	haystack := "the quick fix dumps over"
	if _, ok := FindNear("fox jumps", haystack, 1); ok {
		t.Fatalf("expected no match at maxDist 1 for a 2-edit difference")
	}
	if _, ok := FindNear("fox jumps", haystack, 2); !ok {
		t.Fatalf("expected a match at maxDist 2")
	}
}

func TestFindNearLeftmostTieBreak(t *testing.T) {
	// "cat" appears near-exactly twice; the leftmost occurrence wins.
	haystack := "a cat sat, a cat ran"
	m, ok := FindNear("cat", haystack, 0)
	if !ok {
		t.Fatalf("expected a match")
	}
	if m.Start != 2 {
		t.Fatalf("expected leftmost match at offset 2, got %d", m.Start)
	}
}

func TestFindNearEmptyInputsNoMatch(t *testing.T) {
	if _, ok := FindNear("", "haystack", 5); ok {
		t.Fatalf("expected no match for empty needle")
	}
	if _, ok := FindNear("needle", "", 5); ok {
		t.Fatalf("expected no match for empty haystack")
	}
}

func TestFindNearNeedleLongerThanHaystackNoMatch(t *testing.T) {
	if _, ok := FindNear("a much longer needle text", "short", 100); ok {
		t.Fatalf("expected no match when needle exceeds haystack length")
	}
}
