// Package syncpipeline orchestrates C1-C7 for one or more books: it
// parses the text model, builds the concat transcript, anchors and aligns
// each chapter in order, interpolates gaps, and emits the augmented
// package, reporting progress and honoring cancellation at chapter
// boundaries (spec.md §5).
package syncpipeline

// EventKind names one progress/diagnostic event, per spec.md §7 ("all
// recoverable errors are reported via the progress channel as named
// variants; nothing is swallowed silently").
type EventKind string

const (
	EventChapterAnchored   EventKind = "chapter_anchored"
	EventChapterSkipped    EventKind = "chapter_skipped"
	EventChapterAligned    EventKind = "chapter_aligned"
	EventTaggingDiverged   EventKind = "tagging_diverged"
	EventUnmatchedSentence EventKind = "unmatched_sentence"
	EventProgress          EventKind = "progress"
	EventDone              EventKind = "done"
)

// Event is one item on the pipeline's progress channel.
type Event struct {
	Kind         EventKind
	BookID       string
	ChapterIndex int
	ChapterPath  string
	Fraction     float64 // [0,1], valid on EventProgress
	Err          error
}

// ProgressFunc is invoked for every Event, at chapter granularity, per
// spec.md §5. It must return quickly; callers that need buffering should
// fan this out to a channel themselves.
type ProgressFunc func(Event)
