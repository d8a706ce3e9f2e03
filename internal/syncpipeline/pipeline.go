package syncpipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/unalkalkan/TwelveReader/internal/align"
	"github.com/unalkalkan/TwelveReader/internal/anchor"
	"github.com/unalkalkan/TwelveReader/internal/cache"
	"github.com/unalkalkan/TwelveReader/internal/emitter"
	"github.com/unalkalkan/TwelveReader/internal/interpolate"
	"github.com/unalkalkan/TwelveReader/internal/storage"
	"github.com/unalkalkan/TwelveReader/internal/textmodel"
	"github.com/unalkalkan/TwelveReader/internal/transcript"
)

// BookInput collects one book's inputs: its package source, loaded
// tracks (already sorted by filename, spec.md §6), and the cache/output
// wiring RunBook needs.
type BookInput struct {
	BookID string

	Open        textmodel.Opener
	SourceNames []string

	Tracks []transcript.Track

	CacheAdapter storage.Adapter
	CachePath    string

	StylesheetPath    string
	StylesheetContent []byte

	AudioTracks    map[string]io.Reader
	TrackAudioHref func(trackIdx int) string

	// AnchorThresholds and AlignThresholds carry the tuned C4/C5
	// knobs (config/SyncConfig); the zero value of each resolves to
	// spec.md's literal defaults.
	AnchorThresholds anchor.Thresholds
	AlignThresholds  align.Thresholds
}

// RunBook runs C1-C7 for one book: parse, anchor+align+interpolate each
// chapter in order, emit the augmented package. It is the single-book
// batch pipeline spec.md §5 describes — strictly sequential internally.
func RunBook(ctx context.Context, in BookInput, progress ProgressFunc) (*bytes.Buffer, error) {
	if progress == nil {
		progress = func(Event) {}
	}
	anchorTh := in.AnchorThresholds
	if anchorTh == (anchor.Thresholds{}) {
		anchorTh = anchor.DefaultThresholds()
	}
	alignTh := in.AlignThresholds
	if alignTh == (align.Thresholds{}) {
		alignTh = align.DefaultThresholds()
	}

	book, err := textmodel.Load(in.Open)
	if err != nil {
		return nil, fmt.Errorf("syncpipeline: load book %s: %w", in.BookID, err)
	}

	concat := transcript.NewConcat(in.Tracks)
	sc := cache.Load(ctx, in.CacheAdapter, in.CachePath)

	nextID := 1
	cursor := 0
	var prevClose align.Prev
	var chapterOutputs []emitter.ChapterOutput
	replaced := make(map[string]bool)
	var totalDuration float64

	for idx, ch := range book.Chapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		blocks, next, diags := ch.BuildStream(nextID)
		nextID = next
		for _, d := range diags {
			progress(Event{Kind: EventTaggingDiverged, BookID: in.BookID, ChapterIndex: idx, ChapterPath: ch.Path, Err: d.Err})
		}
		sentences := ch.Sentences(blocks)

		result, newCursor, err := anchor.Locate(ctx, sc, idx, sentences, concat.Projection(), cursor, anchorTh)
		if err != nil {
			return nil, fmt.Errorf("syncpipeline: anchor chapter %d: %w", idx, err)
		}
		cursor = newCursor

		if result.TranscriptOffset == nil {
			progress(Event{Kind: EventChapterSkipped, BookID: in.BookID, ChapterIndex: idx, ChapterPath: ch.Path})
			var buf bytes.Buffer
			if err := ch.Render(&buf); err != nil {
				return nil, fmt.Errorf("syncpipeline: render skipped chapter %d: %w", idx, err)
			}
			chapterOutputs = append(chapterOutputs, emitter.ChapterOutput{Path: ch.Path, Content: buf.Bytes()})
			replaced[ch.Path] = true
			progress(Event{Kind: EventProgress, BookID: in.BookID, Fraction: float64(idx+1) / float64(len(book.Chapters))})
			continue
		}
		progress(Event{Kind: EventChapterAnchored, BookID: in.BookID, ChapterIndex: idx, ChapterPath: ch.Path})

		chapterSentences := sentences[result.StartSentence:]
		ranges := align.Align(chapterSentences, *result.TranscriptOffset, concat, prevClose, alignTh)
		ranges = interpolate.Fill(ranges)
		for _, r := range ranges {
			if r.Unmatched {
				progress(Event{Kind: EventUnmatchedSentence, BookID: in.BookID, ChapterIndex: idx, ChapterPath: ch.Path})
			}
		}
		if len(ranges) > 0 {
			last := ranges[len(ranges)-1]
			prevClose = align.Prev{TrackIdx: last.TrackIdx, End: last.End, Valid: !last.Unmatched}
		}

		out, err := emitter.RenderChapter(ch, blocks, ranges, in.StylesheetPath, in.TrackAudioHref)
		if err != nil {
			return nil, fmt.Errorf("syncpipeline: render chapter %d: %w", idx, err)
		}
		chapterOutputs = append(chapterOutputs, out)
		replaced[ch.Path] = true
		totalDuration += interpolate.ChapterDuration(ranges)

		progress(Event{Kind: EventChapterAligned, BookID: in.BookID, ChapterIndex: idx, ChapterPath: ch.Path})
		progress(Event{Kind: EventProgress, BookID: in.BookID, Fraction: float64(idx+1) / float64(len(book.Chapters))})
	}

	var buf bytes.Buffer
	pkgIn := emitter.PackageInput{
		SourceNames:       in.SourceNames,
		SourceOpen:        func(name string) (io.ReadCloser, error) { return in.Open(name) },
		Replaced:          replaced,
		Chapters:          chapterOutputs,
		StylesheetPath:    in.StylesheetPath,
		StylesheetContent: in.StylesheetContent,
		AudioTracks:       in.AudioTracks,
		OPFPath:           book.OPFPath,
		Package:           book.Package,
		Manifest: emitter.Manifest{
			Title:         book.Title,
			Authors:       book.Authors,
			Language:      book.Language,
			TotalDuration: emitter.FormatDuration(totalDuration),
			ActiveClass:   "-epub-media-overlay-active",
			CreatedAt:     time.Now(),
		},
	}
	if err := emitter.Assemble(&buf, pkgIn); err != nil {
		return nil, fmt.Errorf("syncpipeline: assemble package %s: %w", in.BookID, err)
	}

	progress(Event{Kind: EventDone, BookID: in.BookID})
	return &buf, nil
}
