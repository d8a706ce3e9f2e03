package syncpipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/unalkalkan/TwelveReader/internal/storage"
	"github.com/unalkalkan/TwelveReader/internal/transcript"
)

const testContainer = `<?xml version="1.0"?>
<container><rootfiles><rootfile full-path="OEBPS/book.opf" media-type="application/oebps-package+xml"/></rootfiles></container>`

const testOPF = `<?xml version="1.0"?>
<package><metadata>
<title>Two Cities</title>
<creator>Author One</creator>
<language>en</language>
</metadata>
<manifest>
<item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
</manifest>
<spine><itemref idref="ch1"/></spine>
</package>`

const testChapter = `<html><body><p>It was the best of times.</p><p>It was the worst of times.</p></body></html>`

func fixtureFiles() map[string][]byte {
	return map[string][]byte{
		"META-INF/container.xml": []byte(testContainer),
		"OEBPS/book.opf":         []byte(testOPF),
		"OEBPS/ch1.xhtml":        []byte(testChapter),
	}
}

type closerReader struct{ io.Reader }

func (closerReader) Close() error { return nil }

func openerFor(files map[string][]byte) func(string) (io.ReadCloser, error) {
	return func(name string) (io.ReadCloser, error) {
		data, ok := files[name]
		if !ok {
			return nil, io.ErrUnexpectedEOF
		}
		return closerReader{bytes.NewReader(data)}, nil
	}
}

func fp(v float64) *float64 { return &v }

func newTestAdapter(t *testing.T) storage.Adapter {
	t.Helper()
	adapter, err := storage.NewLocalAdapter(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalAdapter: %v", err)
	}
	return adapter
}

func track() transcript.Track {
	return transcript.Track{
		ID:       "t1.mp3",
		Duration: 10,
		Segments: []transcript.Segment{
			{Text: "It was the best of times.", Start: 0, End: 2,
				Words: []transcript.Word{
					{Word: "It", Start: fp(0), End: fp(0.3)},
					{Word: "was", Start: fp(0.3), End: fp(0.6)},
					{Word: "the", Start: fp(0.6), End: fp(0.8)},
					{Word: "best", Start: fp(0.8), End: fp(1.1)},
					{Word: "of", Start: fp(1.1), End: fp(1.3)},
					{Word: "times.", Start: fp(1.3), End: fp(2.0)},
				}},
			{Text: "It was the worst of times.", Start: 2, End: 4,
				Words: []transcript.Word{
					{Word: "It", Start: fp(2.0), End: fp(2.3)},
					{Word: "was", Start: fp(2.3), End: fp(2.6)},
					{Word: "the", Start: fp(2.6), End: fp(2.8)},
					{Word: "worst", Start: fp(2.8), End: fp(3.1)},
					{Word: "of", Start: fp(3.1), End: fp(3.3)},
					{Word: "times.", Start: fp(3.3), End: fp(4.0)},
				}},
		},
	}
}

func TestRunBookProducesPackageWithOverlay(t *testing.T) {
	files := fixtureFiles()
	adapter := newTestAdapter(t)

	var events []Event
	in := BookInput{
		BookID:         "book-1",
		Open:           openerFor(files),
		SourceNames:    []string{"META-INF/container.xml", "OEBPS/book.opf", "OEBPS/ch1.xhtml"},
		Tracks:         []transcript.Track{track()},
		CacheAdapter:   adapter,
		CachePath:      "books/book-1/sync_cache.json",
		TrackAudioHref: func(int) string { return "../Audio/t1.mp3" },
	}

	buf, err := RunBook(context.Background(), in, func(e Event) { events = append(events, e) })
	if err != nil {
		t.Fatalf("RunBook: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected non-empty package")
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading produced package as zip: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["OEBPS/ch1.xhtml"] {
		t.Fatalf("missing re-tagged chapter in output: %v", names)
	}
	if !names["OEBPS/ch1-overlay.smil"] {
		t.Fatalf("expected an overlay for the anchored chapter: %v", names)
	}
	if !names["manifest.json"] {
		t.Fatalf("missing manifest.json: %v", names)
	}

	var sawDone bool
	for _, e := range events {
		if e.Kind == EventDone {
			sawDone = true
		}
	}
	if !sawDone {
		t.Fatalf("expected a terminal EventDone, got %+v", events)
	}
}

func TestRunBookHonorsCancellation(t *testing.T) {
	files := fixtureFiles()
	adapter := newTestAdapter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := BookInput{
		BookID:       "book-2",
		Open:         openerFor(files),
		Tracks:       []transcript.Track{track()},
		CacheAdapter: adapter,
		CachePath:    "books/book-2/sync_cache.json",
	}

	if _, err := RunBook(ctx, in, nil); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestOrchestratorRunBooksConcurrently(t *testing.T) {
	adapter := newTestAdapter(t)
	books := []BookInput{
		{
			BookID:         "book-a",
			Open:           openerFor(fixtureFiles()),
			SourceNames:    []string{"META-INF/container.xml", "OEBPS/book.opf", "OEBPS/ch1.xhtml"},
			Tracks:         []transcript.Track{track()},
			CacheAdapter:   adapter,
			CachePath:      "books/book-a/sync_cache.json",
			TrackAudioHref: func(int) string { return "../Audio/t1.mp3" },
		},
		{
			BookID:         "book-b",
			Open:           openerFor(fixtureFiles()),
			SourceNames:    []string{"META-INF/container.xml", "OEBPS/book.opf", "OEBPS/ch1.xhtml"},
			Tracks:         []transcript.Track{track()},
			CacheAdapter:   adapter,
			CachePath:      "books/book-b/sync_cache.json",
			TrackAudioHref: func(int) string { return "../Audio/t1.mp3" },
		},
	}

	o := NewOrchestrator()
	results, err := o.RunBooks(context.Background(), books, nil)
	if err != nil {
		t.Fatalf("RunBooks: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for id, buf := range results {
		if buf.Len() == 0 {
			t.Fatalf("book %s produced an empty package", id)
		}
	}
}
