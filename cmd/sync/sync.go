package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/TwelveReader/internal/align"
	"github.com/unalkalkan/TwelveReader/internal/anchor"
	"github.com/unalkalkan/TwelveReader/internal/book"
	"github.com/unalkalkan/TwelveReader/internal/config"
	"github.com/unalkalkan/TwelveReader/internal/storage"
	"github.com/unalkalkan/TwelveReader/internal/syncpipeline"
	"github.com/unalkalkan/TwelveReader/internal/textmodel"
	"github.com/unalkalkan/TwelveReader/internal/transcript"
	"github.com/unalkalkan/TwelveReader/pkg/types"
)

// zipOpener adapts a *zip.Reader to textmodel.Opener.
func zipOpener(zr *zip.Reader) textmodel.Opener {
	return func(name string) (io.ReadCloser, error) {
		f, err := zr.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		return f, nil
	}
}

var syncCmd = &cobra.Command{
	Use:   "sync <book-id>",
	Short: "Run the alignment pipeline for a registered book",
	Long: `sync reads a book's raw package and its registered narration tracks
from storage, aligns each chapter's sentences to the transcripts, and
writes back an augmented package carrying media overlays.

The book, its tracks, their audio, and their transcript sidecars must
already be registered in storage (raw.epub, tracks/*.json, audio/*,
transcripts/*.json under books/<book-id>/) before sync runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	bookID := args[0]
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	storageAdapter, err := storage.NewAdapter(cfg.Storage)
	if err != nil {
		return fmt.Errorf("create storage adapter: %w", err)
	}
	defer storageAdapter.Close()

	repo := book.NewRepository(storageAdapter)

	b, err := repo.GetBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("book %s not registered: %w", bookID, err)
	}

	raw, err := repo.GetRawPackage(ctx, bookID)
	if err != nil {
		return fmt.Errorf("book %s has no raw package: %w", bookID, err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return fmt.Errorf("book %s: malformed package: %w", bookID, err)
	}

	sourceNames := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		sourceNames = append(sourceNames, f.Name)
	}

	registeredTracks, err := repo.ListTracks(ctx, bookID)
	if err != nil {
		return fmt.Errorf("list tracks for %s: %w", bookID, err)
	}
	sort.Slice(registeredTracks, func(i, j int) bool { return registeredTracks[i].Ordinal < registeredTracks[j].Ordinal })

	tracks := make([]transcript.Track, 0, len(registeredTracks))
	audioTracks := make(map[string]io.Reader, len(registeredTracks))
	for _, rt := range registeredTracks {
		sidecar, err := repo.GetTranscript(ctx, bookID, rt.ID)
		if err != nil {
			return fmt.Errorf("book %s: track %s has no transcript: %w", bookID, rt.ID, err)
		}
		track, warnings := transcript.Load(bytes.NewReader(sidecar), rt.ID, rt.Duration)
		for _, w := range warnings {
			fmt.Printf("warning: %v\n", w)
		}
		tracks = append(tracks, track)

		audio, err := repo.GetTrackAudio(ctx, bookID, rt.ID)
		if err != nil {
			return fmt.Errorf("book %s: track %s has no audio: %w", bookID, rt.ID, err)
		}
		audioTracks[rt.ID] = bytes.NewReader(audio)
	}

	trackHref := func(trackIdx int) string {
		if trackIdx < 0 || trackIdx >= len(registeredTracks) {
			return ""
		}
		return "../Audio/" + registeredTracks[trackIdx].ID
	}

	in := syncpipeline.BookInput{
		BookID:         bookID,
		Open:           zipOpener(zr),
		SourceNames:    sourceNames,
		Tracks:         tracks,
		CacheAdapter:   storageAdapter,
		CachePath:      fmt.Sprintf("books/%s/sync_cache.json", bookID),
		AudioTracks:    audioTracks,
		TrackAudioHref: trackHref,
		AnchorThresholds: anchor.Thresholds{
			MaxDistRatio:     cfg.Sync.ChapterAnchorMaxDistRatio,
			QuerySentences:   cfg.Sync.ChapterAnchorSentences,
			WindowChars:      cfg.Sync.ChapterAnchorWindowChars,
			SentenceSkipStep: cfg.Sync.SentenceStartSkip,
		},
		AlignThresholds: align.Thresholds{
			MaxDistRatio: cfg.Sync.SentenceMatchMaxDistRatio,
			WindowWidth:  cfg.Sync.SentenceWindowWidth,
		},
	}

	status := &types.ProcessingStatus{BookID: bookID, Status: "syncing", Stage: "anchoring", UpdatedAt: time.Now()}
	repo.SaveStatus(ctx, status)

	buf, err := syncpipeline.RunBook(ctx, in, func(e syncpipeline.Event) { printEvent(cmd, e) })
	if err != nil {
		status.Status = "error"
		status.Error = err.Error()
		status.UpdatedAt = time.Now()
		repo.SaveStatus(ctx, status)
		return fmt.Errorf("sync book %s: %w", bookID, err)
	}

	if err := repo.SaveSyncedPackage(ctx, bookID, buf.Bytes()); err != nil {
		return fmt.Errorf("save synced package for %s: %w", bookID, err)
	}

	b.Status = "synced"
	b.TotalTracks = len(registeredTracks)
	if err := repo.UpdateBook(ctx, b); err != nil {
		return fmt.Errorf("update book %s: %w", bookID, err)
	}

	status.Status = "synced"
	status.Stage = "done"
	status.Progress = 1
	status.UpdatedAt = time.Now()
	if err := repo.SaveStatus(ctx, status); err != nil {
		return fmt.Errorf("save status for %s: %w", bookID, err)
	}

	fmt.Printf("synced %s (%d tracks)\n", bookID, len(registeredTracks))
	return nil
}

func printEvent(cmd *cobra.Command, e syncpipeline.Event) {
	out := cmd.OutOrStdout()
	switch e.Kind {
	case syncpipeline.EventChapterAnchored:
		fmt.Fprintf(out, "chapter %d (%s): anchored\n", e.ChapterIndex, e.ChapterPath)
	case syncpipeline.EventChapterSkipped:
		fmt.Fprintf(out, "chapter %d (%s): skipped: %v\n", e.ChapterIndex, e.ChapterPath, e.Err)
	case syncpipeline.EventChapterAligned:
		fmt.Fprintf(out, "chapter %d (%s): aligned\n", e.ChapterIndex, e.ChapterPath)
	case syncpipeline.EventTaggingDiverged:
		fmt.Fprintf(out, "chapter %d (%s): tagging diverged: %v\n", e.ChapterIndex, e.ChapterPath, e.Err)
	case syncpipeline.EventUnmatchedSentence:
		fmt.Fprintf(out, "chapter %d (%s): unmatched sentence\n", e.ChapterIndex, e.ChapterPath)
	case syncpipeline.EventProgress:
		fmt.Fprintf(out, "progress: %.0f%%\n", e.Fraction*100)
	case syncpipeline.EventDone:
		fmt.Fprintf(out, "done\n")
	}
}
