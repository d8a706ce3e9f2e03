package emitter

import (
	"bytes"
	"fmt"

	"github.com/unalkalkan/TwelveReader/internal/align"
	"github.com/unalkalkan/TwelveReader/internal/textmodel"
)

// RenderChapter tags a chapter's blocks with sentence spans, re-serializes
// the tree, and (when it has at least one matched range) builds its media
// overlay. trackAudioHref resolves a track index to its package-relative
// audio path; stylesheetHref is inserted as a relative <link> so playback
// can highlight the active sentence.
func RenderChapter(ch *textmodel.Chapter, blocks []textmodel.BlockStream, ranges []align.Range, stylesheetHref string, trackAudioHref func(int) string) (ChapterOutput, error) {
	ch.TagAll(blocks)
	addStylesheetLink(ch, stylesheetHref)

	var buf bytes.Buffer
	if err := ch.Render(&buf); err != nil {
		return ChapterOutput{}, fmt.Errorf("emitter: render chapter %s: %w", ch.Path, err)
	}

	out := ChapterOutput{Path: ch.Path, Content: buf.Bytes()}
	if hasMatch(ranges) {
		overlayPath := overlayPathFor(ch.Path)
		out.OverlayPath = overlayPath
		out.OverlayID = overlayIDFor(ch.Path)
		out.Overlay = BuildOverlay(ch.Path, ranges, trackAudioHref)
	}
	return out, nil
}

func hasMatch(ranges []align.Range) bool {
	for _, r := range ranges {
		if !r.Unmatched {
			return true
		}
	}
	return false
}

func overlayPathFor(chapterPath string) string {
	return chapterBaseNoExt(chapterPath) + "-overlay.smil"
}

// overlayIDFor derives the manifest id for a chapter's overlay from its
// package-relative path's base name, stripped of its extension.
func overlayIDFor(chapterPath string) string {
	base := chapterBaseNoExt(chapterPath)
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	return "overlay-" + base
}

func chapterBaseNoExt(chapterPath string) string {
	base := chapterPath
	for i := len(chapterPath) - 1; i >= 0; i-- {
		if chapterPath[i] == '.' {
			base = chapterPath[:i]
			break
		}
	}
	return base
}

func addStylesheetLink(ch *textmodel.Chapter, href string) {
	if href == "" || ch.Root == nil {
		return
	}
	head := findHead(ch.Root)
	if head == nil {
		return
	}
	head.AppendChild(linkNode(href))
}
