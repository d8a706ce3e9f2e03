package emitter

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/unalkalkan/TwelveReader/internal/textmodel"
)

// ChapterOutput is one chapter's final, re-tagged content plus its
// overlay, ready to be written into the package archive.
type ChapterOutput struct {
	Path        string
	Content     []byte
	OverlayPath string // empty when the chapter has no matched sentences
	OverlayID   string // manifest id of OverlayPath, set alongside it
	Overlay     Overlay
}

// Manifest is top-level package metadata, written alongside the OCF
// structure for quick inspection without parsing the package document —
// adapted from the teacher's packaging.Manifest.
type Manifest struct {
	Title         string    `json:"title"`
	Authors       []string  `json:"authors"`
	Language      string    `json:"language"`
	TotalDuration string    `json:"total_duration"`
	ActiveClass   string    `json:"media_active_class"`
	CreatedAt     time.Time `json:"created_at"`
}

// PackageInput collects everything Assemble needs: the original package's
// untouched entries (copied through verbatim), the re-tagged chapters and
// their overlays, the stylesheet, the audio tracks the overlays
// reference, and the parsed package document to rewrite.
type PackageInput struct {
	SourceNames []string
	SourceOpen  func(name string) (io.ReadCloser, error)
	Replaced    map[string]bool // source entries superseded by Chapters

	Chapters []ChapterOutput

	StylesheetPath    string
	StylesheetContent []byte

	AudioTracks map[string]io.Reader // track id -> audio bytes, written under Audio/

	// OPFPath and Package are the package document to rewrite: new
	// manifest items for each overlay/audio track/stylesheet, each
	// synced chapter's media-overlay attribute, and the per-overlay and
	// total media:duration/media:active-class metadata (spec.md §6). The
	// original bytes at OPFPath are never copied through; Package.
	// Serialize's output replaces them. Nil Package leaves the package
	// document untouched (its original bytes are copied through as any
	// other source entry).
	OPFPath string
	Package *textmodel.Package

	Manifest Manifest
}

// Assemble writes the final augmented package to w: original entries not
// superseded by a re-tagged chapter or the rewritten package document,
// the re-tagged chapters and their overlays, the stylesheet, attached
// audio, the rewritten package document, and a manifest.json summary.
func Assemble(w io.Writer, in PackageInput) error {
	zw := zip.NewWriter(w)

	for _, name := range in.SourceNames {
		if in.Replaced[name] || (in.Package != nil && name == in.OPFPath) {
			continue
		}
		if err := copyEntry(zw, in.SourceOpen, name); err != nil {
			return err
		}
	}

	for _, ch := range in.Chapters {
		if err := writeBytes(zw, ch.Path, ch.Content); err != nil {
			return err
		}
		if ch.OverlayPath != "" {
			if err := writeBytes(zw, ch.OverlayPath, ch.Overlay.XML); err != nil {
				return err
			}
		}
	}

	if in.StylesheetPath != "" {
		if err := writeBytes(zw, in.StylesheetPath, in.StylesheetContent); err != nil {
			return err
		}
	}

	for id, r := range in.AudioTracks {
		if err := copyReader(zw, "Audio/"+id, r); err != nil {
			return err
		}
	}

	if in.Package != nil {
		registerPackageAdditions(in)
		opfBytes, err := in.Package.Serialize()
		if err != nil {
			return err
		}
		if err := writeBytes(zw, in.OPFPath, opfBytes); err != nil {
			return err
		}
	}

	if err := writeJSON(zw, "manifest.json", in.Manifest); err != nil {
		return err
	}

	return zw.Close()
}

// registerPackageAdditions adds the manifest items, media-overlay
// attributes, and media:duration/media:active-class metadata spec.md §6
// requires for a real EPUB reader to recognize the new overlays, audio
// tracks, and stylesheet.
func registerPackageAdditions(in PackageInput) {
	pkg := in.Package

	for _, ch := range in.Chapters {
		if ch.OverlayPath == "" {
			continue
		}
		pkg.AddItem(ch.OverlayID, ch.OverlayPath, "application/smil+xml", "")
		pkg.SetOverlay(ch.Path, ch.OverlayID)
		pkg.AddDurationMeta(ch.OverlayID, FormatDuration(ch.Overlay.Duration))
	}

	if in.StylesheetPath != "" {
		pkg.AddItem("readalong-styles", in.StylesheetPath, "text/css", "")
	}

	for id := range in.AudioTracks {
		pkg.AddItem("audio-"+id, "Audio/"+id, "audio/mpeg", "")
	}

	pkg.AddTotalDurationMeta(in.Manifest.TotalDuration)
	pkg.SetActiveClassMeta(in.Manifest.ActiveClass)
}

func copyEntry(zw *zip.Writer, open func(string) (io.ReadCloser, error), name string) error {
	r, err := open(name)
	if err != nil {
		return fmt.Errorf("emitter: open source entry %s: %w", name, err)
	}
	defer r.Close()
	return copyReader(zw, name, r)
}

func copyReader(zw *zip.Writer, name string, r io.Reader) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("emitter: create zip entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("emitter: write zip entry %s: %w", name, err)
	}
	return nil
}

func writeBytes(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("emitter: create zip entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("emitter: write zip entry %s: %w", name, err)
	}
	return nil
}

func writeJSON(zw *zip.Writer, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("emitter: marshal %s: %w", name, err)
	}
	return writeBytes(zw, name, data)
}
