package main

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/TwelveReader/internal/book"
	"github.com/unalkalkan/TwelveReader/internal/storage"
	"github.com/unalkalkan/TwelveReader/pkg/types"
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

const testTranscript = `{"segments":[
{"text":"It was the best of times.","start":0,"end":2,"words":[
  {"word":"It","start":0,"end":0.3},{"word":"was","start":0.3,"end":0.6},
  {"word":"the","start":0.6,"end":0.8},{"word":"best","start":0.8,"end":1.1},
  {"word":"of","start":1.1,"end":1.3},{"word":"times.","start":1.3,"end":2.0}]},
{"text":"It was the worst of times.","start":2,"end":4,"words":[
  {"word":"It","start":2.0,"end":2.3},{"word":"was","start":2.3,"end":2.6},
  {"word":"the","start":2.6,"end":2.8},{"word":"worst","start":2.8,"end":3.1},
  {"word":"of","start":3.1,"end":3.3},{"word":"times.","start":3.3,"end":4.0}]}
]}`

func buildTestPackage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"META-INF/container.xml": testContainer,
		"OEBPS/book.opf":         testOPF,
		"OEBPS/ch1.xhtml":        testChapter,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func writeTestConfig(t *testing.T, basePath string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "storage:\n  adapter: local\n  local:\n    base_path: " + basePath + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunSyncEndToEnd(t *testing.T) {
	storageDir := t.TempDir()
	cfgFile = writeTestConfig(t, storageDir)

	adapter, err := storage.NewLocalAdapter(storageDir)
	if err != nil {
		t.Fatalf("NewLocalAdapter: %v", err)
	}
	repo := book.NewRepository(adapter)
	ctx := context.Background()

	if err := repo.SaveBook(ctx, &types.Book{ID: "book-1", Title: "Two Cities"}); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}
	if err := repo.SaveRawPackage(ctx, "book-1", buildTestPackage(t)); err != nil {
		t.Fatalf("SaveRawPackage: %v", err)
	}
	if err := repo.SaveTrack(ctx, &types.Track{ID: "t1.mp3", BookID: "book-1", Filename: "t1.mp3", Duration: 10, Ordinal: 0}); err != nil {
		t.Fatalf("SaveTrack: %v", err)
	}
	if err := repo.SaveTranscript(ctx, "book-1", "t1.mp3", []byte(testTranscript)); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}
	if err := repo.SaveTrackAudio(ctx, "book-1", "t1.mp3", []byte("fake mp3 bytes")); err != nil {
		t.Fatalf("SaveTrackAudio: %v", err)
	}

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(ctx)

	if err := runSync(cmd, []string{"book-1"}); err != nil {
		t.Fatalf("runSync: %v", err)
	}

	synced, err := repo.GetSyncedPackage(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetSyncedPackage: %v", err)
	}
	if len(synced) == 0 {
		t.Fatalf("expected a non-empty synced package")
	}

	status, err := repo.GetStatus(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Status != "synced" {
		t.Errorf("expected status 'synced', got %q", status.Status)
	}
}

func TestRunSyncUnregisteredBook(t *testing.T) {
	storageDir := t.TempDir()
	cfgFile = writeTestConfig(t, storageDir)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	if err := runSync(cmd, []string{"missing-book"}); err == nil {
		t.Fatalf("expected an error for an unregistered book")
	}
}
