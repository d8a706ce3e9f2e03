package book

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/unalkalkan/TwelveReader/internal/storage"
	"github.com/unalkalkan/TwelveReader/pkg/types"
)

// Repository handles book metadata, registered narration tracks, and the
// raw/synced package blobs persistence.
type Repository interface {
	SaveBook(ctx context.Context, book *types.Book) error
	GetBook(ctx context.Context, bookID string) (*types.Book, error)
	UpdateBook(ctx context.Context, book *types.Book) error
	ListBooks(ctx context.Context) ([]*types.Book, error)

	SaveTrack(ctx context.Context, track *types.Track) error
	ListTracks(ctx context.Context, bookID string) ([]*types.Track, error)

	SaveStatus(ctx context.Context, status *types.ProcessingStatus) error
	GetStatus(ctx context.Context, bookID string) (*types.ProcessingStatus, error)

	// SaveRawPackage stores the uploaded, unsynchronized EPUB/OCF package.
	SaveRawPackage(ctx context.Context, bookID string, data []byte) error
	GetRawPackage(ctx context.Context, bookID string) ([]byte, error)

	// SaveSyncedPackage stores RunBook's output: the same package with
	// tagged chapters, media overlays, and audio attached.
	SaveSyncedPackage(ctx context.Context, bookID string, data []byte) error
	GetSyncedPackage(ctx context.Context, bookID string) ([]byte, error)

	// SaveTrackAudio stores one registered track's audio bytes under its
	// stable track id, for RunBook to embed into the synced package.
	SaveTrackAudio(ctx context.Context, bookID, trackID string, data []byte) error
	GetTrackAudio(ctx context.Context, bookID, trackID string) ([]byte, error)

	// SaveTranscript stores one track's transcript sidecar document (the
	// segments[]/words[] JSON spec.md §6 describes), keyed by track id.
	SaveTranscript(ctx context.Context, bookID, trackID string, data []byte) error
	GetTranscript(ctx context.Context, bookID, trackID string) ([]byte, error)
}

// StorageRepository implements Repository on top of a storage.Adapter,
// laying books out under books/{id}/ the way the teacher's repository did.
type StorageRepository struct {
	storage storage.Adapter
}

// NewRepository creates a new book repository.
func NewRepository(storageAdapter storage.Adapter) Repository {
	return &StorageRepository{storage: storageAdapter}
}

func (r *StorageRepository) SaveBook(ctx context.Context, b *types.Book) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("book: marshal book: %w", err)
	}
	return r.storage.Put(ctx, filepath.Join("books", b.ID, "metadata.json"), bytes.NewReader(data))
}

func (r *StorageRepository) GetBook(ctx context.Context, bookID string) (*types.Book, error) {
	reader, err := r.storage.Get(ctx, filepath.Join("books", bookID, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("book: get metadata: %w", err)
	}
	defer reader.Close()

	var b types.Book
	if err := json.NewDecoder(reader).Decode(&b); err != nil {
		return nil, fmt.Errorf("book: decode metadata: %w", err)
	}
	return &b, nil
}

func (r *StorageRepository) UpdateBook(ctx context.Context, b *types.Book) error {
	return r.SaveBook(ctx, b)
}

func (r *StorageRepository) ListBooks(ctx context.Context) ([]*types.Book, error) {
	paths, err := r.storage.List(ctx, "books/")
	if err != nil {
		return nil, fmt.Errorf("book: list books: %w", err)
	}

	books := make([]*types.Book, 0)
	for _, p := range paths {
		if filepath.Base(p) != "metadata.json" {
			continue
		}
		reader, err := r.storage.Get(ctx, p)
		if err != nil {
			continue
		}
		var b types.Book
		err = json.NewDecoder(reader).Decode(&b)
		reader.Close()
		if err != nil {
			continue
		}
		books = append(books, &b)
	}
	return books, nil
}

func (r *StorageRepository) SaveTrack(ctx context.Context, t *types.Track) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("book: marshal track: %w", err)
	}
	path := filepath.Join("books", t.BookID, "tracks", fmt.Sprintf("%05d.json", t.Ordinal))
	return r.storage.Put(ctx, path, bytes.NewReader(data))
}

func (r *StorageRepository) ListTracks(ctx context.Context, bookID string) ([]*types.Track, error) {
	prefix := filepath.Join("books", bookID, "tracks") + "/"
	paths, err := r.storage.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("book: list tracks: %w", err)
	}

	tracks := make([]*types.Track, 0, len(paths))
	for _, p := range paths {
		reader, err := r.storage.Get(ctx, p)
		if err != nil {
			continue
		}
		var t types.Track
		err = json.NewDecoder(reader).Decode(&t)
		reader.Close()
		if err != nil {
			continue
		}
		tracks = append(tracks, &t)
	}
	return tracks, nil
}

func (r *StorageRepository) SaveStatus(ctx context.Context, s *types.ProcessingStatus) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("book: marshal status: %w", err)
	}
	return r.storage.Put(ctx, filepath.Join("books", s.BookID, "status.json"), bytes.NewReader(data))
}

func (r *StorageRepository) GetStatus(ctx context.Context, bookID string) (*types.ProcessingStatus, error) {
	reader, err := r.storage.Get(ctx, filepath.Join("books", bookID, "status.json"))
	if err != nil {
		return nil, fmt.Errorf("book: get status: %w", err)
	}
	defer reader.Close()

	var s types.ProcessingStatus
	if err := json.NewDecoder(reader).Decode(&s); err != nil {
		return nil, fmt.Errorf("book: decode status: %w", err)
	}
	return &s, nil
}

func (r *StorageRepository) SaveRawPackage(ctx context.Context, bookID string, data []byte) error {
	return r.storage.Put(ctx, filepath.Join("books", bookID, "raw.epub"), bytes.NewReader(data))
}

func (r *StorageRepository) GetRawPackage(ctx context.Context, bookID string) ([]byte, error) {
	return r.readAll(ctx, filepath.Join("books", bookID, "raw.epub"))
}

func (r *StorageRepository) SaveSyncedPackage(ctx context.Context, bookID string, data []byte) error {
	return r.storage.Put(ctx, filepath.Join("books", bookID, "synced.epub"), bytes.NewReader(data))
}

func (r *StorageRepository) GetSyncedPackage(ctx context.Context, bookID string) ([]byte, error) {
	return r.readAll(ctx, filepath.Join("books", bookID, "synced.epub"))
}

func (r *StorageRepository) SaveTrackAudio(ctx context.Context, bookID, trackID string, data []byte) error {
	return r.storage.Put(ctx, filepath.Join("books", bookID, "audio", trackID), bytes.NewReader(data))
}

func (r *StorageRepository) GetTrackAudio(ctx context.Context, bookID, trackID string) ([]byte, error) {
	return r.readAll(ctx, filepath.Join("books", bookID, "audio", trackID))
}

func (r *StorageRepository) SaveTranscript(ctx context.Context, bookID, trackID string, data []byte) error {
	return r.storage.Put(ctx, filepath.Join("books", bookID, "transcripts", trackID+".json"), bytes.NewReader(data))
}

func (r *StorageRepository) GetTranscript(ctx context.Context, bookID, trackID string) ([]byte, error) {
	return r.readAll(ctx, filepath.Join("books", bookID, "transcripts", trackID+".json"))
}

func (r *StorageRepository) readAll(ctx context.Context, path string) ([]byte, error) {
	reader, err := r.storage.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("book: get %s: %w", path, err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, fmt.Errorf("book: read %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
