package types

import "time"

// Book represents a book package registered with the engine
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Language      string    `json:"language"` // ISO-639-1 code
	UploadedAt    time.Time `json:"uploaded_at"`
	Status        string    `json:"status"` // "uploaded", "syncing", "synced", "error"
	OrigFormat    string    `json:"orig_format"`
	Error         string    `json:"error,omitempty"`
	TotalChapters int       `json:"total_chapters"`
	TotalTracks   int       `json:"total_tracks"`
}

// Track describes one narration audio file registered against a book.
// This is the "Input: track metadata" collaborator of spec.md §6 — the
// engine trusts duration/identifier, it never decodes the audio itself.
type Track struct {
	ID       string  `json:"id"` // stable identifier; the output package's audio basename
	BookID   string  `json:"book_id"`
	Filename string  `json:"filename"`
	Duration float64 `json:"duration_seconds"`
	Ordinal  int      `json:"ordinal"` // filename-sort position within the book
}

// ProcessingStatus represents the current state of a book's sync run
type ProcessingStatus struct {
	BookID          string    `json:"book_id"`
	Status          string    `json:"status"`
	Stage           string    `json:"stage"` // "anchoring", "aligning", "emitting", "done"
	Progress        float64   `json:"progress"` // 0-1, per spec.md §5
	TotalChapters   int       `json:"total_chapters"`
	SyncedChapters  int       `json:"synced_chapters"`
	SkippedChapters int       `json:"skipped_chapters"`
	Error           string    `json:"error,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
