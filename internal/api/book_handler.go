package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/unalkalkan/TwelveReader/internal/book"
)

// BookHandler exposes a thin status/progress surface over a book
// repository: list/inspect registered books and download the synced
// package once a run has produced one. It has no upload or mapping
// endpoints — registering a book and running its sync is cmd/sync's job.
type BookHandler struct {
	repo book.Repository
}

// NewBookHandler creates a new book handler.
func NewBookHandler(repo book.Repository) *BookHandler {
	return &BookHandler{repo: repo}
}

// ListBooks handles GET /api/v1/books
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	books, err := h.repo.ListBooks(r.Context())
	if err != nil {
		log.Printf("Failed to list books: %v", err)
		respondError(w, "Failed to list books", http.StatusInternalServerError)
		return
	}

	respondJSON(w, books, http.StatusOK)
}

// GetBook handles GET /api/v1/books/:id
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bookID := extractIDFromPath(r.URL.Path, "/api/v1/books/")
	if bookID == "" {
		respondError(w, "Book ID required", http.StatusBadRequest)
		return
	}

	b, err := h.repo.GetBook(r.Context(), bookID)
	if err != nil {
		respondError(w, "Book not found", http.StatusNotFound)
		return
	}

	respondJSON(w, b, http.StatusOK)
}

// GetBookStatus handles GET /api/v1/books/:id/status
func (h *BookHandler) GetBookStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bookID := extractIDFromPath(r.URL.Path, "/api/v1/books/")
	if bookID == "" {
		respondError(w, "Book ID required", http.StatusBadRequest)
		return
	}

	status, err := h.repo.GetStatus(r.Context(), bookID)
	if err != nil {
		respondError(w, "Status not found", http.StatusNotFound)
		return
	}

	respondJSON(w, status, http.StatusOK)
}

// ListTracks handles GET /api/v1/books/:id/tracks
func (h *BookHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bookID := extractIDFromPath(r.URL.Path, "/api/v1/books/")
	if bookID == "" {
		respondError(w, "Book ID required", http.StatusBadRequest)
		return
	}

	tracks, err := h.repo.ListTracks(r.Context(), bookID)
	if err != nil {
		respondError(w, "Failed to list tracks", http.StatusInternalServerError)
		return
	}

	respondJSON(w, tracks, http.StatusOK)
}

// DownloadBook handles GET /api/v1/books/:id/download, serving the
// synced package a prior `sync` run produced.
func (h *BookHandler) DownloadBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bookID := extractIDFromPath(r.URL.Path, "/api/v1/books/")
	if bookID == "" {
		respondError(w, "Book ID required", http.StatusBadRequest)
		return
	}

	b, err := h.repo.GetBook(r.Context(), bookID)
	if err != nil {
		respondError(w, "Book not found", http.StatusNotFound)
		return
	}

	data, err := h.repo.GetSyncedPackage(r.Context(), bookID)
	if err != nil {
		respondError(w, "Synced package not available yet", http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("%s.epub", bookID)
	if b.Title != "" {
		safeTitle := strings.ReplaceAll(b.Title, " ", "_")
		safeTitle = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
				return r
			}
			return -1
		}, safeTitle)
		if safeTitle != "" {
			filename = fmt.Sprintf("%s.epub", safeTitle)
		}
	}

	w.Header().Set("Content-Type", "application/epub+zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, bytes.NewReader(data))
}

// Helper functions

func extractIDFromPath(path, prefix string) string {
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
