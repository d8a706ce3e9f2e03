// Package cache implements the per-book SyncCache (spec.md §3/§6): a
// chapter_index -> ChapterAnchor document, persisted atomically and
// consulted before re-anchoring a chapter on rerun.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/unalkalkan/TwelveReader/internal/storage"
)

// Anchor is a chapter's anchor: where its narration begins, or "skipped"
// when TranscriptOffset is nil (spec.md §3 "ChapterAnchor").
type Anchor struct {
	StartSentence    int
	TranscriptOffset *int
}

// Skipped reports whether the chapter was deliberately not anchored.
func (a Anchor) Skipped() bool { return a.TranscriptOffset == nil }

// Cache is one book's SyncCache, backed by a storage.Adapter path.
// Callers must ensure only one Cache is live per book at a time
// (spec.md §5 "owned by one pipeline instance at a time").
type Cache struct {
	adapter storage.Adapter
	path    string

	mu      sync.Mutex
	entries map[int]Anchor
}

// entryJSON accepts either the current object shape or the legacy bare
// integer (interpreted as {start_sentence: 0, transcription_offset: n}),
// per spec.md §6.
type entryJSON struct {
	StartSentence    int  `json:"start_sentence"`
	TranscriptOffset *int `json:"transcription_offset"`
}

func (e *entryJSON) UnmarshalJSON(data []byte) error {
	var legacy int
	if err := json.Unmarshal(data, &legacy); err == nil {
		e.StartSentence = 0
		e.TranscriptOffset = &legacy
		return nil
	}
	type alias entryJSON
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = entryJSON(a)
	return nil
}

// Load reads the cache document at path. A missing file or a parse
// failure is not fatal: per spec.md §7 ("Cache read/parse failure:
// treated as empty cache"), it returns a fresh, empty Cache instead.
func Load(ctx context.Context, adapter storage.Adapter, path string) *Cache {
	c := &Cache{adapter: adapter, path: path, entries: make(map[int]Anchor)}

	exists, err := adapter.Exists(ctx, path)
	if err != nil || !exists {
		return c
	}
	r, err := adapter.Get(ctx, path)
	if err != nil {
		return c
	}
	defer r.Close()

	var raw map[string]entryJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return &Cache{adapter: adapter, path: path, entries: make(map[int]Anchor)}
	}
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		c.entries[idx] = Anchor{StartSentence: v.StartSentence, TranscriptOffset: v.TranscriptOffset}
	}
	return c
}

// Get returns the cached anchor for a chapter, if any.
func (c *Cache) Get(chapterIdx int) (Anchor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[chapterIdx]
	return a, ok
}

// Set records a chapter's anchor and persists the whole document
// immediately, so cache updates are observable atomically at chapter
// granularity (spec.md §5).
func (c *Cache) Set(ctx context.Context, chapterIdx int, anchor Anchor) error {
	c.mu.Lock()
	c.entries[chapterIdx] = anchor
	doc := c.marshalLocked()
	c.mu.Unlock()

	if err := c.adapter.Put(ctx, c.path, bytes.NewReader(doc)); err != nil {
		return fmt.Errorf("cache: persist %s: %w", c.path, err)
	}
	return nil
}

func (c *Cache) marshalLocked() []byte {
	out := make(map[string]entryJSON, len(c.entries))
	idxs := make([]int, 0, len(c.entries))
	for idx := range c.entries {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	for _, idx := range idxs {
		a := c.entries[idx]
		out[strconv.Itoa(idx)] = entryJSON{StartSentence: a.StartSentence, TranscriptOffset: a.TranscriptOffset}
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	return b
}
