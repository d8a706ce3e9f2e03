package textmodel

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// Chapter is one spine document: its package-relative path, its parsed
// tree, and the leaf block elements within it in document order.
type Chapter struct {
	Path   string
	Root   *html.Node
	Blocks []*html.Node
}

// ParseChapter parses one chapter document. Malformed markup is fatal for
// the book per spec.md §7.
func ParseChapter(path string, r io.Reader) (*Chapter, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("textmodel: parse chapter %s: %w", path, err)
	}
	return &Chapter{Path: path, Root: root, Blocks: collectBlocks(root)}, nil
}

// BlockStream is one block's sentence stream plus a back-pointer to the
// block element it came from, for the Emitter to re-tag later.
type BlockStream struct {
	Block    *html.Node
	Sentence []Sentence
}

// Diagnostic records a tagging-divergence failure for one block: the
// block is left untouched and processing continues (spec.md §7).
type Diagnostic struct {
	Path  string
	Block int
	Err   error
}

// BuildStream tokenizes every block in the chapter in order, threading the
// sentence id allocator across blocks (and, via base/returned next, across
// chapters) so ids stay globally monotone per spec.md §4.1.
func (c *Chapter) BuildStream(base int) (blocks []BlockStream, next int, diags []Diagnostic) {
	next = base
	for i, b := range c.Blocks {
		stream, n, ok := BuildBlockStream(b, next)
		if !ok {
			diags = append(diags, Diagnostic{Path: c.Path, Block: i, Err: fmt.Errorf("textmodel: block %d: tagging divergence, leaving untouched", i)})
			continue
		}
		blocks = append(blocks, BlockStream{Block: b, Sentence: stream})
		next = n
	}
	return blocks, next, diags
}

// Sentences flattens every regular (non-offset) sentence across the
// chapter's blocks, in reading order — the view C4/C5 search against.
func (c *Chapter) Sentences(blocks []BlockStream) []Sentence {
	var out []Sentence
	for _, bs := range blocks {
		for _, s := range bs.Sentence {
			if !s.IsOffset {
				out = append(out, s)
			}
		}
	}
	return out
}

// TagAll applies Tag to every successfully-streamed block, mutating the
// chapter's tree in place. Blocks that failed BuildStream (absent from
// blocks) are left exactly as parsed.
func (c *Chapter) TagAll(blocks []BlockStream) {
	for _, bs := range blocks {
		Tag(bs.Block, bs.Sentence)
	}
}

// Render serializes the chapter's current tree.
func (c *Chapter) Render(w io.Writer) error {
	return Render(w, c.Root)
}
