package textmodel

import "golang.org/x/net/html"

// Sentence is one element of a chapter's SentenceStream (spec.md §3): a
// regular, id-bearing sentence or a no-id offset span preserving
// inter-sentence whitespace, with enough structure (Nodes) to rebuild its
// original inline markup on serialization.
type Sentence struct {
	ID       int
	IsOffset bool
	Text     string
	Nodes    []Node
}

// BuildBlockStream tokenizes one block element's text into a sentence
// stream and covers it against the block's leaves, without mutating the
// tree. ok is false when the tree cannot be covered (spec.md §4.1's
// tagging-divergence failure mode); callers must leave the block
// untouched and record a diagnostic in that case.
func BuildBlockStream(block *html.Node, base int) (sentences []Sentence, nextID int, ok bool) {
	leaves := collectLeaves(block)
	text := blockText(leaves)
	spans, next := Tokenize(text, base)

	fragNodes, covered := coverSpans(leaves, spans)
	if !covered {
		return nil, base, false
	}

	sentences = make([]Sentence, len(spans))
	for i, sp := range spans {
		sentences[i] = Sentence{ID: sp.ID, IsOffset: sp.IsOffset, Text: sp.Text, Nodes: fragNodes[i]}
	}
	return sentences, next, true
}
