// Package textmodel implements the text-book markup model of spec.md §3/§4.1
// (component C1): parsing a package's spine into chapters, tokenizing each
// chapter's block text into a sentence stream with offset whitespace, and
// reconstructing inline markup around sentence fragments for serialization.
//
// The tree itself is golang.org/x/net/html's Node: its Parent/FirstChild/
// NextSibling pointers already give the arena-with-back-edges shape spec.md
// §9 asks for, so this package never introduces a second tree representation.
package textmodel

// Mark is an inline wrapping element active over a text fragment (e.g. an
// <em> or <a>), recorded by tag and attributes so it can be reconstructed
// without the original element pointer.
type Mark struct {
	Tag   string
	Attrs map[string]string
}

func sameMark(a, b Mark) bool {
	if a.Tag != b.Tag || len(a.Attrs) != len(b.Attrs) {
		return false
	}
	for k, v := range a.Attrs {
		if b.Attrs[k] != v {
			return false
		}
	}
	return true
}

// Node is one reconstructed fragment of a sentence's inline markup.
type Node interface {
	marks() []Mark
}

// TextNode is a run of text under a given mark stack.
type TextNode struct {
	Text  string
	Marks []Mark
}

func (t TextNode) marks() []Mark { return t.Marks }

// VoidNode is a childless inline element (img, br) under a given mark stack.
type VoidNode struct {
	Tag   string
	Attrs map[string]string
	Marks []Mark
}

func (v VoidNode) marks() []Mark { return v.Marks }
