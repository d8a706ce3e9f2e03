package textmodel

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/net/html"
)

// Tag rewrites a block element's children from its sentence stream: each
// regular sentence becomes a <span id="sentenceN"> wrapping its
// reconstructed markup; each offset sentence is re-emitted as raw children
// with no wrapper. Per spec.md §4.1.
func Tag(block *html.Node, stream []Sentence) {
	for block.FirstChild != nil {
		block.RemoveChild(block.FirstChild)
	}
	for _, s := range stream {
		if s.IsOffset {
			for _, n := range buildFragment(s.Nodes) {
				block.AppendChild(n)
			}
			continue
		}
		span := &html.Node{
			Type: html.ElementNode,
			Data: "span",
			Attr: []html.Attribute{{Key: "id", Val: fmt.Sprintf("sentence%d", s.ID)}},
		}
		for _, n := range buildFragment(s.Nodes) {
			span.AppendChild(n)
		}
		block.AppendChild(span)
	}
}

// buildFragment reconstructs a minimal DOM subtree from a flat Node list,
// grouping consecutive nodes that share a common mark prefix under a
// single element rather than emitting one wrapper per leaf.
func buildFragment(nodes []Node) []*html.Node {
	return buildMarkLevel(nodes, 0)
}

func buildMarkLevel(nodes []Node, depth int) []*html.Node {
	var out []*html.Node
	i := 0
	for i < len(nodes) {
		marks := nodes[i].marks()
		if depth >= len(marks) {
			out = append(out, leafHTMLNode(nodes[i]))
			i++
			continue
		}
		mark := marks[depth]
		j := i
		var group []Node
		for j < len(nodes) {
			m := nodes[j].marks()
			if depth >= len(m) || !sameMark(m[depth], mark) || !sharesPrefix(m, marks, depth) {
				break
			}
			group = append(group, nodes[j])
			j++
		}
		elem := &html.Node{Type: html.ElementNode, Data: mark.Tag, Attr: attrsToAttr(mark.Attrs)}
		for _, ch := range buildMarkLevel(group, depth+1) {
			elem.AppendChild(ch)
		}
		out = append(out, elem)
		i = j
	}
	return out
}

func sharesPrefix(a, b []Mark, depth int) bool {
	if len(a) < depth || len(b) < depth {
		return false
	}
	for i := 0; i < depth; i++ {
		if !sameMark(a[i], b[i]) {
			return false
		}
	}
	return true
}

func leafHTMLNode(n Node) *html.Node {
	switch v := n.(type) {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: v.Text}
	case VoidNode:
		return &html.Node{Type: html.ElementNode, Data: v.Tag, Attr: attrsToAttr(v.Attrs)}
	default:
		return &html.Node{Type: html.TextNode}
	}
}

func attrsToAttr(m map[string]string) []html.Attribute {
	if len(m) == 0 {
		return nil
	}
	out := make([]html.Attribute, 0, len(m))
	for k, v := range m {
		out = append(out, html.Attribute{Key: k, Val: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Render serializes a parsed document back to its markup form.
func Render(w io.Writer, root *html.Node) error {
	return html.Render(w, root)
}
