package textmodel

import "golang.org/x/net/html"

// voidTags are inline elements with no text content of their own.
var voidTags = map[string]bool{"img": true, "br": true}

// leaf is one text run or void element within a block, tagged with the
// stack of inline elements enclosing it.
type leaf struct {
	void  bool
	text  string
	tag   string
	attrs map[string]string
	marks []Mark
}

// collectLeaves walks a block element's descendants in document order,
// flattening them into leaves and recording the inline mark stack active
// at each one. This is the Go analogue of the mark-stack leaf walk spec.md
// §4.1 describes.
func collectLeaves(block *html.Node) []leaf {
	var leaves []leaf
	var walk func(n *html.Node, marks []Mark)
	walk = func(n *html.Node, marks []Mark) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if c.Data == "" {
					continue
				}
				leaves = append(leaves, leaf{text: c.Data, marks: marks})
			case html.ElementNode:
				if voidTags[c.Data] {
					leaves = append(leaves, leaf{void: true, tag: c.Data, attrs: attrMap(c), marks: marks})
					continue
				}
				childMarks := append(append([]Mark(nil), marks...), Mark{Tag: c.Data, Attrs: attrMap(c)})
				walk(c, childMarks)
			}
		}
	}
	walk(block, nil)
	return leaves
}

func attrMap(n *html.Node) map[string]string {
	if len(n.Attr) == 0 {
		return nil
	}
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		m[a.Key] = a.Val
	}
	return m
}

// blockText concatenates every text leaf's content in order; void leaves
// contribute nothing. This is the text T that gets tokenized into sentences.
func blockText(leaves []leaf) string {
	var b []byte
	for _, lf := range leaves {
		if !lf.void {
			b = append(b, lf.text...)
		}
	}
	return string(b)
}
