package textmodel

import "golang.org/x/net/html"

// blockTags are the block-level elements spec.md §6 names as text content.
var blockTags = map[string]bool{
	"p": true, "li": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// collectBlocks returns every leaf block element (one with no nested block
// element) in document order. A blockquote wrapping a <p> yields the <p>,
// not the blockquote, so each block's text is tokenized exactly once.
func collectBlocks(root *html.Node) []*html.Node {
	var blocks []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && blockTags[c.Data] && !containsBlock(c) {
				blocks = append(blocks, c)
				continue
			}
			walk(c)
		}
	}
	walk(root)
	return blocks
}

func containsBlock(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (blockTags[c.Data] || containsBlock(c)) {
			return true
		}
	}
	return false
}
