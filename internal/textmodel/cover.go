package textmodel

// coverSpans walks leaves in order and, for each span in spans (in
// ascending, contiguous, non-overlapping order over the same blockText
// those leaves produce), emits the Nodes covering that span's characters.
// It mirrors the source's get_textblock_spans leaf walk: a leaf's text may
// be split across sentence boundaries; void leaves are attached to
// whichever span is current when they're reached.
//
// It returns ok=false if the leaves cannot be made to exactly cover every
// span (a drift between tokenized text and tree content) — per spec.md
// §4.1's failure mode, callers must leave the block untouched in that case.
func coverSpans(leaves []leaf, spans []OffsetSpan) ([][]Node, bool) {
	nodes := make([][]Node, len(spans))
	leafIdx := 0
	offset := 0

	for i, sp := range spans {
		need := sp.End - sp.Start
		var frag []Node
		for need > 0 {
			if leafIdx >= len(leaves) {
				return nil, false
			}
			lf := leaves[leafIdx]
			if lf.void {
				frag = append(frag, VoidNode{Tag: lf.tag, Attrs: lf.attrs, Marks: lf.marks})
				leafIdx++
				offset = 0
				continue
			}
			avail := len(lf.text) - offset
			take := avail
			if take > need {
				take = need
			}
			if take > 0 {
				frag = append(frag, TextNode{Text: lf.text[offset : offset+take], Marks: lf.marks})
			}
			offset += take
			need -= take
			if offset >= len(lf.text) {
				leafIdx++
				offset = 0
			}
		}
		nodes[i] = frag
	}

	// Trailing void leaves (e.g. a break after the final sentence) attach
	// to the last span.
	for leafIdx < len(leaves) && leaves[leafIdx].void {
		if len(nodes) == 0 {
			return nil, false
		}
		last := len(nodes) - 1
		nodes[last] = append(nodes[last], VoidNode{Tag: leaves[leafIdx].tag, Attrs: leaves[leafIdx].attrs, Marks: leaves[leafIdx].marks})
		leafIdx++
	}

	if leafIdx != len(leaves) {
		return nil, false
	}
	return nodes, true
}
