package rope

import "strings"

// Tree structure constants.
const (
	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8

	// MaxChunksPerLeaf is the maximum chunks in a leaf node.
	MaxChunksPerLeaf = 4
)

// Node is a node in the rope B+ tree.
// Leaf nodes (height == 0) hold chunks; internal nodes hold children.
type Node struct {
	height  uint8
	summary TextSummary

	children       []*Node
	childSummaries []TextSummary

	chunks []Chunk
}

func newLeafNode() *Node {
	return &Node{summary: emptySummary()}
}

func newLeafNodeWithChunks(chunks []Chunk) *Node {
	n := &Node{chunks: chunks}
	n.recomputeSummary()
	return n
}

func newInternalNode(children []*Node) *Node {
	if len(children) == 0 {
		return newLeafNode()
	}
	n := &Node{height: children[0].height + 1, children: children}
	n.recomputeSummary()
	return n
}

// IsLeaf returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.height == 0
}

// Chars returns the number of characters in this subtree.
func (n *Node) Chars() int {
	return n.summary.Chars
}

func (n *Node) recomputeSummary() {
	n.summary = emptySummary()
	if n.IsLeaf() {
		for _, chunk := range n.chunks {
			n.summary = n.summary.Add(chunk.Summary())
		}
		return
	}
	n.childSummaries = make([]TextSummary, len(n.children))
	for i, child := range n.children {
		n.childSummaries[i] = child.summary
		n.summary = n.summary.Add(child.summary)
	}
}

func (n *Node) appendTo(sb *strings.Builder) {
	if n.IsLeaf() {
		for _, chunk := range n.chunks {
			sb.WriteString(chunk.String())
		}
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// appendRange appends characters [start, end) of the subtree to sb.
func (n *Node) appendRange(sb *strings.Builder, start, end int) {
	if start >= end {
		return
	}
	offset := 0
	if n.IsLeaf() {
		for _, chunk := range n.chunks {
			next := offset + chunk.Chars()
			if next > start && offset < end {
				sb.WriteString(chunk.sliceChars(max(start-offset, 0), min(end, next)-offset))
			}
			offset = next
		}
		return
	}
	for i, child := range n.children {
		next := offset + n.childSummaries[i].Chars
		if next > start && offset < end {
			child.appendRange(sb, max(start-offset, 0), min(end, next)-offset)
		}
		offset = next
	}
}

// split splits the node before character offset at.
func (n *Node) split(at int) (*Node, *Node) {
	if at <= 0 {
		return newLeafNode(), n
	}
	if at >= n.Chars() {
		return n, newLeafNode()
	}
	if n.IsLeaf() {
		var left, right []Chunk
		offset := 0
		for _, chunk := range n.chunks {
			switch next := offset + chunk.Chars(); {
			case next <= at:
				left = append(left, chunk)
			case offset >= at:
				right = append(right, chunk)
			default:
				l, r := chunk.SplitChars(at - offset)
				left = append(left, l)
				right = append(right, r)
			}
			offset += chunk.Chars()
		}
		return newLeafNodeWithChunks(left), newLeafNodeWithChunks(right)
	}

	var left, right []*Node
	offset := 0
	for i, child := range n.children {
		size := n.childSummaries[i].Chars
		switch {
		case offset+size <= at:
			left = append(left, child)
		case offset >= at:
			right = append(right, child)
		default:
			l, r := child.split(at - offset)
			if l.Chars() > 0 {
				left = append(left, l)
			}
			if r.Chars() > 0 {
				right = append(right, r)
			}
		}
		offset += size
	}
	return buildNodeFromChildren(left), buildNodeFromChildren(right)
}

// buildNodeFromChildren joins subtrees of possibly different heights, left
// to right.
func buildNodeFromChildren(children []*Node) *Node {
	switch len(children) {
	case 0:
		return newLeafNode()
	case 1:
		return children[0]
	}
	result := children[0]
	for _, child := range children[1:] {
		result = concat(result, child)
	}
	return result
}

// concat concatenates two nodes. A shorter tree is joined into the taller
// one's nearest edge, so every leaf stays at the same depth and the result
// is at most one level taller than its inputs.
func concat(left, right *Node) *Node {
	if left == nil || left.Chars() == 0 {
		if right == nil {
			return newLeafNode()
		}
		return right
	}
	if right == nil || right.Chars() == 0 {
		return left
	}

	switch {
	case left.height < right.height:
		if left.height == right.height-1 && left.balanced() {
			return mergeChildren([]*Node{left}, right.children)
		}
		joined := concat(left, right.children[0])
		if joined.height == right.height-1 {
			return mergeChildren([]*Node{joined}, right.children[1:])
		}
		return mergeChildren(joined.children, right.children[1:])
	case left.height > right.height:
		last := len(left.children) - 1
		if right.height == left.height-1 && right.balanced() {
			return mergeChildren(left.children, []*Node{right})
		}
		joined := concat(left.children[last], right)
		if joined.height == left.height-1 {
			return mergeChildren(left.children[:last], []*Node{joined})
		}
		return mergeChildren(left.children[:last], joined.children)
	}

	if left.IsLeaf() {
		return mergeLeaves(left, right)
	}
	if left.balanced() && right.balanced() {
		return newInternalNode([]*Node{left, right})
	}
	return mergeChildren(left.children, right.children)
}

// balanced reports whether n is full enough to stand beside a sibling
// without being merged into it.
func (n *Node) balanced() bool {
	if n.IsLeaf() {
		return len(n.chunks) >= MaxChunksPerLeaf/2
	}
	return len(n.children) >= MaxChildren/2
}

// mergeLeaves joins two leaves into one leaf when the chunks fit, or under
// a new parent otherwise.
func mergeLeaves(left, right *Node) *Node {
	if len(left.chunks)+len(right.chunks) <= MaxChunksPerLeaf {
		chunks := make([]Chunk, 0, len(left.chunks)+len(right.chunks))
		chunks = append(chunks, left.chunks...)
		chunks = append(chunks, right.chunks...)
		return newLeafNodeWithChunks(chunks)
	}
	return newInternalNode([]*Node{left, right})
}

// mergeChildren builds a parent over a and b, which all have the same
// height. Overflow splits into two parents under a new root.
func mergeChildren(a, b []*Node) *Node {
	all := make([]*Node, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	if len(all) <= MaxChildren {
		return newInternalNode(all)
	}
	mid := len(all) / 2
	return newInternalNode([]*Node{
		newInternalNode(all[:mid:mid]),
		newInternalNode(all[mid:]),
	})
}

// charToByte converts a character offset in the subtree to a byte offset.
func (n *Node) charToByte(at int) int {
	bytes := 0
	for !n.IsLeaf() {
		next := -1
		for i, s := range n.childSummaries {
			if at < s.Chars {
				next = i
				break
			}
			at -= s.Chars
			bytes += s.Bytes
		}
		if next < 0 {
			return bytes
		}
		n = n.children[next]
	}
	for _, chunk := range n.chunks {
		if at < chunk.Chars() {
			return bytes + charToByte(chunk.data, at, chunk.summary.Flags)
		}
		at -= chunk.Chars()
		bytes += len(chunk.data)
	}
	return bytes
}
