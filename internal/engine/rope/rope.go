package rope

import (
	"io"
	"strings"
)

// Rope is an immutable rope. Operations return new Rope values; the original
// is never modified. Offsets are character offsets.
type Rope struct {
	root *Node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newLeafNode()}
}

// FromString creates a rope from a string.
func FromString(s string) Rope {
	chunks := splitIntoChunks(s)
	if len(chunks) == 0 {
		return New()
	}

	var nodes []*Node
	for i := 0; i < len(chunks); i += MaxChunksPerLeaf {
		end := min(i+MaxChunksPerLeaf, len(chunks))
		nodes = append(nodes, newLeafNodeWithChunks(append([]Chunk(nil), chunks[i:end]...)))
	}
	for len(nodes) > 1 {
		var parents []*Node
		for i := 0; i < len(nodes); i += MaxChildren {
			end := min(i+MaxChildren, len(nodes))
			parents = append(parents, newInternalNode(append([]*Node(nil), nodes[i:end]...)))
		}
		nodes = parents
	}
	return Rope{root: nodes[0]}
}

// FromReader creates a rope from an io.Reader.
func FromReader(r io.Reader) (Rope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Rope{}, err
	}
	return FromString(string(data)), nil
}

func (r Rope) node() *Node {
	if r.root == nil {
		return newLeafNode()
	}
	return r.root
}

// Len returns the number of characters.
func (r Rope) Len() int {
	return r.node().Chars()
}

// ByteLen returns the UTF-8 byte length.
func (r Rope) ByteLen() int {
	return r.node().summary.Bytes
}

// LineCount returns the number of lines (newlines + 1).
func (r Rope) LineCount() int {
	return r.node().summary.Lines + 1
}

// Summary returns the aggregated metrics for the entire rope.
func (r Rope) Summary() TextSummary {
	return r.node().summary
}

// IsEmpty returns true if the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// String returns the full text. Use sparingly for large ropes.
func (r Rope) String() string {
	var sb strings.Builder
	sb.Grow(r.ByteLen())
	r.node().appendTo(&sb)
	return sb.String()
}

// Slice returns the characters in [start, end). Out-of-range bounds clamp.
func (r Rope) Slice(start, end int) string {
	start = max(start, 0)
	end = min(end, r.Len())
	if start >= end {
		return ""
	}
	var sb strings.Builder
	r.node().appendRange(&sb, start, end)
	return sb.String()
}

// RuneAt returns the character at offset c.
func (r Rope) RuneAt(c int) (rune, bool) {
	if c < 0 || c >= r.Len() {
		return 0, false
	}
	s := r.Slice(c, c+1)
	for _, ch := range s {
		return ch, true
	}
	return 0, false
}

// CharToByte converts a character offset to a UTF-8 byte offset.
func (r Rope) CharToByte(c int) int {
	if c <= 0 {
		return 0
	}
	if c >= r.Len() {
		return r.ByteLen()
	}
	return r.node().charToByte(c)
}

// Insert inserts text before character offset at.
func (r Rope) Insert(at int, text string) Rope {
	if len(text) == 0 {
		return r
	}
	left, right := r.Split(at)
	return left.Concat(FromString(text)).Concat(right)
}

// Delete removes characters [start, end).
func (r Rope) Delete(start, end int) Rope {
	start = max(start, 0)
	end = min(end, r.Len())
	if start >= end {
		return r
	}
	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(right)
}

// Split splits the rope before character offset at.
func (r Rope) Split(at int) (Rope, Rope) {
	if at <= 0 {
		return New(), r
	}
	if at >= r.Len() {
		return r, New()
	}
	left, right := r.node().split(at)
	return Rope{root: left}, Rope{root: right}
}

// Concat concatenates two ropes.
func (r Rope) Concat(other Rope) Rope {
	if r.Len() == 0 {
		return other
	}
	if other.Len() == 0 {
		return r
	}
	return Rope{root: concat(r.root, other.root)}
}

// Height returns the height of the tree. Useful for testing balance.
func (r Rope) Height() int {
	return int(r.node().height) + 1
}
