package index

import "fmt"

// Sum is a pair of cumulative weights.
type Sum struct {
	A, B int
}

// Add returns s + o.
func (s Sum) Add(o Sum) Sum {
	return Sum{A: s.A + o.A, B: s.B + o.B}
}

// Sub returns s - o.
func (s Sum) Sub(o Sum) Sum {
	return Sum{A: s.A - o.A, B: s.B - o.B}
}

// Item is one weighted entry.
type Item[T any] struct {
	Weight Sum
	Value  T
}

type node[T any] struct {
	left, right int32
	prio        uint32
	count       int // items in subtree
	weight      Sum // this item
	total       Sum // subtree
	value       T
}

// Tree is an ordered sequence of weighted items. The zero value is not usable;
// use New.
type Tree[T any] struct {
	nodes []node[T]
	free  int32 // head of the free list, linked through left
	root  int32
	seed  uint32
}

// New creates an empty tree.
func New[T any]() *Tree[T] {
	return &Tree[T]{
		nodes: make([]node[T], 1, 16), // index 0 is the nil sentinel
		seed:  0x9E3779B9,
	}
}

// Len returns the number of items.
func (t *Tree[T]) Len() int {
	return t.nodes[t.root].count
}

// Total returns the sum of all weights.
func (t *Tree[T]) Total() Sum {
	return t.nodes[t.root].total
}

// Clear removes every item.
func (t *Tree[T]) Clear() {
	t.nodes = t.nodes[:1]
	t.nodes[0] = node[T]{}
	t.free = 0
	t.root = 0
}

func (t *Tree[T]) checkRank(rank, limit int) {
	if rank < 0 || rank >= limit {
		panic(fmt.Sprintf("index: rank %d out of range [0,%d)", rank, limit))
	}
}

// At returns the weight and value of the item at rank.
func (t *Tree[T]) At(rank int) (Sum, T) {
	t.checkRank(rank, t.Len())
	n := &t.nodes[t.find(rank)]
	return n.weight, n.value
}

// Weight returns the weight of the item at rank.
func (t *Tree[T]) Weight(rank int) Sum {
	w, _ := t.At(rank)
	return w
}

// Value returns the payload of the item at rank.
func (t *Tree[T]) Value(rank int) T {
	_, v := t.At(rank)
	return v
}

// Prefix returns the sum of the weights of items before rank.
// rank may equal Len, in which case Prefix returns Total.
func (t *Tree[T]) Prefix(rank int) Sum {
	t.checkRank(rank, t.Len()+1)
	var acc Sum
	n := t.root
	for n != 0 {
		nd := &t.nodes[n]
		lc := t.nodes[nd.left].count
		switch {
		case rank < lc:
			n = nd.left
		case rank == lc:
			return acc.Add(t.nodes[nd.left].total)
		default:
			acc = acc.Add(t.nodes[nd.left].total).Add(nd.weight)
			rank -= lc + 1
			n = nd.right
		}
	}
	return acc
}

// SeekA finds the item containing cumulative A offset off. An offset on the
// boundary between two items belongs to the later one, so zero-A items are
// only reachable at the very end. Offsets at or past Total().A resolve to the
// last item. It returns the rank and the offset within that item.
// The tree must not be empty.
func (t *Tree[T]) SeekA(off int) (rank, within int) {
	return t.seek(off, func(s Sum) int { return s.A })
}

// SeekB is SeekA over the B dimension.
func (t *Tree[T]) SeekB(off int) (rank, within int) {
	return t.seek(off, func(s Sum) int { return s.B })
}

func (t *Tree[T]) seek(off int, key func(Sum) int) (int, int) {
	size := t.Len()
	if size == 0 {
		panic("index: seek in empty tree")
	}
	if off >= key(t.Total()) {
		last := size - 1
		return last, off - key(t.Prefix(last))
	}
	if off < 0 {
		off = 0
	}

	rank := 0
	n := t.root
	for n != 0 {
		nd := &t.nodes[n]
		lk := key(t.nodes[nd.left].total)
		if off < lk {
			n = nd.left
			continue
		}
		off -= lk
		rank += t.nodes[nd.left].count
		if off < key(nd.weight) {
			return rank, off
		}
		off -= key(nd.weight)
		rank++
		n = nd.right
	}
	// Unreachable while off < total.
	last := size - 1
	return last, off
}

// Insert places an item so that it ends up at rank.
func (t *Tree[T]) Insert(rank int, w Sum, v T) {
	t.checkRank(rank, t.Len()+1)
	left, right := t.split(t.root, rank)
	t.root = t.merge(t.merge(left, t.alloc(w, v)), right)
}

// Remove deletes the item at rank and returns it.
func (t *Tree[T]) Remove(rank int) (Sum, T) {
	t.checkRank(rank, t.Len())
	left, rest := t.split(t.root, rank)
	mid, right := t.split(rest, 1)
	nd := t.nodes[mid]
	t.release(mid)
	t.root = t.merge(left, right)
	return nd.weight, nd.value
}

// Set replaces the weight and value at rank.
func (t *Tree[T]) Set(rank int, w Sum, v T) {
	t.checkRank(rank, t.Len())
	t.update(rank, func(n *node[T]) {
		n.weight = w
		n.value = v
	})
}

// SetWeight replaces the weight at rank.
func (t *Tree[T]) SetWeight(rank int, w Sum) {
	t.checkRank(rank, t.Len())
	t.update(rank, func(n *node[T]) { n.weight = w })
}

// Adjust adds delta to the weight at rank.
func (t *Tree[T]) Adjust(rank int, delta Sum) {
	t.checkRank(rank, t.Len())
	t.update(rank, func(n *node[T]) { n.weight = n.weight.Add(delta) })
}

// Replace removes n items starting at rank and inserts items in their place.
func (t *Tree[T]) Replace(rank, n int, items []Item[T]) {
	t.checkRank(rank, t.Len()+1)
	if n < 0 || rank+n > t.Len() {
		panic(fmt.Sprintf("index: replace [%d,%d) beyond length %d", rank, rank+n, t.Len()))
	}
	left, rest := t.split(t.root, rank)
	old, right := t.split(rest, n)
	t.releaseTree(old)

	mid := int32(0)
	for _, it := range items {
		mid = t.merge(mid, t.alloc(it.Weight, it.Value))
	}
	t.root = t.merge(t.merge(left, mid), right)
}

// Range returns the items in [from, to).
func (t *Tree[T]) Range(from, to int) []Item[T] {
	if from < 0 || to > t.Len() || from > to {
		panic(fmt.Sprintf("index: range [%d,%d) beyond length %d", from, to, t.Len()))
	}
	out := make([]Item[T], 0, to-from)
	t.walk(t.root, 0, from, to, &out)
	return out
}

func (t *Tree[T]) walk(n int32, base, from, to int, out *[]Item[T]) {
	if n == 0 || base >= to || base+t.nodes[n].count <= from {
		return
	}
	nd := &t.nodes[n]
	lc := t.nodes[nd.left].count
	t.walk(nd.left, base, from, to, out)
	if r := base + lc; r >= from && r < to {
		*out = append(*out, Item[T]{Weight: nd.weight, Value: nd.value})
	}
	t.walk(nd.right, base+lc+1, from, to, out)
}

// find returns the arena index of the node at rank.
func (t *Tree[T]) find(rank int) int32 {
	n := t.root
	for {
		nd := &t.nodes[n]
		lc := t.nodes[nd.left].count
		switch {
		case rank < lc:
			n = nd.left
		case rank == lc:
			return n
		default:
			rank -= lc + 1
			n = nd.right
		}
	}
}

// update applies fn to the node at rank and refreshes the totals on its path.
func (t *Tree[T]) update(rank int, fn func(*node[T])) {
	var path []int32
	n := t.root
	for {
		path = append(path, n)
		nd := &t.nodes[n]
		lc := t.nodes[nd.left].count
		if rank < lc {
			n = nd.left
		} else if rank == lc {
			break
		} else {
			rank -= lc + 1
			n = nd.right
		}
	}
	fn(&t.nodes[n])
	for i := len(path) - 1; i >= 0; i-- {
		t.pull(path[i])
	}
}

func (t *Tree[T]) pull(n int32) {
	nd := &t.nodes[n]
	l, r := &t.nodes[nd.left], &t.nodes[nd.right]
	nd.count = l.count + r.count + 1
	nd.total = l.total.Add(nd.weight).Add(r.total)
}

// split divides the subtree at n into the first k items and the rest.
func (t *Tree[T]) split(n int32, k int) (int32, int32) {
	if n == 0 {
		return 0, 0
	}
	nd := &t.nodes[n]
	lc := t.nodes[nd.left].count
	if k <= lc {
		l, r := t.split(nd.left, k)
		t.nodes[n].left = r
		t.pull(n)
		return l, n
	}
	l, r := t.split(nd.right, k-lc-1)
	t.nodes[n].right = l
	t.pull(n)
	return n, r
}

// merge joins two subtrees where every item of a precedes every item of b.
func (t *Tree[T]) merge(a, b int32) int32 {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	if t.nodes[a].prio > t.nodes[b].prio {
		t.nodes[a].right = t.merge(t.nodes[a].right, b)
		t.pull(a)
		return a
	}
	t.nodes[b].left = t.merge(a, t.nodes[b].left)
	t.pull(b)
	return b
}

func (t *Tree[T]) nextPrio() uint32 {
	// xorshift32
	x := t.seed
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	t.seed = x
	return x
}

func (t *Tree[T]) alloc(w Sum, v T) int32 {
	nd := node[T]{prio: t.nextPrio(), count: 1, weight: w, total: w, value: v}
	if t.free != 0 {
		n := t.free
		t.free = t.nodes[n].left
		t.nodes[n] = nd
		return n
	}
	t.nodes = append(t.nodes, nd)
	return int32(len(t.nodes) - 1)
}

func (t *Tree[T]) release(n int32) {
	var zero T
	t.nodes[n] = node[T]{left: t.free, value: zero}
	t.free = n
}

func (t *Tree[T]) releaseTree(n int32) {
	if n == 0 {
		return
	}
	l, r := t.nodes[n].left, t.nodes[n].right
	t.release(n)
	t.releaseTree(l)
	t.releaseTree(r)
}
