// Package index provides a dual-keyed order-statistics sequence.
//
// A Tree holds an ordered sequence of items. Each item carries a two-dimensional
// weight (A, B) and a payload. Every node stores the sums of both weights over
// its subtree, so the tree answers in O(log n):
//
//   - rank -> cumulative (A, B) before that rank
//   - cumulative A offset -> (rank, offset within item)
//   - cumulative B offset -> (rank, offset within item)
//
// The layout engine uses one Tree for paragraphs keyed by (characters, glyphs)
// and one per column for lines keyed by (glyphs, height). The document buffer
// uses one keyed by characters for its style runs.
//
// Nodes live in an arena slice and refer to each other by int32 index; index 0
// is the nil sentinel. Freed nodes go onto a free list and are reused. The
// balancing scheme is a treap with deterministic priorities, so the shape of a
// tree depends only on the sequence of operations applied to it.
package index
