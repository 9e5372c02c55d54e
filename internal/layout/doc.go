// Package layout maintains the derived layout of a rich-text document: the
// shaped glyph sequence, the paragraph index, per-column line indices and
// the line height cache.
//
// The Engine reads characters and style runs from a Source and keeps every
// index consistent with it. After each buffer mutation the caller passes the
// resulting buffer.Change to Reflow, which reshapes only the paragraphs the
// change touched:
//
//	Idle -> AffectedSpanComputed -> Reshaped -> ParagraphIndexUpdated
//	     -> LinesRebuilt -> HeightInvalidated -> Idle
//
// All lookups between character offsets, glyph offsets, lines and vertical
// positions are logarithmic in the number of paragraphs and lines, backed by
// the order-statistics trees in package index.
//
// Dimensions are fixed.Int26_6 values in the units of the FontProvider.
// An Engine is not safe for concurrent use.
package layout
