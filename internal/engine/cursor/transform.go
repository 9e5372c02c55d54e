package cursor

import "github.com/dshills/richtext/internal/engine/buffer"

// AdjustForInsertion shifts an offset past n characters inserted at pos.
// Offsets at the insertion point move to the end of the inserted text.
func AdjustForInsertion(offset, pos, n int) int {
	if offset < pos {
		return offset
	}
	return offset + n
}

// AdjustForDeletion maps an offset across the deletion of r. Offsets inside
// the deleted range move to its start.
func AdjustForDeletion(offset int, r Range) int {
	// Before deletion: unchanged
	if offset <= r.Start {
		return offset
	}
	// Within deletion: move to start
	if offset < r.End {
		return r.Start
	}
	// After deletion: shift left
	return offset - r.Len()
}

// TransformOffset maps an offset across a buffer change. A replacement is
// a deletion followed by an insertion; restyling moves nothing.
func TransformOffset(offset int, ch buffer.Change) int {
	switch ch.Type {
	case buffer.ChangeStyle:
		return offset
	case buffer.ChangeInsert:
		return AdjustForInsertion(offset, ch.Start, ch.NewRange().Len())
	}
	offset = AdjustForDeletion(offset, ch.OldRange())
	if n := ch.NewRange().Len(); n > 0 {
		offset = AdjustForInsertion(offset, ch.Start, n)
	}
	return offset
}

// Transform carries a cursor across a buffer change and clamps it to the
// document length after the change.
func (c Cursor) Transform(ch buffer.Change, length int) Cursor {
	return Cursor{
		Position: TransformOffset(c.Position, ch),
		Anchor:   TransformOffset(c.Anchor, ch),
	}.Clamp(length)
}
