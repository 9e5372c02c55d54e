package cursor

import (
	"fmt"

	"github.com/dshills/richtext/internal/engine/buffer"
)

// Range is an alias for buffer.Range for convenience.
type Range = buffer.Range

// Cursor is a caret plus the anchor of its selection, in characters.
// Cursor is an immutable value type.
type Cursor struct {
	Position int
	Anchor   int
}

// At creates a cursor with no selection at offset.
func At(offset int) Cursor {
	offset = max(offset, 0)
	return Cursor{Position: offset, Anchor: offset}
}

// Select creates a cursor selecting from anchor to position.
func Select(anchor, position int) Cursor {
	return Cursor{Position: max(position, 0), Anchor: max(anchor, 0)}
}

// HasSelection returns true if the cursor selects at least one character.
func (c Cursor) HasSelection() bool {
	return c.Position != c.Anchor
}

// Range returns the selection as a range (always Start <= End).
func (c Cursor) Range() Range {
	if c.Anchor <= c.Position {
		return Range{Start: c.Anchor, End: c.Position}
	}
	return Range{Start: c.Position, End: c.Anchor}
}

// Start returns the lower bound of the selection.
func (c Cursor) Start() int {
	return min(c.Anchor, c.Position)
}

// End returns the upper bound of the selection.
func (c Cursor) End() int {
	return max(c.Anchor, c.Position)
}

// IsBackward returns true if the selection extends backward.
func (c Cursor) IsBackward() bool {
	return c.Position < c.Anchor
}

// MoveTo returns a cursor at offset. With extend the anchor stays put;
// otherwise the selection collapses.
func (c Cursor) MoveTo(offset int, extend bool) Cursor {
	offset = max(offset, 0)
	if extend {
		return Cursor{Position: offset, Anchor: c.Anchor}
	}
	return Cursor{Position: offset, Anchor: offset}
}

// Collapse returns a cursor at Position with no selection.
func (c Cursor) Collapse() Cursor {
	return Cursor{Position: c.Position, Anchor: c.Position}
}

// Clamp returns a cursor with both offsets clamped to [0, maxOffset].
func (c Cursor) Clamp(maxOffset int) Cursor {
	return Cursor{
		Position: min(max(c.Position, 0), maxOffset),
		Anchor:   min(max(c.Anchor, 0), maxOffset),
	}
}

// String returns a string representation of the cursor.
func (c Cursor) String() string {
	if !c.HasSelection() {
		return fmt.Sprintf("Cursor(%d)", c.Position)
	}
	dir := "→"
	if c.IsBackward() {
		dir = "←"
	}
	return fmt.Sprintf("Selection(%d%s%d)", c.Anchor, dir, c.Position)
}
