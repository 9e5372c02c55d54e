// Package cursor provides the caret and selection of a document.
//
// A Cursor is a value holding two character offsets:
//
//   - Position: where the caret is drawn and where typing occurs
//   - Anchor: where the selection started
//
// When Anchor == Position the cursor has no selection. The selection can
// extend forward (Position > Anchor) or backward (Position < Anchor).
//
// Movement is expressed as a MoveOp applied against a Navigator, which the
// layout engine implements:
//
//	c = c.Move(cursor.WordRight, engine, false) // jump to the next word
//	c = c.Move(cursor.LineEnd, engine, true)    // extend to the end of the line
//
// After the buffer changes, cursors are carried across the edit with
// Transform, then clamped to the new document length.
//
// Thread Safety:
//
// Cursor is an immutable value type and safe for concurrent use.
package cursor
