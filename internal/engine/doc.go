// Package engine provides the editable rich-text document.
//
// A Document ties together the pieces that live in the sub-packages:
//
//   - rope: B+ tree rope for character storage (O(log n) operations)
//   - buffer: text plus one reference-counted style tag per character
//   - cursor: the caret and selection, and how they move
//
// and keeps a layout.Engine in step with every edit, so the host can ask
// for glyph runs, hit tests and caret rectangles at any time.
//
// # Basic Usage
//
//	reg := style.NewRegistry()
//	fonts := shaping.NewCellProvider(false)
//	doc := engine.New(reg, shaping.NewBuiltinShaper(fonts), fonts,
//		engine.WithLayout(layout.WithWidth(fixed.I(80))))
//	defer doc.Close()
//
//	doc.Type("Hello, World!")
//	doc.Move(cursor.WordLeft, true) // select "World!"
//	doc.SetStyle(doc.Cursor().Start(), doc.Cursor().End(), style.Style{Underline: style.ToggleOn})
//
// # Edits
//
// Every edit validates its arguments before touching anything: an edit that
// returns an error leaves text, styles, layout and cursor unchanged. A
// successful edit is applied to the buffer, reflowed, and then the cursor is
// carried across it.
//
// # Styles
//
// Styles are interned in a style.Registry that may be shared between
// documents. The document holds one reference on its current style; Close
// releases it along with the references held by the text.
//
// # Thread Safety
//
// All Document operations are serialized by a mutex. The layout is derived
// state and is only ever touched under that lock.
package engine
