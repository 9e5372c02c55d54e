// Package buffer holds the characters of a rich-text document together with
// their style tags.
//
// Text is stored in a character-indexed rope and tags in a run index, so both
// reads and tag lookups are logarithmic in document size. Every character
// holds one reference on its style; the buffer retains and releases handles
// in the shared style.Registry as characters come and go.
//
// Offsets are character (code point) offsets. Every mutation validates its
// arguments first and either applies completely or not at all, and returns a
// Change describing the affected range in old and new coordinates:
//
//	reg := style.NewRegistry()
//	buf := buffer.New(reg)
//	bold := reg.Intern(style.Style{Font: style.FontRef{Bold: true}})
//	n, ch, err := buf.Insert(0, "hello", bold) // n == 5, ch == {0 0 5}
//
// All Buffer methods are safe for concurrent use; the layout engine reads the
// buffer through the Len, Slice and Runs methods.
package buffer
