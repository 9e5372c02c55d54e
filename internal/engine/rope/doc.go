// Package rope provides an immutable rope for document text.
//
// A rope is a B+ tree whose leaves hold bounded text chunks and whose internal
// nodes store aggregated summaries (bytes, characters, newlines) of their
// subtrees. All public offsets are character (code point) offsets; byte
// offsets only appear at the CharToByte boundary.
//
// Key features:
//   - O(log n) insertion, deletion, and character-offset lookup
//   - Immutable operations return new ropes; originals are never modified
//   - Copy-on-write sharing of untouched subtrees
//
// Basic usage:
//
//	r := rope.FromString("héllo world")
//	r = r.Insert(5, ",")      // "héllo, world"
//	r = r.Delete(0, 7)        // "world"
//	text := r.Slice(0, 3)     // "wor"
package rope
