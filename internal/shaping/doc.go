// Package shaping turns styled text into glyphs.
//
// A Shaper converts a run of characters sharing one resolved style into a
// sequence of Glyphs whose Source spans tile the run. A FontProvider answers
// metric queries (line height, baseline, per-glyph advance and bounds,
// kerning) for a style.FontRef.
//
// Two providers are included: FaceProvider measures the Go font family with
// golang.org/x/image/font/sfnt, and CellProvider measures terminal cells with
// github.com/mattn/go-runewidth. BuiltinShaper works with either.
package shaping
