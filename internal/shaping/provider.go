package shaping

import (
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/style"
)

// GlyphMetrics describes one glyph of a font.
type GlyphMetrics struct {
	ID      GlyphID
	Advance fixed.Int26_6
	Bounds  fixed.Rectangle26_6
}

// FontProvider answers font metric queries. Units are the provider's
// fixed-point units: pixels for FaceProvider, cells for CellProvider.
type FontProvider interface {
	// Height returns the line height of f.
	Height(f style.FontRef) fixed.Int26_6

	// Baseline returns the distance from the top of a line to the baseline.
	Baseline(f style.FontRef) fixed.Int26_6

	// Kerning returns the adjustment between two adjacent glyphs.
	Kerning(f style.FontRef, left, right GlyphID) fixed.Int26_6

	// Glyph returns the metrics of r in f, or false if f has no glyph for r.
	Glyph(f style.FontRef, r rune) (GlyphMetrics, bool)
}

// Shaper converts a run of characters sharing one style into glyphs.
// The returned glyph sources must tile [0, len(runes)).
type Shaper interface {
	Shape(runes []rune, st style.Style) []Glyph
}
