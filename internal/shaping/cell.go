package shaping

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/style"
)

// CellProvider measures text on a terminal grid: every line is one cell
// high and a character advances by its display width in cells. Glyph IDs
// are code points. Font family, size and weight are ignored.
type CellProvider struct {
	cond *runewidth.Condition
}

// NewCellProvider creates a cell provider. eastAsian selects the East Asian
// width of ambiguous characters.
func NewCellProvider(eastAsian bool) *CellProvider {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = eastAsian
	return &CellProvider{cond: cond}
}

// Height implements FontProvider.
func (p *CellProvider) Height(style.FontRef) fixed.Int26_6 {
	return fixed.I(1)
}

// Baseline implements FontProvider.
func (p *CellProvider) Baseline(style.FontRef) fixed.Int26_6 {
	return fixed.I(1)
}

// Kerning implements FontProvider.
func (p *CellProvider) Kerning(style.FontRef, GlyphID, GlyphID) fixed.Int26_6 {
	return 0
}

// Glyph implements FontProvider. Control characters other than tab have no
// glyph.
func (p *CellProvider) Glyph(_ style.FontRef, r rune) (GlyphMetrics, bool) {
	if (r < 0x20 && r != '\t') || r == 0x7f {
		return GlyphMetrics{}, false
	}
	w := fixed.I(p.cond.RuneWidth(r))
	return GlyphMetrics{
		ID:      GlyphID(r),
		Advance: w,
		Bounds:  fixed.Rectangle26_6{Min: fixed.Point26_6{Y: -fixed.I(1)}, Max: fixed.Point26_6{X: w}},
	}, true
}
