package layout

import (
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/shaping"
	"github.com/dshills/richtext/internal/style"
)

// Margins pad a column. Left and Right narrow the wrap width; Top is added
// to the first line of each paragraph and Bottom to the last.
type Margins struct {
	Left, Right, Top, Bottom fixed.Int26_6
}

// Column describes one column of the layout.
type Column struct {
	// Delimiter ends this column's segment of a paragraph. The delimiter of
	// the last column is ignored; zero means the column never ends early.
	Delimiter rune

	// MinWidth and MaxWidth clamp the allocated width. A zero MaxWidth is
	// unbounded.
	MinWidth, MaxWidth fixed.Int26_6

	Margins Margins

	// Style overlays the document defaults for the column's empty lines.
	Style style.Style

	// Wrap enables line wrapping at the column's available width.
	Wrap bool
}

// DefaultColumn is the column used when none are configured.
var DefaultColumn = Column{Wrap: true}

func (c Column) clamp(w fixed.Int26_6) fixed.Int26_6 {
	if c.MaxWidth > 0 && w > c.MaxWidth {
		w = c.MaxWidth
	}
	if w < c.MinWidth {
		w = c.MinWidth
	}
	return max(w, 0)
}

// column is the per-column layout state.
type column struct {
	Column
	width fixed.Int26_6 // allocated
	x     fixed.Int26_6 // left edge
	lines *lineIndex
}

func (c *column) wrapWidth() fixed.Int26_6 {
	return c.width - c.Margins.Left - c.Margins.Right
}

// allocateWidths gives each column total/n clamped to its bounds; the last
// column receives what remains, clamped.
func allocateWidths(cols []*column, total fixed.Int26_6) {
	// Every column but the last gets a whole number of units.
	share := fixed.I((total / fixed.Int26_6(len(cols))).Floor())
	var used, x fixed.Int26_6
	for i, c := range cols {
		if i == len(cols)-1 {
			c.width = c.clamp(total - used)
		} else {
			c.width = c.clamp(share)
		}
		c.x = x
		used += c.width
		x += c.width
	}
}

// segment splits a paragraph's glyphs between columns and marks delimiter
// glyphs. Column i's segment ends after the first glyph whose source is its
// delimiter; the last column takes the rest.
func segment(glyphs []shaping.Glyph, runes []rune, cols []*column) []Range {
	segs := make([]Range, len(cols))
	c, start := 0, 0
	for i := range glyphs {
		if c == len(cols)-1 {
			break
		}
		g := &glyphs[i]
		d := cols[c].Delimiter
		if d == 0 || g.Source.Len() != 1 || runes[g.Source.Start] != d {
			continue
		}
		g.Flags |= shaping.FlagDelimiter
		g.Advance = 0
		g.Cell.Max.X = g.Cell.Min.X
		segs[c] = Range{Start: start, End: i + 1}
		start = i + 1
		c++
	}
	segs[c] = Range{Start: start, End: len(glyphs)}
	for j := c + 1; j < len(cols); j++ {
		segs[j] = Range{Start: len(glyphs), End: len(glyphs)}
	}
	return segs
}
