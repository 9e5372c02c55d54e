package layout

import (
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/shaping"
)

const unbreakable = shaping.FlagWhitespace | shaping.FlagHardBreak | shaping.FlagDelimiter

// Wrap breaks glyphs into lines no wider than width and returns the glyph
// range of each line. Whitespace, hard breaks, delimiters and zero-advance
// glyphs never overflow; a whitespace glyph is a break opportunity after
// itself. A line that overflows breaks at its last opportunity, otherwise
// before the overflowing glyph, or after it when it is alone on the line.
// An empty input yields one empty line.
func Wrap(glyphs []shaping.Glyph, width fixed.Int26_6) []Range {
	if len(glyphs) == 0 {
		return []Range{{}}
	}

	var lines []Range
	start, cand := 0, -1
	var w fixed.Int26_6
	for i, g := range glyphs {
		if g.Flags&unbreakable != 0 || g.Advance <= 0 {
			w += g.Advance
			if g.Flags.Has(shaping.FlagWhitespace) {
				cand = i + 1
			}
			continue
		}
		if w+g.Advance > width && i > start {
			brk := i
			if cand > start {
				brk = cand
			}
			lines = append(lines, Range{Start: start, End: brk})
			start, cand = brk, -1
			w = shaping.Width(glyphs[start:i])
		}
		w += g.Advance
	}
	return append(lines, Range{Start: start, End: len(glyphs)})
}
