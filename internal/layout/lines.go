package layout

import (
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/layout/index"
)

// lineIndex is the line index of one column. Lines are keyed by (column
// glyphs, height); a second tree keyed by (lines, column glyphs) maps each
// paragraph to its run of lines.
type lineIndex struct {
	lines *index.Tree[struct{}]
	paras *index.Tree[struct{}]
}

func newLineIndex() *lineIndex {
	return &lineIndex{
		lines: index.New[struct{}](),
		paras: index.New[struct{}](),
	}
}

func (li *lineIndex) clear() {
	li.lines.Clear()
	li.paras.Clear()
}

// count returns the number of lines.
func (li *lineIndex) count() int { return li.lines.Len() }

// height returns the summed height of all lines.
func (li *lineIndex) height() fixed.Int26_6 { return fixed.Int26_6(li.lines.Total().B) }

// locateByHeight returns the line containing vertical offset y and the
// offset within it. Offsets past the end resolve to the last line.
func (li *lineIndex) locateByHeight(y fixed.Int26_6) (line int, within fixed.Int26_6) {
	r, w := li.lines.SeekB(int(y))
	return r, fixed.Int26_6(w)
}

// locateByGlyph returns the line containing column glyph offset off.
func (li *lineIndex) locateByGlyph(off int) int {
	r, _ := li.lines.SeekA(off)
	return r
}

// top returns the vertical offset of line.
func (li *lineIndex) top(line int) fixed.Int26_6 {
	return fixed.Int26_6(li.lines.Prefix(line).B)
}

// lineHeight returns the stored height of line.
func (li *lineIndex) lineHeight(line int) fixed.Int26_6 {
	return fixed.Int26_6(li.lines.Weight(line).B)
}

func (li *lineIndex) setHeight(line int, h fixed.Int26_6) {
	w := li.lines.Weight(line)
	li.lines.SetWeight(line, index.Sum{A: w.A, B: int(h)})
}

// paragraphOf returns the paragraph owning line and the line's position
// within that paragraph.
func (li *lineIndex) paragraphOf(line int) (rank, nth int) {
	return li.paras.SeekA(line)
}

// paragraphLines returns the first line of paragraph rank and its line count.
func (li *lineIndex) paragraphLines(rank int) (first, n int) {
	return li.paras.Prefix(rank).A, li.paras.Weight(rank).A
}

// glyphStart returns the column glyph offset where paragraph rank begins.
func (li *lineIndex) glyphStart(rank int) int {
	return li.paras.Prefix(rank).B
}

// paragraphLayout is what replace needs to know about one paragraph.
type paragraphLayout struct {
	glyphs  int             // column glyphs
	lines   []Range         // paragraph-local glyph ranges
	heights []fixed.Int26_6 // per line, or nil to store zero
}

// replace swaps the lines of paragraphs [first, first+n) for those of ps.
func (li *lineIndex) replace(first, n int, ps []paragraphLayout) {
	l0 := li.paras.Prefix(first).A
	l1 := li.paras.Prefix(first + n).A

	var lines []index.Item[struct{}]
	paras := make([]index.Item[struct{}], len(ps))
	for i, p := range ps {
		for j, ln := range p.lines {
			var h int
			if p.heights != nil {
				h = int(p.heights[j])
			}
			lines = append(lines, index.Item[struct{}]{Weight: index.Sum{A: ln.Len(), B: h}})
		}
		paras[i] = index.Item[struct{}]{Weight: index.Sum{A: len(p.lines), B: p.glyphs}}
	}
	li.lines.Replace(l0, l1-l0, lines)
	li.paras.Replace(first, n, paras)
}
