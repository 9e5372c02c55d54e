package layout

import (
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/shaping"
)

// CharCount returns the document length in characters.
func (e *Engine) CharCount() int {
	return e.paras.chars()
}

// GlyphCount returns the number of glyphs in the document.
func (e *Engine) GlyphCount() int {
	return e.paras.glyphs()
}

// ParagraphCount returns the number of paragraphs. It is always at least one.
func (e *Engine) ParagraphCount() int {
	return e.paras.count()
}

// LocateByChar returns the paragraph containing character offset off and the
// offset within it.
func (e *Engine) LocateByChar(off int) (rank, within int, err error) {
	if off < 0 || off > e.paras.chars() {
		return 0, 0, e.offsetError("char", off, e.paras.chars())
	}
	rank, within = e.paras.locateByChar(off)
	return rank, within, nil
}

// LocateByGlyph returns the paragraph containing glyph offset off and the
// offset within it.
func (e *Engine) LocateByGlyph(off int) (rank, within int, err error) {
	if off < 0 || off > e.paras.glyphs() {
		return 0, 0, e.offsetError("glyph", off, e.paras.glyphs())
	}
	rank, within = e.paras.locateByGlyph(off)
	return rank, within, nil
}

// ParagraphBounds returns the character and glyph ranges of paragraph rank.
func (e *Engine) ParagraphBounds(rank int) (chars, glyphs Range, err error) {
	if rank < 0 || rank >= e.paras.count() {
		return Range{}, Range{}, e.offsetError("paragraph", rank, e.paras.count())
	}
	chars, glyphs = e.paras.bounds(rank)
	return chars, glyphs, nil
}

// CharToGlyph returns the offset of the glyph covering character c, or the
// glyph count when c is the document end.
func (e *Engine) CharToGlyph(c int) (int, error) {
	rank, within, err := e.LocateByChar(c)
	if err != nil {
		return 0, err
	}
	_, glyphs := e.paras.bounds(rank)
	return glyphs.Start + e.paras.at(rank).glyphAt(within), nil
}

// GlyphToChar returns the character range rendered by glyph g.
func (e *Engine) GlyphToChar(g int) (Range, error) {
	gl, err := e.GlyphAt(g)
	if err != nil {
		return Range{}, err
	}
	return gl.Source, nil
}

// GlyphAt returns glyph g with its source in document coordinates.
func (e *Engine) GlyphAt(g int) (shaping.Glyph, error) {
	if g < 0 || g >= e.paras.glyphs() {
		return shaping.Glyph{}, e.offsetError("glyph", g, e.paras.glyphs())
	}
	rank, within := e.paras.locateByGlyph(g)
	chars, _ := e.paras.bounds(rank)
	gl := e.paras.at(rank).glyphs[within]
	gl.Source = gl.Source.Shift(chars.Start)
	return gl, nil
}

// Line describes one laid-out line of a column.
type Line struct {
	Paragraph int
	Glyphs    Range // document glyph offsets
	Chars     Range // document character offsets
	Y         fixed.Int26_6
	Height    fixed.Int26_6
	Width     fixed.Int26_6
	// Ascent is the baseline offset from Y, including the top margin on a
	// paragraph's first line.
	Ascent fixed.Int26_6
}

// LineCount returns the number of lines in column col.
func (e *Engine) LineCount(col int) (int, error) {
	if err := e.checkColumn(col); err != nil {
		return 0, err
	}
	return e.columns[col].lines.count(), nil
}

// ContentHeight returns the summed line height of column col.
func (e *Engine) ContentHeight(col int) (fixed.Int26_6, error) {
	if err := e.checkColumn(col); err != nil {
		return 0, err
	}
	e.refreshHeights()
	return e.columns[col].lines.height(), nil
}

// Line returns line rank of column col.
func (e *Engine) Line(col, rank int) (Line, error) {
	if err := e.checkLine(col, rank); err != nil {
		return Line{}, err
	}
	e.refreshHeights()
	return e.line(col, rank), nil
}

func (e *Engine) checkLine(col, rank int) error {
	if err := e.checkColumn(col); err != nil {
		return err
	}
	if n := e.columns[col].lines.count(); rank < 0 || rank >= n {
		return e.offsetError("line", rank, n)
	}
	return nil
}

func (e *Engine) line(col, rank int) Line {
	li := e.columns[col].lines
	pr, nth := li.paragraphOf(rank)
	p := e.paras.at(pr)
	chars, glyphs := e.paras.bounds(pr)
	ln := p.cols[col].lines[nth]

	var start, end int
	if ln.Len() == 0 {
		start = p.charAt(ln.Start)
		end = start
	} else {
		start = p.glyphs[ln.Start].Source.Start
		end = p.glyphs[ln.End-1].Source.End
	}

	asc := e.lineAscent(p, col, ln)
	if nth == 0 {
		asc += e.columns[col].Margins.Top
	}
	return Line{
		Paragraph: pr,
		Glyphs:    ln.Shift(glyphs.Start),
		Chars:     Range{Start: chars.Start + start, End: chars.Start + end},
		Y:         li.top(rank),
		Height:    li.lineHeight(rank),
		Width:     p.width(ln.Start, ln.End),
		Ascent:    asc,
	}
}

func (e *Engine) lineAscent(p *paragraph, col int, ln Range) fixed.Int26_6 {
	if ln.Len() == 0 {
		return e.fonts.Baseline(e.columnStyleFont(col))
	}
	var asc fixed.Int26_6
	for _, g := range p.glyphs[ln.Start:ln.End] {
		asc = max(asc, -g.Cell.Min.Y)
	}
	return asc
}

// LocateByHeight returns the line of column col at vertical offset y and the
// offset within it. Offsets are clamped to the column.
func (e *Engine) LocateByHeight(col int, y fixed.Int26_6) (line int, within fixed.Int26_6, err error) {
	if err := e.checkColumn(col); err != nil {
		return 0, 0, err
	}
	e.refreshHeights()
	line, within = e.columns[col].lines.locateByHeight(max(y, 0))
	return line, within, nil
}

// LocateLineByGlyph returns the line of column col holding column-local
// glyph offset off.
func (e *Engine) LocateLineByGlyph(col, off int) (int, error) {
	if err := e.checkColumn(col); err != nil {
		return 0, err
	}
	li := e.columns[col].lines
	if total := li.lines.Total().A; off < 0 || off > total {
		return 0, e.offsetError("column glyph", off, total)
	}
	return li.locateByGlyph(off), nil
}

// GlyphRun returns the glyphs of a line in visual order with sources in
// document coordinates.
func (e *Engine) GlyphRun(col, rank int) ([]shaping.Glyph, error) {
	if err := e.checkLine(col, rank); err != nil {
		return nil, err
	}
	pr, nth := e.columns[col].lines.paragraphOf(rank)
	p := e.paras.at(pr)
	chars, _ := e.paras.bounds(pr)
	ln := p.cols[col].lines[nth]

	out := make([]shaping.Glyph, ln.Len())
	copy(out, p.glyphs[ln.Start:ln.End])
	for i := range out {
		out[i].Source = out[i].Source.Shift(chars.Start)
	}
	return out, nil
}

// HitTest returns the character offset nearest to point in column col.
// The point is relative to the top-left of the whole layout.
func (e *Engine) HitTest(col int, point fixed.Point26_6) (int, error) {
	if err := e.checkColumn(col); err != nil {
		return 0, err
	}
	e.refreshHeights()
	line, _ := e.columns[col].lines.locateByHeight(max(point.Y, 0))
	x := point.X - e.columns[col].x - e.columns[col].Margins.Left
	return e.hitLine(col, line, x), nil
}

// hitLine returns the character offset nearest to x on a line. Past the end
// it returns the line end, before any trailing hard break or delimiter.
func (e *Engine) hitLine(col, rank int, x fixed.Int26_6) int {
	pr, nth := e.columns[col].lines.paragraphOf(rank)
	p := e.paras.at(pr)
	chars, _ := e.paras.bounds(pr)
	ln := p.cols[col].lines[nth]

	var pen fixed.Int26_6
	for i := ln.Start; i < ln.End; i++ {
		g := &p.glyphs[i]
		if x < pen+g.Advance/2 {
			return chars.Start + g.Source.Start
		}
		pen += g.Advance
	}
	return chars.Start + e.lineEnd(p, ln)
}

// lineEnd returns the paragraph-local caret position at the end of a line.
func (e *Engine) lineEnd(p *paragraph, ln Range) int {
	if ln.Len() == 0 {
		return p.charAt(ln.Start)
	}
	last := &p.glyphs[ln.End-1]
	if last.Flags&(shaping.FlagHardBreak|shaping.FlagDelimiter) != 0 {
		return last.Source.Start
	}
	return last.Source.End
}

// Location places a caret.
type Location struct {
	Paragraph int
	Column    int
	Line      int // line rank within the column
	X         fixed.Int26_6
}

// Caret locates the caret before character c.
func (e *Engine) Caret(c int) (Location, error) {
	rank, within, err := e.LocateByChar(c)
	if err != nil {
		return Location{}, err
	}
	e.refreshHeights()
	p := e.paras.at(rank)
	g := p.glyphAt(within)

	col := -1
	for i := range p.cols {
		if g < p.cols[i].seg.End {
			col = i
			break
		}
	}
	if col < 0 {
		col = 0
		for i := len(p.cols) - 1; i >= 0; i-- {
			if p.cols[i].seg.Len() > 0 {
				col = i
				break
			}
		}
	}

	lines := p.cols[col].lines
	nth := len(lines) - 1
	for i, ln := range lines {
		if g < ln.End {
			nth = i
			break
		}
	}
	first, _ := e.columns[col].lines.paragraphLines(rank)
	ln := lines[nth]
	x := p.width(ln.Start, min(max(g, ln.Start), ln.End))
	return Location{Paragraph: rank, Column: col, Line: first + nth, X: x}, nil
}

// CaretRect returns the zero-width caret rectangle before character c in
// layout coordinates.
func (e *Engine) CaretRect(c int) (fixed.Rectangle26_6, error) {
	loc, err := e.Caret(c)
	if err != nil {
		return fixed.Rectangle26_6{}, err
	}
	col := e.columns[loc.Column]
	ln := e.line(loc.Column, loc.Line)
	_, nth := col.lines.paragraphOf(loc.Line)
	top := ln.Y
	bottom := ln.Y + ln.Height
	if nth == 0 {
		top += col.Margins.Top
	}
	if e.isLastLine(loc.Column, loc.Line) {
		bottom -= col.Margins.Bottom
	}
	x := col.x + col.Margins.Left + loc.X
	return fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: x, Y: top},
		Max: fixed.Point26_6{X: x, Y: bottom},
	}, nil
}

// isLastLine reports whether line is the last line of its paragraph.
func (e *Engine) isLastLine(col, line int) bool {
	pr, nth := e.columns[col].lines.paragraphOf(line)
	return nth == len(e.paras.at(pr).cols[col].lines)-1
}
