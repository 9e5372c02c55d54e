package layout

import (
	"sort"

	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/shaping"
	"github.com/dshills/richtext/internal/style"
)

// breakpoint records the effective height from glyph at onward.
type breakpoint struct {
	at     int
	height fixed.Int26_6
}

// glyphHeight is the font height, plus the outline on both sides for
// outlined glyphs.
func (e *Engine) glyphHeight(g *shaping.Glyph) fixed.Int26_6 {
	h := e.fonts.Height(g.Font)
	if g.Flags.Has(shaping.FlagOutline) {
		h += 2 * e.outline
	}
	return h
}

// breakpoints scans glyphs once and records each height change, followed by
// a sentinel at len(glyphs).
func (e *Engine) breakpoints(glyphs []shaping.Glyph) []breakpoint {
	var bps []breakpoint
	for i := range glyphs {
		h := e.glyphHeight(&glyphs[i])
		if n := len(bps); n == 0 || bps[n-1].height != h {
			bps = append(bps, breakpoint{at: i, height: h})
		}
	}
	return append(bps, breakpoint{at: len(glyphs)})
}

// heightOf returns the tallest glyph in p.glyphs[from:to] for column c, or
// the column's font height when the range is empty.
func (e *Engine) heightOf(p *paragraph, c int, from, to int) fixed.Int26_6 {
	if from >= to {
		return e.columnFontHeight(c)
	}
	bps := p.heights.GetOrCompute(func() []breakpoint { return e.breakpoints(p.glyphs) })

	i := sort.Search(len(bps), func(i int) bool { return bps[i].at > from }) - 1
	var h fixed.Int26_6
	for ; i < len(bps) && bps[i].at < to; i++ {
		h = max(h, bps[i].height)
	}
	return h
}

func (e *Engine) columnFontHeight(c int) fixed.Int26_6 {
	return e.fonts.Height(e.columnStyleFont(c))
}

// columnStyleFont is the font of column c's style over the defaults.
func (e *Engine) columnStyleFont(c int) style.FontRef {
	st := e.defaults
	if c >= 0 && c < len(e.columns) {
		st = style.Overlay(st, e.columns[c].Style)
	}
	return st.Font
}

// lineHeight is the height of a line including the column margins that
// apply to it.
func (e *Engine) lineHeight(p *paragraph, c, line int) fixed.Int26_6 {
	cl := &p.cols[c]
	ln := cl.lines[line]
	h := e.heightOf(p, c, ln.Start, ln.End)
	if line == 0 {
		h += e.columns[c].Margins.Top
	}
	if line == len(cl.lines)-1 {
		h += e.columns[c].Margins.Bottom
	}
	return h
}

// HeightOf returns the height of the tallest glyph in the global glyph
// range in column col. An empty range yields the column's font height.
func (e *Engine) HeightOf(col int, glyphs Range) (fixed.Int26_6, error) {
	if err := e.checkColumn(col); err != nil {
		return 0, err
	}
	if glyphs.Start < 0 || glyphs.End > e.paras.glyphs() || glyphs.Start > glyphs.End {
		return 0, e.offsetError("glyph range", glyphs.End, e.paras.glyphs())
	}
	if glyphs.Start == glyphs.End {
		return e.columnFontHeight(col), nil
	}

	var h fixed.Int26_6
	rank, within := e.paras.locateByGlyph(glyphs.Start)
	for at := glyphs.Start; at < glyphs.End; rank++ {
		p := e.paras.at(rank)
		take := min(len(p.glyphs)-within, glyphs.End-at)
		h = max(h, e.heightOf(p, col, within, within+take))
		at += take
		within = 0
	}
	return h, nil
}

// InvalidateHeights drops the height caches of every paragraph intersecting
// the glyph range. Line heights are recomputed on the next query that needs
// them.
func (e *Engine) InvalidateHeights(glyphs Range) error {
	total := e.paras.glyphs()
	if glyphs.Start < 0 || glyphs.End > total || glyphs.Start > glyphs.End {
		return e.offsetError("glyph range", glyphs.End, total)
	}
	first, _ := e.paras.locateByGlyph(glyphs.Start)
	last := first
	if glyphs.End > glyphs.Start {
		last, _ = e.paras.locateByGlyph(glyphs.End - 1)
	}
	for r := first; r <= last; r++ {
		e.invalidateParagraph(r)
	}
	return nil
}

func (e *Engine) invalidateParagraph(rank int) {
	e.paras.at(rank).heights.Invalidate()
	e.stale[rank] = struct{}{}
}

// refreshHeights recomputes the stored line heights of paragraphs whose
// height caches were invalidated.
func (e *Engine) refreshHeights() {
	if len(e.stale) == 0 {
		return
	}
	for rank := range e.stale {
		p := e.paras.at(rank)
		for c, col := range e.columns {
			first, _ := col.lines.paragraphLines(rank)
			for i := range p.cols[c].lines {
				col.lines.setHeight(first+i, e.lineHeight(p, c, i))
			}
		}
	}
	clear(e.stale)
}
