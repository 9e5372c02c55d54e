package layout

import (
	"fmt"

	"github.com/dshills/richtext/internal/shaping"
)

// CheckInvariants verifies that the glyph sequence tiles the source, that
// the paragraph index agrees with the glyphs it indexes and that every
// column's lines tile its segments. It is linear in document size.
func (e *Engine) CheckInvariants() error {
	e.refreshHeights()

	if got, want := e.paras.chars(), e.src.Len(); got != want {
		return fmt.Errorf("%w: paragraph index holds %d characters, source %d", ErrInvariant, got, want)
	}
	if e.paras.count() == 0 {
		return fmt.Errorf("%w: no paragraphs", ErrInvariant)
	}

	glyphTotal := 0
	for rank := 0; rank < e.paras.count(); rank++ {
		p := e.paras.at(rank)
		chars, glyphs := e.paras.bounds(rank)
		if chars.Len() != p.chars || glyphs.Len() != len(p.glyphs) {
			return fmt.Errorf("%w: paragraph %d weight (%d,%d), holds (%d,%d)",
				ErrInvariant, rank, chars.Len(), glyphs.Len(), p.chars, len(p.glyphs))
		}
		if !shaping.Tiles(p.glyphs, p.chars) {
			return fmt.Errorf("%w: glyphs of paragraph %d do not tile its %d characters", ErrInvariant, rank, p.chars)
		}
		last := rank == e.paras.count()-1
		if !last && (p.chars == 0 || !p.glyphs[len(p.glyphs)-1].Flags.Has(shaping.FlagHardBreak)) {
			return fmt.Errorf("%w: paragraph %d does not end with a hard break", ErrInvariant, rank)
		}
		if err := e.checkParagraphColumns(rank, p); err != nil {
			return err
		}
		glyphTotal += len(p.glyphs)
	}

	for c, col := range e.columns {
		li := col.lines
		if li.paras.Len() != e.paras.count() {
			return fmt.Errorf("%w: column %d indexes %d paragraphs, want %d", ErrInvariant, c, li.paras.Len(), e.paras.count())
		}
		if li.paras.Total().A != li.lines.Len() {
			return fmt.Errorf("%w: column %d paragraph map covers %d lines, index holds %d",
				ErrInvariant, c, li.paras.Total().A, li.lines.Len())
		}
		if li.paras.Total().B != li.lines.Total().A {
			return fmt.Errorf("%w: column %d glyph totals disagree", ErrInvariant, c)
		}
	}
	if glyphTotal != e.paras.glyphs() {
		return fmt.Errorf("%w: glyph total %d, index %d", ErrInvariant, glyphTotal, e.paras.glyphs())
	}
	return nil
}

func (e *Engine) checkParagraphColumns(rank int, p *paragraph) error {
	at := 0
	for c, col := range e.columns {
		cl := p.cols[c]
		if cl.seg.Start != at || cl.seg.End < cl.seg.Start {
			return fmt.Errorf("%w: paragraph %d column %d segment %v does not follow %d", ErrInvariant, rank, c, cl.seg, at)
		}
		at = cl.seg.End
		if len(cl.lines) == 0 {
			return fmt.Errorf("%w: paragraph %d has no lines in column %d", ErrInvariant, rank, c)
		}
		pos := cl.seg.Start
		for _, ln := range cl.lines {
			if ln.Start != pos || ln.End < ln.Start {
				return fmt.Errorf("%w: paragraph %d column %d lines do not tile %v", ErrInvariant, rank, c, cl.seg)
			}
			if ln.Len() == 0 && len(cl.lines) > 1 {
				return fmt.Errorf("%w: paragraph %d column %d has an empty wrapped line", ErrInvariant, rank, c)
			}
			pos = ln.End
		}
		if pos != cl.seg.End {
			return fmt.Errorf("%w: paragraph %d column %d lines end at %d, segment at %d", ErrInvariant, rank, c, pos, cl.seg.End)
		}

		first, n := col.lines.paragraphLines(rank)
		if n != len(cl.lines) {
			return fmt.Errorf("%w: paragraph %d column %d indexes %d lines, holds %d", ErrInvariant, rank, c, n, len(cl.lines))
		}
		for i, ln := range cl.lines {
			w := col.lines.lines.Weight(first + i)
			if w.A != ln.Len() {
				return fmt.Errorf("%w: line %d of column %d weight %d, holds %d glyphs", ErrInvariant, first+i, c, w.A, ln.Len())
			}
			if h := e.lineHeight(p, c, i); w.B != int(h) {
				return fmt.Errorf("%w: line %d of column %d height %d, want %d", ErrInvariant, first+i, c, w.B, h)
			}
		}
	}
	if at != len(p.glyphs) {
		return fmt.Errorf("%w: paragraph %d segments cover %d of %d glyphs", ErrInvariant, rank, at, len(p.glyphs))
	}
	return nil
}
