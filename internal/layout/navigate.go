package layout

import "github.com/dshills/richtext/internal/shaping"

// The navigation helpers clamp their argument into [0, CharCount] and never
// fail; package cursor drives them through its Navigator interface.

func (e *Engine) clampChar(c int) int {
	return min(max(c, 0), e.paras.chars())
}

// Len returns the document length in characters.
func (e *Engine) Len() int {
	return e.paras.chars()
}

// NextCluster returns the offset after the glyph cluster at c.
func (e *Engine) NextCluster(c int) int {
	c = e.clampChar(c)
	rank, within := e.paras.locateByChar(c)
	p := e.paras.at(rank)
	g := p.glyphAt(within)
	if g >= len(p.glyphs) {
		return c
	}
	chars, _ := e.paras.bounds(rank)
	return chars.Start + p.glyphs[g].Source.End
}

// PrevCluster returns the offset where the glyph cluster before c starts.
func (e *Engine) PrevCluster(c int) int {
	c = e.clampChar(c)
	if c == 0 {
		return 0
	}
	rank, within := e.paras.locateByChar(c - 1)
	p := e.paras.at(rank)
	chars, _ := e.paras.bounds(rank)
	return chars.Start + p.charAt(p.glyphAt(within))
}

// wordBreak reports glyphs that separate words.
func wordBreak(g *shaping.Glyph) bool {
	return g.Flags&(shaping.FlagWhitespace|shaping.FlagHardBreak|shaping.FlagDelimiter) != 0
}

// words returns the paragraph-local start offsets of the words of paragraph
// rank. A word starts wherever a separator glyph is followed by any other.
func (e *Engine) words(rank int) []int {
	p := e.paras.at(rank)
	var starts []int
	blank := true
	for i := range p.glyphs {
		brk := wordBreak(&p.glyphs[i])
		if blank && !brk {
			starts = append(starts, p.glyphs[i].Source.Start)
		}
		blank = brk
	}
	return starts
}

// NextWord returns the start of the next word after c, or the document end.
func (e *Engine) NextWord(c int) int {
	c = e.clampChar(c)
	rank, within := e.paras.locateByChar(c)
	for ; rank < e.paras.count(); rank++ {
		chars, _ := e.paras.bounds(rank)
		for _, s := range e.words(rank) {
			if s > within {
				return chars.Start + s
			}
		}
		within = -1
	}
	return e.paras.chars()
}

// PrevWord returns the start of the word before c, or zero.
func (e *Engine) PrevWord(c int) int {
	c = e.clampChar(c)
	rank, within := e.paras.locateByChar(c)
	for ; rank >= 0; rank-- {
		chars, _ := e.paras.bounds(rank)
		starts := e.words(rank)
		for i := len(starts) - 1; i >= 0; i-- {
			if starts[i] < within {
				return chars.Start + starts[i]
			}
		}
		if rank > 0 {
			within = e.paras.at(rank - 1).chars
		}
	}
	return 0
}

// LineStart returns the first character offset of the line holding c.
func (e *Engine) LineStart(c int) int {
	loc, err := e.Caret(e.clampChar(c))
	if err != nil {
		return 0
	}
	return e.line(loc.Column, loc.Line).Chars.Start
}

// LineEnd returns the caret position at the end of the line holding c,
// before any trailing hard break or delimiter.
func (e *Engine) LineEnd(c int) int {
	loc, err := e.Caret(e.clampChar(c))
	if err != nil {
		return e.paras.chars()
	}
	p := e.paras.at(loc.Paragraph)
	chars, _ := e.paras.bounds(loc.Paragraph)
	first, _ := e.columns[loc.Column].lines.paragraphLines(loc.Paragraph)
	return chars.Start + e.lineEnd(p, p.cols[loc.Column].lines[loc.Line-first])
}

// LineAbove returns the offset on the previous line of the same column
// nearest to the caret's x position, or zero from the first line.
func (e *Engine) LineAbove(c int) int {
	loc, err := e.Caret(e.clampChar(c))
	if err != nil || loc.Line == 0 {
		return 0
	}
	return e.hitLine(loc.Column, loc.Line-1, loc.X)
}

// LineBelow returns the offset on the next line of the same column nearest
// to the caret's x position, or the document end from the last line.
func (e *Engine) LineBelow(c int) int {
	loc, err := e.Caret(e.clampChar(c))
	if err != nil || loc.Line >= e.columns[loc.Column].lines.count()-1 {
		return e.paras.chars()
	}
	return e.hitLine(loc.Column, loc.Line+1, loc.X)
}

// ParagraphStart returns the first offset of the paragraph holding c.
func (e *Engine) ParagraphStart(c int) int {
	rank, _ := e.paras.locateByChar(e.clampChar(c))
	chars, _ := e.paras.bounds(rank)
	return chars.Start
}

// ParagraphEnd returns the offset before the hard break ending the paragraph
// holding c, or the document end for the final paragraph.
func (e *Engine) ParagraphEnd(c int) int {
	rank, _ := e.paras.locateByChar(e.clampChar(c))
	chars, _ := e.paras.bounds(rank)
	if rank < e.paras.count()-1 {
		return chars.End - 1
	}
	return chars.End
}
