package layout

import (
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/engine/buffer"
	"github.com/dshills/richtext/internal/shaping"
	"github.com/dshills/richtext/internal/style"
)

// Engine owns the derived layout of one document.
type Engine struct {
	reg    *style.Registry
	shaper shaping.Shaper
	fonts  shaping.FontProvider
	logger *slog.Logger

	src      Source
	defaults style.Style
	outline  fixed.Int26_6
	width    fixed.Int26_6
	columns  []*column

	paras *paragraphIndex
	stale map[int]struct{} // paragraph ranks with invalidated line heights
	phase Phase
}

// New creates an engine laying out an empty document.
func New(reg *style.Registry, shaper shaping.Shaper, fonts shaping.FontProvider, opts ...Option) *Engine {
	e := &Engine{
		reg:     reg,
		shaper:  shaper,
		fonts:   fonts,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		src:     emptySource{},
		width:   DefaultWidth,
		columns: newColumns([]Column{DefaultColumn}),
		paras:   newParagraphIndex(),
		stale:   make(map[int]struct{}),
	}

	for _, opt := range opts {
		opt(e)
	}

	allocateWidths(e.columns, e.width)
	e.rebuild()
	return e
}

func newColumns(cols []Column) []*column {
	out := make([]*column, len(cols))
	for i, c := range cols {
		out[i] = &column{Column: c, lines: newLineIndex()}
	}
	return out
}

// Phase returns the current reflow phase. It is PhaseIdle between calls.
func (e *Engine) Phase() Phase {
	return e.phase
}

func (e *Engine) enter(p Phase, args ...any) {
	e.phase = p
	e.logger.Debug("layout phase", append([]any{"phase", p.String()}, args...)...)
}

// Reset discards all layout state and lays out src from scratch.
func (e *Engine) Reset(src Source) {
	e.src = src
	e.rebuild()
}

// rebuild reshapes and relays out the whole source.
func (e *Engine) rebuild() {
	n := e.src.Len()
	chunks := splitParagraphs(e.src.Slice(0, n), e.src.Runs(0, n))

	e.paras.clear()
	for _, col := range e.columns {
		col.lines.clear()
	}
	clear(e.stale)

	for _, ch := range chunks {
		e.paras.insertParagraph(e.paras.count()-1, e.shapeParagraph(ch))
	}
	e.layoutAll()
	e.logger.Debug("layout rebuilt", "chars", n, "paragraphs", e.paras.count())
}

// layoutAll rewraps every paragraph and rebuilds the line indices.
func (e *Engine) layoutAll() {
	ps := e.paras.all()
	for _, p := range ps {
		e.layoutParagraph(p)
	}
	for c, col := range e.columns {
		col.lines.clear()
		layouts := make([]paragraphLayout, len(ps))
		for i, p := range ps {
			layouts[i] = e.paragraphLayout(p, c, true)
		}
		col.lines.replace(0, 0, layouts)
	}
	clear(e.stale)
}

// Reflow brings the layout up to date after ch was applied to src.
func (e *Engine) Reflow(src Source, ch buffer.Change) error {
	e.refreshHeights()

	oldLen := e.paras.chars()
	newLen := src.Len()
	switch {
	case ch.Start < 0 || ch.OldEnd < ch.Start || ch.NewEnd < ch.Start:
		return fmt.Errorf("reflow %v: %w", ch, ErrStaleChange)
	case ch.OldEnd > oldLen:
		return fmt.Errorf("reflow %v: %w", ch, e.offsetError("change end", ch.OldEnd, oldLen))
	case newLen != oldLen+ch.Delta():
		return fmt.Errorf("reflow %v: source has %d characters, want %d: %w",
			ch, newLen, oldLen+ch.Delta(), ErrStaleChange)
	}
	e.src = src

	// Affected span: from the paragraph holding Start through the one holding
	// OldEnd, which also catches paragraphs merged by a deleted hard break.
	first, _ := e.paras.locateByChar(ch.Start)
	last, _ := e.paras.locateByChar(ch.OldEnd)
	count := e.paras.count()
	final := last == count-1
	oldChars, _ := e.paras.bounds(first)
	spanStart := oldChars.Start
	lastChars, _ := e.paras.bounds(last)
	spanEnd := lastChars.End + ch.Delta()
	e.enter(PhaseAffectedSpanComputed, "first", first, "last", last, "chars", spanEnd-spanStart)

	text := src.Slice(spanStart, spanEnd)
	if utf8.RuneCountInString(text) != spanEnd-spanStart {
		e.phase = PhaseIdle
		return fmt.Errorf("reflow %v: span [%d,%d): %w", ch, spanStart, spanEnd, ErrStaleChange)
	}
	chunks := splitParagraphs(text, src.Runs(spanStart, spanEnd))
	if !final {
		if tail := chunks[len(chunks)-1]; len(tail.runes) > 0 {
			e.phase = PhaseIdle
			return fmt.Errorf("reflow %v: span does not end a paragraph: %w", ch, ErrStaleChange)
		}
		chunks = chunks[:len(chunks)-1]
	}

	reuse := make(map[uint64]*paragraph)
	for r := first; r <= last; r++ {
		p := e.paras.at(r)
		reuse[p.hash] = p
	}
	fresh := make([]*paragraph, len(chunks))
	reused := 0
	for i, c := range chunks {
		if p, ok := reuse[hashParagraph(c.runes, c.runs)]; ok && p.chars == len(c.runes) {
			delete(reuse, p.hash)
			fresh[i] = p
			reused++
			continue
		}
		fresh[i] = e.shapeParagraph(c)
		e.layoutParagraph(fresh[i])
	}
	e.enter(PhaseReshaped, "paragraphs", len(fresh), "reused", reused)

	// Paragraphs present before and after the edit are adjusted in place; a
	// split hard break inserts the surplus and a merge removes it.
	n := last - first + 1
	kept := min(n, len(fresh))
	dChars, dGlyphs := 0, 0
	for i := 0; i < kept; i++ {
		dc, dg := e.paras.adjust(first+i, fresh[i])
		dChars += dc
		dGlyphs += dg
	}
	for i := kept; i < len(fresh); i++ {
		e.paras.insertParagraph(first+i-1, fresh[i])
	}
	for i := kept; i < n; i++ {
		e.paras.removeParagraph(first + kept)
	}
	e.enter(PhaseParagraphIndexUpdated, "adjusted", kept, "chars", dChars, "glyphs", dGlyphs,
		"inserted", len(fresh)-kept, "removed", n-kept)

	lines := 0
	for c, col := range e.columns {
		layouts := make([]paragraphLayout, len(fresh))
		for i, p := range fresh {
			layouts[i] = e.paragraphLayout(p, c, false)
			lines += len(layouts[i].lines)
		}
		col.lines.replace(first, n, layouts)
	}
	e.enter(PhaseLinesRebuilt, "lines", lines)

	for i := range fresh {
		e.stale[first+i] = struct{}{}
	}
	e.enter(PhaseHeightInvalidated, "paragraphs", len(fresh))

	e.enter(PhaseIdle)
	return nil
}

// SetColumns replaces the column set and relays out the whole document.
func (e *Engine) SetColumns(cols []Column) error {
	if len(cols) == 0 {
		return ErrNoColumns
	}
	e.columns = newColumns(cols)
	allocateWidths(e.columns, e.width)
	e.rebuild()
	return nil
}

// Columns returns a copy of the column set.
func (e *Engine) Columns() []Column {
	out := make([]Column, len(e.columns))
	for i, c := range e.columns {
		out[i] = c.Column
	}
	return out
}

// ColumnCount returns the number of columns.
func (e *Engine) ColumnCount() int {
	return len(e.columns)
}

// ColumnBounds returns the left edge and allocated width of column col.
func (e *Engine) ColumnBounds(col int) (x, width fixed.Int26_6, err error) {
	if err := e.checkColumn(col); err != nil {
		return 0, 0, err
	}
	return e.columns[col].x, e.columns[col].width, nil
}

// SetWidth reallocates column widths and rewraps every paragraph.
func (e *Engine) SetWidth(total fixed.Int26_6) {
	e.width = max(total, 0)
	allocateWidths(e.columns, e.width)
	e.layoutAll()
}

// Width returns the total layout width.
func (e *Engine) Width() fixed.Int26_6 {
	return e.width
}

// SetDefaults replaces the document default style. Every paragraph is
// reshaped and its heights recomputed.
func (e *Engine) SetDefaults(st style.Style) {
	e.defaults = st
	e.rebuild()
}

// Defaults returns the document default style.
func (e *Engine) Defaults() style.Style {
	return e.defaults
}

// SetOutlineWidth changes the outline width and invalidates every height.
func (e *Engine) SetOutlineWidth(w fixed.Int26_6) {
	e.outline = max(w, 0)
	for r := 0; r < e.paras.count(); r++ {
		e.invalidateParagraph(r)
	}
}

// paragraphText is one paragraph's characters and style runs.
type paragraphText struct {
	runes []rune
	runs  []style.Run
}

// splitParagraphs cuts text after every "\n". The remainder, possibly empty,
// is always the last element.
func splitParagraphs(text string, runs []style.Run) []paragraphText {
	var out []paragraphText
	runes := []rune(text)
	start := 0
	for i, r := range runes {
		if r != '\n' {
			continue
		}
		var head []style.Run
		head, runs = cutRuns(runs, i+1-start)
		out = append(out, paragraphText{runes: runes[start : i+1], runs: head})
		start = i + 1
	}
	head, _ := cutRuns(runs, len(runes)-start)
	return append(out, paragraphText{runes: runes[start:], runs: head})
}

// cutRuns splits runs after n characters. Missing coverage is filled with
// style.Inherit.
func cutRuns(runs []style.Run, n int) (head, tail []style.Run) {
	for n > 0 {
		if len(runs) == 0 {
			head = append(head, style.Run{Len: n, Tag: style.Inherit})
			break
		}
		r := runs[0]
		if r.Len <= n {
			head = append(head, r)
			n -= r.Len
			runs = runs[1:]
			continue
		}
		head = append(head, style.Run{Len: n, Tag: r.Tag})
		runs = append([]style.Run{{Len: r.Len - n, Tag: r.Tag}}, runs[1:]...)
		n = 0
	}
	return head, runs
}

// shapeParagraph shapes each style run of pt and splits the glyphs between
// columns.
func (e *Engine) shapeParagraph(pt paragraphText) *paragraph {
	p := &paragraph{
		chars: len(pt.runes),
		hash:  hashParagraph(pt.runes, pt.runs),
	}
	off := 0
	for _, r := range pt.runs {
		if r.Len <= 0 {
			continue
		}
		st := e.reg.Resolve(e.defaults, r.Tag)
		glyphs := e.shapeRun(pt.runes[off:off+r.Len], st)
		for i := range glyphs {
			glyphs[i].Source = glyphs[i].Source.Shift(off)
		}
		p.glyphs = append(p.glyphs, glyphs...)
		off += r.Len
	}

	if n := len(pt.runes); n > 0 && pt.runes[n-1] == '\n' {
		g := &p.glyphs[len(p.glyphs)-1]
		if !g.Flags.Has(shaping.FlagHardBreak) {
			g.Flags |= shaping.FlagHardBreak
			g.Advance = 0
			g.Cell.Max.X = g.Cell.Min.X
		}
	}

	segs := segment(p.glyphs, pt.runes, e.columns)
	p.cols = make([]colLayout, len(segs))
	for i, s := range segs {
		p.cols[i].seg = s
	}
	return p
}

// shapeRun calls the shaper and repairs its output: an empty result becomes
// one placeholder for the whole run, and a result that does not tile the run
// becomes one placeholder per character.
func (e *Engine) shapeRun(runes []rune, st style.Style) []shaping.Glyph {
	glyphs := e.shaper.Shape(runes, st)
	switch {
	case len(glyphs) == 0:
		e.logger.Debug("shaper returned no glyphs", "chars", len(runes))
		return []shaping.Glyph{shaping.Placeholder(e.fonts, st.Font, Range{End: len(runes)})}
	case !shaping.Tiles(glyphs, len(runes)):
		e.logger.Debug("shaper output does not tile its run", "chars", len(runes), "glyphs", len(glyphs))
		glyphs = make([]shaping.Glyph, len(runes))
		for i := range runes {
			glyphs[i] = shaping.Placeholder(e.fonts, st.Font, Range{Start: i, End: i + 1})
		}
	}
	return glyphs
}

// layoutParagraph wraps each column segment of p.
func (e *Engine) layoutParagraph(p *paragraph) {
	for c, col := range e.columns {
		cl := &p.cols[c]
		if !col.Wrap || cl.seg.Len() == 0 {
			cl.lines = []Range{cl.seg}
			continue
		}
		spans := Wrap(p.glyphs[cl.seg.Start:cl.seg.End], col.wrapWidth())
		for i := range spans {
			spans[i] = spans[i].Shift(cl.seg.Start)
		}
		cl.lines = spans
	}
}

// paragraphLayout describes p's lines in column c. Heights are computed only
// when withHeights is set; otherwise the paragraph must be marked stale.
func (e *Engine) paragraphLayout(p *paragraph, c int, withHeights bool) paragraphLayout {
	cl := &p.cols[c]
	pl := paragraphLayout{glyphs: cl.seg.Len(), lines: cl.lines}
	if withHeights {
		pl.heights = make([]fixed.Int26_6, len(cl.lines))
		for i := range cl.lines {
			pl.heights[i] = e.lineHeight(p, c, i)
		}
	}
	return pl
}

func (e *Engine) checkColumn(col int) error {
	if col < 0 || col >= len(e.columns) {
		return fmt.Errorf("column %d of %d: %w", col, len(e.columns), ErrColumnOutOfRange)
	}
	return nil
}

func (e *Engine) offsetError(what string, off, limit int) error {
	return fmt.Errorf("%s %d beyond %d: %w", what, off, limit, ErrOffsetOutOfRange)
}
