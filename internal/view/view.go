// Package view paints a document onto a terminal and maps terminal input
// to document edits.
//
// Layout units are terminal cells: the document must be shaped with
// shaping.CellProvider so that one unit of advance is one column and one
// unit of height is one row.
package view

import (
	"io"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/engine"
	"github.com/dshills/richtext/internal/shaping"
	"github.com/dshills/richtext/internal/style"
)

// View is a scrollable window onto a document.
type View struct {
	doc    *engine.Document
	top    int // first visible row
	height int // rows painted by the last Draw
	logger *slog.Logger
}

// Option configures a View.
type Option func(*View)

// WithLogger sets the logger for paint and input errors.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a view of doc scrolled to the top.
func New(doc *engine.Document, opts ...Option) *View {
	v := &View{
		doc:    doc,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Document returns the viewed document.
func (v *View) Document() *engine.Document {
	return v.doc
}

// Top returns the first visible row.
func (v *View) Top() int {
	return v.top
}

// Scroll moves the view by delta rows, keeping it within the content.
func (v *View) Scroll(delta int) {
	v.top = max(0, min(v.top+delta, v.maxTop()))
}

// Reveal scrolls the smallest distance that brings the caret into a window
// of height rows.
func (v *View) Reveal(height int) {
	r, err := v.doc.CursorRect()
	if err != nil || height <= 0 {
		return
	}
	top, bottom := r.Min.Y.Floor(), r.Max.Y.Ceil()
	switch {
	case top < v.top:
		v.top = top
	case bottom > v.top+height:
		v.top = min(bottom, top+height) - height
	}
	v.top = max(v.top, 0)
}

func (v *View) maxTop() int {
	var h fixed.Int26_6
	for col, n := 0, v.doc.ColumnCount(); col < n; col++ {
		if ch, err := v.doc.ContentHeight(col); err == nil {
			h = max(h, ch)
		}
	}
	return max(0, h.Ceil()-max(v.height, 1))
}

// Draw paints the visible lines of every column and places the terminal
// cursor on the caret.
func (v *View) Draw(s tcell.Screen) {
	s.Clear()
	_, h := s.Size()
	v.height = h

	sel := v.doc.Cursor().Range()
	cols := v.doc.Columns()
	for col, n := 0, v.doc.ColumnCount(); col < n; col++ {
		if err := v.drawColumn(s, col, cols[col].Margins.Left, sel, h); err != nil {
			v.logger.Warn("paint column", "col", col, "error", err)
		}
	}

	r, err := v.doc.CursorRect()
	row := r.Min.Y.Floor() - v.top
	if err != nil || row < 0 || row >= h {
		s.HideCursor()
	} else {
		s.ShowCursor(r.Min.X.Floor(), row)
	}
	s.Show()
}

func (v *View) drawColumn(s tcell.Screen, col int, margin fixed.Int26_6, sel engine.Range, h int) error {
	x0, _, err := v.doc.ColumnBounds(col)
	if err != nil {
		return err
	}
	n, err := v.doc.LineCount(col)
	if err != nil {
		return err
	}
	first, err := v.doc.LocateByHeight(col, fixed.I(v.top))
	if err != nil {
		return err
	}

	for rank := first; rank < n; rank++ {
		ln, err := v.doc.Line(col, rank)
		if err != nil {
			return err
		}
		if ln.Y.Floor()-v.top >= h {
			break
		}
		glyphs, err := v.doc.GlyphRun(col, rank)
		if err != nil {
			return err
		}

		pen := x0 + margin
		for _, g := range glyphs {
			x, row := pen.Floor(), (ln.Y+ln.Ascent+g.Cell.Min.Y).Floor()-v.top
			pen += g.Advance
			if row < 0 || row >= h || g.Advance <= 0 {
				continue
			}
			st, err := v.doc.StyleAt(g.Source.Start)
			if err != nil {
				return err
			}
			ts := TcellStyle(st)
			if sel.Contains(g.Source.Start) {
				ts = ts.Reverse(true)
			}
			v.drawGlyph(s, x, row, g, ts)
		}
	}
	return nil
}

func (v *View) drawGlyph(s tcell.Screen, x, row int, g shaping.Glyph, ts tcell.Style) {
	switch {
	case g.Flags&(shaping.FlagWhitespace|shaping.FlagHardBreak|shaping.FlagDelimiter) != 0:
		for i, n := 0, g.Advance.Ceil(); i < n; i++ {
			s.SetContent(x+i, row, ' ', nil, ts)
		}
	case g.Flags.Has(shaping.FlagPlaceholder):
		s.SetContent(x, row, '�', nil, ts)
	default:
		text, err := v.doc.Read(g.Source.Start, g.Source.End)
		runes := []rune(text)
		if err != nil || len(runes) == 0 {
			return
		}
		s.SetContent(x, row, runes[0], runes[1:], ts)
	}
}

// TcellStyle converts a resolved document style to a terminal style.
// Font family and size have no terminal equivalent; an outline is shown
// as bold text.
func TcellStyle(st style.Style) tcell.Style {
	ts := tcell.StyleDefault

	if st.Text.Set {
		r, g, b := st.Text.RGB255()
		ts = ts.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	if st.Background.Set {
		r, g, b := st.Background.RGB255()
		ts = ts.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	if st.Font.Bold || st.Outlined() {
		ts = ts.Bold(true)
	}
	if st.Font.Italic {
		ts = ts.Italic(true)
	}
	if st.Underline.Enabled() {
		ts = ts.Underline(true)
	}
	return ts
}
