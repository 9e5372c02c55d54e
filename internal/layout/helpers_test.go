package layout

import (
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/engine/buffer"
	"github.com/dshills/richtext/internal/shaping"
	"github.com/dshills/richtext/internal/style"
)

// fakeFonts advances every character by one unit. Height is the font size,
// or 10 when unset.
type fakeFonts struct{}

func (fakeFonts) Height(f style.FontRef) fixed.Int26_6 {
	if f.Size == 0 {
		return fixed.I(10)
	}
	return fixed.I(int(f.Size))
}

func (ff fakeFonts) Baseline(f style.FontRef) fixed.Int26_6 {
	return ff.Height(f) * 4 / 5
}

func (fakeFonts) Kerning(style.FontRef, shaping.GlyphID, shaping.GlyphID) fixed.Int26_6 {
	return 0
}

func (fakeFonts) Glyph(_ style.FontRef, r rune) (shaping.GlyphMetrics, bool) {
	return shaping.GlyphMetrics{ID: shaping.GlyphID(r), Advance: fixed.I(1)}, true
}

type testDoc struct {
	t   *testing.T
	reg *style.Registry
	buf *buffer.Buffer
	eng *Engine
}

func newTestDoc(t *testing.T, text string, opts ...Option) *testDoc {
	t.Helper()
	reg := style.NewRegistry()
	d := &testDoc{
		t:   t,
		reg: reg,
		buf: buffer.New(reg),
		eng: New(reg, shaping.NewBuiltinShaper(fakeFonts{}), fakeFonts{}, opts...),
	}
	if text != "" {
		d.insert(0, text, style.Inherit)
	}
	return d
}

func (d *testDoc) apply(ch buffer.Change, err error) {
	d.t.Helper()
	if err != nil {
		d.t.Fatalf("buffer: %v", err)
	}
	if err := d.eng.Reflow(d.buf, ch); err != nil {
		d.t.Fatalf("reflow %v: %v", ch, err)
	}
	if err := d.eng.CheckInvariants(); err != nil {
		d.t.Fatalf("after %v: %v", ch, err)
	}
}

func (d *testDoc) insert(pos int, text string, tag style.Handle) {
	d.t.Helper()
	_, ch, err := d.buf.Insert(pos, text, tag)
	d.apply(ch, err)
}

func (d *testDoc) delete(start, end int) {
	d.t.Helper()
	ch, err := d.buf.Delete(start, end)
	d.apply(ch, err)
}

func (d *testDoc) restyle(start, end int, tag style.Handle) {
	d.t.Helper()
	ch, err := d.buf.SetStyle(start, end, tag)
	d.apply(ch, err)
}

// lineText returns the text of a line without delimiter and hard break glyphs.
func (d *testDoc) lineText(col, rank int) string {
	d.t.Helper()
	run, err := d.eng.GlyphRun(col, rank)
	if err != nil {
		d.t.Fatal(err)
	}
	var s []rune
	for _, g := range run {
		if g.Flags&(shaping.FlagDelimiter|shaping.FlagHardBreak) != 0 {
			continue
		}
		s = append(s, []rune(d.buf.Slice(g.Source.Start, g.Source.End))...)
	}
	return string(s)
}
