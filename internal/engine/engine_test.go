package engine

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/engine/cursor"
	"github.com/dshills/richtext/internal/layout"
	"github.com/dshills/richtext/internal/shaping"
	"github.com/dshills/richtext/internal/style"
)

func newDoc(t *testing.T, opts ...Option) (*Document, *style.Registry) {
	t.Helper()
	reg := style.NewRegistry()
	fonts := shaping.NewCellProvider(false)
	return New(reg, shaping.NewBuiltinShaper(fonts), fonts, opts...), reg
}

func checkDoc(t *testing.T, d *Document) {
	t.Helper()
	if err := d.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
	c := d.Cursor()
	if c.Position < 0 || c.Position > d.Len() || c.Anchor < 0 || c.Anchor > d.Len() {
		t.Fatalf("cursor %v outside document of %d", c, d.Len())
	}
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestNew(t *testing.T) {
	d, _ := newDoc(t)
	if d.Len() != 0 {
		t.Errorf("expected empty document, got len %d", d.Len())
	}
	if d.Text() != "" {
		t.Errorf("expected empty text, got %q", d.Text())
	}
	other, _ := newDoc(t)
	if d.ID() == other.ID() {
		t.Error("documents share an ID")
	}
	checkDoc(t, d)
}

func TestNewWithContent(t *testing.T) {
	bold := style.Style{Font: style.FontRef{Bold: true}}
	d, reg := newDoc(t, WithContent("Hello\nWorld"), WithCurrentStyle(bold))

	if d.Text() != "Hello\nWorld" {
		t.Errorf("Text() = %q", d.Text())
	}
	if n, _ := d.LineCount(0); n != 2 {
		t.Errorf("LineCount(0) = %d, want 2", n)
	}
	if got := reg.Refs(reg.Intern(bold)); got != 12 {
		t.Errorf("bold refs = %d, want 11 characters plus the current style", got)
	}
	checkDoc(t, d)
}

func TestInsertText(t *testing.T) {
	d, _ := newDoc(t)

	n, err := d.InsertText(0, "Hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("inserted %d, want 5", n)
	}
	if _, err := d.InsertText(5, ", World"); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "Hello, World" {
		t.Errorf("Text() = %q", d.Text())
	}
	if got, _ := d.Read(7, 12); got != "World" {
		t.Errorf("Read(7, 12) = %q", got)
	}
	checkDoc(t, d)
}

func TestInsertTextKeepsCarriageReturns(t *testing.T) {
	d, _ := newDoc(t, WithContent("ab\tcdef\n"))

	const ins = "X\r\nY\rZ"
	n, err := d.InsertText(0, ins)
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 || d.Len() != 14 {
		t.Errorf("InsertText() = %d, Len() = %d, want 6 and 14", n, d.Len())
	}
	if got, _ := d.Read(0, n); got != ins {
		t.Errorf("Read(0, %d) = %q, want %q", n, got, ins)
	}
	// Only "\n" ends a paragraph: "X\r\n" and "Y\rZab\tcdef\n" plus the empty tail.
	if got := d.layout.ParagraphCount(); got != 3 {
		t.Errorf("ParagraphCount() = %d, want 3", got)
	}
	checkDoc(t, d)
}

func TestEmptyEditsSkipReflow(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d, _ := newDoc(t, WithContent("abc"), WithLogger(logger))
	_ = d.SetCursor(cursor.At(2))
	out.Reset()

	edits := []struct {
		name string
		edit func() error
	}{
		{"insert", func() error { _, err := d.InsertText(1, ""); return err }},
		{"delete", func() error { return d.DeleteText(2, 2) }},
		{"restyle", func() error { return d.SetStyle(1, 1, style.Style{Underline: style.ToggleOn}) }},
	}
	for _, e := range edits {
		if err := e.edit(); err != nil {
			t.Fatalf("%s: %v", e.name, err)
		}
	}
	if strings.Contains(out.String(), "layout phase") {
		t.Errorf("empty edits reached the layout:\n%s", out.String())
	}
	if d.Cursor() != cursor.At(2) || d.Text() != "abc" {
		t.Errorf("cursor %v text %q", d.Cursor(), d.Text())
	}
	checkDoc(t, d)
}

func TestInsertStyled(t *testing.T) {
	d, reg := newDoc(t, WithContent("ac"))
	under := style.Style{Underline: style.ToggleOn}

	if _, err := d.InsertStyled(1, "b", under); err != nil {
		t.Fatal(err)
	}
	st, err := d.StyleAt(1)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Underline.Enabled() {
		t.Errorf("StyleAt(1) = %+v, want underline", st)
	}
	if st, _ := d.StyleAt(0); st.Underline.Enabled() {
		t.Error("neighbour picked up the style")
	}
	if got := reg.Refs(reg.Intern(under)); got != 1 {
		t.Errorf("refs = %d, want 1", got)
	}

	run, _ := d.GlyphRun(0, 0)
	if !run[1].Flags.Has(shaping.FlagUnderline) {
		t.Errorf("glyph flags = %v, want underline", run[1].Flags)
	}
}

func TestEditErrorsLeaveDocumentUnchanged(t *testing.T) {
	d, _ := newDoc(t, WithContent("hello"))
	_ = d.SetCursor(cursor.At(3))

	tests := []struct {
		name string
		edit func() error
		want error
	}{
		{"insert past end", func() error { _, err := d.InsertText(6, "x"); return err }, ErrOffsetOutOfRange},
		{"insert negative", func() error { _, err := d.InsertStyled(-1, "x", style.Style{}); return err }, ErrOffsetOutOfRange},
		{"delete past end", func() error { return d.DeleteText(2, 9) }, ErrOffsetOutOfRange},
		{"delete inverted", func() error { return d.DeleteText(3, 1) }, ErrRangeInvalid},
		{"style past end", func() error { return d.SetStyle(0, 6, style.Style{Underline: style.ToggleOn}) }, ErrOffsetOutOfRange},
		{"apply past end", func() error { return d.ApplyStyle(4, 8, style.Style{Underline: style.ToggleOn}) }, ErrOffsetOutOfRange},
		{"cursor past end", func() error { return d.SetCursor(cursor.Select(0, 6)) }, ErrOffsetOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.edit(); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if d.Text() != "hello" {
				t.Errorf("text changed to %q", d.Text())
			}
			if d.Cursor() != cursor.At(3) {
				t.Errorf("cursor moved to %v", d.Cursor())
			}
			checkDoc(t, d)
		})
	}
}

func TestFailedEditsKeepSharedStyles(t *testing.T) {
	d, reg := newDoc(t, WithContent("hello"))
	// Another user of the registry interned this style but has not retained it yet.
	pending := reg.Intern(style.Style{Text: style.RGB(1, 2, 3)})
	under := style.Style{Underline: style.ToggleOn}

	tests := []struct {
		name string
		edit func() error
	}{
		{"insert", func() error { _, err := d.InsertStyled(9, "x", under); return err }},
		{"set style", func() error { return d.SetStyle(0, 9, under) }},
		{"apply style", func() error { return d.ApplyStyle(0, 9, under) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.edit(); err == nil {
				t.Fatal("edit past the end should fail")
			}
			if got := reg.Refs(pending); got != 0 {
				t.Errorf("Refs(pending) = %d, want the record kept with 0", got)
			}
			if got := reg.Refs(reg.Intern(under)); got != 0 {
				t.Errorf("failed edit left %d references on its style", got)
			}
		})
	}
}

func TestDeleteText(t *testing.T) {
	d, _ := newDoc(t, WithContent("one\ntwo\nthree"))
	_ = d.SetCursor(cursor.At(10))

	if err := d.DeleteText(3, 8); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "onethree" {
		t.Errorf("Text() = %q", d.Text())
	}
	if d.Cursor() != cursor.At(5) {
		t.Errorf("cursor = %v, want 5", d.Cursor())
	}
	if n, _ := d.LineCount(0); n != 1 {
		t.Errorf("LineCount(0) = %d, want 1", n)
	}
	checkDoc(t, d)
}

// ============================================================================
// Cursor Operations
// ============================================================================

func TestTypeReplacesSelection(t *testing.T) {
	d, _ := newDoc(t)

	if _, err := d.Type("hello world"); err != nil {
		t.Fatal(err)
	}
	if d.Cursor() != cursor.At(11) {
		t.Errorf("cursor = %v, want 11", d.Cursor())
	}
	if err := d.SetCursor(cursor.Select(11, 6)); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Type("go"); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "hello go" {
		t.Errorf("Text() = %q", d.Text())
	}
	if d.Cursor() != cursor.At(8) {
		t.Errorf("cursor = %v, want 8", d.Cursor())
	}
	checkDoc(t, d)
}

func TestBackspaceAndDeleteForward(t *testing.T) {
	d, _ := newDoc(t, WithContent("ae\u0301x"))

	_ = d.SetCursor(cursor.At(3))
	if err := d.Backspace(); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "ax" || d.Cursor() != cursor.At(1) {
		t.Errorf("after Backspace: %q %v", d.Text(), d.Cursor())
	}

	if err := d.DeleteForward(); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "a" || d.Cursor() != cursor.At(1) {
		t.Errorf("after DeleteForward: %q %v", d.Text(), d.Cursor())
	}

	if err := d.DeleteForward(); err != nil {
		t.Fatal(err)
	}
	_ = d.SetCursor(cursor.At(0))
	if err := d.Backspace(); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "a" {
		t.Errorf("edits at the document edges changed the text to %q", d.Text())
	}

	_ = d.SetCursor(cursor.Select(0, 1))
	if err := d.Backspace(); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "" {
		t.Errorf("Backspace over a selection left %q", d.Text())
	}
	checkDoc(t, d)
}

func TestMove(t *testing.T) {
	d, _ := newDoc(t, WithContent("one two\nthree"))
	_ = d.SetCursor(cursor.At(13))

	steps := []struct {
		op     cursor.MoveOp
		extend bool
		want   Cursor
	}{
		{cursor.WordLeft, false, cursor.At(8)},
		{cursor.Up, false, cursor.At(0)},
		{cursor.WordRight, true, cursor.Select(0, 4)},
		{cursor.Right, false, cursor.At(4)},
		{cursor.LineEnd, false, cursor.At(7)},
		{cursor.Down, false, cursor.At(13)},
		{cursor.DocumentStart, true, cursor.Select(13, 0)},
	}
	for i, s := range steps {
		if got := d.Move(s.op, s.extend); got != s.want {
			t.Fatalf("step %d: Move(%v) = %v, want %v", i, s.op, got, s.want)
		}
	}
}

func TestCursorRectAndClick(t *testing.T) {
	d, _ := newDoc(t, WithContent("ab\ncd"))
	_ = d.SetCursor(cursor.At(4))

	r, err := d.CursorRect()
	if err != nil {
		t.Fatal(err)
	}
	want := fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: fixed.I(1), Y: fixed.I(1)},
		Max: fixed.Point26_6{X: fixed.I(1), Y: fixed.I(2)},
	}
	if r != want {
		t.Errorf("CursorRect() = %v, want %v", r, want)
	}

	c, err := d.Click(0, fixed.Point26_6{X: fixed.I(1) + 10, Y: fixed.I(1) + 10}, false)
	if err != nil {
		t.Fatal(err)
	}
	if c != cursor.At(4) {
		t.Errorf("Click = %v, want 4", c)
	}
	c, _ = d.Click(0, fixed.Point26_6{}, true)
	if c != cursor.Select(4, 0) {
		t.Errorf("extending Click = %v", c)
	}
	if _, err := d.Click(3, fixed.Point26_6{}, false); !errors.Is(err, ErrColumnOutOfRange) {
		t.Errorf("Click bad column error = %v", err)
	}
}

// ============================================================================
// Styles
// ============================================================================

func TestApplyStyle(t *testing.T) {
	d, _ := newDoc(t, WithContent("abc"))
	bold := style.Style{Font: style.FontRef{Bold: true}}
	if err := d.SetStyle(1, 2, bold); err != nil {
		t.Fatal(err)
	}

	if err := d.ApplyStyle(0, 3, style.Style{Underline: style.ToggleOn}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		st, _ := d.StyleAt(i)
		if !st.Underline.Enabled() {
			t.Errorf("char %d not underlined", i)
		}
		if st.Font.Bold != (i == 1) {
			t.Errorf("char %d bold = %v", i, st.Font.Bold)
		}
	}
	if n := len(d.Runs(0, 3)); n != 3 {
		t.Errorf("got %d runs, want 3", n)
	}
	checkDoc(t, d)
}

func TestCurrentStyleAndClose(t *testing.T) {
	d, reg := newDoc(t)
	red := style.Style{Text: style.RGB(255, 0, 0)}

	if err := d.SetCurrentStyle(red); err != nil {
		t.Fatal(err)
	}
	if d.CurrentStyle() != red {
		t.Errorf("CurrentStyle() = %+v", d.CurrentStyle())
	}
	if _, err := d.Type("abc"); err != nil {
		t.Fatal(err)
	}
	if got := reg.Refs(reg.Intern(red)); got != 4 {
		t.Errorf("refs = %d, want 4", got)
	}
	if err := d.SetCurrentStyle(style.Style{}); err != nil {
		t.Fatal(err)
	}
	if got := reg.Refs(reg.Intern(red)); got != 3 {
		t.Errorf("refs after switching = %d, want 3", got)
	}
	_ = d.ApplyStyle(0, 2, style.Style{Outline: style.RGB(0, 0, 255)})

	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 0 {
		t.Errorf("registry holds %d records after Close", reg.Len())
	}
	if _, err := d.Type("x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Type after Close error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
}

func TestReadOnly(t *testing.T) {
	d, _ := newDoc(t, WithContent("fixed"), WithReadOnly())

	if _, err := d.InsertText(0, "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("InsertText error = %v", err)
	}
	if err := d.Backspace(); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Backspace error = %v", err)
	}
	if got := d.Move(cursor.DocumentEnd, false); got != cursor.At(5) {
		t.Errorf("Move in read-only document = %v", got)
	}
}

// ============================================================================
// Layout
// ============================================================================

func TestTabColumns(t *testing.T) {
	d, _ := newDoc(t, WithLayout(
		layout.WithWidth(fixed.I(40)),
		layout.WithColumns(layout.Column{Delimiter: '\t'}, layout.Column{}),
	))
	if _, err := d.Type("ab\tcdef\n"); err != nil {
		t.Fatal(err)
	}
	_ = d.SetCursor(cursor.At(0))
	if _, err := d.Type("XY"); err != nil {
		t.Fatal(err)
	}

	for col, want := range []string{"XYab", "cdef"} {
		run, err := d.GlyphRun(col, 0)
		if err != nil {
			t.Fatal(err)
		}
		var got []rune
		for _, g := range run {
			if g.Flags&(shaping.FlagDelimiter|shaping.FlagHardBreak) == 0 {
				got = append(got, rune(g.ID))
			}
		}
		if string(got) != want {
			t.Errorf("column %d = %q, want %q", col, string(got), want)
		}
	}
	if n, _ := d.LineCount(1); n != 2 {
		t.Errorf("LineCount(1) = %d, want 2", n)
	}
	checkDoc(t, d)
}

func TestLayoutSettings(t *testing.T) {
	d, _ := newDoc(t, WithContent("aaaa bbbb"))

	d.SetWidth(fixed.I(5))
	if n, _ := d.LineCount(0); n != 2 {
		t.Errorf("LineCount(0) = %d, want 2", n)
	}
	if h, _ := d.ContentHeight(0); h != fixed.I(2) {
		t.Errorf("ContentHeight(0) = %v, want 2", h)
	}
	if line, _ := d.LocateByHeight(0, fixed.I(1)); line != 1 {
		t.Errorf("LocateByHeight(1) = %d, want 1", line)
	}

	if err := d.SetColumns([]Column{{Delimiter: ' '}, {}}); err != nil {
		t.Fatal(err)
	}
	if d.ColumnCount() != 2 || len(d.Columns()) != 2 {
		t.Errorf("ColumnCount() = %d", d.ColumnCount())
	}
	if x, w, _ := d.ColumnBounds(1); x != fixed.I(5)/2 || w != fixed.I(5)/2 {
		t.Errorf("ColumnBounds(1) = %v, %v", x, w)
	}

	d.SetDefaults(style.Style{Underline: style.ToggleOn})
	if !d.Defaults().Underline.Enabled() {
		t.Error("Defaults() lost underline")
	}
	if st, _ := d.StyleAt(0); !st.Underline.Enabled() {
		t.Error("StyleAt does not resolve over defaults")
	}
	d.SetOutlineWidth(fixed.I(1))
	checkDoc(t, d)
}

func TestRandomEdits(t *testing.T) {
	d, _ := newDoc(t, WithLayout(
		layout.WithWidth(fixed.I(12)),
		layout.WithColumns(layout.Column{Delimiter: '\t', Wrap: true}, layout.Column{Wrap: true}),
	))
	rng := rand.New(rand.NewSource(1))
	pieces := []string{"a", "bc ", "\n", "\t", "word ", "e\u0301", "世"}
	styles := []style.Style{{}, {Underline: style.ToggleOn}, {Font: style.FontRef{Bold: true}}}

	for step := 0; step < 400; step++ {
		var err error
		switch rng.Intn(6) {
		case 0, 1:
			_, err = d.Type(pieces[rng.Intn(len(pieces))])
		case 2:
			err = d.Backspace()
		case 3:
			err = d.DeleteForward()
		case 4:
			d.Move(cursor.MoveOp(rng.Intn(int(cursor.DocumentEnd)+1)), rng.Intn(2) == 0)
		case 5:
			err = d.SetCurrentStyle(styles[rng.Intn(len(styles))])
		}
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		checkDoc(t, d)
	}
}

func TestConcurrentAccess(t *testing.T) {
	d, _ := newDoc(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if _, err := d.InsertText(0, "ab"); err != nil {
					t.Error(err)
					return
				}
				_ = d.Text()
				_, _ = d.CursorRect()
			}
		}()
	}
	wg.Wait()

	if d.Len() != 8*25*2 {
		t.Errorf("Len() = %d, want %d", d.Len(), 8*25*2)
	}
	checkDoc(t, d)
}
