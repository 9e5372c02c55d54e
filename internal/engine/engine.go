package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/engine/buffer"
	"github.com/dshills/richtext/internal/engine/cursor"
	"github.com/dshills/richtext/internal/layout"
	"github.com/dshills/richtext/internal/shaping"
	"github.com/dshills/richtext/internal/style"
)

// Re-export commonly used types for convenience.
type (
	// Range is a character range in the document.
	Range = buffer.Range

	// Change describes one applied edit.
	Change = buffer.Change

	// Cursor is the caret and selection.
	Cursor = cursor.Cursor

	// Column configures one layout column.
	Column = layout.Column

	// Line describes one laid-out line of a column.
	Line = layout.Line
)

// Document is an editable rich-text document with a live layout.
type Document struct {
	mu sync.Mutex

	id     uuid.UUID
	reg    *style.Registry
	buf    *buffer.Buffer
	layout *layout.Engine
	cursor cursor.Cursor
	logger *slog.Logger

	// current is the style of typed text; the document holds one reference.
	current style.Handle

	readOnly bool
	closed   bool

	// Initialization
	initContent string
	initStyle   style.Style
	layoutOpts  []layout.Option
}

// New creates a document whose styles live in reg and whose text is shaped
// by shaper against fonts.
func New(reg *style.Registry, shaper shaping.Shaper, fonts shaping.FontProvider, opts ...Option) *Document {
	d := &Document{
		id:     uuid.New(),
		reg:    reg,
		buf:    buffer.New(reg),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// Apply options to get configuration
	for _, opt := range opts {
		opt(d)
	}

	d.logger = d.logger.With("doc", d.id.String())
	d.layout = layout.New(reg, shaper, fonts, append(d.layoutOpts, layout.WithLogger(d.logger))...)
	d.layoutOpts = nil

	d.current = reg.Acquire(d.initStyle)

	if d.initContent != "" {
		_, ch, err := d.buf.Insert(0, d.initContent, d.current)
		if err != nil {
			d.logger.Error("initial content rejected", "chars", len(d.initContent), "error", err)
		} else {
			d.layout.Reset(d.buf)
			d.logger.Debug("document loaded", "chars", ch.NewEnd)
		}
		d.initContent = ""
	}
	return d
}

// ID returns the document's unique identifier.
func (d *Document) ID() uuid.UUID {
	return d.id
}

// Registry returns the style registry the document's tags live in.
func (d *Document) Registry() *style.Registry {
	return d.reg
}

// ============================================================================
// Read Operations
// ============================================================================

// Len returns the document length in characters.
func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}

// Text returns the full document content.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Text()
}

// Read returns the characters in [start, end).
func (d *Document) Read(start, end int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Read(start, end)
}

// StyleAt returns the resolved style of the character at offset.
func (d *Document) StyleAt(offset int) (style.Style, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h, err := d.buf.TagAt(offset)
	if err != nil {
		return style.Style{}, err
	}
	return d.reg.Resolve(d.layout.Defaults(), h), nil
}

// Runs returns the style runs covering [start, end).
func (d *Document) Runs(start, end int) []style.Run {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Runs(start, end)
}

// ============================================================================
// Write Operations
// ============================================================================

// InsertText inserts text in the current style before pos. It returns the
// number of characters inserted.
func (d *Document) InsertText(pos int, text string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writable(); err != nil {
		return 0, err
	}
	n, ch, err := d.buf.Insert(pos, text, d.current)
	if err != nil {
		return 0, err
	}
	return n, d.reflow(ch)
}

// InsertStyled inserts text in st before pos. It returns the number of
// characters inserted.
func (d *Document) InsertStyled(pos int, text string, st style.Style) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writable(); err != nil {
		return 0, err
	}
	h := d.reg.Acquire(st)
	defer d.release(h)

	n, ch, err := d.buf.Insert(pos, text, h)
	if err != nil {
		return 0, err
	}
	return n, d.reflow(ch)
}

// DeleteText removes the characters in [start, end).
func (d *Document) DeleteText(start, end int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writable(); err != nil {
		return err
	}
	return d.deleteLocked(start, end)
}

func (d *Document) deleteLocked(start, end int) error {
	ch, err := d.buf.Delete(start, end)
	if err != nil {
		return err
	}
	return d.reflow(ch)
}

// SetStyle re-tags [start, end) with st, replacing whatever style the
// characters had.
func (d *Document) SetStyle(start, end int, st style.Style) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writable(); err != nil {
		return err
	}
	h := d.reg.Acquire(st)
	defer d.release(h)

	ch, err := d.buf.SetStyle(start, end, h)
	if err != nil {
		return err
	}
	return d.reflow(ch)
}

// ApplyStyle overlays the set fields of partial onto the style of every
// character in [start, end). Unset fields keep their current values.
func (d *Document) ApplyStyle(start, end int, partial style.Style) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writable(); err != nil {
		return err
	}
	if _, err := d.buf.Read(start, end); err != nil {
		return err
	}

	type restyle struct {
		start, end int
		tag        style.Handle
	}
	// Every merged target is held until all steps are applied.
	var plan []restyle
	defer func() {
		for _, p := range plan {
			d.release(p.tag)
		}
	}()
	pos := start
	for _, r := range d.buf.Runs(start, end) {
		h, err := d.reg.Merge(r.Tag, partial)
		if err != nil {
			return fmt.Errorf("apply style at %d: %w", pos, err)
		}
		plan = append(plan, restyle{start: pos, end: pos + r.Len, tag: h})
		pos += r.Len
	}

	for _, p := range plan {
		ch, err := d.buf.SetStyle(p.start, p.end, p.tag)
		if err != nil {
			return err
		}
		if err := d.reflow(ch); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// Cursor Operations
// ============================================================================

// Cursor returns the caret and selection.
func (d *Document) Cursor() Cursor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor
}

// SetCursor places the caret and selection.
func (d *Document) SetCursor(c Cursor) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.buf.Len()
	for _, off := range []int{c.Position, c.Anchor} {
		if off < 0 || off > n {
			return fmt.Errorf("cursor %v of %d: %w", c, n, ErrOffsetOutOfRange)
		}
	}
	d.cursor = c
	return nil
}

// Move moves the caret. With extend the selection grows from its anchor.
func (d *Document) Move(op cursor.MoveOp, extend bool) Cursor {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cursor = d.cursor.Move(op, d.layout, extend)
	return d.cursor
}

// Click places the caret at the character nearest to point in column col.
// With extend the selection grows from its anchor.
func (d *Document) Click(col int, point fixed.Point26_6, extend bool) (Cursor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	off, err := d.layout.HitTest(col, point)
	if err != nil {
		return d.cursor, err
	}
	d.cursor = d.cursor.MoveTo(off, extend)
	return d.cursor, nil
}

// Type replaces the selection with text in the current style and leaves the
// caret after it.
func (d *Document) Type(text string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writable(); err != nil {
		return 0, err
	}
	r := d.cursor.Range()
	n, ch, err := d.buf.Replace(r.Start, r.End, text, d.current)
	if err != nil {
		return 0, err
	}
	if err := d.reflow(ch); err != nil {
		return n, err
	}
	d.cursor = cursor.At(ch.NewEnd)
	return n, nil
}

// Backspace deletes the selection, or the cluster before the caret.
func (d *Document) Backspace() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writable(); err != nil {
		return err
	}
	if d.cursor.HasSelection() {
		return d.deleteLocked(d.cursor.Start(), d.cursor.End())
	}
	pos := d.cursor.Position
	return d.deleteLocked(d.layout.PrevCluster(pos), pos)
}

// DeleteForward deletes the selection, or the cluster after the caret.
func (d *Document) DeleteForward() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writable(); err != nil {
		return err
	}
	if d.cursor.HasSelection() {
		return d.deleteLocked(d.cursor.Start(), d.cursor.End())
	}
	pos := d.cursor.Position
	return d.deleteLocked(pos, d.layout.NextCluster(pos))
}

// CursorRect returns the caret rectangle in layout coordinates.
func (d *Document) CursorRect() (fixed.Rectangle26_6, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.CaretRect(d.cursor.Position)
}

// ============================================================================
// Layout Queries
// ============================================================================

// GlyphRun returns the glyphs of line rank in column col.
func (d *Document) GlyphRun(col, rank int) ([]shaping.Glyph, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.GlyphRun(col, rank)
}

// HitTest returns the character offset nearest to point in column col.
func (d *Document) HitTest(col int, point fixed.Point26_6) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.HitTest(col, point)
}

// Line returns line rank of column col.
func (d *Document) Line(col, rank int) (Line, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.Line(col, rank)
}

// LineCount returns the number of lines in column col.
func (d *Document) LineCount(col int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.LineCount(col)
}

// LocateByHeight returns the line of column col at vertical offset y.
func (d *Document) LocateByHeight(col int, y fixed.Int26_6) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	line, _, err := d.layout.LocateByHeight(col, y)
	return line, err
}

// ContentHeight returns the total height of column col.
func (d *Document) ContentHeight(col int) (fixed.Int26_6, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.ContentHeight(col)
}

// ColumnCount returns the number of columns.
func (d *Document) ColumnCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.ColumnCount()
}

// ColumnBounds returns the left edge and width of column col.
func (d *Document) ColumnBounds(col int) (x, width fixed.Int26_6, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.ColumnBounds(col)
}

// ============================================================================
// Layout Settings
// ============================================================================

// SetColumns replaces the column set.
func (d *Document) SetColumns(cols []Column) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.SetColumns(cols)
}

// Columns returns the column set.
func (d *Document) Columns() []Column {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.Columns()
}

// SetWidth sets the total layout width.
func (d *Document) SetWidth(w fixed.Int26_6) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.layout.SetWidth(w)
}

// SetDefaults sets the style that unset style fields fall back to.
func (d *Document) SetDefaults(st style.Style) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.layout.SetDefaults(st)
}

// Defaults returns the document default style.
func (d *Document) Defaults() style.Style {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.Defaults()
}

// SetOutlineWidth sets the outline width added around outlined glyphs.
func (d *Document) SetOutlineWidth(w fixed.Int26_6) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.layout.SetOutlineWidth(w)
}

// SetCurrentStyle sets the style used by InsertText and Type.
func (d *Document) SetCurrentStyle(st style.Style) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	h := d.reg.Acquire(st)
	old := d.current
	d.current = h
	return d.reg.Release(old, 1)
}

// CurrentStyle returns the style used by InsertText and Type.
func (d *Document) CurrentStyle() style.Style {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, _ := d.reg.Get(d.current)
	return st
}

// CheckInvariants verifies the layout against the text.
func (d *Document) CheckInvariants() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layout.CheckInvariants()
}

// Close releases every style reference the document holds. The document
// is empty afterwards and refuses edits.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	ch, err := d.buf.Clear()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := d.reflow(ch); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := d.reg.Release(d.current, 1); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	d.current = style.Inherit
	d.closed = true
	d.logger.Debug("document closed")
	return nil
}

// release drops a reference taken for the duration of one operation.
func (d *Document) release(h style.Handle) {
	if err := d.reg.Release(h, 1); err != nil {
		d.logger.Error("style release", "handle", h, "error", err)
	}
}

func (d *Document) writable() error {
	switch {
	case d.closed:
		return ErrClosed
	case d.readOnly:
		return ErrReadOnly
	}
	return nil
}

// reflow brings the layout up to date with an applied change and carries
// the cursor across it.
func (d *Document) reflow(ch Change) error {
	if ch.IsNoOp() {
		return nil
	}
	d.cursor = d.cursor.Transform(ch, d.buf.Len())
	if err := d.layout.Reflow(d.buf, ch); err != nil {
		d.logger.Error("reflow failed, rebuilding layout", "change", ch.String(), "err", err)
		d.layout.Reset(d.buf)
		return fmt.Errorf("reflow %v: %w", ch, err)
	}
	return nil
}
