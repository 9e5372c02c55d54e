package view

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/engine/cursor"
	"github.com/dshills/richtext/internal/style"
)

// keyMoves maps navigation keys to caret motions. The Ctrl variants come
// second.
var keyMoves = map[tcell.Key][2]cursor.MoveOp{
	tcell.KeyLeft:  {cursor.Left, cursor.WordLeft},
	tcell.KeyRight: {cursor.Right, cursor.WordRight},
	tcell.KeyUp:    {cursor.Up, cursor.ParagraphStart},
	tcell.KeyDown:  {cursor.Down, cursor.ParagraphEnd},
	tcell.KeyHome:  {cursor.LineStart, cursor.DocumentStart},
	tcell.KeyEnd:   {cursor.LineEnd, cursor.DocumentEnd},
}

// HandleKey applies a key press to the document. It reports whether the
// key was recognized. Edits of a read-only document fail but the caret
// still moves.
func (v *View) HandleKey(ev *tcell.EventKey) (bool, error) {
	extend := ev.Modifiers()&tcell.ModShift != 0
	ctrl := ev.Modifiers()&tcell.ModCtrl != 0

	if ops, ok := keyMoves[ev.Key()]; ok {
		op := ops[0]
		if ctrl {
			op = ops[1]
		}
		v.doc.Move(op, extend)
		v.Reveal(v.height)
		return true, nil
	}

	var err error
	switch ev.Key() {
	case tcell.KeyPgUp, tcell.KeyPgDn:
		op := cursor.Up
		if ev.Key() == tcell.KeyPgDn {
			op = cursor.Down
		}
		for i, n := 0, max(v.height-1, 1); i < n; i++ {
			v.doc.Move(op, extend)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		err = v.doc.Backspace()
	case tcell.KeyDelete:
		err = v.doc.DeleteForward()
	case tcell.KeyEnter:
		_, err = v.doc.Type("\n")
	case tcell.KeyTab:
		_, err = v.doc.Type("\t")
	case tcell.KeyCtrlB:
		err = v.toggleBold()
	case tcell.KeyCtrlU:
		err = v.toggleUnderline()
	case tcell.KeyRune:
		if !ctrl {
			_, err = v.doc.Type(string(ev.Rune()))
			break
		}
		switch unicode.ToLower(ev.Rune()) {
		case 'b':
			err = v.toggleBold()
		case 'u':
			err = v.toggleUnderline()
		default:
			return false, nil
		}
	default:
		return false, nil
	}
	v.Reveal(v.height)
	return true, err
}

// HandleMouse moves the caret to a click and scrolls on the wheel. Rows
// are screen rows.
func (v *View) HandleMouse(ev *tcell.EventMouse) error {
	x, y := ev.Position()
	switch btn := ev.Buttons(); {
	case btn&tcell.WheelUp != 0:
		v.Scroll(-3)
		return nil
	case btn&tcell.WheelDown != 0:
		v.Scroll(3)
		return nil
	case btn&tcell.Button1 == 0:
		return nil
	}

	col := v.columnAt(fixed.I(x))
	pt := fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y + v.top)}
	_, err := v.doc.Click(col, pt, ev.Modifiers()&tcell.ModShift != 0)
	return err
}

// columnAt returns the column whose bounds contain x, or the nearest one.
func (v *View) columnAt(x fixed.Int26_6) int {
	n := v.doc.ColumnCount()
	for col := 0; col < n; col++ {
		cx, w, err := v.doc.ColumnBounds(col)
		if err == nil && x < cx+w {
			return col
		}
	}
	return n - 1
}

// toggleBold flips bold over the selection, or for typed text without one.
// The selection's first character decides the direction.
func (v *View) toggleBold() error {
	return v.toggle(
		func(st style.Style) bool { return st.Font.Bold },
		func(stored, resolved style.Style, on bool) style.Style {
			f := resolved.Font
			f.Bold = on
			stored.Font = f
			return stored
		})
}

func (v *View) toggleUnderline() error {
	return v.toggle(
		func(st style.Style) bool { return st.Underline.Enabled() },
		func(stored, _ style.Style, on bool) style.Style {
			stored.Underline = style.ToggleOff
			if on {
				stored.Underline = style.ToggleOn
			}
			return stored
		})
}

// toggle rewrites the stored style of each selected run, or the current
// style, with set. enabled reports the attribute on a resolved style.
func (v *View) toggle(enabled func(style.Style) bool, set func(stored, resolved style.Style, on bool) style.Style) error {
	defaults := v.doc.Defaults()
	c := v.doc.Cursor()
	if !c.HasSelection() {
		cur := v.doc.CurrentStyle()
		resolved := style.Overlay(defaults, cur)
		return v.doc.SetCurrentStyle(set(cur, resolved, !enabled(resolved)))
	}

	r := c.Range()
	first, err := v.doc.StyleAt(r.Start)
	if err != nil {
		return err
	}
	on := !enabled(first)
	reg := v.doc.Registry()
	pos := r.Start
	for _, run := range v.doc.Runs(r.Start, r.End) {
		stored, _ := reg.Get(run.Tag)
		if err := v.doc.SetStyle(pos, pos+run.Len, set(stored, style.Overlay(defaults, stored), on)); err != nil {
			return err
		}
		pos += run.Len
	}
	return nil
}
