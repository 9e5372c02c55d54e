package style

import "fmt"

// FontRef names a font face. The zero value means "no font set".
// Resolution into metrics belongs to a shaping.FontProvider.
type FontRef struct {
	Family string
	Size   float64 // points; 0 means provider default
	Bold   bool
	Italic bool
}

// IsZero reports whether no font is set.
func (f FontRef) IsZero() bool {
	return f == FontRef{}
}

// String returns a compact description of the font.
func (f FontRef) String() string {
	if f.IsZero() {
		return "inherit"
	}
	s := fmt.Sprintf("%s %gpt", f.Family, f.Size)
	if f.Bold {
		s += " bold"
	}
	if f.Italic {
		s += " italic"
	}
	return s
}

// Toggle is a tri-state boolean that can inherit.
type Toggle uint8

const (
	ToggleUnset Toggle = iota
	ToggleOn
	ToggleOff
)

// Or returns t if set, otherwise base.
func (t Toggle) Or(base Toggle) Toggle {
	if t != ToggleUnset {
		return t
	}
	return base
}

// Enabled reports whether the toggle is on.
func (t Toggle) Enabled() bool {
	return t == ToggleOn
}

// Style is an immutable text style. Every field may be unset.
type Style struct {
	Font       FontRef
	Text       Color
	Background Color
	Outline    Color
	Underline  Toggle
}

// IsEmpty reports whether every field is unset.
func (s Style) IsEmpty() bool {
	return s == Style{}
}

// Outlined reports whether glyphs in this style are drawn with an outline.
func (s Style) Outlined() bool {
	return s.Outline.Set
}

// Overlay returns a style where every unset field of override falls back
// to base.
func Overlay(base, override Style) Style {
	result := override
	if result.Font.IsZero() {
		result.Font = base.Font
	}
	result.Text = override.Text.Or(base.Text)
	result.Background = override.Background.Or(base.Background)
	result.Outline = override.Outline.Or(base.Outline)
	result.Underline = override.Underline.Or(base.Underline)
	return result
}

// Run is a span of Len characters sharing one style tag.
type Run struct {
	Len int
	Tag Handle
}
