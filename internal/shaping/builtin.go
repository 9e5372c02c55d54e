package shaping

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/style"
)

// TabStop is the width of a tab in spaces.
const TabStop = 4

// BuiltinShaper emits one glyph per grapheme cluster, measured by the base
// character of the cluster, and applies pairwise kerning. It performs no
// reordering or glyph substitution.
type BuiltinShaper struct {
	Fonts FontProvider
}

// NewBuiltinShaper creates a shaper measuring with fonts.
func NewBuiltinShaper(fonts FontProvider) *BuiltinShaper {
	return &BuiltinShaper{Fonts: fonts}
}

// Shape implements Shaper.
func (s *BuiltinShaper) Shape(runes []rune, st style.Style) []Glyph {
	if len(runes) == 0 {
		return nil
	}

	f := st.Font
	asc := s.Fonts.Baseline(f)
	height := s.Fonts.Height(f)

	var extra Flags
	if st.Underline.Enabled() {
		extra |= FlagUnderline
	}
	if st.Outlined() {
		extra |= FlagOutline
	}

	text := string(runes)
	out := make([]Glyph, 0, len(runes))
	pos := 0
	state := -1
	for len(text) > 0 {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		n := utf8.RuneCountInString(cluster)
		base, _ := utf8.DecodeRuneInString(cluster)
		src := Span{Start: pos, End: pos + n}
		pos += n

		flags := classify(cluster, base, n) | extra
		var g Glyph
		switch {
		case flags.Has(FlagHardBreak):
			g = Glyph{Source: src, Cell: cellBox(0, asc, height), Font: f}
		case base == '\t':
			m, _ := s.Fonts.Glyph(f, ' ')
			adv := m.Advance * TabStop
			g = Glyph{ID: m.ID, Source: src, Advance: adv, Cell: cellBox(adv, asc, height), Font: f}
		default:
			m, ok := s.Fonts.Glyph(f, base)
			if !ok {
				g = Placeholder(s.Fonts, f, src)
				flags |= FlagPlaceholder
				break
			}
			g = Glyph{
				ID:      m.ID,
				Source:  src,
				Advance: m.Advance,
				Cell:    cellBox(m.Advance, asc, height),
				Shape:   m.Bounds,
				Font:    f,
			}
			if last := len(out) - 1; last >= 0 && kernable(out[last]) && g.ID != 0 {
				k := s.Fonts.Kerning(f, out[last].ID, g.ID)
				out[last].Advance += k
				out[last].Cell.Max.X += k
			}
		}
		g.Flags = flags
		out = append(out, g)
	}
	return out
}

func kernable(g Glyph) bool {
	return g.ID != 0 && g.Flags&(FlagPlaceholder|FlagHardBreak|FlagWhitespace) == 0
}

func classify(cluster string, base rune, n int) Flags {
	var f Flags
	switch {
	case base == '\n':
		return FlagHardBreak
	case unicode.IsSpace(base):
		f |= FlagWhitespace
	}
	if n > 1 {
		f |= FlagCombining
	}
	if isEmoji(cluster, base) {
		f |= FlagEmoji
	}
	return f
}

func isEmoji(cluster string, base rune) bool {
	switch {
	case base >= 0x1F300 && base <= 0x1FAFF,
		base >= 0x1F1E6 && base <= 0x1F1FF,
		base >= 0x2600 && base <= 0x27BF:
		return true
	}
	for _, r := range cluster {
		if r == 0x200D || r == 0xFE0F {
			return true
		}
	}
	return false
}

// Width sums the advances of glyphs.
func Width(glyphs []Glyph) fixed.Int26_6 {
	var w fixed.Int26_6
	for _, g := range glyphs {
		w += g.Advance
	}
	return w
}
