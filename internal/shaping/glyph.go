package shaping

import (
	"fmt"
	"strings"

	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/style"
)

// GlyphID is a glyph index within a font. Zero is the missing glyph.
type GlyphID uint32

// Flags classify a glyph for wrapping, navigation and painting.
type Flags uint16

const (
	FlagWhitespace  Flags = 1 << iota // breakable space; never overflows a line
	FlagHardBreak                     // paragraph terminator
	FlagDelimiter                     // column delimiter; zero advance
	FlagCombining                     // covers a multi-character cluster
	FlagEmoji                         // emoji presentation
	FlagUnderline                     // paint an underline
	FlagOutline                       // paint an outline
	FlagPlaceholder                   // substituted for text that could not be shaped
)

var flagNames = []string{"whitespace", "hardbreak", "delimiter", "combining", "emoji", "underline", "outline", "placeholder"}

// Has reports whether all bits of o are set.
func (f Flags) Has(o Flags) bool {
	return f&o == o
}

// String returns the set flag names joined by '|'.
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// Span is a half-open range of character offsets.
type Span struct {
	Start, End int
}

// Len returns the number of characters covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// Shift returns s moved by delta.
func (s Span) Shift(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}

func (s Span) String() string {
	return fmt.Sprintf("[%d:%d)", s.Start, s.End)
}

// Glyph is one shaped glyph.
type Glyph struct {
	ID GlyphID

	// Source is the character range this glyph renders. Shapers return spans
	// relative to the start of the shaped run.
	Source Span

	// Advance is the pen movement after this glyph, kerning included.
	Advance fixed.Int26_6

	// Cell is the glyph's layout box relative to the pen position on the
	// baseline: Min.Y is minus the ascent, Max.Y the descent.
	Cell fixed.Rectangle26_6

	// Shape is the ink bounding box relative to the same origin.
	Shape fixed.Rectangle26_6

	Font  style.FontRef
	Flags Flags
}

// Placeholder returns a glyph standing in for src when shaping failed.
// Its advance is half the font height.
func Placeholder(fonts FontProvider, f style.FontRef, src Span) Glyph {
	h := fonts.Height(f)
	asc := fonts.Baseline(f)
	adv := h / 2
	return Glyph{
		Source:  src,
		Advance: adv,
		Cell:    cellBox(adv, asc, h),
		Shape:   cellBox(adv, asc, h),
		Font:    f,
		Flags:   FlagPlaceholder,
	}
}

func cellBox(adv, ascent, height fixed.Int26_6) fixed.Rectangle26_6 {
	return fixed.Rectangle26_6{
		Min: fixed.Point26_6{Y: -ascent},
		Max: fixed.Point26_6{X: adv, Y: height - ascent},
	}
}

// Tiles reports whether the glyph sources cover [0, n) contiguously and in
// order.
func Tiles(glyphs []Glyph, n int) bool {
	at := 0
	for _, g := range glyphs {
		if g.Source.Start != at || g.Source.End < g.Source.Start {
			return false
		}
		at = g.Source.End
	}
	return at == n
}
