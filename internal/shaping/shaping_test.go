package shaping

import (
	"testing"
	"testing/quick"
	"unicode/utf8"

	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/style"
)

func TestBuiltinShaperCells(t *testing.T) {
	s := NewBuiltinShaper(NewCellProvider(false))

	tests := []struct {
		name    string
		text    string
		glyphs  int
		width   fixed.Int26_6
		flags   []Flags
		sources []Span
	}{
		{
			name:    "ascii",
			text:    "ab c",
			glyphs:  4,
			width:   fixed.I(4),
			flags:   []Flags{0, 0, FlagWhitespace, 0},
			sources: []Span{{0, 1}, {1, 2}, {2, 3}, {3, 4}},
		},
		{
			name:    "hard break",
			text:    "a\n",
			glyphs:  2,
			width:   fixed.I(1),
			flags:   []Flags{0, FlagHardBreak},
			sources: []Span{{0, 1}, {1, 2}},
		},
		{
			name:    "combining cluster",
			text:    "e\u0301x",
			glyphs:  2,
			width:   fixed.I(2),
			flags:   []Flags{FlagCombining, 0},
			sources: []Span{{0, 2}, {2, 3}},
		},
		{
			name:    "wide",
			text:    "世界",
			glyphs:  2,
			width:   fixed.I(4),
			flags:   []Flags{0, 0},
			sources: []Span{{0, 1}, {1, 2}},
		},
		{
			name:    "emoji with modifier",
			text:    "👍🏽",
			glyphs:  1,
			width:   fixed.I(2),
			flags:   []Flags{FlagCombining | FlagEmoji},
			sources: []Span{{0, 2}},
		},
		{
			name:    "tab",
			text:    "\t",
			glyphs:  1,
			width:   fixed.I(TabStop),
			flags:   []Flags{FlagWhitespace},
			sources: []Span{{0, 1}},
		},
		{
			name:    "control character",
			text:    "\x01",
			glyphs:  1,
			width:   fixed.I(1) / 2,
			flags:   []Flags{FlagPlaceholder},
			sources: []Span{{0, 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Shape([]rune(tt.text), style.Style{})
			if len(got) != tt.glyphs {
				t.Fatalf("got %d glyphs, want %d", len(got), tt.glyphs)
			}
			if w := Width(got); w != tt.width {
				t.Errorf("width = %v, want %v", w, tt.width)
			}
			for i, g := range got {
				if g.Flags != tt.flags[i] {
					t.Errorf("glyph %d flags = %v, want %v", i, g.Flags, tt.flags[i])
				}
				if g.Source != tt.sources[i] {
					t.Errorf("glyph %d source = %v, want %v", i, g.Source, tt.sources[i])
				}
			}
		})
	}
}

func TestBuiltinShaperStyleFlags(t *testing.T) {
	s := NewBuiltinShaper(NewCellProvider(false))
	st := style.Style{Underline: style.ToggleOn, Outline: style.RGB(0, 0, 0)}

	for _, g := range s.Shape([]rune("ok"), st) {
		if !g.Flags.Has(FlagUnderline | FlagOutline) {
			t.Errorf("flags = %v, want underline and outline", g.Flags)
		}
	}
}

func TestBuiltinShaperTiles(t *testing.T) {
	s := NewBuiltinShaper(NewCellProvider(false))
	f := func(text string) bool {
		runes := []rune(text)
		return Tiles(s.Shape(runes, style.Style{}), len(runes))
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestTiles(t *testing.T) {
	tests := []struct {
		name   string
		glyphs []Glyph
		n      int
		want   bool
	}{
		{"empty", nil, 0, true},
		{"empty but chars", nil, 2, false},
		{"contiguous", []Glyph{{Source: Span{0, 1}}, {Source: Span{1, 3}}}, 3, true},
		{"zero width", []Glyph{{Source: Span{0, 0}}, {Source: Span{0, 1}}}, 1, true},
		{"gap", []Glyph{{Source: Span{0, 1}}, {Source: Span{2, 3}}}, 3, false},
		{"short", []Glyph{{Source: Span{0, 1}}}, 2, false},
		{"reversed", []Glyph{{Source: Span{0, 2}}, {Source: Span{2, 1}}}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tiles(tt.glyphs, tt.n); got != tt.want {
				t.Errorf("Tiles = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFaceProvider(t *testing.T) {
	p := NewFaceProvider()
	regular := style.FontRef{Size: 16}
	mono := style.FontRef{Family: "Go Mono", Size: 16}

	if h := p.Height(regular); h <= fixed.I(10) || h > fixed.I(30) {
		t.Errorf("height of 16pt font = %v", h)
	}
	if a := p.Baseline(regular); a <= 0 || a >= p.Height(regular) {
		t.Errorf("baseline %v outside (0, height)", a)
	}
	if p.Height(style.FontRef{Size: 32}) <= p.Height(regular) {
		t.Error("larger size should be taller")
	}

	gi, ok := p.Glyph(mono, 'i')
	if !ok {
		t.Fatal("mono font has no 'i'")
	}
	gm, _ := p.Glyph(mono, 'm')
	if gi.Advance != gm.Advance {
		t.Errorf("mono advances differ: i=%v m=%v", gi.Advance, gm.Advance)
	}
	ri, _ := p.Glyph(regular, 'i')
	rm, _ := p.Glyph(regular, 'm')
	if ri.Advance >= rm.Advance {
		t.Errorf("proportional 'i' (%v) should be narrower than 'm' (%v)", ri.Advance, rm.Advance)
	}

	if _, ok := p.Glyph(regular, '\U0010FFFD'); ok {
		t.Error("private-use code point should have no glyph")
	}
}

func TestShapeWithFaces(t *testing.T) {
	s := NewBuiltinShaper(NewFaceProvider())
	text := "Hello, wörld"
	got := s.Shape([]rune(text), style.Style{Font: style.FontRef{Size: 14, Bold: true}})
	if !Tiles(got, utf8.RuneCountInString(text)) {
		t.Fatal("glyphs do not tile the text")
	}
	for i, g := range got {
		if g.ID == 0 || g.Flags.Has(FlagPlaceholder) {
			t.Errorf("glyph %d is a placeholder", i)
		}
		if g.Cell.Max.Y-g.Cell.Min.Y <= 0 {
			t.Errorf("glyph %d has an empty cell", i)
		}
	}
}
