package layout

import (
	"github.com/dshills/richtext/internal/shaping"
	"github.com/dshills/richtext/internal/style"
)

// Range is a half-open range of character or glyph offsets.
type Range = shaping.Span

// Source is the text the engine lays out. *buffer.Buffer implements it.
type Source interface {
	// Len returns the number of characters.
	Len() int

	// Slice returns the characters in [start, end).
	Slice(start, end int) string

	// Runs returns the style runs covering [start, end), clipped to the range.
	Runs(start, end int) []style.Run
}

type emptySource struct{}

func (emptySource) Len() int { return 0 }

func (emptySource) Slice(int, int) string { return "" }

func (emptySource) Runs(int, int) []style.Run { return nil }
