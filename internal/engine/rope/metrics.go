package rope

import "unicode/utf8"

// TextSummary holds aggregated metrics for a text span.
// It is the monoid summary stored at every node of the tree.
type TextSummary struct {
	// Bytes is the UTF-8 byte count.
	Bytes int

	// Chars is the code point count.
	Chars int

	// Lines is the number of newline characters.
	Lines int

	// Flags indicate text properties for fast paths.
	Flags TextFlags
}

// TextFlags indicate text properties for optimization fast paths.
type TextFlags uint8

const (
	// FlagASCII indicates all characters are ASCII (< 128).
	FlagASCII TextFlags = 1 << iota

	// FlagHasNewlines indicates the text contains newline characters.
	FlagHasNewlines

	// FlagHasTabs indicates the text contains tab characters.
	FlagHasTabs
)

// Add combines two summaries (monoid operation).
func (s TextSummary) Add(other TextSummary) TextSummary {
	if s.Bytes == 0 {
		return other
	}
	if other.Bytes == 0 {
		return s
	}
	return TextSummary{
		Bytes: s.Bytes + other.Bytes,
		Chars: s.Chars + other.Chars,
		Lines: s.Lines + other.Lines,
		// ASCII needs both sides; the "has" flags need either.
		Flags: (s.Flags & other.Flags & FlagASCII) |
			((s.Flags | other.Flags) &^ FlagASCII),
	}
}

// emptySummary is the identity element.
func emptySummary() TextSummary {
	return TextSummary{Flags: FlagASCII}
}

// ComputeSummary calculates metrics for a string.
func ComputeSummary(s string) TextSummary {
	sum := emptySummary()
	sum.Bytes = len(s)
	for _, r := range s {
		sum.Chars++
		switch {
		case r == '\n':
			sum.Lines++
			sum.Flags |= FlagHasNewlines
		case r == '\t':
			sum.Flags |= FlagHasTabs
		}
		if r >= utf8.RuneSelf {
			sum.Flags &^= FlagASCII
		}
	}
	return sum
}

// charToByte converts a character offset within s to a byte offset.
// Offsets past the end clamp to len(s).
func charToByte(s string, chars int, flags TextFlags) int {
	if flags&FlagASCII != 0 {
		return min(chars, len(s))
	}
	i := 0
	for chars > 0 && i < len(s) {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		chars--
	}
	return i
}
