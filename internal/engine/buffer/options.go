package buffer

import "strings"

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithNormalizeLineEndings controls whether inserted "\r\n" and "\r" are
// converted to "\n". Normalization is off by default, so inserted text is
// stored as given; only "\n" ends a paragraph either way.
func WithNormalizeLineEndings(on bool) Option {
	return func(b *Buffer) {
		b.normalize = on
	}
}

// normalizeLineEndings converts all line endings to "\n".
func normalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
