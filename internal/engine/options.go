package engine

import (
	"log/slog"

	"github.com/dshills/richtext/internal/layout"
	"github.com/dshills/richtext/internal/style"
)

// Option configures a Document during creation.
type Option func(*Document)

// WithContent sets the initial content of the document, in the current style.
func WithContent(content string) Option {
	return func(d *Document) {
		d.initContent = content
	}
}

// WithLogger sets the logger. Every record carries the document ID.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithLayout passes options through to the layout engine.
func WithLayout(opts ...layout.Option) Option {
	return func(d *Document) {
		d.layoutOpts = append(d.layoutOpts, opts...)
	}
}

// WithCurrentStyle sets the style used by InsertText and Type.
func WithCurrentStyle(st style.Style) Option {
	return func(d *Document) {
		d.initStyle = st
	}
}

// WithReadOnly creates a read-only document.
// Edits will return ErrReadOnly.
func WithReadOnly() Option {
	return func(d *Document) {
		d.readOnly = true
	}
}
