package layout

import (
	"log/slog"

	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/style"
)

// DefaultWidth is the layout width used until SetWidth is called.
var DefaultWidth = fixed.I(80)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLogger sets the logger for reflow phase tracing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithColumns sets the initial columns. An empty slice is ignored.
func WithColumns(cols ...Column) Option {
	return func(e *Engine) {
		if len(cols) > 0 {
			e.columns = newColumns(cols)
		}
	}
}

// WithWidth sets the initial total width.
func WithWidth(w fixed.Int26_6) Option {
	return func(e *Engine) {
		e.width = max(w, 0)
	}
}

// WithOutlineWidth sets the outline width added above and below outlined glyphs.
func WithOutlineWidth(w fixed.Int26_6) Option {
	return func(e *Engine) {
		e.outline = max(w, 0)
	}
}

// WithDefaults sets the document default style.
func WithDefaults(st style.Style) Option {
	return func(e *Engine) {
		e.defaults = st
	}
}
