package engine

import (
	"errors"

	"github.com/dshills/richtext/internal/engine/buffer"
	"github.com/dshills/richtext/internal/layout"
)

// Errors returned by document operations.
var (
	// ErrOffsetOutOfRange indicates an offset is outside the document.
	ErrOffsetOutOfRange = buffer.ErrOffsetOutOfRange

	// ErrRangeInvalid indicates an invalid range (e.g., end < start).
	ErrRangeInvalid = buffer.ErrRangeInvalid

	// ErrColumnOutOfRange indicates a column index outside the column set.
	ErrColumnOutOfRange = layout.ErrColumnOutOfRange

	// ErrReadOnly indicates an edit was attempted on a read-only document.
	ErrReadOnly = errors.New("document is read-only")

	// ErrClosed indicates an operation on a closed document.
	ErrClosed = errors.New("document is closed")
)
