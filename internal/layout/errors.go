package layout

import "errors"

// Errors returned by layout operations.
var (
	// ErrOffsetOutOfRange indicates a character, glyph or line offset beyond the document.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrColumnOutOfRange indicates a column index that does not exist.
	ErrColumnOutOfRange = errors.New("column out of range")

	// ErrStaleChange indicates a change that does not match the source it is applied to.
	ErrStaleChange = errors.New("change inconsistent with source")

	// ErrNoColumns indicates an empty column set.
	ErrNoColumns = errors.New("at least one column is required")

	// ErrInvariant is wrapped by every CheckInvariants failure.
	ErrInvariant = errors.New("layout invariant violated")
)
