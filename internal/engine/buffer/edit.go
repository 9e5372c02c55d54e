package buffer

import "fmt"

// ChangeType categorizes a buffer mutation.
type ChangeType uint8

const (
	ChangeInsert  ChangeType = iota // Text was inserted
	ChangeDelete                    // Text was deleted
	ChangeReplace                   // Text was replaced
	ChangeStyle                     // Tags were replaced, text unchanged
)

// String returns a string representation of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	case ChangeStyle:
		return "style"
	default:
		return "unknown"
	}
}

// Change describes one applied mutation. [Start, OldEnd) is the affected
// range before the edit and [Start, NewEnd) the same range after it.
type Change struct {
	Type   ChangeType
	Start  int
	OldEnd int
	NewEnd int
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	return fmt.Sprintf("%s[%d:%d->%d)", c.Type, c.Start, c.OldEnd, c.NewEnd)
}

// Delta returns the change in buffer length.
func (c Change) Delta() int {
	return c.NewEnd - c.OldEnd
}

// IsNoOp returns true if the change touched nothing.
func (c Change) IsNoOp() bool {
	return c.Start == c.OldEnd && c.Start == c.NewEnd
}

// OldRange returns the affected range in pre-edit coordinates.
func (c Change) OldRange() Range {
	return Range{Start: c.Start, End: c.OldEnd}
}

// NewRange returns the affected range in post-edit coordinates.
func (c Change) NewRange() Range {
	return Range{Start: c.Start, End: c.NewEnd}
}
