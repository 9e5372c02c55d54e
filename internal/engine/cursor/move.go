package cursor

// Navigator answers layout questions about character offsets. Every method
// clamps its argument into [0, Len()].
type Navigator interface {
	Len() int
	NextCluster(c int) int
	PrevCluster(c int) int
	NextWord(c int) int
	PrevWord(c int) int
	LineStart(c int) int
	LineEnd(c int) int
	LineAbove(c int) int
	LineBelow(c int) int
	ParagraphStart(c int) int
	ParagraphEnd(c int) int
}

// MoveOp is a cursor movement.
type MoveOp uint8

const (
	Left MoveOp = iota
	Right
	Up
	Down
	LineStart
	LineEnd
	WordLeft
	WordRight
	ParagraphStart
	ParagraphEnd
	DocumentStart
	DocumentEnd
)

var moveNames = [...]string{
	Left:           "left",
	Right:          "right",
	Up:             "up",
	Down:           "down",
	LineStart:      "line-start",
	LineEnd:        "line-end",
	WordLeft:       "word-left",
	WordRight:      "word-right",
	ParagraphStart: "paragraph-start",
	ParagraphEnd:   "paragraph-end",
	DocumentStart:  "document-start",
	DocumentEnd:    "document-end",
}

// String returns the operation name.
func (op MoveOp) String() string {
	if int(op) < len(moveNames) {
		return moveNames[op]
	}
	return "unknown"
}

// Move applies op using nav. With extend the anchor stays put. Without it
// a horizontal move over a selection collapses to the selection's edge.
func (c Cursor) Move(op MoveOp, nav Navigator, extend bool) Cursor {
	c = c.Clamp(nav.Len())
	if !extend && c.HasSelection() {
		switch op {
		case Left:
			return At(c.Start())
		case Right:
			return At(c.End())
		}
	}

	pos := c.Position
	var next int
	switch op {
	case Left:
		next = nav.PrevCluster(pos)
	case Right:
		next = nav.NextCluster(pos)
	case Up:
		next = nav.LineAbove(pos)
	case Down:
		next = nav.LineBelow(pos)
	case LineStart:
		next = nav.LineStart(pos)
	case LineEnd:
		next = nav.LineEnd(pos)
	case WordLeft:
		next = nav.PrevWord(pos)
	case WordRight:
		next = nav.NextWord(pos)
	case ParagraphStart:
		next = nav.ParagraphStart(pos)
	case ParagraphEnd:
		next = nav.ParagraphEnd(pos)
	case DocumentStart:
		next = 0
	case DocumentEnd:
		next = nav.Len()
	default:
		next = pos
	}
	return c.MoveTo(next, extend).Clamp(nav.Len())
}
