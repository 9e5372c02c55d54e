package layout

// Phase is a step of the reflow state machine.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseAffectedSpanComputed
	PhaseReshaped
	PhaseParagraphIndexUpdated
	PhaseLinesRebuilt
	PhaseHeightInvalidated
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAffectedSpanComputed:
		return "affected-span-computed"
	case PhaseReshaped:
		return "reshaped"
	case PhaseParagraphIndexUpdated:
		return "paragraph-index-updated"
	case PhaseLinesRebuilt:
		return "lines-rebuilt"
	case PhaseHeightInvalidated:
		return "height-invalidated"
	default:
		return "unknown"
	}
}
