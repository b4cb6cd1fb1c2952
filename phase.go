package anna

import "fmt"

// Phase is the stage of the substep being run by a World
type Phase uint32

const (
	PhaseIdle Phase = iota
	PhaseCapturing
	PhaseWriting
	PhaseMerging
	PhaseSolving
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCapturing:
		return "capturing"
	case PhaseWriting:
		return "writing"
	case PhaseMerging:
		return "merging"
	case PhaseSolving:
		return "solving"
	case PhaseDone:
		return "done"
	}
	return fmt.Sprintf("Phase(%d)", uint32(p))
}

// mustBePhase panics with ErrInvalidPhase when the world is not in want.
// It only runs in debug builds.
func (w *World) mustBePhase(want Phase, operation string) {
	if !debugChecks {
		return
	}
	if got := w.Phase(); got != want {
		panic(fmt.Errorf("%w: %s during %v, want %v", ErrInvalidPhase, operation, got, want))
	}
}
