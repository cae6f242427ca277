package physac

import "fmt"

// InvalidBodyError reports a body whose mass properties make the simulation
// meaningless. It is fatal to a run.
type InvalidBodyError struct {
	ID     uint
	Reason string
}

func (e *InvalidBodyError) Error() string {
	if e.ID == 0 {
		return "physac: invalid body: " + e.Reason
	}
	return fmt.Sprintf("physac: invalid body %d: %s", e.ID, e.Reason)
}

// CollisionResolutionError reports a contact that could not be resolved
// numerically. The pair is skipped for the current step.
type CollisionResolutionError struct {
	A, B   uint
	Reason string
}

func (e *CollisionResolutionError) Error() string {
	return fmt.Sprintf("physac: bodies %d and %d: %s", e.A, e.B, e.Reason)
}
