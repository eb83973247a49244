package agent

import (
	"errors"
	"fmt"
)

// Sentinel errors for agent termination conditions.
var (
	// ErrMaxStepsReached indicates the turn hit the model request limit.
	ErrMaxStepsReached = errors.New("agent: maximum steps reached")

	// ErrAgentTimeout indicates the per-turn timeout was exceeded.
	ErrAgentTimeout = errors.New("agent: timeout exceeded")

	// ErrInvalidTransition indicates a state change the loop does not allow.
	ErrInvalidTransition = errors.New("agent: invalid state transition")
)

// TransitionError reports the rejected state change. It matches
// ErrInvalidTransition with errors.Is.
type TransitionError struct {
	From, To State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("agent: invalid state transition %s -> %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
