package reset

import "fmt"

var ErrInvalidStateTransition = &resetError{msg: "invalid state transition"}
var ErrAlreadyRunning = &resetError{msg: "factory reset already running", parent: ErrInvalidStateTransition}
var ErrStepFailure = &resetError{msg: "reset step failed"}

type resetError struct {
	msg    string
	parent error
}

func (e *resetError) Error() string { return e.msg }
func (e *resetError) Unwrap() error { return e.parent }

// StepError describes which step of a run failed. It matches ErrStepFailure.
type StepError struct {
	Index int // zero-based
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Index+1, e.Step, e.Err)
}

func (e *StepError) Unwrap() []error { return []error{ErrStepFailure, e.Err} }
