package reset

import (
	"context"
	"fmt"
	"time"
)

// Phase defines the lifecycle of a factory reset.
type Phase string

const (
	PhaseIdle      Phase = "Idle"
	PhaseRunning   Phase = "Running"
	PhaseCompleted Phase = "Completed"
	PhaseFailed    Phase = "Failed"
)

// Terminal reports whether p ends a run.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// Status is the observable state of the controller. Progress is in [0, 1].
// Reason is only set in PhaseFailed; Step names the step being executed, or
// the one that failed. Message is the human readable summary of the last
// phase change.
type Status struct {
	RunID      string    `json:"runId,omitempty"`
	Phase      Phase     `json:"phase"`
	Progress   float64   `json:"progress"`
	Step       string    `json:"step,omitempty"`
	StepIndex  int       `json:"stepIndex"`
	StepCount  int       `json:"stepCount"`
	Reason     string    `json:"reason,omitempty"`
	Message    string    `json:"message,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Step is one unit of reset work. The controller does not know what a step
// does; it only needs its name, its share of the overall progress and its
// outcome.
type Step interface {
	Name() string
	Weight() float64
	Perform(ctx context.Context) error
}

// StepFunc is the function form of Step.Perform.
type StepFunc func(ctx context.Context) error

type funcStep struct {
	name   string
	weight float64
	fn     StepFunc
}

// NewStep adapts fn into a Step. A non-positive or non-finite weight counts
// as 1.
func NewStep(name string, weight float64, fn StepFunc) Step {
	return &funcStep{name: name, weight: weight, fn: fn}
}

func (s *funcStep) Name() string                      { return s.name }
func (s *funcStep) Weight() float64                   { return s.weight }
func (s *funcStep) Perform(ctx context.Context) error { return s.fn(ctx) }

// Message ids passed to a MessageFunc.
const (
	MessageStarted   = "ResetStarted"
	MessageCompleted = "ResetCompleted"
	MessageFailed    = "ResetFailed"
	MessageCleared   = "ResetCleared"
)

func defaultMessage(id string, data map[string]any) string {
	switch id {
	case MessageStarted:
		return "Factory reset started"
	case MessageCompleted:
		return fmt.Sprintf("Factory reset completed in %v", data["Duration"])
	case MessageFailed:
		return fmt.Sprintf("Factory reset failed: %v", data["Reason"])
	case MessageCleared:
		return "Factory reset status cleared"
	}
	return id
}
