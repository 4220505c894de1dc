package reset

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hbassist/hba/pkg/events"
)

// Controller runs the factory reset steps and owns the reset Status. All
// transitions are published to the event hub while the controller lock is
// held, so subscribers observe them in order.
type Controller struct {
	steps     []Step
	hub       *events.EventHub
	statePath string
	messages  MessageFunc

	mu     sync.Mutex
	status Status
}

// Option configures a Controller.
type Option func(*Controller)

// MessageFunc renders the message with the given id for the status and
// phase events. data holds the template values.
type MessageFunc func(id string, data map[string]any) string

// WithMessages renders status messages through fn, typically a translator.
func WithMessages(fn MessageFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.messages = fn
		}
	}
}

// WithStatePath persists the status as JSON to path after every transition.
func WithStatePath(path string) Option {
	return func(c *Controller) { c.statePath = path }
}

func NewController(steps []Step, hub *events.EventHub, opts ...Option) *Controller {
	c := &Controller{
		steps:    steps,
		hub:      hub,
		status:   Status{Phase: PhaseIdle, StepCount: len(steps)},
		messages: defaultMessage,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.statePath != "" {
		c.loadState()
	}
	return c
}

// Status returns a snapshot of the current status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Start begins a new run in the background and returns immediately. It
// fails with ErrAlreadyRunning, leaving the status untouched, if a run is in
// progress. Starting from a terminal phase retries from the first step.
func (c *Controller) Start() (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.Phase == PhaseRunning {
		return nil, ErrAlreadyRunning
	}

	prev := c.status.Phase
	c.status = Status{
		RunID:     uuid.NewString(),
		Phase:     PhaseRunning,
		StepCount: len(c.steps),
		StartedAt: time.Now(),
	}
	c.status.Message = c.messages(MessageStarted, nil)
	c.persistLocked()
	c.publishPhaseLocked(prev, c.status.Message)
	c.publishProgressLocked()

	logrus.WithFields(logrus.Fields{
		"runId":     c.status.RunID,
		"steps":     len(c.steps),
		"operation": "factory-reset",
	}).Info("factory reset started")

	h := &Handle{runID: c.status.RunID, done: make(chan struct{})}
	go c.run(h)
	return h, nil
}

// Reset clears a finished run back to Idle. It is rejected with
// ErrInvalidStateTransition while a run is in progress and is a no-op when
// already idle.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status.Phase {
	case PhaseRunning:
		return fmt.Errorf("%w: cannot clear state while a factory reset is running", ErrInvalidStateTransition)
	case PhaseIdle:
		return nil
	}

	prev := c.status.Phase
	c.status = Status{Phase: PhaseIdle, StepCount: len(c.steps)}
	c.persistLocked()
	c.publishPhaseLocked(prev, c.messages(MessageCleared, nil))
	return nil
}

func (c *Controller) run(h *Handle) {
	total := 0.0
	for _, s := range c.steps {
		total += stepWeight(s)
	}

	completed := 0.0
	for i, step := range c.steps {
		c.mu.Lock()
		c.status.Step = step.Name()
		c.status.StepIndex = i
		c.persistLocked()
		c.mu.Unlock()

		log := logrus.WithFields(logrus.Fields{
			"runId":     h.runID,
			"step":      step.Name(),
			"index":     i + 1,
			"operation": "factory-reset",
		})
		log.Debug("running reset step")

		if err := perform(step); err != nil {
			log.WithError(err).Error("reset step failed")
			serr := &StepError{Index: i, Step: step.Name(), Err: err}
			c.finish(PhaseFailed, serr)
			h.resolve(serr)
			return
		}

		completed += stepWeight(step)
		progress := completed / total
		if i == len(c.steps)-1 {
			progress = 1
		}

		c.mu.Lock()
		if progress > c.status.Progress {
			c.status.Progress = progress
		}
		c.persistLocked()
		c.publishProgressLocked()
		c.mu.Unlock()
	}

	c.finish(PhaseCompleted, nil)
	h.resolve(nil)
}

func (c *Controller) finish(phase Phase, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.Phase = phase
	c.status.FinishedAt = time.Now()

	if err != nil {
		c.status.Reason = err.Error()
		c.status.Message = c.messages(MessageFailed, map[string]any{"Reason": c.status.Reason})
	} else {
		c.status.Progress = 1
		c.status.Step = ""
		c.status.Message = c.messages(MessageCompleted, map[string]any{
			"Duration": c.status.FinishedAt.Sub(c.status.StartedAt).Round(time.Millisecond).String(),
		})
	}
	c.persistLocked()
	c.publishPhaseLocked(PhaseRunning, c.status.Message)

	logrus.WithFields(logrus.Fields{
		"runId":     c.status.RunID,
		"phase":     phase,
		"progress":  c.status.Progress,
		"operation": "factory-reset",
	}).Info("factory reset finished")
}

// perform runs a step, converting a panic into an error so a broken step
// can never take the process down.
func perform(step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return step.Perform(context.Background())
}

// stepWeight returns the weight of s. Non-positive and non-finite weights
// count as 1.
func stepWeight(s Step) float64 {
	w := s.Weight()
	if w > 0 && !math.IsInf(w, 0) {
		return w
	}
	return 1
}

func (c *Controller) publishPhaseLocked(from Phase, msg string) {
	c.hub.Publish(events.ResetPhase, events.ResetPhaseEvent{
		RunID:   c.status.RunID,
		From:    string(from),
		To:      string(c.status.Phase),
		Message: msg,
		Ts:      time.Now().Unix(),
	})
}

func (c *Controller) publishProgressLocked() {
	c.hub.Publish(events.ResetProgress, events.ResetProgressEvent{
		RunID:    c.status.RunID,
		Progress: c.status.Progress,
		Step:     c.status.Step,
		Ts:       time.Now().Unix(),
	})
}

func (c *Controller) loadState() {
	b, err := os.ReadFile(c.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		logrus.WithError(err).Warn("failed to read reset state")
		return
	}
	var st Status
	if err := json.Unmarshal(b, &st); err != nil {
		logrus.WithError(err).Warn("failed to unmarshal reset state")
		return
	}
	// A run cannot survive a restart.
	if st.Phase == PhaseRunning {
		st.Phase = PhaseFailed
		st.Reason = "interrupted before completion"
		st.Message = c.messages(MessageFailed, map[string]any{"Reason": st.Reason})
		st.FinishedAt = time.Now()
		logrus.WithField("runId", st.RunID).Warn("previous factory reset was interrupted")
	}
	st.StepCount = len(c.steps)
	c.status = st
	c.persistLocked()
}

func (c *Controller) persistLocked() {
	if c.statePath == "" {
		return
	}
	b, err := json.MarshalIndent(c.status, "", "  ")
	if err != nil {
		logrus.WithError(err).Error("marshal reset state")
		return
	}
	if err := os.WriteFile(c.statePath, b, 0644); err != nil {
		logrus.WithError(err).Error("write reset state")
	}
}

// Handle tracks one run started by Controller.Start.
type Handle struct {
	runID string
	done  chan struct{}
	err   error
}

func (h *Handle) RunID() string { return h.runID }

// Done is closed once the run reached Completed or Failed.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the run's error once Done is closed, nil before.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the run finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handle) resolve(err error) {
	h.err = err
	close(h.done)
}
