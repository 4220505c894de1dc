package events

import "encoding/json"

// Event name constants
const (
	ResetPhase    = "reset.phase"
	ResetProgress = "reset.progress"
	ReminderFired = "reminder.fired"
	TimerDone     = "timer.completed"
)

// Event is a generic event published by the daemon.
type Event struct {
	Name string          // event name
	Data json.RawMessage // Raw JSON payload
}

// ResetPhaseEvent is the typed payload for reset.phase.
type ResetPhaseEvent struct {
	RunID   string `json:"runId"`
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message,omitempty"`
	Ts      int64  `json:"ts"`
}

// ResetProgressEvent is the typed payload for reset.progress.
type ResetProgressEvent struct {
	RunID    string  `json:"runId"`
	Progress float64 `json:"progress"`
	Step     string  `json:"step,omitempty"`
	Ts       int64   `json:"ts"`
}

// ReminderEvent is the typed payload for reminder.fired.
type ReminderEvent struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Ts      int64  `json:"ts"`
}

// TimerEvent is the typed payload for timer.completed.
type TimerEvent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Ts       int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.ResetPhaseEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.From, payload.To)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
