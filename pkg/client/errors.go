package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDaemonNotRunning is returned when the daemon is not running
	ErrDaemonNotRunning = errors.New("daemon not running")

	// ErrPermissionDenied is returned when the user does not have permission to perform the requested action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when 404 is returned from the daemon
	ErrNotFound = errors.New("404 not found")

	// ErrConflict is returned when 409 is returned from the daemon
	ErrConflict = errors.New("409 conflict")
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

// Message returns the error text sent by the daemon.
func (e *StatusError) Message() string {
	var s string
	if err := json.Unmarshal([]byte(e.Body), &s); err == nil {
		return s
	}
	return e.Body
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("got %d: %s", e.Code, e.Message())
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrConflict:
		return e.Code == http.StatusConflict
	}
	return false
}
