package calculator

import "errors"

var (
	// ErrPreconditionViolation is returned when inputs break a documented
	// precondition, e.g. an original gravity not above the final gravity.
	ErrPreconditionViolation = errors.New("precondition violation")

	// ErrDivisionByZero is returned instead of producing NaN or Inf.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidInput is returned when a raw reading cannot be parsed.
	ErrInvalidInput = errors.New("invalid input")
)
