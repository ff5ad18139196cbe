package domain

import (
	"errors"
	"fmt"
)

// Parse errors. Never retried.
var (
	ErrInvalidTimeSpec = errors.New("invalid time specification")
	ErrTimeInPast      = errors.New("time is in the past")
)

// Validation errors.
var (
	ErrOperationNotFound = errors.New("operation not found")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrDaemonRunning     = errors.New("daemon already running")
	ErrDaemonNotRunning  = errors.New("daemon not running")
)

// Storage errors. Surfaced to the caller, never retried by the store.
var (
	ErrStorage      = errors.New("storage error")
	ErrLockTimeout  = errors.New("couldn't acquire file lock")
	ErrCorruptStore = errors.New("malformed persisted data")
)

// ExecutionError is a failed commit or push. It is the only error kind the
// daemon recovers from by re-queueing the operation.
type ExecutionError struct {
	Op  OperationType
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsRetryable reports whether err should put the operation back in the queue.
func IsRetryable(err error) bool {
	var execErr *ExecutionError
	return errors.As(err, &execErr)
}

// IsValidation reports whether err is a user-facing parse or validation error.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidTimeSpec, ErrOperationNotFound, ErrInvalidOperation,
		ErrDaemonRunning, ErrDaemonNotRunning,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
