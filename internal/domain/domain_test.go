package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperationFailed(t *testing.T) {
	at := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	op := Operation{ID: "a", ScheduledTime: at, State: StatePending}

	next := op.Failed(at.Add(10 * time.Minute))
	assert.Equal(t, 1, next.RetryCount)
	assert.Equal(t, StateFailing, next.State)
	assert.True(t, next.ScheduledTime.After(op.ScheduledTime))
	assert.Equal(t, 0, op.RetryCount, "original left untouched")

	assert.Equal(t, 2, next.Failed(at.Add(20*time.Minute)).RetryCount)
}

func TestOperationIsDue(t *testing.T) {
	at := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	op := Operation{ScheduledTime: at}

	assert.True(t, op.IsDue(at))
	assert.True(t, op.IsDue(at.Add(time.Second)))
	assert.False(t, op.IsDue(at.Add(-time.Second)))
}

func TestErrorClassification(t *testing.T) {
	execErr := fmt.Errorf("cycle: %w", &ExecutionError{Op: TypePush, Err: errors.New("rejected")})
	assert.True(t, IsRetryable(execErr))
	assert.Equal(t, "cycle: push failed: rejected", execErr.Error())

	assert.False(t, IsRetryable(ErrStorage))
	assert.False(t, IsRetryable(fmt.Errorf("%w: %w", ErrStorage, ErrLockTimeout)))

	assert.True(t, IsValidation(fmt.Errorf("%w: x", ErrOperationNotFound)))
	assert.True(t, IsValidation(fmt.Errorf("%w: %w", ErrInvalidTimeSpec, ErrTimeInPast)))
	assert.False(t, IsValidation(ErrCorruptStore))
}
