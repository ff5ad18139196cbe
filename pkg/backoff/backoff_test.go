package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
)

func TestDelays(t *testing.T) {
	got := Delays(200*time.Millisecond, 3)
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}, got)

	assert.Empty(t, Delays(time.Millisecond, 1))
	assert.Empty(t, Delays(time.Millisecond, 0))
}

func TestGeometric_BoundsAttempts(t *testing.T) {
	calls := 0
	err := backoff.Retry(func() error {
		calls++
		return errors.New("busy")
	}, Geometric(context.Background(), time.Millisecond, 4))

	assert.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestGeometric_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := backoff.Retry(func() error {
		calls++
		cancel()
		return errors.New("busy")
	}, Geometric(ctx, time.Hour, 5))

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
