// Package backoff builds the retry policies used around advisory file locks.
package backoff

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Geometric returns a policy that allows at most attempts tries in total,
// waiting base, 2*base, 4*base, ... between them. There is no jitter and no
// elapsed-time cap; the attempt count is the only bound.
func Geometric(ctx context.Context, base time.Duration, attempts int) backoff.BackOff {
	if attempts < 1 {
		attempts = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = base << uint(attempts)
	bo.MaxElapsedTime = 0
	bo.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx)
}

// Delays lists the waits a Geometric policy would produce, for display and tests.
func Delays(base time.Duration, attempts int) []time.Duration {
	var out []time.Duration
	bo := Geometric(context.Background(), base, attempts)
	for {
		d := bo.NextBackOff()
		if d == backoff.Stop {
			return out
		}
		out = append(out, d)
	}
}
