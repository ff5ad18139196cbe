package filestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"

	"gitdelayed/internal/domain"
	bo "gitdelayed/pkg/backoff"
)

var errLockBusy = errors.New("lock held by another process")

// withLock runs fn while holding an exclusive advisory lock on path+".lock".
// The lock is tried a bounded number of times; running out of attempts fails
// with domain.ErrLockTimeout instead of blocking.
func (s *Store) withLock(ctx context.Context, path string, fn func() error) error {
	lock := flock.New(path + ".lock")

	err := backoff.Retry(func() error {
		locked, err := lock.TryLock()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: lock %s: %w", domain.ErrStorage, lock.Path(), err))
		}
		if !locked {
			log.Ctx(ctx).Debug().Str("lock", lock.Path()).Msg("lock busy, backing off")
			return errLockBusy
		}
		return nil
	}, bo.Geometric(ctx, s.lockBackoff, s.lockAttempts))
	if errors.Is(err, errLockBusy) {
		return fmt.Errorf("%w: %w: %s", domain.ErrStorage, domain.ErrLockTimeout, lock.Path())
	}
	if err != nil {
		return err
	}

	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("lock", lock.Path()).Msg("failed to release lock")
		}
	}()
	return fn()
}
