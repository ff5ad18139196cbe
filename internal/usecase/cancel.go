package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gitdelayed/internal/domain"
	"gitdelayed/internal/ports"
)

type Canceller struct {
	Store ports.Store
	Now   func() time.Time
}

// Cancel removes a pending operation and records the cancellation.
func (c Canceller) Cancel(ctx context.Context, id string) (domain.Operation, error) {
	op, err := c.Store.Get(ctx, id)
	if err != nil {
		return domain.Operation{}, err
	}

	removed, err := c.Store.Remove(ctx, id)
	if err != nil {
		return domain.Operation{}, err
	}
	if !removed {
		// picked up by the daemon between Get and Remove
		return domain.Operation{}, fmt.Errorf("%w: %s", domain.ErrOperationNotFound, id)
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	if err := c.Store.AppendLog(ctx, domain.NewLogEntry(op, domain.StatusCancelled, now())); err != nil {
		return op, err
	}
	log.Ctx(ctx).Debug().Str("id", id).Msg("operation cancelled")
	return op, nil
}
