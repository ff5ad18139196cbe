package ports

import (
	"context"
	"time"

	"gitdelayed/internal/domain"
)

// Store persists the operation queue and the execution log.
//
// Mutations are whole-collection read-modify-write cycles. Reads are not
// serialized against writers in other processes and may observe a snapshot
// that is already stale.
type Store interface {
	Add(ctx context.Context, op domain.Operation) error
	Remove(ctx context.Context, id string) (bool, error)
	Load(ctx context.Context) ([]domain.Operation, error)
	Get(ctx context.Context, id string) (domain.Operation, error)
	// Due returns operations scheduled at or before now, oldest first.
	Due(ctx context.Context, now time.Time) ([]domain.Operation, error)

	AppendLog(ctx context.Context, entry domain.LogEntry) error
	LoadLogs(ctx context.Context) ([]domain.LogEntry, error)
}

type Scheduler interface {
	// executes due operations until ctx is done
	Run(ctx context.Context) error
}
