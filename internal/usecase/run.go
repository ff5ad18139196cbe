package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gitdelayed/internal/domain"
	"gitdelayed/internal/ports"
)

const (
	DefaultPollInterval = 60 * time.Second
	DefaultRetryDelay   = 10 * time.Minute
)

var _ ports.Scheduler = (*Runner)(nil)

// Runner is the daemon loop. It polls the store for due operations, executes
// them one at a time and reconciles the queue and the log with the outcome.
type Runner struct {
	Store      ports.Store
	Executor   ports.Executor
	Interval   time.Duration
	RetryDelay time.Duration
	Now        func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run executes a cycle right away and then once per interval until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	log.Ctx(ctx).Info().Dur("interval", interval).Msg("scheduler started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.RunOnce(ctx)

		select {
		case <-ctx.Done():
			log.Ctx(ctx).Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce processes every operation due now and returns how many were
// executed. Store failures are logged and never stop the cycle.
func (r *Runner) RunOnce(ctx context.Context) int {
	due, err := r.Store.Due(ctx, r.now())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("couldn't load scheduled operations")
		return 0
	}

	executed := 0
	for _, op := range due {
		if ctx.Err() != nil {
			break
		}
		if r.process(ctx, op) {
			executed++
		}
	}
	return executed
}

// process runs one operation from dequeue to log entry. Once started it runs
// to completion, including restore steps, even if ctx is cancelled.
func (r *Runner) process(ctx context.Context, op domain.Operation) bool {
	ctx = context.WithoutCancel(ctx)
	logger := log.Ctx(ctx).With().Str("id", op.ID).Str("type", string(op.Type)).Str("repo", op.RepositoryPath).Logger()

	removed, err := r.Store.Remove(ctx, op.ID)
	if err != nil {
		logger.Error().Err(err).Msg("couldn't dequeue operation")
		return false
	}
	if !removed {
		logger.Info().Msg("operation no longer queued, skipping")
		return false
	}

	logger.Info().Int("retry", op.RetryCount).Msg("executing operation")
	res, execErr := r.Executor.Execute(ctx, op)
	for _, w := range res.Warnings {
		logger.Warn().Msg(w)
	}

	entry := r.reconcile(ctx, &logger, op, res, execErr)
	entry.Warnings = res.Warnings
	if err := r.Store.AppendLog(ctx, entry); err != nil {
		logger.Error().Err(err).Msg("couldn't append log entry")
	}
	return true
}

// reconcile re-queues a retryable failure and returns the log entry that
// describes the attempt.
func (r *Runner) reconcile(ctx context.Context, logger *zerolog.Logger, op domain.Operation, res ports.Result, execErr error) domain.LogEntry {
	now := r.now()

	if execErr == nil {
		if res.Outcome == ports.OutcomeNothingToPush {
			logger.Info().Msg("nothing to push")
			entry := domain.NewLogEntry(op, domain.StatusSkipped, now)
			entry.ErrorMessage = string(ports.OutcomeNothingToPush)
			return entry
		}
		logger.Info().Str("outcome", string(res.Outcome)).Msg("operation succeeded")
		return domain.NewLogEntry(op, domain.StatusSuccess, now)
	}

	if !domain.IsRetryable(execErr) {
		logger.Error().Err(execErr).Msg("operation failed permanently")
		entry := domain.NewLogEntry(op, domain.StatusFailure, now)
		entry.ErrorMessage = execErr.Error()
		return entry
	}

	delay := r.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	next := op.Failed(now.Add(delay))
	if err := r.Store.Add(ctx, next); err != nil {
		logger.Error().Err(err).Msg("couldn't re-queue failed operation")
	}
	logger.Warn().Err(execErr).Int("retry", next.RetryCount).Time("next", next.ScheduledTime).Msg("operation failed, retrying later")

	entry := domain.NewLogEntry(next, domain.StatusFailure, now)
	entry.ScheduledTime = op.ScheduledTime
	entry.ErrorMessage = fmt.Sprintf("retry %d: %s", next.RetryCount, diagnostic(execErr))
	return entry
}

// diagnostic unwraps the executor's error down to the primitive's own text.
func diagnostic(err error) string {
	var execErr *domain.ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Err.Error()
	}
	return err.Error()
}
