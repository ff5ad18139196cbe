package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"gitdelayed/internal/domain"
	"gitdelayed/internal/ports"
	"gitdelayed/internal/timespec"
)

// DefaultPushMessage is stored as the message of push operations.
const DefaultPushMessage = "push"

// Request describes an operation to schedule from a directory inside a repo.
type Request struct {
	Dir     string
	Type    domain.OperationType
	Message string
	When    string
}

type Enqueuer struct {
	Store ports.Store
	Git   ports.Git
	Now   func() time.Time
}

func (e Enqueuer) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Schedule validates req, resolves its repository and time, and queues it.
func (e Enqueuer) Schedule(ctx context.Context, req Request) (domain.Operation, error) {
	if !req.Type.Valid() {
		return domain.Operation{}, fmt.Errorf("%w: unknown operation type %q", domain.ErrInvalidOperation, req.Type)
	}
	msg := strings.TrimSpace(req.Message)
	switch req.Type {
	case domain.TypeCommit:
		if msg == "" {
			return domain.Operation{}, fmt.Errorf("%w: commit requires a message", domain.ErrInvalidOperation)
		}
	case domain.TypePush:
		if msg == "" {
			msg = DefaultPushMessage
		}
	}

	now := e.now()
	at, err := timespec.Parse(req.When, now)
	if err != nil {
		return domain.Operation{}, err
	}

	repo, err := e.Git.Discover(ctx, req.Dir)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("%w: %w", domain.ErrInvalidOperation, err)
	}

	op := domain.Operation{
		ID:             uuid.NewString(),
		RepositoryPath: repo,
		Type:           req.Type,
		Message:        msg,
		ScheduledTime:  at,
		CreatedAt:      now,
		State:          domain.StatePending,
	}
	if op.Type == domain.TypePush {
		branch, err := e.Git.CurrentBranch(ctx, repo)
		if err != nil {
			return domain.Operation{}, fmt.Errorf("%w: couldn't determine current branch: %w", domain.ErrInvalidOperation, err)
		}
		op.Branch = branch
	}

	if err := e.Store.Add(ctx, op); err != nil {
		return domain.Operation{}, err
	}
	log.Ctx(ctx).Debug().
		Str("id", op.ID).
		Str("type", string(op.Type)).
		Str("repo", op.RepositoryPath).
		Time("at", op.ScheduledTime).
		Msg("operation scheduled")
	return op, nil
}
