package ports

import (
	"context"

	"gitdelayed/internal/domain"
)

// Git is the set of version-control primitives the executor relies on. Every
// method runs against the work tree at repo and returns git's own diagnostic
// text on failure.
type Git interface {
	Discover(ctx context.Context, dir string) (string, error)
	CurrentBranch(ctx context.Context, repo string) (string, error)
	HasChanges(ctx context.Context, repo string) (bool, error)
	NeedsPush(ctx context.Context, repo, branch string) (bool, error)
	Commit(ctx context.Context, repo, message string) (string, error)
	Push(ctx context.Context, repo, branch string) (string, error)
	Checkout(ctx context.Context, repo, branch string) error
	StashPush(ctx context.Context, repo, label string) error
	StashPop(ctx context.Context, repo string) error
}

type Outcome string

const (
	OutcomeCommitted     Outcome = "committed"
	OutcomePushed        Outcome = "pushed"
	OutcomeNothingToPush Outcome = "nothing to push"
)

// Result is the outcome of one execution. Warnings lists compensating steps
// that failed without changing the outcome.
type Result struct {
	Outcome  Outcome
	Output   string
	Warnings []string
}

type Executor interface {
	Execute(ctx context.Context, op domain.Operation) (Result, error)
}
