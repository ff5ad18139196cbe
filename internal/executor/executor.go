// Package executor runs a single scheduled operation against its repository.
package executor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"gitdelayed/internal/domain"
	"gitdelayed/internal/ports"
)

// StashLabel marks stashes created around a push.
const StashLabel = "git-delayed auto-stash"

var _ ports.Executor = (*Executor)(nil)

type Executor struct {
	Git ports.Git
}

func New(git ports.Git) *Executor {
	return &Executor{Git: git}
}

func (e *Executor) Execute(ctx context.Context, op domain.Operation) (ports.Result, error) {
	switch op.Type {
	case domain.TypeCommit:
		return e.commit(ctx, op)
	case domain.TypePush:
		return e.push(ctx, op)
	default:
		return ports.Result{}, fmt.Errorf("%w: unknown operation type %q", domain.ErrInvalidOperation, op.Type)
	}
}

func (e *Executor) commit(ctx context.Context, op domain.Operation) (ports.Result, error) {
	out, err := e.Git.Commit(ctx, op.RepositoryPath, op.Message)
	if err != nil {
		return ports.Result{}, &domain.ExecutionError{Op: domain.TypeCommit, Err: err}
	}
	return ports.Result{Outcome: ports.OutcomeCommitted, Output: out}, nil
}

// push pushes the captured branch, switching to it if needed. The original
// branch and any stashed changes are restored whatever the push outcome is;
// failures while restoring are reported as warnings only.
func (e *Executor) push(ctx context.Context, op domain.Operation) (ports.Result, error) {
	repo := op.RepositoryPath
	fail := func(err error) (ports.Result, error) {
		return ports.Result{}, &domain.ExecutionError{Op: domain.TypePush, Err: err}
	}

	current, err := e.Git.CurrentBranch(ctx, repo)
	if err != nil {
		return fail(fmt.Errorf("couldn't determine current branch: %w", err))
	}
	target := op.Branch
	if target == "" {
		target = current
	}

	needed, err := e.Git.NeedsPush(ctx, repo, target)
	if err != nil {
		return fail(fmt.Errorf("couldn't compare %s with its remote: %w", target, err))
	}
	if !needed {
		return ports.Result{Outcome: ports.OutcomeNothingToPush}, nil
	}

	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Ctx(ctx).Warn().Str("op", op.ID).Str("repo", repo).Msg(msg)
		warnings = append(warnings, msg)
	}

	dirty, err := e.Git.HasChanges(ctx, repo)
	if err != nil {
		return fail(fmt.Errorf("couldn't check working tree status: %w", err))
	}

	stashed := false
	if dirty {
		if err := e.Git.StashPush(ctx, repo, StashLabel); err != nil {
			warn("couldn't stash local changes: %v", err)
		} else {
			stashed = true
		}
	}

	switched := false
	if target != current {
		if err := e.Git.Checkout(ctx, repo, target); err != nil {
			if stashed {
				if popErr := e.Git.StashPop(ctx, repo); popErr != nil {
					warn("couldn't restore stashed changes: %v", popErr)
				}
			}
			return ports.Result{Warnings: warnings}, &domain.ExecutionError{
				Op:  domain.TypePush,
				Err: fmt.Errorf("couldn't switch to branch %s: %w", target, err),
			}
		}
		switched = true
	}

	out, pushErr := e.Git.Push(ctx, repo, target)

	if switched {
		if err := e.Git.Checkout(ctx, repo, current); err != nil {
			warn("couldn't switch back to branch %s: %v", current, err)
		}
	}
	if stashed {
		if err := e.Git.StashPop(ctx, repo); err != nil {
			warn("couldn't restore stashed changes: %v", err)
		}
	}

	if pushErr != nil {
		return ports.Result{Warnings: warnings}, &domain.ExecutionError{Op: domain.TypePush, Err: pushErr}
	}
	return ports.Result{Outcome: ports.OutcomePushed, Output: out, Warnings: warnings}, nil
}
