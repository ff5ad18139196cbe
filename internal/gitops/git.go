// Package gitops runs the git command line on behalf of the executor.
package gitops

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"gitdelayed/internal/ports"
)

// Remote is the remote that pushes go to and that tracking refs are read from.
const Remote = "origin"

var _ ports.Git = (*CLI)(nil)

// CommandError carries git's own diagnostics for a failed invocation.
type CommandError struct {
	Args   []string
	Stdout string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *CommandError) Unwrap() error { return e.Err }

// CLI implements ports.Git with the git binary found on PATH.
type CLI struct {
	Binary string
}

func New() *CLI {
	return &CLI{Binary: "git"}
}

func (g *CLI) run(ctx context.Context, dir string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, g.Binary, args...) //nolint:gosec // args are built here
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Ctx(ctx).Debug().Str("dir", dir).Strs("args", args).Msg("git")
	if err := cmd.Run(); err != nil {
		return stdout.String(), stderr.String(), &CommandError{
			Args:   args,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return stdout.String(), stderr.String(), nil
}

// Discover returns the root of the work tree containing dir.
func (g *CLI) Discover(ctx context.Context, dir string) (string, error) {
	out, _, err := g.run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not in a git repo, run this from inside a git repository: %w", err)
	}
	root := strings.TrimSpace(out)
	if root == "" {
		return "", fmt.Errorf("repo has no working directory: %s", dir)
	}
	return root, nil
}

func (g *CLI) CurrentBranch(ctx context.Context, repo string) (string, error) {
	out, _, err := g.run(ctx, repo, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HasChanges reports uncommitted changes, untracked files included.
func (g *CLI) HasChanges(ctx context.Context, repo string) (bool, error) {
	out, _, err := g.run(ctx, repo, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// NeedsPush reports whether branch has commits its remote-tracking ref lacks.
// A branch that was never pushed always needs a push.
func (g *CLI) NeedsPush(ctx context.Context, repo, branch string) (bool, error) {
	tracking := Remote + "/" + branch
	if _, _, err := g.run(ctx, repo, "rev-parse", "--verify", "--quiet", "refs/remotes/"+tracking); err != nil {
		return true, nil
	}

	out, _, err := g.run(ctx, repo, "rev-list", "--count", tracking+".."+branch)
	if err != nil {
		return false, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return false, fmt.Errorf("unexpected rev-list output %q: %w", out, err)
	}
	return n > 0, nil
}

func (g *CLI) Commit(ctx context.Context, repo, message string) (string, error) {
	out, _, err := g.run(ctx, repo, "commit", "-m", message)
	return out, err
}

func (g *CLI) Push(ctx context.Context, repo, branch string) (string, error) {
	stdout, stderr, err := g.run(ctx, repo, "push", Remote, branch)
	return stdout + stderr, err
}

func (g *CLI) Checkout(ctx context.Context, repo, branch string) error {
	_, _, err := g.run(ctx, repo, "checkout", branch)
	return err
}

func (g *CLI) StashPush(ctx context.Context, repo, label string) error {
	_, _, err := g.run(ctx, repo, "stash", "push", "-u", "-m", label)
	return err
}

func (g *CLI) StashPop(ctx context.Context, repo string) error {
	_, _, err := g.run(ctx, repo, "stash", "pop")
	return err
}
