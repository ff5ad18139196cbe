package gitops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}

// newRepo creates a work tree with one commit on main and a bare origin.
func newRepo(t *testing.T) (repo, remote string) {
	t.Helper()
	requireGit(t)

	root := t.TempDir()
	remote = filepath.Join(root, "origin.git")
	repo = filepath.Join(root, "work")
	require.NoError(t, os.MkdirAll(repo, 0o755))

	gitCmd(t, root, "init", "--bare", "-q", remote)
	gitCmd(t, repo, "init", "-q", "-b", "main")
	gitCmd(t, repo, "config", "user.name", "Test")
	gitCmd(t, repo, "config", "user.email", "test@example.com")
	gitCmd(t, repo, "config", "commit.gpgsign", "false")
	gitCmd(t, repo, "remote", "add", "origin", remote)

	require.NoError(t, os.WriteFile(filepath.Join(repo, "README"), []byte("hello\n"), 0o644))
	gitCmd(t, repo, "add", "README")
	gitCmd(t, repo, "commit", "-q", "-m", "initial")
	return repo, remote
}

func TestDiscover(t *testing.T) {
	repo, _ := newRepo(t)
	g := New()
	ctx := context.Background()

	sub := filepath.Join(repo, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	root, err := g.Discover(ctx, sub)
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(repo)
	got, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, want, got)

	_, err = g.Discover(ctx, t.TempDir())
	assert.ErrorContains(t, err, "not in a git repo")
}

func TestBranchAndChanges(t *testing.T) {
	repo, _ := newRepo(t)
	g := New()
	ctx := context.Background()

	branch, err := g.CurrentBranch(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	dirty, err := g.HasChanges(ctx, repo)
	require.NoError(t, err)
	assert.False(t, dirty)

	require.NoError(t, os.WriteFile(filepath.Join(repo, "untracked"), []byte("x"), 0o644))
	dirty, err = g.HasChanges(ctx, repo)
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestCommit(t *testing.T) {
	repo, _ := newRepo(t)
	g := New()
	ctx := context.Background()

	_, err := g.Commit(ctx, repo, "empty")
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, err.Error(), "git commit")

	require.NoError(t, os.WriteFile(filepath.Join(repo, "README"), []byte("changed\n"), 0o644))
	gitCmd(t, repo, "add", "README")
	out, err := g.Commit(ctx, repo, "update readme")
	require.NoError(t, err)
	assert.Contains(t, out, "update readme")
}

func TestNeedsPushAndPush(t *testing.T) {
	repo, remote := newRepo(t)
	g := New()
	ctx := context.Background()

	needed, err := g.NeedsPush(ctx, repo, "main")
	require.NoError(t, err)
	assert.True(t, needed, "never pushed")

	_, err = g.Push(ctx, repo, "main")
	require.NoError(t, err)
	gitCmd(t, remote, "rev-parse", "--verify", "refs/heads/main")

	needed, err = g.NeedsPush(ctx, repo, "main")
	require.NoError(t, err)
	assert.False(t, needed)

	gitCmd(t, repo, "commit", "-q", "--allow-empty", "-m", "ahead")
	needed, err = g.NeedsPush(ctx, repo, "main")
	require.NoError(t, err)
	assert.True(t, needed)
}

func TestStashAndCheckout(t *testing.T) {
	repo, _ := newRepo(t)
	g := New()
	ctx := context.Background()

	gitCmd(t, repo, "branch", "feature")
	require.NoError(t, os.WriteFile(filepath.Join(repo, "wip.txt"), []byte("wip"), 0o644))

	require.NoError(t, g.StashPush(ctx, repo, "test stash"))
	assert.Contains(t, gitCmd(t, repo, "stash", "list"), "test stash")
	_, err := os.Stat(filepath.Join(repo, "wip.txt"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, g.Checkout(ctx, repo, "feature"))
	branch, err := g.CurrentBranch(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, "feature", branch)

	require.NoError(t, g.Checkout(ctx, repo, "main"))
	require.NoError(t, g.StashPop(ctx, repo))
	_, err = os.Stat(filepath.Join(repo, "wip.txt"))
	assert.NoError(t, err)

	assert.Error(t, g.Checkout(ctx, repo, "missing-branch"))
}
