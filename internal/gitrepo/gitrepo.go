// Package gitrepo wraps the release repository. Read-only inspection goes
// through go-git; anything that writes (commits, tags, pushes) and the
// working tree status go through the git binary so that user hooks,
// signing, credentials and global excludes apply.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/gitguardian/ggrelease/internal/runner"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD is not on a branch
var ErrDetachedHead = errors.New("HEAD is detached")

// Repository is a git working copy.
type Repository struct {
	repo *git.Repository
	root string
	exec runner.Executor
}

// Open opens the repository containing dir.
func Open(dir string, exec runner.Executor) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository at %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &Repository{repo: repo, root: wt.Filesystem.Root(), exec: exec}, nil
}

// Root returns the top-level directory of the working copy.
func (r *Repository) Root() string {
	return r.root
}

// CurrentBranch returns the short name of the checked out branch. It works on
// a branch without commits yet.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", ErrDetachedHead
	}
	return head.Target().Short(), nil
}

// HeadHash returns the commit hash HEAD resolves to.
func (r *Repository) HeadHash() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

func (r *Repository) git(args ...string) runner.Command {
	return runner.Command{Name: "git", Args: args, Dir: r.root}
}

// IsClean reports whether git sees no staged, unstaged or untracked changes.
func (r *Repository) IsClean(ctx context.Context) (bool, error) {
	out, err := r.exec.Output(ctx, r.git("status", "--porcelain"))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// AddAll stages every change in the working tree.
func (r *Repository) AddAll(ctx context.Context) error {
	return r.exec.Run(ctx, r.git("add", "."))
}

// Commit records the staged changes.
func (r *Repository) Commit(ctx context.Context, message string) error {
	return r.exec.Run(ctx, r.git("commit", "--quiet", "--message", message))
}

// CreateTag creates an annotated tag on HEAD.
func (r *Repository) CreateTag(ctx context.Context, tag, message string) error {
	return r.exec.Run(ctx, r.git("tag", "--annotate", "--message", message, tag))
}

// Push pushes refs to remote.
func (r *Repository) Push(ctx context.Context, remote string, refs ...string) error {
	args := append([]string{"push", remote}, refs...)
	return r.exec.Run(ctx, r.git(args...))
}

// RestorePath restores path from the index, undoing local deletions.
func (r *Repository) RestorePath(ctx context.Context, path string) error {
	return r.exec.Run(ctx, r.git("restore", path))
}
