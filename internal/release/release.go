// Package release sequences the steps of a release: preflight checks, test
// runs, version bump, commit, tag, push and GitHub release publication.
// Every step stops at the first failure; nothing is retried.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gitguardian/ggrelease/internal/bump"
	"github.com/gitguardian/ggrelease/internal/config"
	"github.com/gitguardian/ggrelease/internal/logger"
	"github.com/gitguardian/ggrelease/internal/runner"
	"github.com/gitguardian/ggrelease/internal/version"
)

var (
	// ErrWrongBranch means HEAD is not on the release branch
	ErrWrongBranch = errors.New("not on the release branch")

	// ErrDirtyTree means the working tree has uncommitted changes
	ErrDirtyTree = errors.New("working tree is not clean")
)

// Repository is the subset of git operations a release needs.
type Repository interface {
	Root() string
	CurrentBranch() (string, error)
	IsClean(ctx context.Context) (bool, error)
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	CreateTag(ctx context.Context, tag, message string) error
	Push(ctx context.Context, remote string, refs ...string) error
	RestorePath(ctx context.Context, path string) error
}

// Publisher finalizes a release on the hosting platform.
type Publisher interface {
	EditRelease(ctx context.Context, tag, title, notesFile string) error
}

// Releaser runs the release steps for one version.
type Releaser struct {
	cfg     *config.Config
	version version.Version
	repo    Repository
	gh      Publisher
	exec    runner.Executor
	out     io.Writer
}

// New validates cfg and returns a Releaser. Progress lines go to out.
func New(cfg *config.Config, repo Repository, gh Publisher, exec runner.Executor, out io.Writer) (*Releaser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Releaser{
		cfg:     cfg,
		version: cfg.ReleaseVersion(),
		repo:    repo,
		gh:      gh,
		exec:    exec,
		out:     out,
	}, nil
}

// Version returns the version being released.
func (r *Releaser) Version() version.Version {
	return r.version
}

// Preflight checks that HEAD is on the release branch and, unless
// allowDirty is set, that the working tree is clean.
func (r *Releaser) Preflight(ctx context.Context, allowDirty bool) error {
	branch, err := r.repo.CurrentBranch()
	if err != nil {
		return fmt.Errorf("cannot determine current branch: %w", err)
	}
	if branch != r.cfg.ReleaseBranch {
		return fmt.Errorf("%w: currently on %q, releases are made from %q", ErrWrongBranch, branch, r.cfg.ReleaseBranch)
	}

	if allowDirty {
		logger.Log.Warn("skipping working tree check", "reason", "--allow-dirty")
		return nil
	}
	clean, err := r.repo.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return fmt.Errorf("%w: commit or stash your changes, or use --allow-dirty", ErrDirtyTree)
	}
	return nil
}

func (r *Releaser) testEnv() []string {
	env := runner.EnvWithout(os.Environ(), "CI", config.EnvAPIKey)
	return append(env, config.EnvAPIKey+"="+r.cfg.APIKey)
}

// RunTests runs the first test suite without the recorded cassettes, so that
// requests hit the real API, then restores the cassettes and runs the
// remaining suites. CI is removed from the environment so missing cassettes
// get recorded instead of failing the run.
func (r *Releaser) RunTests(ctx context.Context) error {
	env := r.testEnv()
	root := r.repo.Root()

	for i, suite := range r.cfg.TestSuites {
		cmd := runner.Command{Name: suite[0], Args: suite[1:], Dir: root, Env: env}

		if i > 0 || r.cfg.CassettesDir == "" {
			fmt.Fprintf(r.out, "Running %s\n", cmd)
			if err := r.exec.Run(ctx, cmd); err != nil {
				return err
			}
			continue
		}

		if err := r.runWithoutCassettes(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Releaser) runWithoutCassettes(ctx context.Context, cmd runner.Command) error {
	cassettes := filepath.Join(r.repo.Root(), r.cfg.CassettesDir)
	fmt.Fprintf(r.out, "Running %s without cassettes\n", cmd)
	if err := os.RemoveAll(cassettes); err != nil {
		return fmt.Errorf("remove cassettes: %w", err)
	}

	testErr := r.exec.Run(ctx, cmd)
	restoreErr := r.repo.RestorePath(ctx, r.cfg.CassettesDir)

	if testErr != nil {
		if restoreErr != nil {
			logger.Log.Error("failed to restore cassettes", "dir", r.cfg.CassettesDir, "err", restoreErr)
		}
		return testErr
	}
	if restoreErr != nil {
		return fmt.Errorf("restore cassettes: %w", restoreErr)
	}
	return nil
}

func (r *Releaser) commitMessage() string {
	return bump.Expand(r.cfg.CommitMessage, r.version)
}

// PrepareTag updates the version markers, commits them and creates an
// annotated tag. It stops before committing if any marker does not match
// exactly once.
func (r *Releaser) PrepareTag(ctx context.Context) error {
	fmt.Fprintf(r.out, "Updating version to %s\n", r.version)

	subs := make([]bump.Substitution, len(r.cfg.Substitutions))
	for i, s := range r.cfg.Substitutions {
		if !filepath.IsAbs(s.Path) {
			s.Path = filepath.Join(r.repo.Root(), s.Path)
		}
		subs[i] = s
	}
	if err := bump.Apply(subs, r.version); err != nil {
		return err
	}

	message := r.commitMessage()
	if err := r.repo.AddAll(ctx); err != nil {
		return err
	}
	if err := r.repo.Commit(ctx, message); err != nil {
		return err
	}
	if err := r.repo.CreateTag(ctx, r.version.Tag(), message); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Created tag %s\n", r.version.Tag())
	return nil
}

// PushTag pushes HEAD and the release tag.
func (r *Releaser) PushTag(ctx context.Context) error {
	fmt.Fprintf(r.out, "Pushing %s to %s\n", r.version.Tag(), r.cfg.Remote)
	return r.repo.Push(ctx, r.cfg.Remote, "HEAD", r.version.Tag())
}

// PublishGHRelease sets the release notes of the tag's GitHub release and
// publishes it.
func (r *Releaser) PublishGHRelease(ctx context.Context, notesFile string) error {
	abs, err := filepath.Abs(notesFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Publishing GitHub release %s\n", r.version.Tag())
	return r.gh.EditRelease(ctx, r.version.Tag(), r.version.String(), abs)
}
