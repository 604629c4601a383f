package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitguardian/ggrelease/internal/bump"
	"github.com/gitguardian/ggrelease/internal/config"
	"github.com/gitguardian/ggrelease/internal/release"
	"github.com/gitguardian/ggrelease/internal/runner"
	"github.com/gitguardian/ggrelease/internal/version"
)

const testConfigFile = `
substitutions:
  - path: pkg/__init__.py
    pattern: '^__version__ = .*$'
    replacement: '__version__ = "{version}"'
test_suites:
  - [pytest, tests/unit]
`

// setupRepo creates a repository on branch with a version marker, chdirs
// into it and swaps the executor for a mock.
func setupRepo(t *testing.T, branch string) (string, *runner.MockExecutor) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(branch)},
	})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "__init__.py"), []byte("__version__ = \"0.1.0\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "release.yaml"), []byte(testConfigFile), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(".")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Release Bot", Email: "bot@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(config.EnvVersion, "0.2.0")
	t.Setenv(config.EnvAPIKey, "api-key")
	t.Setenv(config.EnvReleaseBranch, "")

	mock := runner.NewMockExecutor()
	previous := newExecutor
	newExecutor = func() runner.Executor { return mock }
	t.Cleanup(func() { newExecutor = previous })

	return dir, mock
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	allowDirty, verbose, configFile, rel = false, false, "release.yaml", nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	return out.String(), err
}

func markerContent(t *testing.T, dir string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, "pkg", "__init__.py"))
	require.NoError(t, err)
	return string(b)
}

func TestPrepareTagCommand(t *testing.T) {
	dir, mock := setupRepo(t, "main")

	out, err := execute(t, "prepare-tag")
	require.NoError(t, err)

	assert.Equal(t, "__version__ = \"0.2.0\"\n", markerContent(t, dir))
	assert.Equal(t, []string{
		"git status --porcelain",
		"git add .",
		"git commit --quiet --message chore(release): 0.2.0",
		"git tag --annotate --message chore(release): 0.2.0 v0.2.0",
	}, mock.Lines())
	assert.Contains(t, out, "Created tag v0.2.0")
	assert.Contains(t, out, "prepare-tag: done")
}

func TestInvalidVersionFailsBeforeAnyMutation(t *testing.T) {
	dir, mock := setupRepo(t, "main")
	t.Setenv(config.EnvVersion, "0.2")

	_, err := execute(t, "prepare-tag")
	require.ErrorIs(t, err, version.ErrInvalidVersion)

	assert.Empty(t, mock.Commands)
	assert.Equal(t, "__version__ = \"0.1.0\"\n", markerContent(t, dir))
}

func TestMissingAPIKey(t *testing.T) {
	_, mock := setupRepo(t, "main")
	t.Setenv(config.EnvAPIKey, "")

	_, err := execute(t, "push-tag")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Empty(t, mock.Commands)
}

func TestWrongBranch(t *testing.T) {
	_, mock := setupRepo(t, "feature")

	_, err := execute(t, "push-tag")
	require.ErrorIs(t, err, release.ErrWrongBranch)
	assert.Empty(t, mock.Commands)
}

func TestReleaseBranchFromEnv(t *testing.T) {
	_, mock := setupRepo(t, "stable")
	t.Setenv(config.EnvReleaseBranch, "stable")

	_, err := execute(t, "push-tag")
	require.NoError(t, err)
	assert.Equal(t, []string{"git status --porcelain", "git push origin HEAD v0.2.0"}, mock.Lines())
}

func TestDirtyTreeAborts(t *testing.T) {
	dir, mock := setupRepo(t, "main")
	mock.OutputFn = func(runner.Command) (string, error) { return "?? notes.md\n", nil }

	_, err := execute(t, "prepare-tag")
	require.ErrorIs(t, err, release.ErrDirtyTree)

	assert.Equal(t, []string{"git status --porcelain"}, mock.Lines())
	assert.Equal(t, "__version__ = \"0.1.0\"\n", markerContent(t, dir))
}

func TestAllowDirty(t *testing.T) {
	_, mock := setupRepo(t, "main")
	mock.OutputFn = func(runner.Command) (string, error) { return "?? notes.md\n", nil }

	_, err := execute(t, "--allow-dirty", "push-tag")
	require.NoError(t, err)
	assert.Equal(t, []string{"git push origin HEAD v0.2.0"}, mock.Lines())
}

func TestPrepareTagMarkerMismatch(t *testing.T) {
	dir, mock := setupRepo(t, "main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "__init__.py"), []byte("__version__ = \"1\"\n__version__ = \"2\"\n"), 0o644))

	_, err := execute(t, "--allow-dirty", "prepare-tag")
	require.ErrorIs(t, err, bump.ErrNotMatchedOnce)
	assert.Empty(t, mock.Commands)
}

func TestRunTestsCommand(t *testing.T) {
	_, mock := setupRepo(t, "main")

	_, err := execute(t, "run-tests")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"git status --porcelain",
		"pytest tests/unit",
		"git restore tests/unit/cassettes",
	}, mock.Lines())
}

func TestRunTestsCommandFailure(t *testing.T) {
	_, mock := setupRepo(t, "main")
	mock.RunFn = func(c runner.Command) error {
		if c.Name == "pytest" {
			return &runner.CommandError{Name: c.Name, Args: c.Args, Err: errors.New("exit status 1")}
		}
		return nil
	}

	out, err := execute(t, "run-tests")
	require.ErrorIs(t, err, runner.ErrCommandFailed)
	assert.NotContains(t, out, "done")
	assert.Contains(t, mock.Lines(), "git restore tests/unit/cassettes")
}

func TestPublishGHReleaseCommand(t *testing.T) {
	dir, mock := setupRepo(t, "main")
	notes := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(notes, []byte("- fixed things\n"), 0o644))

	_, err := execute(t, "--allow-dirty", "publish-gh-release", "notes.md")
	require.NoError(t, err)

	require.Len(t, mock.Commands, 1)
	gh := mock.Commands[0]
	assert.Equal(t, "gh", gh.Name)
	assert.Equal(t, []string{"release", "edit", "v0.2.0", "--title", "0.2.0", "--notes-file", notes, "--draft=false"}, gh.Args)
}

func TestPublishGHReleaseRequiresNotesFile(t *testing.T) {
	_, mock := setupRepo(t, "main")

	_, err := execute(t, "publish-gh-release")
	require.Error(t, err)
	assert.Empty(t, mock.Commands)
}
