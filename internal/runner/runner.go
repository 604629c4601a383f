// Package runner executes external programs (git, gh, the test runner) and
// turns non-zero exits into errors carrying the failed command line.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/gitguardian/ggrelease/internal/logger"
)

// ErrCommandFailed is wrapped by every CommandError
var ErrCommandFailed = errors.New("command failed")

// Command describes a single process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env replaces the process environment when non-nil.
	Env []string
}

// New is a shorthand for Command{Name: name, Args: args}.
func New(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// CommandError reports a command that could not be started or exited non-zero.
type CommandError struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%q failed", strings.TrimSpace(e.Name+" "+strings.Join(e.Args, " ")))
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, stderr)
	}
	return msg
}

func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}

// Executor runs commands. Both methods fail on a non-zero exit code.
type Executor interface {
	// Run runs cmd with its output attached to the executor's streams.
	Run(ctx context.Context, cmd Command) error

	// Output runs cmd and returns what it wrote to stdout.
	Output(ctx context.Context, cmd Command) (string, error)
}

// ExecExecutor is the os/exec implementation of Executor.
type ExecExecutor struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecExecutor returns an executor wired to the process' stdout and stderr.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (e *ExecExecutor) build(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if c.Env != nil {
		cmd.Env = c.Env
	}
	logger.Log.Debug("exec", "cmd", c.String(), "dir", c.Dir)
	return cmd
}

// Run implements Executor.Run
func (e *ExecExecutor) Run(ctx context.Context, c Command) error {
	cmd := e.build(ctx, c)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return &CommandError{Name: c.Name, Args: c.Args, Err: err}
	}
	return nil
}

// Output implements Executor.Output
func (e *ExecExecutor) Output(ctx context.Context, c Command) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := e.build(ctx, c)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &CommandError{Name: c.Name, Args: c.Args, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

// EnvWithout returns env minus any entry for the given keys.
func EnvWithout(env []string, keys ...string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		name, _, _ := strings.Cut(kv, "=")
		drop := false
		for _, k := range keys {
			if name == k {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, kv)
		}
	}
	return out
}
