// Package ghcli drives the GitHub CLI (gh) to finalize releases.
package ghcli

import (
	"context"
	"fmt"
	"os"

	"github.com/gitguardian/ggrelease/internal/runner"
)

// Client runs gh commands from Dir.
type Client struct {
	exec runner.Executor
	dir  string
}

// NewClient returns a Client running gh in dir with exec.
func NewClient(exec runner.Executor, dir string) *Client {
	return &Client{exec: exec, dir: dir}
}

// EditRelease sets the title and notes of the release attached to tag and
// takes it out of draft.
func (c *Client) EditRelease(ctx context.Context, tag, title, notesFile string) error {
	info, err := os.Stat(notesFile)
	if err != nil {
		return fmt.Errorf("release notes: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("release notes: %s is a directory", notesFile)
	}

	return c.exec.Run(ctx, runner.Command{
		Name: "gh",
		Args: []string{
			"release", "edit", tag,
			"--title", title,
			"--notes-file", notesFile,
			"--draft=false",
		},
		Dir: c.dir,
	})
}
