package runner

import (
	"context"
)

// MockExecutor records commands instead of running them. Tests set RunFn or
// OutputFn to script failures and output.
type MockExecutor struct {
	Commands []Command
	RunFn    func(cmd Command) error
	OutputFn func(cmd Command) (string, error)
}

// NewMockExecutor returns a MockExecutor where every command succeeds silently.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// Run implements Executor.Run
func (m *MockExecutor) Run(_ context.Context, cmd Command) error {
	m.Commands = append(m.Commands, cmd)
	if m.RunFn != nil {
		return m.RunFn(cmd)
	}
	return nil
}

// Output implements Executor.Output
func (m *MockExecutor) Output(_ context.Context, cmd Command) (string, error) {
	m.Commands = append(m.Commands, cmd)
	if m.OutputFn != nil {
		return m.OutputFn(cmd)
	}
	return "", nil
}

// Lines returns the recorded commands as strings, in order.
func (m *MockExecutor) Lines() []string {
	lines := make([]string, len(m.Commands))
	for i, c := range m.Commands {
		lines[i] = c.String()
	}
	return lines
}
