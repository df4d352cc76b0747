package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// CommandRunner runs an external tool and captures its output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs tools as child processes with an argument vector, never
// through a shell.
type ExecRunner struct {
	// Timeout bounds each invocation; zero waits indefinitely.
	Timeout time.Duration
}

// Run implements CommandRunner.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w (%w)", err, ctx.Err())
		}
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("failed to run %v: %w", cmd.Args, err)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

// toolOutput joins captured output for error messages.
func toolOutput(stdout, stderr []byte) string {
	out := bytes.TrimSpace(append(append([]byte{}, stdout...), stderr...))
	return string(out)
}
