package pipeline

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_MissingExecutable(t *testing.T) {
	_, _, err := ExecRunner{}.Run(context.Background(), "shaderc-test-no-such-tool", "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run [shaderc-test-no-such-tool --quiet]")
}

func TestExecRunner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ExecRunner{}.Run(ctx, "shaderc-test-no-such-tool")
	assert.Error(t, err)
}

func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestExecRunner_CapturesOutput(t *testing.T) {
	requireTool(t, "echo")

	stdout, stderr, err := ExecRunner{Timeout: 5 * time.Second}.Run(context.Background(), "echo", "-y", "-v 0", "a b")
	require.NoError(t, err)
	assert.Equal(t, "-y -v 0 a b\n", string(stdout))
	assert.Empty(t, stderr)
}

func TestExecRunner_Timeout(t *testing.T) {
	requireTool(t, "sleep")

	start := time.Now()
	_, _, err := ExecRunner{Timeout: 200 * time.Millisecond}.Run(context.Background(), "sleep", "5")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "failed to run [sleep 5]")
	assert.Less(t, elapsed, 3*time.Second)
}

func TestExecRunner_NoTimeoutByDefault(t *testing.T) {
	requireTool(t, "sleep")

	_, _, err := ExecRunner{}.Run(context.Background(), "sleep", "0.3")
	assert.NoError(t, err)
}

func TestToolOutput(t *testing.T) {
	assert.Equal(t, "", toolOutput(nil, nil))
	assert.Equal(t, "out\nERROR: x", toolOutput([]byte("out\n"), []byte("ERROR: x\n")))
	assert.Equal(t, "err", toolOutput(nil, []byte("  err \n")))
}

func TestPipelineError(t *testing.T) {
	err := &PipelineError{Pipeline: "basic", Stage: "shaders/basic.vert", Phase: PhaseCompile, Kind: ErrCompile, Err: assert.AnError}
	assert.Equal(t, "pipeline basic: shaders/basic.vert: compile failed: "+assert.AnError.Error(), err.Error())
	assert.ErrorIs(t, err, ErrCompile)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, PhaseCompile, phaseOf(err))

	agg := &PipelineError{Pipeline: "basic", Phase: PhaseAggregate, Kind: ErrBindingConflict}
	assert.Equal(t, "pipeline basic: conflicting binding declarations", agg.Error())
	assert.Equal(t, "", phaseOf(assert.AnError))
}
