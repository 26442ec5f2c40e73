package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is re-executed by the launcher tests as the step
// process. It prints the step ID and exits with the requested code.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("BIZOPS_HELPER_PROCESS") != "1" {
		return
	}
	code := 0
	args := os.Args
	for i, arg := range args {
		if arg == "--" && i+1 < len(args) {
			code, _ = strconv.Atoi(args[i+1])
			break
		}
	}
	fmt.Fprintf(os.Stdout, "step=%s", os.Getenv(StepEnvVar))
	os.Exit(code)
}

func helperLauncher(stdout *bytes.Buffer) *ExecLauncher {
	return &ExecLauncher{
		Path:   os.Args[0],
		Env:    []string{"BIZOPS_HELPER_PROCESS=1"},
		Stdout: stdout,
		Stderr: &bytes.Buffer{},
	}
}

func helperStep(id string, code int) Step {
	return Step{ID: id, Args: []string{"-test.run=TestHelperProcess", "--", strconv.Itoa(code)}}
}

func TestExecLauncherSuccess(t *testing.T) {
	var out bytes.Buffer
	outcome := helperLauncher(&out).Launch(context.Background(), helperStep("upload-records", 0))

	assert.True(t, outcome.Success)
	assert.Zero(t, outcome.ExitCode)
	assert.Contains(t, out.String(), "step=upload-records")
}

func TestExecLauncherNonZeroExit(t *testing.T) {
	var out bytes.Buffer
	outcome := helperLauncher(&out).Launch(context.Background(), helperStep("upload-assets", 3))

	assert.False(t, outcome.Success)
	assert.Equal(t, 3, outcome.ExitCode)
	assert.Contains(t, outcome.ErrorMessage, "upload-assets")
}

func TestExecLauncherSpawnFailure(t *testing.T) {
	launcher := &ExecLauncher{Path: filepath.Join(t.TempDir(), "does-not-exist")}
	outcome := launcher.Launch(context.Background(), Step{ID: "upload-records"})

	assert.False(t, outcome.Success)
	assert.Equal(t, -1, outcome.ExitCode)
	assert.Contains(t, outcome.ErrorMessage, "failed to start")
}

func TestRunnerWithExecLauncher(t *testing.T) {
	var out bytes.Buffer
	steps := []Step{helperStep("A", 0), helperStep("B", 2), helperStep("C", 0)}
	for i := range steps {
		steps[i].Ordinal = i
	}

	report, err := NewRunner(steps, helperLauncher(&out), nil).Run(context.Background())

	var stepErr *StepExecutionError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "B", stepErr.Step.ID)
	assert.Equal(t, 2, stepErr.Outcome.ExitCode)
	assert.Equal(t, State{Phase: PhaseFailed, Index: 1}, report.State)
	assert.NotContains(t, out.String(), "step=C")
}
