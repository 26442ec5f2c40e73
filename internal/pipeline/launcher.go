package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Launcher runs one step to completion.
type Launcher interface {
	Launch(ctx context.Context, step Step) StepOutcome
}

// ExecLauncher runs each step as a separate process of Path.
type ExecLauncher struct {
	Path   string
	Env    []string // appended to the parent environment
	Stdout io.Writer
	Stderr io.Writer
}

func (l *ExecLauncher) Launch(ctx context.Context, step Step) StepOutcome {
	cmd := exec.CommandContext(ctx, l.Path, step.Args...)
	cmd.Env = append(os.Environ(), l.Env...)
	cmd.Env = append(cmd.Env, StepEnvVar+"="+step.ID)
	cmd.Stdout = l.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = l.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if err == nil {
		return StepOutcome{Success: true}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return StepOutcome{
			ExitCode:     exitErr.ExitCode(),
			ErrorMessage: fmt.Sprintf("%s exited: %v", step.ID, exitErr),
		}
	}
	// spawn failure
	return StepOutcome{
		ExitCode:     -1,
		ErrorMessage: fmt.Sprintf("failed to start %s: %v", step.ID, err),
	}
}

// DefaultSteps is the fixed upload sequence, records before assets. Args are
// bizops subcommands.
func DefaultSteps() []Step {
	return []Step{
		{ID: "upload-records", Ordinal: 0, Args: []string{"records"}},
		{ID: "upload-assets", Ordinal: 1, Args: []string{"assets"}},
	}
}
