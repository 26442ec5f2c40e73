package pipeline

import (
	"fmt"
	"time"
)

// StepEnvVar is set on every spawned step process to the step ID.
const StepEnvVar = "BIZOPS_STEP"

// Step is one entry of the runner's fixed sequence. Args are passed to the
// launched executable.
type Step struct {
	ID      string
	Ordinal int
	Args    []string
}

// StepOutcome is what a finished step reports back to the runner.
type StepOutcome struct {
	Success      bool
	ExitCode     int
	ErrorMessage string
}

// Phase of a runner.
type Phase int

const (
	PhasePending Phase = iota
	PhaseRunning
	PhaseSucceeded
	PhaseFailed
)

// State is the runner state. Index is meaningful for PhaseRunning and
// PhaseFailed only.
type State struct {
	Phase Phase
	Index int
}

func (s State) String() string {
	switch s.Phase {
	case PhasePending:
		return "pending"
	case PhaseRunning:
		return fmt.Sprintf("running(%d)", s.Index)
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return fmt.Sprintf("failed_at(%d)", s.Index)
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s.Phase == PhaseSucceeded || s.Phase == PhaseFailed
}

// RunStatus is the journal's view of a run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
)

// RunRecord tracks a single execution of the step sequence.
type RunRecord struct {
	ID             string
	Status         RunStatus
	TotalSteps     int
	CompletedSteps int
	StartedAt      time.Time
	CompletedAt    *time.Time
	ErrorMessage   string
}

// StepRecord tracks the outcome of one step within a run.
type StepRecord struct {
	RunID     string
	Step      Step
	Outcome   StepOutcome
	StartedAt time.Time
	Duration  time.Duration
}

// Report summarises a finished run.
type Report struct {
	RunID string
	State State
	Steps []StepRecord
}

// StepExecutionError is returned when a step exits non-zero or could not be
// spawned.
type StepExecutionError struct {
	Step    Step
	Outcome StepOutcome
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %s (ordinal %d) failed with exit code %d: %s",
		e.Step.ID, e.Step.Ordinal, e.Outcome.ExitCode, e.Outcome.ErrorMessage)
}
