package pipeline

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrAlreadyStarted is returned by Run on a runner that has left Pending.
var ErrAlreadyStarted = errors.New("runner already started")

// Runner executes a fixed list of steps in ordinal order, one at a time, and
// stops at the first failure. Prior steps are never undone and failed steps
// are never retried. A Runner is single use.
type Runner struct {
	steps    []Step
	launcher Launcher
	journal  Journal
	state    State
}

// NewRunner copies steps and orders them by Ordinal. A nil journal disables
// journaling.
func NewRunner(steps []Step, launcher Launcher, journal Journal) *Runner {
	ordered := make([]Step, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Ordinal < ordered[j].Ordinal })
	if journal == nil {
		journal = NoopJournal{}
	}
	return &Runner{steps: ordered, launcher: launcher, journal: journal}
}

func (r *Runner) State() State { return r.state }

// Run blocks until every step succeeded or one failed. On failure the
// returned error is a *StepExecutionError and the report ends at that step.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.state.Phase != PhasePending {
		return nil, ErrAlreadyStarted
	}

	run := &RunRecord{
		ID:         uuid.NewString(),
		Status:     StatusRunning,
		TotalSteps: len(r.steps),
		StartedAt:  time.Now().UTC(),
	}
	report := &Report{RunID: run.ID}
	logger := log.With().Str("run_id", run.ID).Logger()
	logger.Info().Int("steps", len(r.steps)).Msg("pipeline: run started")
	r.journalErr(r.journal.StartRun(ctx, run), "start run")

	for i, step := range r.steps {
		r.state = State{Phase: PhaseRunning, Index: i}
		logger.Info().Str("step", step.ID).Int("ordinal", step.Ordinal).Msg("pipeline: step started")

		started := time.Now()
		outcome := r.launcher.Launch(ctx, step)
		rec := StepRecord{
			RunID:     run.ID,
			Step:      step,
			Outcome:   outcome,
			StartedAt: started.UTC(),
			Duration:  time.Since(started),
		}
		report.Steps = append(report.Steps, rec)
		r.journalErr(r.journal.RecordStep(ctx, rec), "record step")

		if !outcome.Success {
			r.state = State{Phase: PhaseFailed, Index: i}
			report.State = r.state
			logger.Error().
				Str("step", step.ID).
				Int("exit_code", outcome.ExitCode).
				Str("error", outcome.ErrorMessage).
				Msg("pipeline: step failed")

			r.finish(ctx, run, StatusFailed, i, outcome.ErrorMessage)
			return report, &StepExecutionError{Step: step, Outcome: outcome}
		}

		logger.Info().
			Str("step", step.ID).
			Dur("elapsed", rec.Duration).
			Msg("pipeline: step succeeded")
	}

	r.state = State{Phase: PhaseSucceeded}
	report.State = r.state
	r.finish(ctx, run, StatusSucceeded, len(r.steps), "")
	logger.Info().Msg("pipeline: run succeeded")
	return report, nil
}

func (r *Runner) finish(ctx context.Context, run *RunRecord, status RunStatus, completed int, msg string) {
	now := time.Now().UTC()
	run.Status = status
	run.CompletedSteps = completed
	run.CompletedAt = &now
	run.ErrorMessage = msg
	r.journalErr(r.journal.FinishRun(ctx, run), "finish run")
}

func (r *Runner) journalErr(err error, op string) {
	if err != nil {
		log.Warn().Err(err).Str("op", op).Msg("pipeline: journal write failed")
	}
}
