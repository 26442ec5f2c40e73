package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/bizdir-ops/internal/pipeline"
)

// executable locates the binary the runner re-invokes for each step.
var executable = os.Executable

func runCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Run the upload steps in order (records, then assets), stopping at the first failure",
		Action: runSteps,
	}
}

func runSteps(c *cli.Context) error {
	cfg := configFrom(c)

	self, err := executable()
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot locate bizops executable: %v", err), 1)
	}

	journal, err := pipeline.NewJournal(c.Context, cfg.Journal, cfg.Database.URL)
	if err != nil {
		log.Warn().Err(err).Msg("run journal unavailable, continuing without it")
		journal = pipeline.NoopJournal{}
	}

	runner := pipeline.NewRunner(pipeline.DefaultSteps(), &pipeline.ExecLauncher{Path: self}, journal)
	report, err := runner.Run(c.Context)
	if cerr := journal.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("failed to close run journal")
	}
	if err != nil {
		var stepErr *pipeline.StepExecutionError
		if errors.As(err, &stepErr) {
			return cli.Exit(fmt.Sprintf("run %s failed at step %s: %s",
				report.RunID, stepErr.Step.ID, stepErr.Outcome.ErrorMessage), 1)
		}
		return cli.Exit(err.Error(), 1)
	}

	log.Info().Str("run_id", report.RunID).Int("steps", len(report.Steps)).Msg("all steps succeeded")
	return nil
}
