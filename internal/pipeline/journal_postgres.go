package pipeline

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id              TEXT PRIMARY KEY,
	status          TEXT NOT NULL,
	total_steps     INTEGER NOT NULL,
	completed_steps INTEGER NOT NULL DEFAULT 0,
	started_at      TIMESTAMPTZ NOT NULL,
	completed_at    TIMESTAMPTZ,
	error_message   TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS pipeline_step_outcomes (
	run_id        TEXT NOT NULL REFERENCES pipeline_runs(id) ON DELETE CASCADE,
	step_id       TEXT NOT NULL,
	ordinal       INTEGER NOT NULL,
	success       BOOLEAN NOT NULL,
	exit_code     INTEGER NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL,
	PRIMARY KEY (run_id, ordinal)
);`

// PostgresJournal writes runs to pipeline_runs and pipeline_step_outcomes.
type PostgresJournal struct {
	db *sql.DB
}

func NewPostgresJournal(ctx context.Context, url string) (*PostgresJournal, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	j, err := newPostgresJournal(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// newPostgresJournal checks db and makes sure the journal tables exist.
func newPostgresJournal(ctx context.Context, db *sql.DB) (*PostgresJournal, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping journal database: %w", err)
	}
	if _, err := db.ExecContext(ctx, journalSchema); err != nil {
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	return &PostgresJournal{db: db}, nil
}

func (j *PostgresJournal) StartRun(ctx context.Context, run *RunRecord) error {
	query := `
		INSERT INTO pipeline_runs (id, status, total_steps, completed_steps, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := j.db.ExecContext(ctx, query,
		run.ID, string(run.Status), run.TotalSteps, run.CompletedSteps, run.StartedAt,
	)
	return err
}

func (j *PostgresJournal) RecordStep(ctx context.Context, rec StepRecord) error {
	query := `
		INSERT INTO pipeline_step_outcomes (
			run_id, step_id, ordinal, success, exit_code,
			error_message, started_at, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := j.db.ExecContext(ctx, query,
		rec.RunID, rec.Step.ID, rec.Step.Ordinal, rec.Outcome.Success, rec.Outcome.ExitCode,
		rec.Outcome.ErrorMessage, rec.StartedAt, rec.Duration.Milliseconds(),
	)
	return err
}

func (j *PostgresJournal) FinishRun(ctx context.Context, run *RunRecord) error {
	query := `
		UPDATE pipeline_runs
		SET status = $1, completed_steps = $2, completed_at = $3, error_message = $4
		WHERE id = $5
	`
	_, err := j.db.ExecContext(ctx, query,
		string(run.Status), run.CompletedSteps, run.CompletedAt, run.ErrorMessage, run.ID,
	)
	return err
}

func (j *PostgresJournal) Close() error {
	return j.db.Close()
}
