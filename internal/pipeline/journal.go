package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/bizdir-ops/internal/config"
)

// Journal records runs and step outcomes. Write failures never change the
// outcome of a run.
type Journal interface {
	StartRun(ctx context.Context, run *RunRecord) error
	RecordStep(ctx context.Context, rec StepRecord) error
	FinishRun(ctx context.Context, run *RunRecord) error
	Close() error
}

type NoopJournal struct{}

func (NoopJournal) StartRun(context.Context, *RunRecord) error  { return nil }
func (NoopJournal) RecordStep(context.Context, StepRecord) error { return nil }
func (NoopJournal) FinishRun(context.Context, *RunRecord) error { return nil }
func (NoopJournal) Close() error                                { return nil }

// NewJournal builds the journal named by cfg.Backend.
func NewJournal(ctx context.Context, cfg config.JournalConfig, databaseURL string) (Journal, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "none":
		return NoopJournal{}, nil
	case "postgres":
		if databaseURL == "" {
			return nil, fmt.Errorf("postgres journal requires DATABASE_URL")
		}
		return NewPostgresJournal(ctx, databaseURL)
	case "redis":
		return NewRedisJournal(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown journal backend %q", cfg.Backend)
	}
}
