package pipeline

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/bizdir-ops/internal/config"
)

const (
	runKeyPrefix      = "bizops:run:"
	defaultJournalTTL = 7 * 24 * time.Hour
)

// RedisJournal keeps each run in a hash and each step outcome in its own
// hash, all expiring after ttl.
type RedisJournal struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisJournal(ctx context.Context, cfg config.JournalConfig) (*RedisJournal, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.RedisTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultJournalTTL
	}
	return &RedisJournal{client: client, ttl: ttl}, nil
}

func buildRedisOptions(cfg config.JournalConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func runKey(id string) string {
	return runKeyPrefix + id
}

func stepKey(runID string, ordinal int) string {
	return runKey(runID) + ":step:" + strconv.Itoa(ordinal)
}

func runFields(run *RunRecord) map[string]interface{} {
	fields := map[string]interface{}{
		"status":          string(run.Status),
		"total_steps":     run.TotalSteps,
		"completed_steps": run.CompletedSteps,
		"started_at":      run.StartedAt.Format(time.RFC3339Nano),
		"error_message":   run.ErrorMessage,
	}
	if run.CompletedAt != nil {
		fields["completed_at"] = run.CompletedAt.Format(time.RFC3339Nano)
	}
	return fields
}

func (j *RedisJournal) writeHash(ctx context.Context, key string, fields map[string]interface{}) error {
	pipe := j.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, j.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis write %s failed: %w", key, err)
	}
	return nil
}

func (j *RedisJournal) StartRun(ctx context.Context, run *RunRecord) error {
	return j.writeHash(ctx, runKey(run.ID), runFields(run))
}

func (j *RedisJournal) RecordStep(ctx context.Context, rec StepRecord) error {
	return j.writeHash(ctx, stepKey(rec.RunID, rec.Step.Ordinal), map[string]interface{}{
		"step_id":       rec.Step.ID,
		"success":       strconv.FormatBool(rec.Outcome.Success),
		"exit_code":     rec.Outcome.ExitCode,
		"error_message": rec.Outcome.ErrorMessage,
		"started_at":    rec.StartedAt.Format(time.RFC3339Nano),
		"duration_ms":   rec.Duration.Milliseconds(),
	})
}

func (j *RedisJournal) FinishRun(ctx context.Context, run *RunRecord) error {
	return j.writeHash(ctx, runKey(run.ID), runFields(run))
}

func (j *RedisJournal) Close() error {
	return j.client.Close()
}
