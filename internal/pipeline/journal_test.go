package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/bizdir-ops/internal/config"
)

func TestNewJournalNoop(t *testing.T) {
	for _, backend := range []string{"", "none", " NONE "} {
		j, err := NewJournal(context.Background(), config.JournalConfig{Backend: backend}, "")
		require.NoError(t, err)
		assert.IsType(t, NoopJournal{}, j)
	}
}

func TestNewJournalErrors(t *testing.T) {
	_, err := NewJournal(context.Background(), config.JournalConfig{Backend: "postgres"}, "")
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = NewJournal(context.Background(), config.JournalConfig{Backend: "mongo"}, "")
	assert.ErrorContains(t, err, "unknown journal backend")
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.JournalConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)

	opts, err = buildRedisOptions(config.JournalConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2, RedisPassword: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "pw", opts.Password)

	opts, err = buildRedisOptions(config.JournalConfig{RedisURL: "redis://:secret@redis.internal:6390/3"})
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6390", opts.Addr)
	assert.Equal(t, 3, opts.DB)

	_, err = buildRedisOptions(config.JournalConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "bizops:run:abc", runKey("abc"))
	assert.Equal(t, "bizops:run:abc:step:1", stepKey("abc", 1))
}

func TestRunFields(t *testing.T) {
	started := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	run := &RunRecord{ID: "r1", Status: StatusRunning, TotalSteps: 2, StartedAt: started}

	fields := runFields(run)
	assert.Equal(t, "running", fields["status"])
	assert.Equal(t, "2026-10-01T08:00:00Z", fields["started_at"])
	assert.NotContains(t, fields, "completed_at")

	done := started.Add(time.Minute)
	run.CompletedAt = &done
	assert.Contains(t, runFields(run), "completed_at")
}
