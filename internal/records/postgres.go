package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/semaphore"
)

const documentsSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)
`

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresStore implements Store on a single JSONB table.
type PostgresStore struct {
	db  *sqlx.DB
	sem *semaphore.Weighted
}

// NewPostgresStore connects to url and makes sure the documents table exists.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	if url == "" {
		return nil, fmt.Errorf("database url must be provided")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := NewPostgresStoreFromDB(db)
	if _, err := db.ExecContext(ctx, documentsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}
	return store, nil
}

// NewPostgresStoreFromDB wraps an existing connection pool.
func NewPostgresStoreFromDB(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db:  db,
		sem: semaphore.NewWeighted(4), // Limit concurrent statements
	}
}

type documentRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

func (r documentRow) toDocument() (*Document, error) {
	doc := &Document{ID: r.ID}
	if err := json.Unmarshal(r.Data, &doc.Data); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", r.ID, err)
	}
	return doc, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer s.sem.Release(1)

	var row documentRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, data FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return row.toDocument()
}

// Query supports equality only: op must be "==".
func (s *PostgresStore) Query(ctx context.Context, collection, field, op string, value interface{}) ([]*Document, error) {
	query, args, err := buildEqualityQuery(collection, field, op, value)
	if err != nil {
		return nil, err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer s.sem.Release(1)

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query %s where %s %s %v: %w", collection, field, op, value, err)
	}

	docs := make([]*Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *PostgresStore) Put(ctx context.Context, collection, id string, data map[string]interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer s.sem.Release(1)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, collection, id, payload)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer s.sem.Release(1)

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, id)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func buildEqualityQuery(collection, field, op string, value interface{}) (string, []interface{}, error) {
	if op != "==" {
		return "", nil, fmt.Errorf("unsupported query operator %q", op)
	}
	if !fieldPattern.MatchString(field) {
		return "", nil, fmt.Errorf("invalid field name %q", field)
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return "", nil, fmt.Errorf("encode query value: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT id, data FROM documents WHERE collection = $1 AND data -> '%s' = $2::jsonb ORDER BY id`,
		field,
	)
	return query, []interface{}{collection, string(encoded)}, nil
}

var _ Store = (*PostgresStore)(nil)
