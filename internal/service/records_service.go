package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/bizdir-ops/internal/records"
	"github.com/rs/zerolog/log"
)

type RecordsService struct {
	store records.Store
}

func NewRecordsService(store records.Store) *RecordsService {
	return &RecordsService{store: store}
}

// Seed writes docs into collection one at a time and stops at the first
// failure. It returns how many documents were written.
func (s *RecordsService) Seed(ctx context.Context, collection string, docs []*records.Document) (int, error) {
	start := time.Now()
	log.Info().
		Str("collection", collection).
		Int("records", len(docs)).
		Msg("records: seeding")

	written := 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := s.store.Put(ctx, collection, doc.ID, doc.Data); err != nil {
			return written, fmt.Errorf("failed to seed %s/%s: %w", collection, doc.ID, err)
		}
		written++
		if written%500 == 0 {
			log.Info().Int("written", written).Msg("records: progress")
		}
	}

	log.Info().
		Str("collection", collection).
		Int("written", written).
		Dur("elapsed", time.Since(start)).
		Msg("records: seeding completed")
	return written, nil
}

// Get returns one document, or an error wrapping records.ErrDocumentNotFound.
func (s *RecordsService) Get(ctx context.Context, collection, id string) (*records.Document, error) {
	return s.store.Get(ctx, collection, id)
}

// Lookup returns the documents in collection whose field equals value.
func (s *RecordsService) Lookup(ctx context.Context, collection, field string, value interface{}) ([]*records.Document, error) {
	return s.store.Query(ctx, collection, field, "==", value)
}
