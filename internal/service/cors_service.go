package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/bizdir-ops/internal/cors"
	"github.com/andresuchdata/bizdir-ops/internal/storage"
	"github.com/rs/zerolog/log"
)

// CORSService applies and reads back the CORS policy of one bucket.
type CORSService struct {
	store storage.BucketStore
}

func NewCORSService(store storage.BucketStore) *CORSService {
	return &CORSService{store: store}
}

// Apply pushes policy to the bucket. It is attempted once; on failure the
// remote state is whatever the service left behind.
func (s *CORSService) Apply(ctx context.Context, policy cors.Policy) error {
	log.Info().
		Str("bucket", s.store.Bucket()).
		Int("rules", len(policy)).
		Msg("cors: applying policy")

	if err := s.store.SetCORS(ctx, policy); err != nil {
		return fmt.Errorf("apply cors to %s: %w", s.store.Bucket(), err)
	}
	return nil
}

// Verify re-reads the bucket metadata and returns the policy in effect.
func (s *CORSService) Verify(ctx context.Context) (cors.Policy, error) {
	meta, err := s.store.Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify cors on %s: %w", s.store.Bucket(), err)
	}
	return meta.CORS, nil
}

// ApplyAndVerify applies policy, reads it back and logs the result. The
// comparison is informational only.
func (s *CORSService) ApplyAndVerify(ctx context.Context, policy cors.Policy) (cors.Policy, error) {
	if err := s.Apply(ctx, policy); err != nil {
		return nil, err
	}

	current, err := s.Verify(ctx)
	if err != nil {
		return nil, err
	}

	if diff := cors.Diff(policy, current); diff != "" {
		log.Warn().
			Str("bucket", s.store.Bucket()).
			Str("diff", diff).
			Msg("cors: bucket configuration differs from applied policy")
	} else {
		log.Info().
			Str("bucket", s.store.Bucket()).
			Interface("cors", current).
			Msg("cors: verified bucket configuration")
	}

	return current, nil
}
