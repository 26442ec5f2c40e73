package storage

import (
	"context"
	"fmt"

	"github.com/andresuchdata/bizdir-ops/internal/config"
	"github.com/andresuchdata/bizdir-ops/internal/credentials"
)

// Target names the bucket a command works on and the credentials used to
// reach it. It is built once per process and never mutated.
type Target struct {
	BucketName  string
	Credentials *credentials.Resolved
}

// ResolveTarget builds the Target for cfg. Google credentials are only
// resolved for the gcs provider; s3 and local carry their own.
func ResolveTarget(ctx context.Context, cfg config.StorageConfig) (Target, error) {
	target := Target{BucketName: cfg.Bucket}
	if cfg.Bucket == "" {
		return target, fmt.Errorf("storage bucket must be provided")
	}
	if cfg.Provider != "" && cfg.Provider != "gcs" {
		return target, nil
	}

	creds, err := credentials.DefaultChain(cfg.CredentialsEnv, cfg.CredentialsFile).Resolve(ctx, GCSScopes...)
	if err != nil {
		return target, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	target.Credentials = creds
	return target, nil
}

// Open returns the BucketStore for the configured provider bound to target.
func Open(ctx context.Context, cfg config.StorageConfig, target Target) (BucketStore, error) {
	switch cfg.Provider {
	case "", "gcs":
		return NewGCSStore(ctx, target.BucketName, target.Credentials)
	case "s3":
		return NewS3Store(S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    target.BucketName,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
	case "local":
		return NewLocalStore(cfg.LocalRoot, target.BucketName)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
