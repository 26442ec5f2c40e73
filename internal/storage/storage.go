package storage

import (
	"context"
	"io"
	"time"

	"github.com/andresuchdata/bizdir-ops/internal/cors"
)

// BucketMetadata is the subset of bucket metadata the tooling reads back.
type BucketMetadata struct {
	Name     string
	Location string
	Updated  time.Time
	CORS     cors.Policy
}

// BucketStore captures the operations the CORS and upload steps need from a
// single bucket. Implementations classify failures with ErrAuthentication,
// ErrNotFound and ErrNetwork.
type BucketStore interface {
	// Bucket returns the bucket name the store is bound to.
	Bucket() string

	// SetCORS replaces the bucket's CORS configuration.
	SetCORS(ctx context.Context, policy cors.Policy) error

	// Metadata performs a fresh metadata read.
	Metadata(ctx context.Context) (*BucketMetadata, error)

	// UploadObject creates or overwrites the object at key.
	UploadObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}
