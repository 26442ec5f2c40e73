package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/andresuchdata/bizdir-ops/internal/cors"
	"github.com/andresuchdata/bizdir-ops/internal/credentials"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

// GCSScopes are the OAuth scopes needed to edit bucket metadata and write objects.
var GCSScopes = []string{gcs.DevstorageFullControlScope}

// GCSStore implements BucketStore for a Google Cloud Storage bucket.
type GCSStore struct {
	srv    *gcs.Service
	bucket string
}

// NewGCSStore builds a GCSStore bound to bucket using the resolved credentials.
func NewGCSStore(ctx context.Context, bucket string, creds *credentials.Resolved, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket must be provided")
	}
	if creds != nil && creds.Google != nil {
		opts = append(opts, option.WithCredentials(creds.Google))
	}

	srv, err := gcs.NewService(ctx, opts...)
	if err != nil {
		return nil, classify("unable to create storage client", err)
	}

	return &GCSStore{srv: srv, bucket: bucket}, nil
}

func (s *GCSStore) Bucket() string { return s.bucket }

// SetCORS patches the bucket's cors field. An empty policy clears it.
func (s *GCSStore) SetCORS(ctx context.Context, policy cors.Policy) error {
	patch := &gcs.Bucket{Cors: toGCSCors(policy)}
	if len(patch.Cors) == 0 {
		patch.NullFields = []string{"Cors"}
	}

	_, err := s.srv.Buckets.Patch(s.bucket, patch).Context(ctx).Do()
	return classify(fmt.Sprintf("set cors on gs://%s", s.bucket), err)
}

// Metadata reads the bucket resource.
func (s *GCSStore) Metadata(ctx context.Context) (*BucketMetadata, error) {
	b, err := s.srv.Buckets.Get(s.bucket).Context(ctx).Do()
	if err != nil {
		return nil, classify(fmt.Sprintf("get metadata for gs://%s", s.bucket), err)
	}

	meta := &BucketMetadata{
		Name:     b.Name,
		Location: b.Location,
		CORS:     fromGCSCors(b.Cors),
	}
	if updated, err := time.Parse(time.RFC3339, b.Updated); err == nil {
		meta.Updated = updated
	}
	return meta, nil
}

// UploadObject inserts the object with a simple or resumable media upload.
func (s *GCSStore) UploadObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	obj := &gcs.Object{Name: key, ContentType: contentType}

	call := s.srv.Objects.Insert(s.bucket, obj).Context(ctx)
	if contentType != "" {
		call = call.Media(r, googleapi.ContentType(contentType))
	} else {
		call = call.Media(r)
	}

	_, err := call.Do()
	return classify(fmt.Sprintf("upload gs://%s/%s", s.bucket, key), err)
}

var _ BucketStore = (*GCSStore)(nil)

func toGCSCors(policy cors.Policy) []*gcs.BucketCors {
	out := make([]*gcs.BucketCors, 0, len(policy))
	for _, r := range policy {
		out = append(out, &gcs.BucketCors{
			Origin:         r.Origins,
			Method:         r.Methods,
			ResponseHeader: r.ResponseHeaders,
			MaxAgeSeconds:  int64(r.MaxAgeSeconds),
		})
	}
	return out
}

func fromGCSCors(in []*gcs.BucketCors) cors.Policy {
	out := make(cors.Policy, 0, len(in))
	for _, c := range in {
		if c == nil {
			continue
		}
		out = append(out, cors.Rule{
			Origins:         c.Origin,
			Methods:         c.Method,
			ResponseHeaders: c.ResponseHeader,
			MaxAgeSeconds:   int(c.MaxAgeSeconds),
		})
	}
	return out
}
