package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/bizdir-ops/internal/cors"
)

// fakeS3 serves the bucket CORS subresource for one bucket.
type fakeS3 struct {
	mu     sync.Mutex
	bucket string
	cors   []byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/xml")
	if strings.Trim(r.URL.Path, "/") != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchBucket</Code><Message>The specified bucket does not exist</Message></Error>`)
		return
	}

	q := r.URL.Query()
	switch {
	case q.Has("location"):
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`)
	case q.Has("cors") && r.Method == http.MethodPut:
		f.cors, _ = io.ReadAll(r.Body)
	case q.Has("cors") && r.Method == http.MethodDelete:
		f.cors = nil
		w.WriteHeader(http.StatusNoContent)
	case q.Has("cors") && r.Method == http.MethodGet:
		if f.cors == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchCORSConfiguration</Code><Message>none</Message></Error>`)
			return
		}
		_, _ = w.Write(f.cors)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newFakeS3Store(t *testing.T, bucket string) *S3Store {
	t.Helper()
	srv := httptest.NewServer(&fakeS3{bucket: "bizdir-assets"})
	t.Cleanup(srv.Close)

	store, err := NewS3Store(S3Config{
		Endpoint:  srv.URL,
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    bucket,
	})
	require.NoError(t, err)
	return store
}

func TestS3StoreApplyAndVerify(t *testing.T) {
	store := newFakeS3Store(t, "bizdir-assets")
	ctx := context.Background()

	meta, err := store.Metadata(ctx)
	require.NoError(t, err)
	assert.Empty(t, meta.CORS)

	policy := cors.Policy{{
		Origins:         []string{"https://example.com"},
		Methods:         []string{"GET"},
		ResponseHeaders: []string{"Content-Type"},
		MaxAgeSeconds:   3600,
	}}
	require.NoError(t, store.SetCORS(ctx, policy))

	meta, err = store.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bizdir-assets", meta.Name)
	assert.True(t, cors.Equal(policy, meta.CORS), cors.Diff(policy, meta.CORS))

	require.NoError(t, store.SetCORS(ctx, cors.Policy{}))
	meta, err = store.Metadata(ctx)
	require.NoError(t, err)
	assert.Empty(t, meta.CORS)
}

func TestS3StoreMissingBucket(t *testing.T) {
	store := newFakeS3Store(t, "nope")

	err := store.SetCORS(context.Background(), cors.Policy{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewS3StoreValidation(t *testing.T) {
	_, err := NewS3Store(S3Config{Bucket: "b"})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewS3Store(S3Config{Endpoint: "localhost:9000"})
	assert.ErrorContains(t, err, "bucket")

	store, err := NewS3Store(S3Config{Endpoint: "https://s3.example.com/", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", store.Bucket())
}

func TestS3RuleMapping(t *testing.T) {
	policy := cors.Policy{{
		Origins:         []string{"*"},
		Methods:         []string{"GET", "HEAD"},
		ResponseHeaders: []string{"ETag"},
		MaxAgeSeconds:   60,
	}}

	rules := toS3Rules(policy)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"ETag"}, rules[0].ExposeHeader)
	assert.Equal(t, policy, fromS3Rules(rules))
}
