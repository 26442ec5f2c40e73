package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/bizdir-ops/internal/config"
	"github.com/andresuchdata/bizdir-ops/internal/cors"
)

func newLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bizdir"), 0o755))
	store, err := NewLocalStore(root, "bizdir")
	require.NoError(t, err)
	return store
}

func TestLocalStoreCORSRoundTrip(t *testing.T) {
	store := newLocalStore(t)
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
	assert.Equal(t, "bizdir", meta.Name)
	assert.Equal(t, policy, meta.CORS)
	assert.False(t, meta.Updated.IsZero())
}

func TestLocalStoreMissingBucket(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "absent")
	require.NoError(t, err)

	assert.ErrorIs(t, store.SetCORS(context.Background(), nil), ErrNotFound)
	_, err = store.Metadata(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	err = store.UploadObject(context.Background(), "a.txt", strings.NewReader("a"), 1, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreUploadOverwrites(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, store.UploadObject(ctx, "assets/logo.txt", strings.NewReader("v1"), 2, "text/plain"))
	require.NoError(t, store.UploadObject(ctx, "/assets/logo.txt", strings.NewReader("v2"), 2, "text/plain"))

	content, err := store.ReadObject("assets/logo.txt")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))
}

func TestLocalStoreRejectsReservedKeys(t *testing.T) {
	store := newLocalStore(t)
	for _, key := range []string{"", ".bucket/cors.json", "../escape.txt", "a/../b.txt", "a/.."} {
		err := store.UploadObject(context.Background(), key, strings.NewReader("x"), 1, "")
		assert.Error(t, err, key)
	}
}

func TestLocalStoreAcceptsDotsInsideNames(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	for _, key := range []string{"logo..v2.png", "brand/..hidden/mark.svg"} {
		require.NoError(t, store.UploadObject(ctx, key, strings.NewReader(key), int64(len(key)), "image/png"), key)

		content, err := store.ReadObject(key)
		require.NoError(t, err)
		assert.Equal(t, key, string(content))
	}
}

func TestOpenSelectsProvider(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bizdir"), 0o755))

	store, err := Open(context.Background(),
		config.StorageConfig{Provider: "local", LocalRoot: root},
		Target{BucketName: "bizdir"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)
	assert.Equal(t, "bizdir", store.Bucket())

	store, err = Open(context.Background(),
		config.StorageConfig{Provider: "s3", S3Endpoint: "http://127.0.0.1:9000", S3AccessKey: "k", S3SecretKey: "s"},
		Target{BucketName: "bizdir"})
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, store)

	_, err = Open(context.Background(), config.StorageConfig{Provider: "ftp"}, Target{BucketName: "bizdir"})
	assert.Error(t, err)
}

func TestResolveTargetSkipsGoogleForOtherProviders(t *testing.T) {
	target, err := ResolveTarget(context.Background(), config.StorageConfig{Provider: "local", Bucket: "bizdir"})
	require.NoError(t, err)
	assert.Equal(t, "bizdir", target.BucketName)
	assert.Nil(t, target.Credentials)

	_, err = ResolveTarget(context.Background(), config.StorageConfig{Provider: "local"})
	assert.Error(t, err)
}
