package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/bizdir-ops/internal/cors"
	"github.com/andresuchdata/bizdir-ops/internal/storage"
)

func TestCORSServiceApplyThenVerifyExampleDocument(t *testing.T) {
	doc := writeTemp(t, t.TempDir(), "cors.json",
		`[{"origin":["https://example.com"],"method":["GET"],"responseHeader":["Content-Type"],"maxAgeSeconds":3600}]`)
	policy, err := cors.Load(doc)
	require.NoError(t, err)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bizdir"), 0o755))
	store, err := storage.NewLocalStore(root, "bizdir")
	require.NoError(t, err)

	svc := NewCORSService(store)
	got, err := svc.ApplyAndVerify(context.Background(), policy)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"https://example.com"}, got[0].Origins)
	assert.Equal(t, []string{"GET"}, got[0].Methods)
	assert.Equal(t, []string{"Content-Type"}, got[0].ResponseHeaders)
	assert.Equal(t, 3600, got[0].MaxAgeSeconds)
}

func TestCORSServiceVerifyToleratesReordering(t *testing.T) {
	store := newFakeStore()
	store.reorder = true
	svc := NewCORSService(store)

	policy := cors.Policy{
		{Origins: []string{"https://a.com"}, Methods: []string{"GET"}},
		{Origins: []string{"https://b.com"}, Methods: []string{"PUT"}, MaxAgeSeconds: 60},
		{Origins: []string{"*"}, Methods: []string{"HEAD"}},
	}
	require.NoError(t, svc.Apply(context.Background(), policy))

	got, err := svc.Verify(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, policy, got)
	assert.True(t, cors.Equal(policy, got))
}

func TestCORSServiceErrors(t *testing.T) {
	for _, sentinel := range []error{storage.ErrAuthentication, storage.ErrNotFound, storage.ErrNetwork} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			store := newFakeStore()
			store.setErr = fmt.Errorf("set cors: %w", sentinel)
			svc := NewCORSService(store)

			_, err := svc.ApplyAndVerify(context.Background(), cors.Policy{})
			assert.ErrorIs(t, err, sentinel)
			assert.Equal(t, 1, store.callCount(), "verify must not run after a failed apply")
		})
	}

	store := newFakeStore()
	store.metaErr = fmt.Errorf("get: %w", storage.ErrNetwork)
	_, err := NewCORSService(store).Verify(context.Background())
	assert.ErrorIs(t, err, storage.ErrNetwork)
}
