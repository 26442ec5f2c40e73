package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/bizdir-ops/internal/cors"
	"github.com/andresuchdata/bizdir-ops/internal/records"
	"github.com/andresuchdata/bizdir-ops/internal/storage"
)

// fakeStore is an in-memory BucketStore that counts remote calls.
type fakeStore struct {
	mu        sync.Mutex
	calls     int
	policy    cors.Policy
	objects   map[string][]byte
	types     map[string]string
	setErr    error
	metaErr   error
	uploadErr func(key string) error
	reorder   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) Bucket() string { return "bizdir-assets" }

func (f *fakeStore) SetCORS(ctx context.Context, policy cors.Policy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.setErr != nil {
		return f.setErr
	}
	f.policy = append(cors.Policy(nil), policy...)
	return nil
}

func (f *fakeStore) Metadata(ctx context.Context) (*storage.BucketMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	policy := append(cors.Policy(nil), f.policy...)
	if f.reorder {
		slices.Reverse(policy)
	}
	return &storage.BucketMetadata{Name: f.Bucket(), CORS: policy}, nil
}

func (f *fakeStore) UploadObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f.mu.Lock()
	f.calls++
	hook := f.uploadErr
	f.mu.Unlock()

	if hook != nil {
		if err := hook(key); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memoryRecords is an in-memory records.Store.
type memoryRecords struct {
	docs   map[string]map[string]interface{}
	failOn string
}

func newMemoryRecords() *memoryRecords {
	return &memoryRecords{docs: map[string]map[string]interface{}{}}
}

func (m *memoryRecords) Get(ctx context.Context, collection, id string) (*records.Document, error) {
	data, ok := m.docs[collection+"/"+id]
	if !ok {
		return nil, records.ErrDocumentNotFound
	}
	return &records.Document{ID: id, Data: data}, nil
}

func (m *memoryRecords) Query(ctx context.Context, collection, field, op string, value interface{}) ([]*records.Document, error) {
	var out []*records.Document
	for key, data := range m.docs {
		dir, id := filepath.Split(key)
		if dir != collection+"/" || data[field] != value {
			continue
		}
		out = append(out, &records.Document{ID: id, Data: data})
	}
	return out, nil
}

func (m *memoryRecords) Put(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if id == m.failOn {
		return errors.New("write rejected")
	}
	m.docs[collection+"/"+id] = data
	return nil
}

func (m *memoryRecords) Delete(ctx context.Context, collection, id string) error {
	delete(m.docs, collection+"/"+id)
	return nil
}

func (m *memoryRecords) Close() error { return nil }

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
