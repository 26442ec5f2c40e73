package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	cmstorage "github.com/chartmuseum/storage"

	"github.com/andresuchdata/bizdir-ops/internal/cors"
)

// corsObject is where LocalStore keeps the bucket CORS configuration.
const corsObject = ".bucket/cors.json"

// LocalStore implements BucketStore on a directory, for development and dry
// runs. A bucket is the directory <root>/<bucket>; it must already exist.
type LocalStore struct {
	backend *cmstorage.LocalFilesystemBackend
	bucket  string
	dir     string
}

// NewLocalStore binds a LocalStore to <root>/<bucket>.
func NewLocalStore(root, bucket string) (*LocalStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("local bucket must be provided")
	}
	dir := filepath.Join(root, bucket)
	return &LocalStore{
		backend: cmstorage.NewLocalFilesystemBackend(dir),
		bucket:  bucket,
		dir:     dir,
	}, nil
}

func (s *LocalStore) Bucket() string { return s.bucket }

func (s *LocalStore) SetCORS(ctx context.Context, policy cors.Policy) error {
	if err := s.checkBucket(); err != nil {
		return err
	}
	if policy == nil {
		policy = cors.Policy{}
	}
	payload, err := json.MarshalIndent(policy, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cors: %w", err)
	}
	if err := s.backend.PutObject(corsObject, payload); err != nil {
		return fmt.Errorf("set cors on %s: %w", s.dir, err)
	}
	return nil
}

func (s *LocalStore) Metadata(ctx context.Context) (*BucketMetadata, error) {
	if err := s.checkBucket(); err != nil {
		return nil, err
	}

	meta := &BucketMetadata{Name: s.bucket, Location: "local", CORS: cors.Policy{}}

	object, err := s.backend.GetObject(corsObject)
	if err != nil {
		if os.IsNotExist(err) {
			return meta, nil
		}
		return nil, fmt.Errorf("get metadata for %s: %w", s.dir, err)
	}
	if err := json.Unmarshal(object.Content, &meta.CORS); err != nil {
		return nil, fmt.Errorf("decode stored cors for %s: %w", s.dir, err)
	}
	meta.Updated = object.LastModified
	return meta, nil
}

func (s *LocalStore) UploadObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := s.checkBucket(); err != nil {
		return err
	}
	key = strings.TrimPrefix(filepath.ToSlash(key), "/")
	if key == "" || strings.HasPrefix(key, ".bucket/") || slices.Contains(strings.Split(key, "/"), "..") {
		return fmt.Errorf("invalid object key %q", key)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read upload body for %s: %w", key, err)
	}
	if err := s.backend.PutObject(key, content); err != nil {
		return fmt.Errorf("upload %s/%s: %w", s.dir, key, err)
	}
	return nil
}

// ReadObject returns the stored bytes of key.
func (s *LocalStore) ReadObject(key string) ([]byte, error) {
	object, err := s.backend.GetObject(key)
	if err != nil {
		return nil, err
	}
	return object.Content, nil
}

func (s *LocalStore) checkBucket() error {
	info, err := os.Stat(s.dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotFound, s.dir)
	}
	return nil
}

var _ BucketStore = (*LocalStore)(nil)
