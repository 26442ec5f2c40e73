package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andresuchdata/bizdir-ops/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// ErrLocalFileNotFound is returned before any remote call when the source
// file does not exist.
var ErrLocalFileNotFound = errors.New("local file not found")

// UploadError wraps a remote-side upload failure.
type UploadError struct {
	LocalPath   string
	Destination string
	Err         error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s to %s: %v", e.LocalPath, e.Destination, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// UploadOptions tunes UploadService.
type UploadOptions struct {
	Concurrency int  // parallel uploads in UploadDir
	Progress    bool // render a progress bar for single uploads
}

// UploadService streams local files into one bucket.
type UploadService struct {
	store storage.BucketStore
	opts  UploadOptions
}

func NewUploadService(store storage.BucketStore, opts UploadOptions) *UploadService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &UploadService{store: store, opts: opts}
}

// Upload creates or overwrites destination with the contents of localPath.
func (s *UploadService) Upload(ctx context.Context, localPath, destination string) error {
	return s.upload(ctx, localPath, destination, s.opts.Progress)
}

func (s *UploadService) upload(ctx context.Context, localPath, destination string, progress bool) error {
	info, err := os.Stat(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrLocalFileNotFound, localPath)
		}
		return fmt.Errorf("stat %s: %w", localPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", localPath)
	}
	if destination == "" {
		destination = filepath.Base(localPath)
	}

	contentType := "application/octet-stream"
	if mtype, err := mimetype.DetectFile(localPath); err == nil {
		contentType = mtype.String()
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	var body io.Reader = f
	if progress {
		bar := progressbar.DefaultBytes(info.Size(), "uploading "+filepath.Base(localPath))
		defer bar.Close()
		body = io.TeeReader(f, bar)
	}

	log.Debug().
		Str("file", localPath).
		Str("destination", destination).
		Str("content_type", contentType).
		Int64("size", info.Size()).
		Msg("upload: starting")

	if err := s.store.UploadObject(ctx, destination, body, info.Size(), contentType); err != nil {
		return &UploadError{LocalPath: localPath, Destination: destination, Err: err}
	}

	log.Info().
		Str("bucket", s.store.Bucket()).
		Str("destination", destination).
		Msg("upload: done")
	return nil
}

// UploadDir uploads every regular file under dir to prefix/<relative path>
// and returns the destination keys in lexical order. The first failure
// cancels uploads that have not started yet.
func (s *UploadService) UploadDir(ctx context.Context, dir, prefix string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLocalFileNotFound, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	keys := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, file := range files {
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return nil, err
		}
		key := objectKey(prefix, rel)
		keys[i] = key

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return s.upload(gctx, file, key, false)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(keys)
	log.Info().
		Str("bucket", s.store.Bucket()).
		Str("prefix", prefix).
		Int("count", len(keys)).
		Msg("upload: directory done")
	return keys, nil
}

func objectKey(prefix, rel string) string {
	rel = filepath.ToSlash(rel)
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}
