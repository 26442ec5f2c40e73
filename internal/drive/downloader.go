package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	// FolderID is a Drive folder ID, or a slash separated path from the
	// Drive root when it contains a "/".
	FolderID    string
	DownloadDir string
}

// Downloader stages the contents of a Drive folder on local disk.
type Downloader struct {
	service *Service
}

func NewDownloader(s *Service) *Downloader {
	return &Downloader{service: s}
}

// DownloadFolder downloads every regular file directly under the folder into
// DownloadDir and returns the local paths. Subfolders and native Google
// documents are skipped.
func (d *Downloader) DownloadFolder(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	folderID := opts.FolderID
	if strings.Contains(folderID, "/") {
		id, err := d.service.FindFolderByPath(ctx, folderID)
		if err != nil {
			return nil, err
		}
		folderID = id
	}

	files, err := d.service.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	staged := make(map[string]string, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if f.IsFolder() || f.IsNative() {
			log.Debug().Str("file", f.Name).Str("mime_type", f.MimeType).Msg("drive: skipping")
			continue
		}

		name := filepath.Base(filepath.Clean("/" + f.Name))
		if name == "/" || name == "." {
			log.Warn().Str("file_id", f.ID).Msg("drive: skipping file without a usable name")
			continue
		}

		// Drive allows several files with one name in a folder; later ones
		// are staged under <stem>-<file id><ext>.
		if prev, taken := staged[name]; taken {
			ext := filepath.Ext(name)
			renamed := strings.TrimSuffix(name, ext) + "-" + f.ID + ext
			if _, clash := staged[renamed]; clash {
				return nil, fmt.Errorf("duplicate drive file name %q (ids %s, %s)", f.Name, prev, f.ID)
			}
			log.Warn().
				Str("file", f.Name).
				Str("file_id", f.ID).
				Str("staged_as", renamed).
				Msg("drive: duplicate file name")
			name = renamed
		}
		staged[name] = f.ID

		localPath := filepath.Join(opts.DownloadDir, name)
		if err := d.download(ctx, f, localPath); err != nil {
			return nil, err
		}
		localPaths = append(localPaths, localPath)
	}

	log.Info().
		Str("folder_id", folderID).
		Int("files", len(localPaths)).
		Str("dir", opts.DownloadDir).
		Msg("drive: folder staged")
	return localPaths, nil
}

func (d *Downloader) download(ctx context.Context, f *File, localPath string) error {
	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	if err := d.service.DownloadFile(ctx, f.ID, out); err != nil {
		out.Close()
		return fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	return out.Close()
}
