package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/bizdir-ops/internal/credentials"
	"github.com/andresuchdata/bizdir-ops/internal/drive"
	"github.com/andresuchdata/bizdir-ops/internal/service"
)

func assetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "assets",
		Usage: "Upload the asset directory (optionally staged from Google Drive) into the bucket",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "Local asset directory",
				EnvVars: []string{"ASSETS_DIR"},
			},
			&cli.StringFlag{
				Name:    "prefix",
				Usage:   "Object key prefix",
				EnvVars: []string{"ASSETS_PREFIX"},
			},
			&cli.StringFlag{
				Name:    "drive-folder-id",
				Usage:   "Google Drive folder ID or path to download before uploading",
				EnvVars: []string{"ASSETS_DRIVE_FOLDER_ID"},
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Usage:   "Parallel uploads",
				EnvVars: []string{"UPLOAD_CONCURRENCY"},
			},
		},
		Action: uploadAssets,
	}
}

func uploadAssets(c *cli.Context) error {
	cfg := configFrom(c)
	dir := stringOr(c, "dir", cfg.App.AssetsDir)
	prefix := stringOr(c, "prefix", cfg.App.AssetsPrefix)
	folder := stringOr(c, "drive-folder-id", cfg.App.AssetsDriveFolder)
	concurrency := cfg.App.UploadConcurrency
	if c.IsSet("concurrency") {
		concurrency = c.Int("concurrency")
	}

	if folder != "" {
		staging, err := os.MkdirTemp("", "bizops-assets-")
		if err != nil {
			return fmt.Errorf("failed to create staging dir: %w", err)
		}
		defer os.RemoveAll(staging)

		if err := stageFromDrive(c, folder, staging); err != nil {
			return err
		}
		dir = staging
	}

	store, err := openStore(c.Context, cfg)
	if err != nil {
		return err
	}

	keys, err := service.NewUploadService(store, service.UploadOptions{Concurrency: concurrency}).
		UploadDir(c.Context, dir, prefix)
	if err != nil {
		return err
	}
	log.Info().Int("objects", len(keys)).Str("bucket", store.Bucket()).Msg("assets uploaded")
	return nil
}

func stageFromDrive(c *cli.Context, folder, staging string) error {
	cfg := configFrom(c)
	chain := credentials.DefaultChain(cfg.Storage.CredentialsEnv, cfg.Storage.CredentialsFile)
	creds, err := chain.Resolve(c.Context, drive.Scopes...)
	if err != nil {
		return err
	}

	svc, err := drive.NewService(c.Context, creds)
	if err != nil {
		return err
	}

	_, err = drive.NewDownloader(svc).DownloadFolder(c.Context, drive.DownloadOptions{
		FolderID:    folder,
		DownloadDir: staging,
	})
	return err
}
