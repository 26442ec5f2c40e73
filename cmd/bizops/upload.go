package main

import (
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/bizdir-ops/internal/service"
)

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload one local file to the bucket",
		ArgsUsage: "<local-path> [destination]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress bar",
				Value: true,
			},
		},
		Action: uploadFile,
	}
}

func uploadFile(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("upload requires a local path", 1)
	}
	localPath := c.Args().Get(0)
	destination := c.Args().Get(1)

	store, err := openStore(c.Context, configFrom(c))
	if err != nil {
		return err
	}

	svc := service.NewUploadService(store, service.UploadOptions{Progress: c.Bool("progress")})
	return svc.Upload(c.Context, localPath, destination)
}
