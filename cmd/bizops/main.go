package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/bizdir-ops/internal/config"
	"github.com/andresuchdata/bizdir-ops/internal/pipeline"
	"github.com/andresuchdata/bizdir-ops/internal/storage"
	"github.com/andresuchdata/bizdir-ops/pkg/logger"
)

type configKey struct{}

func loadConfig(c *cli.Context) error {
	cfg := config.Load()
	if c.IsSet("log-level") {
		cfg.App.LogLevel = c.String("log-level")
	}
	logger.SetLevel(cfg.App.LogLevel)
	if step := os.Getenv(pipeline.StepEnvVar); step != "" {
		logger.Step(step)
	}

	c.Context = context.WithValue(c.Context, configKey{}, cfg)
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.Context.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.Load()
}

// openStore resolves the bucket target and opens its store. The target is
// built once per process.
func openStore(ctx context.Context, cfg *config.Config) (storage.BucketStore, error) {
	target, err := storage.ResolveTarget(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("provider", cfg.Storage.Provider).
		Str("bucket", target.BucketName).
		Msg("storage target resolved")
	return storage.Open(ctx, cfg.Storage, target)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bizops",
		Usage: "Configure and populate the business directory's bucket and document store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: loadConfig,
		Commands: []*cli.Command{
			corsCommand(),
			recordsCommand(),
			assetsCommand(),
			uploadCommand(),
			runCommand(),
		},
	}
}

func main() {
	// cli.Exit errors terminate inside Run with their own code.
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("bizops failed")
	}
}
