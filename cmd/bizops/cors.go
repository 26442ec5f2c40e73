package main

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/bizdir-ops/internal/cors"
	"github.com/andresuchdata/bizdir-ops/internal/service"
)

func corsCommand() *cli.Command {
	return &cli.Command{
		Name:  "cors",
		Usage: "Manage the bucket CORS policy",
		Subcommands: []*cli.Command{
			{
				Name:  "apply",
				Usage: "Apply the local CORS document to the bucket and read it back",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Usage:   "CORS document (.json or .yaml), relative to the executable",
						EnvVars: []string{"CORS_FILE"},
					},
					&cli.BoolFlag{
						Name:    "strict",
						Usage:   "Exit non-zero when applying fails",
						EnvVars: []string{"CORS_STRICT"},
					},
				},
				Action: applyCORS,
			},
			{
				Name:   "verify",
				Usage:  "Print the CORS policy currently in effect on the bucket",
				Action: verifyCORS,
			},
		},
	}
}

// applyCORS logs every failure. Without --strict it still exits 0.
func applyCORS(c *cli.Context) error {
	cfg := configFrom(c)
	strict := cfg.App.CorsStrict
	if c.IsSet("strict") {
		strict = c.Bool("strict")
	}
	file := cfg.App.CorsFile
	if c.IsSet("file") {
		file = c.String("file")
	}

	fail := func(err error, msg string) error {
		log.Error().Err(err).Msg(msg)
		if strict {
			return cli.Exit(msg, 1)
		}
		return nil
	}

	path := cors.Resolve(file, cors.ExecutableDir())
	policy, err := cors.Load(path)
	if err != nil {
		return fail(err, "failed to load CORS document")
	}
	log.Info().Str("file", path).Int("rules", len(policy)).Msg("loaded CORS document")

	store, err := openStore(c.Context, cfg)
	if err != nil {
		return fail(err, "failed to open bucket")
	}

	if _, err := service.NewCORSService(store).ApplyAndVerify(c.Context, policy); err != nil {
		return fail(err, "failed to set CORS configuration")
	}
	return nil
}

func verifyCORS(c *cli.Context) error {
	cfg := configFrom(c)
	store, err := openStore(c.Context, cfg)
	if err != nil {
		return err
	}

	policy, err := service.NewCORSService(store).Verify(c.Context)
	if err != nil {
		return err
	}
	log.Info().
		Str("bucket", store.Bucket()).
		Interface("cors", policy).
		Msg("current CORS configuration")
	return nil
}
