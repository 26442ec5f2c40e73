package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/bizdir-ops/internal/records"
	"github.com/andresuchdata/bizdir-ops/internal/service"
)

func recordsCommand() *cli.Command {
	return &cli.Command{
		Name:  "records",
		Usage: "Upload business records into the document store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Usage:   "Records file (.json, .csv or .xlsx)",
				EnvVars: []string{"RECORDS_FILE"},
			},
			&cli.StringFlag{
				Name:    "collection",
				Usage:   "Target collection",
				EnvVars: []string{"RECORDS_COLLECTION"},
			},
			&cli.StringFlag{
				Name:    "id-field",
				Usage:   "Field holding each record's document ID",
				EnvVars: []string{"RECORDS_ID_FIELD"},
			},
		},
		Action: uploadRecords,
	}
}

func uploadRecords(c *cli.Context) error {
	cfg := configFrom(c)
	file := stringOr(c, "file", cfg.App.RecordsFile)
	collection := stringOr(c, "collection", cfg.App.RecordsCollection)
	idField := stringOr(c, "id-field", cfg.App.RecordsIDField)

	docs, err := records.LoadRecords(file, idField)
	if err != nil {
		return err
	}
	log.Info().Str("file", file).Int("records", len(docs)).Msg("loaded records")

	store, err := records.Open(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to open records store: %w", err)
	}
	defer store.Close()

	_, err = service.NewRecordsService(store).Seed(c.Context, collection, docs)
	return err
}

func stringOr(c *cli.Context, flag, fallback string) string {
	if c.IsSet(flag) {
		return c.String(flag)
	}
	return fallback
}
