package main

import (
	"fmt"

	"github.com/nao1215/ionoview/internal/database"
	"github.com/nao1215/ionoview/internal/pipeline"
	"github.com/nao1215/ionoview/internal/report"
	"github.com/spf13/cobra"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <sounding>...",
		Short: "Summarize the scaling of many soundings",
		Long: `Batch opens many soundings concurrently and prints one line per sounding
with its critical frequencies and sunspot number, in the order given.
Files that cannot be read are reported and do not stop the batch.

Examples:
  # Summarize a day of soundings
  ionoview batch 20200615_*_iono.txt

  # Store every scaled sounding in the archive database
  ionoview batch --archive --concurrency 8 2020*/*_iono.txt.gz

  # Markdown table with a scaling status chart
  ionoview batch --markdown -o june.md 202006*_iono.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatchCmd,
	}

	addReportFlags(cmd)
	cmd.Flags().IntP("concurrency", "n", 0,
		"Number of soundings processed at once (default: from configuration)")
	cmd.Flags().Bool("archive", false, "Store scaled soundings in the archive database")

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyReportFlags(cmd, cfg); err != nil {
		return err
	}

	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.BatchSize = concurrency
	}
	archive, err := cmd.Flags().GetBool("archive")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	scfg, err := sessionConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	var db *database.ArchiveDB
	if archive || cfg.Database.Enabled {
		db, err = openArchive(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck // nothing to recover on close
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(scfg, db, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	summaries, err := bp.ProcessBatch(ctx, args)
	if err != nil {
		return err
	}

	return writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteBatch(summaries)
		return err
	})
}
