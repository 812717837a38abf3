package main

import (
	"fmt"
	"time"

	"github.com/nao1215/ionoview/internal/database"
	"github.com/nao1215/ionoview/internal/export"
	"github.com/nao1215/ionoview/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived scalings",
		Long: `History lists the scalings stored in the archive database by
"annotate --archive" and "batch --archive", oldest first.

Examples:
  # Everything archived for the configured station in June 2020
  ionoview history --from 2020-06-01 --to 2020-06-30

  # All stations, exported for analysis
  ionoview history --all-stations --parquet scaled.parquet

  # Stations present in the archive
  ionoview history --stations`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	addReportFlags(cmd)
	cmd.Flags().StringP("station", "s", "", "Station name (default: from configuration)")
	cmd.Flags().Bool("all-stations", false, "List every station")
	cmd.Flags().String("from", "", "First day to list (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Last day to list, inclusive (YYYY-MM-DD)")
	cmd.Flags().String("parquet", "", "Also write the rows to a Parquet file")
	cmd.Flags().Bool("stations", false, "List the archived stations and exit")

	return cmd
}

// historyRange parses the --from and --to flags into a half-open range.
// The --to day is included.
func historyRange(fromStr, toStr string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if fromStr != "" {
		if from, err = time.Parse(dateLayout, fromStr); err != nil {
			return from, to, fmt.Errorf("invalid --from %q: %w", fromStr, err)
		}
	}
	if toStr != "" {
		if to, err = time.Parse(dateLayout, toStr); err != nil {
			return from, to, fmt.Errorf("invalid --to %q: %w", toStr, err)
		}
		to = to.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return from, to, fmt.Errorf("--from %s is after --to %s", fromStr, toStr)
	}
	return from, to, nil
}

// historyRows converts archive records to report rows.
func historyRows(records []*database.ScaledRecord) []report.HistoryRow {
	rows := make([]report.HistoryRow, len(records))
	for i, rec := range records {
		rows[i] = report.HistoryRow{
			Station:      rec.Station,
			ObservedAt:   rec.ObservedAt,
			FoE:          rec.FoE,
			FoF1:         rec.FoF1,
			FoF2:         rec.FoF2,
			Sunspot:      rec.Sunspot,
			SunspotKnown: rec.SunspotKnown,
			SoundingPath: rec.SoundingPath,
		}
	}
	return rows
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyReportFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	flags := cmd.Flags()
	station, err := flags.GetString("station")
	if err != nil {
		return err
	}
	allStations, err := flags.GetBool("all-stations")
	if err != nil {
		return err
	}
	listStations, err := flags.GetBool("stations")
	if err != nil {
		return err
	}
	fromStr, err := flags.GetString("from")
	if err != nil {
		return err
	}
	toStr, err := flags.GetString("to")
	if err != nil {
		return err
	}
	parquetPath, err := flags.GetString("parquet")
	if err != nil {
		return err
	}

	from, to, err := historyRange(fromStr, toStr)
	if err != nil {
		return err
	}
	switch {
	case allStations:
		station = ""
	case station == "":
		station = cfg.Station.Name
	}

	logger := setupLogger(cmd, cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // nothing to recover on close

	if listStations {
		stations, err := db.ListStations(ctx)
		if err != nil {
			return err
		}
		for _, s := range stations {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return nil
	}

	records, err := db.ListScaled(ctx, station, from, to)
	if err != nil {
		return err
	}
	logger.Debug("listed archived scalings", "station", station, "count", len(records))

	if parquetPath != "" {
		if err := export.WriteScaledParquet(parquetPath, records); err != nil {
			return err
		}
	}

	return writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteHistory(historyRows(records))
		return err
	})
}
