package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/ionoview/internal/model"
	"github.com/nao1215/ionoview/internal/report"
	"github.com/nao1215/ionoview/internal/session"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <sounding>",
		Short: "Show the header, grid and scaling of a sounding",
		Long: `Inspect parses a sounding file and its companion file and prints a summary:
station metadata, the resolved sunspot number, the frequency and height
axes and the critical frequencies and trace points of every layer.

Examples:
  # Human-readable summary
  ionoview inspect 20200615_1030_iono.txt

  # Include frequency axis ticks and trace markers in plot coordinates
  ionoview inspect --ticks --markers 20200615_1030_iono.txt

  # JSON for scripts
  ionoview inspect --json 20200615_1030_iono.txt.gz`,
		Args: cobra.ExactArgs(1),
		RunE: runInspectCmd,
	}

	addReportFlags(cmd)
	cmd.Flags().Bool("ticks", false, "Show frequency axis ticks")
	cmd.Flags().Bool("markers", false, "Show trace points and critical lines in plot coordinates")

	return cmd
}

// runInspectCmd executes the inspect command.
func runInspectCmd(cmd *cobra.Command, args []string) error {
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

	showTicks, err := cmd.Flags().GetBool("ticks")
	if err != nil {
		return err
	}
	showMarkers, err := cmd.Flags().GetBool("markers")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)
	scfg, err := sessionConfig(cfg)
	if err != nil {
		return err
	}

	s := session.New(scfg, logger)
	st, err := s.Open(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	summary := report.NewSummary(st)
	err = writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.Write(summary)
		return err
	}, report.WithTicks(showTicks), report.WithVerbose(cfg.Verbose))
	if err != nil {
		return err
	}

	if showMarkers {
		writeMarkers(cmd.OutOrStdout(), s, logger)
	}
	return nil
}

// writeMarkers prints each layer's critical line and trace points in plot
// coordinates.
func writeMarkers(out io.Writer, s *session.Session, logger *slog.Logger) {
	for _, l := range model.Layers() {
		if coord, ok := s.CriticalLine(l); ok {
			fmt.Fprintf(out, "%s critical line at x=%.4f\n", l.CriticalName(), coord)
		}
		markers, errs := s.Markers(l)
		for _, err := range errs {
			logger.Warn("cannot place trace point", "layer", l.String(), "error", err)
		}
		for _, m := range markers {
			fmt.Fprintf(out, "%s point %d at x=%.4f h=%.1f (%.2f MHz)\n",
				l, m.Index, m.Coordinate, m.Height, m.Point.Frequency)
		}
	}
}
