package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/ionoview/internal/config"
	"github.com/nao1215/ionoview/internal/report"
	"github.com/spf13/cobra"
)

// addReportFlags registers the report format and destination flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// applyReportFlags copies the report flags into cfg.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	return err
}

// newReportWriter returns the writer for the configured format.
func newReportWriter(cfg *config.Config, out io.Writer, opts ...report.SimpleWriterOption) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, opts...)
	}
}

// writeReport opens the configured destination and passes a report writer
// to fn. Without --output the report goes to the command's stdout.
func writeReport(cmd *cobra.Command, cfg *config.Config, fn func(report.Writer) error, opts ...report.SimpleWriterOption) error {
	out := cmd.OutOrStdout()
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // close error is reported by the write below
		out = f
	}

	return fn(newReportWriter(cfg, out, opts...))
}
