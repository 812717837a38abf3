package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nao1215/ionoview/internal/export"
	"github.com/nao1215/ionoview/internal/rawio"
	"github.com/nao1215/ionoview/internal/session"
	"github.com/spf13/cobra"
)

// parquetExt is the extension of exported files.
const parquetExt = ".parquet"

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <sounding>",
		Short: "Export the sample grid of a sounding as Parquet",
		Long: `Export writes every sample of a sounding as one Parquet row with the
columns height (km), frequency (MHz), coordinate and value. The parser
options of the configuration file (raw transform, contrast hack) apply.

Examples:
  # Writes 20200615_1030_iono.parquet
  ionoview export 20200615_1030_iono.txt.gz

  # Choose the output path
  ionoview export -o grid.parquet 20200615_1030_iono.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Output file path (default: sounding name with .parquet extension)")

	return cmd
}

// defaultExportPath replaces the sounding's extensions with .parquet.
func defaultExportPath(sounding string) string {
	p := rawio.TrimCompressionExt(sounding)
	return strings.TrimSuffix(p, filepath.Ext(p)) + parquetExt
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if output == "" {
		output = defaultExportPath(args[0])
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

	if err := export.WriteGridParquet(output, st.Grid); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d samples to %s\n", st.Grid.NFreq()*st.Grid.NRang(), output)
	return nil
}
