package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/ionoview/internal/sunspot"
	"github.com/spf13/cobra"
)

// dateLayout is the layout of date arguments and flags.
const dateLayout = "2006-01-02"

// errNoSunspot is returned when the table has no row for the date.
var errNoSunspot = errors.New("no sunspot number for date")

// NewSunspotCmd creates the sunspot command.
func NewSunspotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sunspot <YYYY-MM-DD>",
		Short: "Look up the daily sunspot number",
		Long: `Sunspot prints the sunspot number the sunspot table holds for a date, the
same value ionoview writes to companion files.

Examples:
  # Use the table from the configuration file
  ionoview sunspot 2020-06-15

  # Use another table
  ionoview sunspot --table SN_d_tot_V2.0.csv.gz 2020-06-15`,
		Args: cobra.ExactArgs(1),
		RunE: runSunspotCmd,
	}

	cmd.Flags().StringP("table", "t", "", "Sunspot table path (default: from configuration)")

	return cmd
}

// runSunspotCmd executes the sunspot command.
func runSunspotCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	date, err := time.Parse(dateLayout, args[0])
	if err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", args[0], err)
	}

	path, err := cmd.Flags().GetString("table")
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.Sunspot.Table
	}
	if path == "" {
		return errors.New("no sunspot table configured (use --table)")
	}

	tbl, err := sunspot.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded sunspot table", "path", path, "days", tbl.Len(), "skipped", tbl.Skipped())

	ssn, ok := tbl.Resolve(date)
	if !ok {
		return fmt.Errorf("%w %s in %s", errNoSunspot, date.Format(dateLayout), path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", date.Format(dateLayout), ssn)
	return nil
}
