package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/nao1215/ionoview/internal/database"
	"github.com/nao1215/ionoview/internal/model"
	"github.com/nao1215/ionoview/internal/session"
	"github.com/spf13/cobra"
)

// errInvalidPoint is returned for malformed --point and --point-at values.
var errInvalidPoint = errors.New("point must be written as <x>,<height>")

// NewAnnotateCmd creates the annotate command.
func NewAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate <sounding>",
		Short: "Record the scaling of one layer of a sounding",
		Long: `Annotate edits the scaling of one layer and saves it to the sounding's
".STD" companion file. Edits are applied in this order: --clear,
--remove-point, --critical/--critical-at, --point/--point-at.

Frequencies are in MHz and heights in km. The "-at" variants take plot
coordinates (log of the frequency in the base of the grid's frequency step),
as read from "ionoview inspect --markers", and round to 0.01 MHz.

Examples:
  # Set foF2 and add two trace points
  ionoview annotate --layer F2 --critical 6.25 -p 5.5,250 -p 6.0,280 20200615_1030_iono.txt

  # Start the E layer over
  ionoview annotate --layer E --clear 20200615_1030_iono.txt

  # Save and store the scaling in the archive database
  ionoview annotate --layer F1 --critical 4.1 --archive 20200615_1030_iono.txt

An existing companion file that cannot be read is never overwritten. Fix it
by hand, or pass --force to move it to "<companion>.bak" and start afresh.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnnotateCmd,
	}

	cmd.Flags().StringP("layer", "l", model.LayerF2.String(), "Layer to edit: E, F1 or F2")
	cmd.Flags().Float64("critical", model.CriticalUnset, "Critical frequency in MHz (99 clears it)")
	cmd.Flags().Float64("critical-at", 0, "Critical frequency as a plot coordinate")
	cmd.Flags().StringArrayP("point", "p", nil, "Trace point as <MHz>,<km> (repeatable)")
	cmd.Flags().StringArray("point-at", nil, "Trace point as <coordinate>,<km> (repeatable)")
	cmd.Flags().IntSlice("remove-point", nil, "Indexes of trace points to remove")
	cmd.Flags().Bool("clear", false, "Remove the critical frequency and all trace points first")
	cmd.Flags().Bool("archive", false, "Store the saved scaling in the archive database")
	cmd.Flags().BoolP("force", "f", false, "Move an unreadable companion file to <companion>.bak before saving")

	return cmd
}

// annotateEdits are the parsed edit flags of the annotate command.
type annotateEdits struct {
	layer      model.Layer
	clear      bool
	remove     []int
	critical   *float64
	criticalAt *float64
	points     []model.TracePoint
	pointsAt   [][2]float64
	archive    bool
	force      bool
}

// parseAnnotateFlags reads and validates the edit flags.
func parseAnnotateFlags(cmd *cobra.Command) (*annotateEdits, error) {
	flags := cmd.Flags()
	e := &annotateEdits{}

	name, err := flags.GetString("layer")
	if err != nil {
		return nil, err
	}
	if e.layer, err = model.ParseLayer(name); err != nil {
		return nil, err
	}
	if e.clear, err = flags.GetBool("clear"); err != nil {
		return nil, err
	}
	if e.archive, err = flags.GetBool("archive"); err != nil {
		return nil, err
	}
	if e.force, err = flags.GetBool("force"); err != nil {
		return nil, err
	}
	if e.remove, err = flags.GetIntSlice("remove-point"); err != nil {
		return nil, err
	}

	if flags.Changed("critical") && flags.Changed("critical-at") {
		return nil, errors.New("--critical and --critical-at are mutually exclusive")
	}
	if flags.Changed("critical") {
		v, err := flags.GetFloat64("critical")
		if err != nil {
			return nil, err
		}
		e.critical = &v
	}
	if flags.Changed("critical-at") {
		v, err := flags.GetFloat64("critical-at")
		if err != nil {
			return nil, err
		}
		e.criticalAt = &v
	}

	raw, err := flags.GetStringArray("point")
	if err != nil {
		return nil, err
	}
	for _, r := range raw {
		x, h, err := parsePoint(r)
		if err != nil {
			return nil, err
		}
		e.points = append(e.points, model.TracePoint{Frequency: x, Height: h})
	}

	raw, err = flags.GetStringArray("point-at")
	if err != nil {
		return nil, err
	}
	for _, r := range raw {
		x, h, err := parsePoint(r)
		if err != nil {
			return nil, err
		}
		e.pointsAt = append(e.pointsAt, [2]float64{x, h})
	}

	return e, nil
}

// parsePoint parses "<x>,<height>".
func parsePoint(s string) (float64, float64, error) {
	xs, hs, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", errInvalidPoint, s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", errInvalidPoint, s)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(hs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", errInvalidPoint, s)
	}
	return x, h, nil
}

// apply performs the edits on the open sounding of s.
func (e *annotateEdits) apply(s *session.Session) error {
	if e.clear {
		if err := s.ClearLayer(e.layer); err != nil {
			return err
		}
	}

	// Highest index first so earlier removals do not shift later ones.
	remove := slices.Clone(e.remove)
	slices.Sort(remove)
	for _, i := range slices.Backward(slices.Compact(remove)) {
		if err := s.RemovePoint(e.layer, i); err != nil {
			return err
		}
	}

	switch {
	case e.critical != nil:
		if err := s.SetCritical(e.layer, *e.critical); err != nil {
			return err
		}
	case e.criticalAt != nil:
		if err := s.SetCriticalAt(e.layer, *e.criticalAt); err != nil {
			return err
		}
	}

	for _, p := range e.points {
		if err := s.AddPoint(e.layer, p); err != nil {
			return err
		}
	}
	for _, p := range e.pointsAt {
		if err := s.AddPointAt(e.layer, p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

// runAnnotateCmd executes the annotate command.
func runAnnotateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	edits, err := parseAnnotateFlags(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)
	scfg, err := sessionConfig(cfg)
	if err != nil {
		return err
	}

	s := session.New(scfg, logger)
	opened, err := s.Open(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	if opened.CompanionErr != nil {
		if !edits.force {
			return fmt.Errorf("%w: %s: %v (fix it or rerun with --force)",
				session.ErrCompanionUnreadable, opened.CompanionPath(), opened.CompanionErr)
		}
		backup, err := s.BackupCompanion()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Moved unreadable %s to %s\n", opened.CompanionPath(), backup)
	}

	if err := edits.apply(s); err != nil {
		return err
	}

	companion, err := s.Save()
	if err != nil {
		return fmt.Errorf("failed to save scaling: %w", err)
	}

	st := s.Current()
	set := st.Annotations.Get(edits.layer)
	fmt.Fprintf(out, "Saved %s\n", companion)
	fmt.Fprintf(out, "  %s = %s, %d trace point(s)\n",
		edits.layer.CriticalName(), formatCritical(set.Critical), len(set.Points))

	if !edits.archive && !cfg.Database.Enabled {
		return nil
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // nothing to recover on close

	hash, err := database.HashFile(st.Path)
	if err != nil {
		return fmt.Errorf("failed to hash sounding: %w", err)
	}
	if err := db.SaveScaled(ctx, database.NewScaledRecord(st.Path, st.Header, st.Annotations, hash)); err != nil {
		return fmt.Errorf("failed to archive scaling: %w", err)
	}
	fmt.Fprintf(out, "Archived to %s\n", db.Path())
	return nil
}

// formatCritical renders a critical frequency, "unset" for the sentinel.
func formatCritical(v float64) string {
	if model.IsCriticalUnset(v) {
		return "unset"
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + " MHz"
}
