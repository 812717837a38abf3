package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/ionoview/internal/database"
	"github.com/nao1215/ionoview/internal/model"
	"github.com/nao1215/ionoview/internal/session"
	"github.com/spf13/cobra"
)

// Constants for the per-layer change of a comparison.
const (
	changeUnchanged = "unchanged"
	changeAdded     = "added"
	changeRemoved   = "removed"
	changeChanged   = "changed"
)

// NewCompareCmd creates the compare command.
// This command compares a sounding's current scaling with the archived one.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <sounding>",
		Short: "Compare a sounding's scaling with the archived scaling",
		Long: `Compare shows how the scaling in a sounding's companion file differs from
the scaling stored in the archive database by "annotate --archive":
- Critical frequencies that were added, removed or changed
- Changes in the number of trace points
- Whether the sounding file changed since it was archived

Examples:
  # Compare with the archive
  ionoview compare 20200615_1030_iono.txt

  # JSON for scripts
  ionoview compare --json 20200615_1030_iono.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// ComparisonResult is the difference between an archived and a current
// scaling of one sounding.
type ComparisonResult struct {
	// SoundingPath is the compared sounding.
	SoundingPath string `json:"sounding_path"`

	// ArchivedAt is when the archived scaling was saved.
	ArchivedAt time.Time `json:"archived_at"`

	// FileChanged reports whether the sounding's hash differs from the
	// archived hash.
	FileChanged bool `json:"file_changed"`

	// Layers holds one entry per layer in E, F1, F2 order.
	Layers []LayerChange `json:"layers"`
}

// LayerChange is the change of one layer's scaling.
type LayerChange struct {
	Layer model.Layer `json:"layer"`

	// Archived and Current are critical frequencies in MHz, 99.0 when unset.
	Archived float64 `json:"archived"`
	Current  float64 `json:"current"`

	// Delta is Current - Archived when both are set, otherwise 0.
	Delta float64 `json:"delta"`

	// Change is one of unchanged, added, removed or changed.
	Change string `json:"change"`

	ArchivedPoints int `json:"archived_points"`
	CurrentPoints  int `json:"current_points"`
}

// Changed reports whether any layer changed.
func (r *ComparisonResult) Changed() bool {
	for _, l := range r.Layers {
		if l.Change != changeUnchanged || l.ArchivedPoints != l.CurrentPoints {
			return true
		}
	}
	return false
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	logger := setupLogger(cmd, cfg.Verbose)
	scfg, err := sessionConfig(cfg)
	if err != nil {
		return err
	}

	// Validate the sounding before opening the database so that a bad
	// path does not create an empty archive.
	s := session.New(scfg, logger)
	st, err := s.Open(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // nothing to recover on close

	archived, err := db.GetScaled(ctx, st.Path)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%s has not been archived (use annotate --archive)", st.Path)
	}
	if err != nil {
		return err
	}

	hash, err := database.HashFile(st.Path)
	if err != nil {
		return fmt.Errorf("failed to hash sounding: %w", err)
	}

	result := compareScalings(archived, st.Annotations)
	result.FileChanged = archived.FileHash != "" && archived.FileHash != hash

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		return outputComparisonJSON(out, result)
	case markdownOutput:
		return outputComparisonMarkdown(out, result)
	default:
		return outputComparisonText(out, result)
	}
}

// compareScalings compares an archived record with current annotations.
func compareScalings(archived *database.ScaledRecord, current *model.Annotations) *ComparisonResult {
	result := &ComparisonResult{
		SoundingPath: archived.SoundingPath,
		ArchivedAt:   archived.SavedAt,
	}

	prev := archived.Annotations
	if prev == nil {
		prev = model.NewAnnotations()
	}

	for _, l := range model.Layers() {
		p := prev.Get(l)
		c := current.Get(l)
		lc := LayerChange{
			Layer:          l,
			Archived:       p.Critical,
			Current:        c.Critical,
			ArchivedPoints: len(p.Points),
			CurrentPoints:  len(c.Points),
		}
		switch {
		case !p.HasCritical() && !c.HasCritical():
			lc.Change = changeUnchanged
		case !p.HasCritical():
			lc.Change = changeAdded
		case !c.HasCritical():
			lc.Change = changeRemoved
		default:
			lc.Delta = c.Critical - p.Critical
			lc.Change = changeChanged
			if lc.Delta == 0 {
				lc.Change = changeUnchanged
			}
		}
		result.Layers = append(result.Layers, lc)
	}
	return result
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(w io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(w io.Writer, result *ComparisonResult) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Scaling Comparison: %s\n\n", result.SoundingPath)
	fmt.Fprintf(&sb, "**Archived:** %s\n\n", result.ArchivedAt.Format("2006-01-02 15:04"))
	if result.FileChanged {
		sb.WriteString("**Warning:** the sounding file changed since it was archived.\n\n")
	}

	sb.WriteString("| Layer | Archived | Current | Change | Points |\n")
	sb.WriteString("|-------|----------|---------|--------|--------|\n")
	for _, l := range result.Layers {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %d → %d |\n",
			l.Layer.CriticalName(), formatCritical(l.Archived), formatCritical(l.Current),
			formatChange(l), l.ArchivedPoints, l.CurrentPoints)
	}

	if !result.Changed() {
		sb.WriteString("\n---\n\n*Scaling unchanged*\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(w io.Writer, result *ComparisonResult) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scaling Comparison: %s\n", result.SoundingPath)
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "\nArchived: %s\n", result.ArchivedAt.Format("2006-01-02 15:04:05"))
	if result.FileChanged {
		sb.WriteString("Warning:  sounding file changed since it was archived\n")
	}

	fmt.Fprintf(&sb, "\n  %-6s  %-10s  %-10s  %-12s  %s\n", "Layer", "Archived", "Current", "Change", "Points")
	sb.WriteString("  " + strings.Repeat("-", 54) + "\n")
	for _, l := range result.Layers {
		fmt.Fprintf(&sb, "  %-6s  %-10s  %-10s  %-12s  %d -> %d\n",
			l.Layer.CriticalName(), formatCritical(l.Archived), formatCritical(l.Current),
			formatChange(l), l.ArchivedPoints, l.CurrentPoints)
	}

	if !result.Changed() {
		sb.WriteString("\nScaling unchanged\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// formatChange formats a layer change for display, with the signed delta
// for changed critical frequencies.
func formatChange(l LayerChange) string {
	if l.Change != changeChanged {
		return l.Change
	}
	return formatDelta(l.Delta)
}

// formatDelta formats a frequency delta with sign for display.
func formatDelta(delta float64) string {
	s := strconv.FormatFloat(delta, 'f', 2, 64)
	if delta > 0 {
		return "+" + s
	}
	return s
}
