package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/ionoview/internal/model"
)

// lineWidth is the width of the section rules.
const lineWidth = 70

// SimpleWriter outputs human-readable text reports.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and pipes cleanly to files.
type SimpleWriter struct {
	baseWriter

	// showTicks controls whether the frequency tick table is printed.
	showTicks bool

	// verbose prints every trace point instead of a count.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithTicks configures the writer to print the frequency ticks.
func WithTicks(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showTicks = show
	}
}

// WithVerbose enables verbose output with every trace point.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(s *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, s)
	w.writeGrid(&sb, s)
	w.writeLayers(&sb, s)
	if w.showTicks {
		w.writeTicks(&sb, s)
	}
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the banner and the sounding metadata.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *Summary) {
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "IONOGRAM  %s\n", s.Description)
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n\n")

	h := s.Header
	fmt.Fprintf(sb, "File:           %s\n", s.Path)
	fmt.Fprintf(sb, "Station:        %s (%.3f N, %.3f E)\n", h.Station, h.Latitude, h.Longitude)
	fmt.Fprintf(sb, "Gyrofrequency:  %.2f MHz\n", h.Gyrofrequency)
	fmt.Fprintf(sb, "Dip:            %.1f deg\n", h.Dip)
	fmt.Fprintf(sb, "Sunspot:        %s\n", formatSunspot(h.Sunspot, h.SunspotKnown))
	if s.CompanionFound {
		sb.WriteString("Companion:      found\n")
	} else {
		sb.WriteString("Companion:      none\n")
	}
	sb.WriteString("\n")
}

// writeGrid writes the grid dimensions and axes.
func (w *SimpleWriter) writeGrid(sb *strings.Builder, s *Summary) {
	writeSection(sb, "GRID")
	fmt.Fprintf(sb, "  Frequencies:  %d (%.3f - %.3f MHz, step x%.5f)\n", s.NFreq, s.FrequencyMin, s.FrequencyMax, s.Step)
	fmt.Fprintf(sb, "  Heights:      %d (%.1f - %.1f km)\n", s.NRang, s.Extent.Bottom, s.Extent.Top)
	fmt.Fprintf(sb, "  Coordinates:  %.3f - %.3f\n", s.Extent.Left, s.Extent.Right)
	fmt.Fprintf(sb, "  Max sample:   %g\n", s.MaxSample)
	sb.WriteString("\n")
}

// writeLayers writes the scaling per layer.
func (w *SimpleWriter) writeLayers(sb *strings.Builder, s *Summary) {
	writeSection(sb, "SCALING")
	for _, ls := range s.Layers {
		fmt.Fprintf(sb, "  %-5s %-8s %d point(s)\n", ls.Layer.CriticalName(), formatCritical(ls.Critical), len(ls.Points))
		if !w.verbose {
			continue
		}
		for _, p := range ls.Points {
			fmt.Fprintf(sb, "        %5.2f MHz  %5.1f km\n", p.Frequency, p.Height)
		}
	}
	sb.WriteString("\n")
}

// writeTicks writes the frequency axis labels.
func (w *SimpleWriter) writeTicks(sb *strings.Builder, s *Summary) {
	writeSection(sb, "FREQUENCY TICKS")
	if len(s.Ticks) == 0 {
		sb.WriteString("  No ticks\n\n")
		return
	}
	for _, t := range s.Ticks {
		fmt.Fprintf(sb, "  %4s MHz at %.4f\n", t.Label, t.Coordinate)
	}
	sb.WriteString("\n")
}

// WriteBatch outputs one line per sounding.
func (w *SimpleWriter) WriteBatch(summaries []*Summary) (int, error) {
	var sb strings.Builder
	writeSection(&sb, fmt.Sprintf("BATCH (%d soundings)", len(summaries)))

	failed := 0
	for _, s := range summaries {
		if s.Failed() {
			failed++
			fmt.Fprintf(&sb, "  [!] %s: %s\n", s.Path, s.Error)
			continue
		}
		foE, _ := s.Critical(model.LayerE)
		foF1, _ := s.Critical(model.LayerF1)
		foF2, _ := s.Critical(model.LayerF2)
		fmt.Fprintf(&sb, "  [+] %s  foE=%s foF1=%s foF2=%s ssn=%s\n",
			s.Header.ObservedAt.Format(model.TimestampLayout),
			formatCritical(foE), formatCritical(foF1), formatCritical(foF2),
			formatSunspot(s.Header.Sunspot, s.Header.SunspotKnown))
	}
	fmt.Fprintf(&sb, "\n  %d ok, %d failed\n", len(summaries)-failed, failed)

	return io.WriteString(w.output, sb.String())
}

// WriteHistory outputs archived scalings, one per line.
func (w *SimpleWriter) WriteHistory(rows []HistoryRow) (int, error) {
	var sb strings.Builder
	writeSection(&sb, "HISTORY")
	if len(rows) == 0 {
		sb.WriteString("  No archived scalings\n")
	}
	for _, r := range rows {
		fmt.Fprintf(&sb, "  %-8s %s  foE=%s foF1=%s foF2=%s ssn=%s\n",
			r.Station, r.ObservedAt.Format(model.TimestampLayout),
			formatCritical(r.FoE), formatCritical(r.FoF1), formatCritical(r.FoF2),
			formatSunspot(r.Sunspot, r.SunspotKnown))
	}
	return io.WriteString(w.output, sb.String())
}

// writeSection writes a titled section rule.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n\n")
}
