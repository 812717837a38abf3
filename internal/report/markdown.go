package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/ionoview/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary of one sounding in Markdown format.
func (w *MarkdownWriter) Write(s *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeLayers(md, s)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the sounding metadata table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	h := s.Header
	md.H1("Ionogram " + s.Description)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"File", "`" + s.Path + "`"},
			{"Station", h.Station},
			{"Coordinates", fmt.Sprintf("%.3f N, %.3f E", h.Latitude, h.Longitude)},
			{"Gyrofrequency", fmt.Sprintf("%.2f MHz", h.Gyrofrequency)},
			{"Dip", fmt.Sprintf("%.1f deg", h.Dip)},
			{"Sunspot", formatSunspot(h.Sunspot, h.SunspotKnown)},
			{"Frequencies", fmt.Sprintf("%d (%.3f - %.3f MHz)", s.NFreq, s.FrequencyMin, s.FrequencyMax)},
			{"Heights", fmt.Sprintf("%d (%.1f - %.1f km)", s.NRang, s.Extent.Bottom, s.Extent.Top)},
		},
	})
	md.PlainText("")
}

// writeLayers writes the scaling table and the trace points per layer.
func (w *MarkdownWriter) writeLayers(md *markdown.Markdown, s *Summary) {
	md.H2("Scaling")
	md.PlainText("")

	rows := make([][]string, 0, len(s.Layers))
	scaled := 0
	for _, ls := range s.Layers {
		if ls.HasCritical {
			scaled++
		}
		rows = append(rows, []string{
			ls.Layer.CriticalName(),
			formatCritical(ls.Critical),
			strconv.Itoa(len(ls.Points)),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Layer", "Critical (MHz)", "Points"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case !s.CompanionFound:
		md.Note("No companion file yet. The sounding has not been scaled.")
	case scaled == 0:
		md.Warningf("Companion file found but no critical frequency is set.")
	default:
		md.Tip(fmt.Sprintf("%d of %d layers scaled.", scaled, len(s.Layers)))
	}
	md.PlainText("")

	for _, ls := range s.Layers {
		if len(ls.Points) == 0 {
			continue
		}
		points := make([]string, len(ls.Points))
		for i, p := range ls.Points {
			points[i] = fmt.Sprintf("%.2f MHz, %.1f km", p.Frequency, p.Height)
		}
		md.PlainText("### " + ls.Layer.String() + " trace")
		md.PlainText("")
		md.BulletList(points...)
		md.PlainText("")
	}
}

// WriteBatch outputs a table with one row per sounding.
func (w *MarkdownWriter) WriteBatch(summaries []*Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Ionogram Batch")
	md.PlainText("")

	rows := make([][]string, 0, len(summaries))
	var scaled, unscaled, failed uint64
	for _, s := range summaries {
		if s.Failed() {
			failed++
			rows = append(rows, []string{"`" + s.Path + "`", "-", "-", "-", "-", "❌ " + s.Error})
			continue
		}
		foE, _ := s.Critical(model.LayerE)
		foF1, _ := s.Critical(model.LayerF1)
		foF2, hasF2 := s.Critical(model.LayerF2)
		if hasF2 {
			scaled++
		} else {
			unscaled++
		}
		rows = append(rows, []string{
			"`" + s.Path + "`",
			s.Header.ObservedAt.Format(model.TimestampLayout),
			formatCritical(foE),
			formatCritical(foF1),
			formatCritical(foF2),
			formatSunspot(s.Header.Sunspot, s.Header.SunspotKnown),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Sounding", "Observed", "foE", "foF1", "foF2", "Sunspot"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(summaries) > 0 {
		w.writePieChart(md, scaled, unscaled, failed)
	}
	if failed > 0 {
		md.Cautionf("%d sounding(s) could not be read.", failed)
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writePieChart writes a mermaid pie chart of the batch scaling status.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, scaled, unscaled, failed uint64) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("foF2 Scaling Status"),
		piechart.WithShowData(true),
	)

	if scaled > 0 {
		chart.LabelAndIntValue("Scaled", scaled)
	}
	if unscaled > 0 {
		chart.LabelAndIntValue("Unscaled", unscaled)
	}
	if failed > 0 {
		chart.LabelAndIntValue("Failed", failed)
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteHistory outputs archived scalings as a table.
func (w *MarkdownWriter) WriteHistory(rows []HistoryRow) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Scaling History")
	md.PlainText("")

	if len(rows) == 0 {
		md.Note("No archived scalings.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	table := make([][]string, len(rows))
	for i, r := range rows {
		table[i] = []string{
			r.Station,
			r.ObservedAt.Format(model.TimestampLayout),
			formatCritical(r.FoE),
			formatCritical(r.FoF1),
			formatCritical(r.FoF2),
			formatSunspot(r.Sunspot, r.SunspotKnown),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Station", "Observed", "foE", "foF1", "foF2", "Sunspot"},
		Rows:   table,
	})
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [ionoview](https://github.com/nao1215/ionoview)*")
}
