package report

import (
	"io"
	"strconv"

	"github.com/nao1215/ionoview/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files or stdout with the same
// API.
type Writer interface {
	// Write outputs the summary of one sounding.
	// Returns the number of bytes written and any error encountered.
	Write(summary *Summary) (int, error)

	// WriteBatch outputs the summaries of many soundings in input order.
	WriteBatch(summaries []*Summary) (int, error)

	// WriteHistory outputs archived scalings.
	WriteHistory(rows []HistoryRow) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(summary *Summary) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(summary) })
}

// WriteBatch outputs the summaries to all configured Writers.
func (m *MultiWriter) WriteBatch(summaries []*Summary) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteBatch(summaries) })
}

// WriteHistory outputs the rows to all configured Writers.
func (m *MultiWriter) WriteHistory(rows []HistoryRow) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteHistory(rows) })
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// formatCritical renders a critical frequency for display, "-" when unset.
func formatCritical(v float64) string {
	if model.IsCriticalUnset(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatSunspot renders a sunspot number for display, "unknown" when unset.
func formatSunspot(n int, known bool) string {
	if !known {
		return "unknown"
	}
	return strconv.Itoa(n)
}
