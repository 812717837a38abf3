package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/ionoview/internal/database"
	"github.com/nao1215/ionoview/internal/ionogram"
	"github.com/nao1215/ionoview/internal/model"
	"github.com/parquet-go/parquet-go"
)

// readBatchSize is the number of rows read per call when loading a file.
const readBatchSize = 1024

// GridRow is one sample of an ionogram grid.
type GridRow struct {
	Height     float64 `parquet:"height"`
	Frequency  float64 `parquet:"frequency"`
	Coordinate float64 `parquet:"coordinate"`
	Value      float64 `parquet:"value"`
}

// ScaledRow is one archived scaling. Unset critical frequencies and an
// unknown sunspot number are null.
type ScaledRow struct {
	Station      string   `parquet:"station"`
	ObservedAt   int64    `parquet:"observed_at_ms"`
	FoE          *float64 `parquet:"fo_e"`
	FoF1         *float64 `parquet:"fo_f1"`
	FoF2         *float64 `parquet:"fo_f2"`
	Sunspot      *int32   `parquet:"sunspot"`
	FileHash     string   `parquet:"file_hash"`
	SoundingPath string   `parquet:"sounding_path"`
}

// GridRows flattens g into rows ordered by height, then frequency.
func GridRows(g *ionogram.Grid) ([]GridRow, error) {
	freqs := g.Frequencies()
	heights := g.Heights()

	coords := make([]float64, len(freqs))
	for f, freq := range freqs {
		c, err := g.FrequencyToCoordinate(freq)
		if err != nil {
			return nil, err
		}
		coords[f] = c
	}

	rows := make([]GridRow, 0, len(freqs)*len(heights))
	for h, height := range heights {
		for f, freq := range freqs {
			rows = append(rows, GridRow{
				Height:     height,
				Frequency:  freq,
				Coordinate: coords[f],
				Value:      g.At(h, f),
			})
		}
	}
	return rows, nil
}

// ScaledRows converts archive records to rows.
func ScaledRows(records []*database.ScaledRecord) []ScaledRow {
	rows := make([]ScaledRow, len(records))
	for i, rec := range records {
		rows[i] = ScaledRow{
			Station:      rec.Station,
			ObservedAt:   rec.ObservedAt.UnixMilli(),
			FoE:          optionalCritical(rec.FoE),
			FoF1:         optionalCritical(rec.FoF1),
			FoF2:         optionalCritical(rec.FoF2),
			FileHash:     rec.FileHash,
			SoundingPath: rec.SoundingPath,
		}
		if rec.SunspotKnown {
			n := int32(rec.Sunspot) //nolint:gosec // sunspot numbers are small
			rows[i].Sunspot = &n
		}
	}
	return rows
}

func optionalCritical(v float64) *float64 {
	if model.IsCriticalUnset(v) {
		return nil
	}
	return &v
}

// WriteGridParquet writes the samples of g to path.
func WriteGridParquet(path string, g *ionogram.Grid) error {
	rows, err := GridRows(g)
	if err != nil {
		return err
	}
	return writeFile(path, rows)
}

// WriteScaledParquet writes archived scalings to path.
func WriteScaledParquet(path string, records []*database.ScaledRecord) error {
	return writeFile(path, ScaledRows(records))
}

// ReadGridParquet reads a file written by WriteGridParquet.
func ReadGridParquet(path string) ([]GridRow, error) {
	return readFile[GridRow](path)
}

// ReadScaledParquet reads a file written by WriteScaledParquet.
func ReadScaledParquet(path string) ([]ScaledRow, error) {
	return readFile[ScaledRow](path)
}

// writeFile writes rows to path through a temporary file and a rename.
func writeFile[T any](path string, rows []T) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary parquet file: %w", err)
	}

	if err := write(tmp, rows); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func write[T any](w io.Writer, rows []T) error {
	pw := parquet.NewGenericWriter[T](w)
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return err
	}
	return pw.Close()
}

func readFile[T any](path string) ([]T, error) {
	f, err := os.Open(path) //nolint:gosec // user-selected export
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only handle

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file %s: %w", path, err)
	}

	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close() //nolint:errcheck // read-only

	out := make([]T, 0, reader.NumRows())
	buf := make([]T, readBatchSize)
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}
