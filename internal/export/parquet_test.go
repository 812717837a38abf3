package export

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/ionoview/internal/database"
	"github.com/nao1215/ionoview/internal/ionogram"
	"github.com/nao1215/ionoview/internal/model"
)

func testGrid(t *testing.T) *ionogram.Grid {
	t.Helper()
	g, err := ionogram.NewGrid([]float64{1.0, 2.0, 4.0}, 90, 5, [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	if err != nil {
		t.Fatalf("NewGrid() error = %v", err)
	}
	return g
}

func TestGridRows(t *testing.T) {
	t.Parallel()

	rows, err := GridRows(testGrid(t))
	if err != nil {
		t.Fatalf("GridRows() error = %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}

	want := GridRow{Height: 95, Frequency: 4.0, Coordinate: 2, Value: 6}
	got := rows[5]
	if got.Height != want.Height || got.Frequency != want.Frequency || got.Value != want.Value {
		t.Errorf("rows[5] = %+v, want %+v", got, want)
	}
	if math.Abs(got.Coordinate-want.Coordinate) > 1e-9 {
		t.Errorf("rows[5].Coordinate = %v, want %v", got.Coordinate, want.Coordinate)
	}
	if rows[1].Height != 90 || rows[1].Frequency != 2.0 || rows[1].Value != 2 {
		t.Errorf("rows[1] = %+v", rows[1])
	}
}

func TestWriteGridParquet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "grid.parquet")
	if err := WriteGridParquet(path, testGrid(t)); err != nil {
		t.Fatalf("WriteGridParquet() error = %v", err)
	}

	rows, err := ReadGridParquet(path)
	if err != nil {
		t.Fatalf("ReadGridParquet() error = %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	if rows[3].Height != 95 || rows[3].Value != 4 {
		t.Errorf("rows[3] = %+v", rows[3])
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the export in the directory, got %d entries", len(entries))
	}
}

func TestWriteScaledParquet(t *testing.T) {
	t.Parallel()

	observed := time.Date(2020, 6, 15, 10, 30, 0, 0, time.UTC)
	records := []*database.ScaledRecord{
		{
			SoundingPath: "20200615_1030_iono.txt",
			Station:      "IION",
			ObservedAt:   observed,
			FoE:          model.CriticalUnset,
			FoF1:         model.CriticalUnset,
			FoF2:         6.25,
			Sunspot:      45,
			SunspotKnown: true,
			FileHash:     "abc",
		},
		{
			SoundingPath: "20200615_1045_iono.txt",
			Station:      "IION",
			ObservedAt:   observed.Add(15 * time.Minute),
			FoE:          2.5,
			FoF1:         model.CriticalUnset,
			FoF2:         model.CriticalUnset,
		},
	}

	path := filepath.Join(t.TempDir(), "scaled.parquet")
	if err := WriteScaledParquet(path, records); err != nil {
		t.Fatalf("WriteScaledParquet() error = %v", err)
	}

	rows, err := ReadScaledParquet(path)
	if err != nil {
		t.Fatalf("ReadScaledParquet() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.FoE != nil || first.FoF1 != nil {
		t.Error("unset critical frequencies should be null")
	}
	if first.FoF2 == nil || *first.FoF2 != 6.25 {
		t.Errorf("FoF2 = %v, want 6.25", first.FoF2)
	}
	if first.Sunspot == nil || *first.Sunspot != 45 {
		t.Errorf("Sunspot = %v, want 45", first.Sunspot)
	}
	if first.ObservedAt != observed.UnixMilli() {
		t.Errorf("ObservedAt = %d, want %d", first.ObservedAt, observed.UnixMilli())
	}
	if rows[1].Sunspot != nil {
		t.Error("unknown sunspot should be null")
	}
	if rows[1].FoE == nil || *rows[1].FoE != 2.5 {
		t.Errorf("rows[1].FoE = %v, want 2.5", rows[1].FoE)
	}
}

func TestReadGridParquetMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := ReadGridParquet(filepath.Join(t.TempDir(), "missing.parquet")); !os.IsNotExist(err) {
		t.Errorf("ReadGridParquet() error = %v, want not-exist", err)
	}
}
