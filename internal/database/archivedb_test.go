package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/ionoview/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *ArchiveDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testRecord(path, station string, observed time.Time, foF2 float64) *ScaledRecord {
	a := model.NewAnnotations()
	a.Update(model.LayerF2, func(s *model.AnnotationSet) {
		s.SetCritical(foF2)
		s.AddPoint(model.TracePoint{Frequency: 3.55, Height: 120})
	})
	h := model.SoundingHeader{Station: station, ObservedAt: observed, Sunspot: 45, SunspotKnown: true}
	return NewScaledRecord(path, h, a, "abc123")
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("expected error to contain %q, got %q", "database not found", err.Error())
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created when CreateIfNotExists=false")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		_ = db2.Close()
	})
}

// TestScaledRecords tests saving and reading scaled records.
func TestScaledRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	observed := time.Date(2020, 6, 15, 10, 30, 0, 0, time.UTC)

	t.Run("save and get round trip", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		rec := testRecord("/data/20200615_1030_iono.txt", "IION", observed, 6.4)
		if err := db.SaveScaled(ctx, rec); err != nil {
			t.Fatalf("SaveScaled() error = %v", err)
		}

		got, err := db.GetScaled(ctx, rec.SoundingPath)
		if err != nil {
			t.Fatalf("GetScaled() error = %v", err)
		}
		if got.Station != "IION" || !got.ObservedAt.Equal(observed) {
			t.Errorf("unexpected record %+v", got)
		}
		if got.FoF2 != 6.4 || got.FoE != model.CriticalUnset || got.FoF1 != model.CriticalUnset {
			t.Errorf("critical frequencies = %v/%v/%v", got.FoE, got.FoF1, got.FoF2)
		}
		if got.Sunspot != 45 || !got.SunspotKnown || got.FileHash != "abc123" {
			t.Errorf("unexpected metadata %+v", got)
		}
		if pts := got.Annotations.Get(model.LayerF2).Points; len(pts) != 1 || pts[0].Height != 120 {
			t.Errorf("annotations not restored: %v", pts)
		}
		if got.SavedAt.IsZero() {
			t.Error("expected SavedAt to be set")
		}
	})

	t.Run("saving again replaces the row", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		path := "/data/20200615_1030_iono.txt"
		if err := db.SaveScaled(ctx, testRecord(path, "IION", observed, 6.4)); err != nil {
			t.Fatalf("SaveScaled() error = %v", err)
		}
		if err := db.SaveScaled(ctx, testRecord(path, "IION", observed, 7.1)); err != nil {
			t.Fatalf("SaveScaled() error = %v", err)
		}

		all, err := db.ListScaled(ctx, "", time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("ListScaled() error = %v", err)
		}
		if len(all) != 1 || all[0].FoF2 != 7.1 {
			t.Errorf("expected one replaced record, got %d", len(all))
		}
	})

	t.Run("unknown sunspot is stored as NULL", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		rec := testRecord("/data/a.txt", "IION", observed, 6.4)
		rec.Sunspot, rec.SunspotKnown = 0, false
		if err := db.SaveScaled(ctx, rec); err != nil {
			t.Fatalf("SaveScaled() error = %v", err)
		}
		got, err := db.GetScaled(ctx, rec.SoundingPath)
		if err != nil {
			t.Fatalf("GetScaled() error = %v", err)
		}
		if got.SunspotKnown {
			t.Error("expected sunspot to be unknown")
		}
	})

	t.Run("missing record returns ErrNotFound", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		if _, err := db.GetScaled(ctx, "/nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list filters by station and half-open range", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		day := 24 * time.Hour
		for i, r := range []*ScaledRecord{
			testRecord("/a", "IION", observed, 5),
			testRecord("/b", "IION", observed.Add(day), 6),
			testRecord("/c", "IION", observed.Add(2*day), 7),
			testRecord("/d", "DB049", observed.Add(day), 8),
		} {
			if err := db.SaveScaled(ctx, r); err != nil {
				t.Fatalf("SaveScaled(%d) error = %v", i, err)
			}
		}

		got, err := db.ListScaled(ctx, "IION", observed, observed.Add(2*day))
		if err != nil {
			t.Fatalf("ListScaled() error = %v", err)
		}
		if len(got) != 2 || got[0].SoundingPath != "/a" || got[1].SoundingPath != "/b" {
			t.Errorf("unexpected records %v", got)
		}

		stations, err := db.ListStations(ctx)
		if err != nil {
			t.Fatalf("ListStations() error = %v", err)
		}
		if len(stations) != 2 || stations[0] != "DB049" || stations[1] != "IION" {
			t.Errorf("unexpected stations %v", stations)
		}
	})
}

// TestHashFile tests the SHA3-256 fingerprint.
func TestHashFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}
	// SHA3-256 of the empty input.
	const want = "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
	if got != want {
		t.Errorf("HashFile() = %s, want %s", got, want)
	}

	if _, err := HashFile(filepath.Join(t.TempDir(), "absent")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
