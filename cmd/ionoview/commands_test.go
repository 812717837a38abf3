package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/ionoview/internal/annotation"
	"github.com/nao1215/ionoview/internal/database"
	"github.com/nao1215/ionoview/internal/export"
	"github.com/nao1215/ionoview/internal/model"
	"github.com/nao1215/ionoview/internal/report"
	"github.com/nao1215/ionoview/internal/session"
)

func TestInspectCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints the summary", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		out := env.mustRun(t, "inspect", "--ticks", env.sounding)
		for _, want := range []string{"IONOGRAM  IION, 2020-06-15 10:30:00", "Sunspot:        45", "FREQUENCY TICKS", "Companion:      none"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q\n%s", want, out)
			}
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		out := env.mustRun(t, "inspect", "--json", env.sounding)
		var s report.Summary
		if err := json.Unmarshal([]byte(out), &s); err != nil {
			t.Fatalf("output is not valid JSON: %v\n%s", err, out)
		}
		if s.NFreq != 4 || s.NRang != 3 {
			t.Errorf("grid = %dx%d, want 4x3", s.NFreq, s.NRang)
		}
	})

	t.Run("report file", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		reportPath := filepath.Join(env.dir, "reports", "inspect.md")
		out := env.mustRun(t, "inspect", "--markdown", "-o", reportPath, env.sounding)
		if out != "" {
			t.Errorf("expected nothing on stdout, got %q", out)
		}
		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if !strings.Contains(string(content), "# Ionogram IION") {
			t.Errorf("unexpected report\n%s", content)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if _, err := env.run(t, "inspect", "--json", "--markdown", env.sounding); err == nil {
			t.Error("expected error for --json with --markdown")
		}
	})

	t.Run("malformed sounding", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		bad := writeTestFile(t, env.dir, "bad.txt", "z0 = 90\nEND\n")
		_, err := env.run(t, "inspect", bad)
		if !errors.Is(err, model.ErrFormat) {
			t.Errorf("error = %v, want ErrFormat", err)
		}
	})
}

func TestAnnotateCmd(t *testing.T) {
	t.Parallel()

	t.Run("saves the companion file", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		out := env.mustRun(t, "annotate", "--layer", "F2", "--critical", "1.25",
			"-p", "1.1,95", "-p", "1.2, 100", env.sounding)
		if !strings.Contains(out, "foF2 = 1.25 MHz, 2 trace point(s)") {
			t.Errorf("unexpected output\n%s", out)
		}

		doc, found, err := annotation.ReadFile(annotation.CompanionPath(env.sounding))
		if err != nil || !found {
			t.Fatalf("ReadFile() = %v, %v", found, err)
		}
		set := doc.Annotations.Get(model.LayerF2)
		if set.Critical != 1.25 || len(set.Points) != 2 {
			t.Errorf("F2 = %+v", set)
		}
		if doc.Header.Station != "IION" || doc.Header.Sunspot != 45 {
			t.Errorf("header = %+v", doc.Header)
		}

		out = env.mustRun(t, "inspect", "--markers", env.sounding)
		if !strings.Contains(out, "foF2 critical line at x=") {
			t.Errorf("expected critical line\n%s", out)
		}
		if !strings.Contains(out, "F2 point 1 at x=") {
			t.Errorf("expected trace markers\n%s", out)
		}
	})

	t.Run("removes and clears", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.mustRun(t, "annotate", "-l", "E", "-p", "1.0,90", "-p", "1.1,95", "-p", "1.2,100", env.sounding)
		env.mustRun(t, "annotate", "-l", "E", "--remove-point", "0,2", env.sounding)

		doc, _, err := annotation.ReadFile(annotation.CompanionPath(env.sounding))
		if err != nil {
			t.Fatal(err)
		}
		points := doc.Annotations.Get(model.LayerE).Points
		if len(points) != 1 || points[0].Frequency != 1.1 {
			t.Errorf("points = %+v, want only 1.1 MHz", points)
		}

		out := env.mustRun(t, "annotate", "-l", "E", "--clear", env.sounding)
		if !strings.Contains(out, "foE = unset, 0 trace point(s)") {
			t.Errorf("unexpected output\n%s", out)
		}
	})

	t.Run("coordinates round to 0.01 MHz", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		// step 1.1, coordinate 2 is 1.21 MHz
		env.mustRun(t, "annotate", "--critical-at", "2", "--point-at", "1,95", env.sounding)
		doc, _, err := annotation.ReadFile(annotation.CompanionPath(env.sounding))
		if err != nil {
			t.Fatal(err)
		}
		set := doc.Annotations.Get(model.LayerF2)
		if set.Critical != 1.21 {
			t.Errorf("Critical = %v, want 1.21", set.Critical)
		}
		if len(set.Points) != 1 || set.Points[0].Frequency != 1.1 {
			t.Errorf("points = %+v", set.Points)
		}
	})

	t.Run("rejects bad flags", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		tests := [][]string{
			{"annotate", "--layer", "D", env.sounding},
			{"annotate", "-p", "1.5", env.sounding},
			{"annotate", "--critical", "1", "--critical-at", "1", env.sounding},
			{"annotate", "--remove-point", "3", env.sounding},
		}
		for _, args := range tests {
			if _, err := env.run(t, args...); err == nil {
				t.Errorf("ionoview %v: expected error", args)
			}
		}
	})

	t.Run("refuses to overwrite an unreadable companion", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		const broken = "IION\n49.676 36.292 1.2 66.7 45\n2020 06 15 10 30 00\n2.85\nEND\n99.0\n 3.10 180.0 x\nEND\n99.0\nEND\n"
		companion := writeTestFile(t, env.dir, filepath.Base(env.sounding)+".STD", broken)

		_, err := env.run(t, "annotate", "-p", "1.2,100", env.sounding)
		if !errors.Is(err, session.ErrCompanionUnreadable) {
			t.Fatalf("error = %v, want ErrCompanionUnreadable", err)
		}
		content, err := os.ReadFile(companion)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != broken {
			t.Errorf("companion was rewritten\n%s", content)
		}

		out := env.mustRun(t, "annotate", "--force", "-p", "1.2,100", env.sounding)
		if !strings.Contains(out, "Moved unreadable") {
			t.Errorf("unexpected output\n%s", out)
		}
		backup, err := os.ReadFile(companion + ".bak")
		if err != nil || string(backup) != broken {
			t.Errorf("backup = %q, %v", backup, err)
		}
		doc, found, err := annotation.ReadFile(companion)
		if err != nil || !found {
			t.Fatalf("ReadFile() = %v, %v", found, err)
		}
		if pts := doc.Annotations.Get(model.LayerF2).Points; len(pts) != 1 {
			t.Errorf("F2 points = %v", pts)
		}
	})

	t.Run("archives and lists history", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		out := env.mustRun(t, "annotate", "--critical", "1.25", "--archive", env.sounding)
		if !strings.Contains(out, "Archived to") {
			t.Errorf("unexpected output\n%s", out)
		}

		db, err := database.Open(filepath.Join(env.dir, "db"), database.DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		rec, err := db.GetScaled(t.Context(), env.sounding)
		_ = db.Close()
		if err != nil {
			t.Fatalf("GetScaled() error = %v", err)
		}
		if rec.FoF2 != 1.25 || rec.FileHash == "" {
			t.Errorf("record = %+v", rec)
		}

		parquetPath := filepath.Join(env.dir, "scaled.parquet")
		out = env.mustRun(t, "history", "--from", "2020-06-15", "--to", "2020-06-15", "--parquet", parquetPath)
		if !strings.Contains(out, "foF2=1.25") {
			t.Errorf("unexpected history\n%s", out)
		}
		rows, err := export.ReadScaledParquet(parquetPath)
		if err != nil {
			t.Fatalf("ReadScaledParquet() error = %v", err)
		}
		if len(rows) != 1 || rows[0].Station != "IION" {
			t.Errorf("rows = %+v", rows)
		}

		out = env.mustRun(t, "history", "--from", "2020-06-16")
		if !strings.Contains(out, "No archived scalings") {
			t.Errorf("expected empty history\n%s", out)
		}

		out = env.mustRun(t, "history", "--stations")
		if strings.TrimSpace(out) != "IION" {
			t.Errorf("stations = %q", out)
		}
	})
}

func TestSunspotCmd(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	out := env.mustRun(t, "sunspot", "2020-06-15")
	if out != "2020-06-15 45\n" {
		t.Errorf("output = %q", out)
	}

	if _, err := env.run(t, "sunspot", "2020-06-16"); !errors.Is(err, errNoSunspot) {
		t.Errorf("error = %v, want errNoSunspot", err)
	}
	if _, err := env.run(t, "sunspot", "15.06.2020"); err == nil {
		t.Error("expected error for invalid date")
	}

	other := writeTestFile(t, env.dir, "other.csv", "2020;06;16;2020.456;   77;  5.0;  20;  1\n")
	out = env.mustRun(t, "sunspot", "--table", other, "2020-06-16")
	if out != "2020-06-16 77\n" {
		t.Errorf("output = %q", out)
	}
}

func TestExportCmd(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	out := env.mustRun(t, "export", env.sounding)
	if !strings.Contains(out, "Exported 12 samples") {
		t.Errorf("unexpected output %q", out)
	}

	rows, err := export.ReadGridParquet(filepath.Join(env.dir, "20200615_1030_iono.parquet"))
	if err != nil {
		t.Fatalf("ReadGridParquet() error = %v", err)
	}
	if len(rows) != 12 {
		t.Errorf("got %d rows, want 12", len(rows))
	}
}

func TestDefaultExportPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"20200615_1030_iono.txt", "20200615_1030_iono.parquet"},
		{"dir/20200615_1030_iono.txt.gz", "dir/20200615_1030_iono.parquet"},
		{"sounding", "sounding.parquet"},
	}
	for _, tt := range tests {
		if got := defaultExportPath(tt.in); got != tt.want {
			t.Errorf("defaultExportPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBatchCmd(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	second := writeTestFile(t, env.dir, "20200615_1045_iono.txt", testSounding)
	missing := filepath.Join(env.dir, "missing.txt")

	out := env.mustRun(t, "batch", "-n", "2", env.sounding, missing, second)
	if !strings.Contains(out, "2 ok, 1 failed") {
		t.Errorf("unexpected output\n%s", out)
	}
	if !strings.Contains(out, "[!] "+missing) {
		t.Errorf("expected failure line\n%s", out)
	}

	if _, err := env.run(t, "batch", "--concurrency=-1", env.sounding); err == nil {
		t.Error("expected error for negative concurrency")
	}
}

func TestParsePoint(t *testing.T) {
	t.Parallel()

	x, h, err := parsePoint(" 5.5 , 250")
	if err != nil || x != 5.5 || h != 250 {
		t.Errorf("parsePoint() = %v, %v, %v", x, h, err)
	}
	for _, bad := range []string{"5.5", "a,1", "1,b", ""} {
		if _, _, err := parsePoint(bad); !errors.Is(err, errInvalidPoint) {
			t.Errorf("parsePoint(%q) error = %v, want errInvalidPoint", bad, err)
		}
	}
}

func TestHistoryRange(t *testing.T) {
	t.Parallel()

	from, to, err := historyRange("2020-06-01", "2020-06-30")
	if err != nil {
		t.Fatalf("historyRange() error = %v", err)
	}
	if from.Day() != 1 || to.Month() != 7 || to.Day() != 1 {
		t.Errorf("range = %v - %v, want [06-01, 07-01)", from, to)
	}

	from, to, err = historyRange("", "")
	if err != nil || !from.IsZero() || !to.IsZero() {
		t.Errorf("empty range = %v, %v, %v", from, to, err)
	}

	if _, _, err := historyRange("2020-07-01", "2020-06-01"); err == nil {
		t.Error("expected error for reversed range")
	}
	if _, _, err := historyRange("June", ""); err == nil {
		t.Error("expected error for invalid date")
	}
}
