package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/ionoview/internal/config"
)

func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()
	flag := cmd.Flags().Lookup("output")
	if flag == nil {
		t.Fatal("expected output flag")
	}
	if flag.DefValue != config.DefaultConfigFile {
		t.Errorf("expected default %q, got %q", config.DefaultConfigFile, flag.DefValue)
	}
	if cmd.Flags().Lookup("force") == nil {
		t.Error("expected force flag")
	}
}

func runInit(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewInitCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a loadable config file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "nested", ".ionoview")
		out, err := runInit(t, "-o", outputPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Created configuration file") {
			t.Errorf("unexpected output %q", out)
		}

		f, err := config.LoadConfigFile(outputPath)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}
		if f.Station.Name != config.DefaultStationName {
			t.Errorf("Station.Name = %q", f.Station.Name)
		}
		if f.Sunspot.Table != config.DefaultSunspotFile {
			t.Errorf("Sunspot.Table = %q", f.Sunspot.Table)
		}

		cfg := config.NewConfig()
		cfg.ApplyFile(f, filepath.Dir(outputPath))
		if err := cfg.Validate(); err != nil {
			t.Errorf("template does not validate: %v", err)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".ionoview")
		if err := os.WriteFile(outputPath, []byte("keep"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := runInit(t, "-o", outputPath); err == nil {
			t.Fatal("expected error for existing file")
		}
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != "keep" {
			t.Error("existing file was modified")
		}
	})

	t.Run("force overwrites", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".ionoview")
		if err := os.WriteFile(outputPath, []byte("old"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := runInit(t, "-f", "-o", outputPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(content), "station:") {
			t.Error("expected template content")
		}
	})
}
