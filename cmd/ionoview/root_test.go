package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/nao1215/ionoview/internal/config"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "ionoview" {
			t.Errorf("expected use 'ionoview', got %q", cmd.Use)
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()
		for name, short := range map[string]string{"verbose": "v", "config": "c"} {
			flag := cmd.PersistentFlags().Lookup(name)
			if flag == nil {
				t.Fatalf("expected %s flag", name)
			}
			if flag.Shorthand != short {
				t.Errorf("expected shorthand %q for %s, got %q", short, name, flag.Shorthand)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{
			"inspect": false, "annotate": false, "sunspot": false, "export": false,
			"batch": false, "history": false, "compare": false, "init": false, "version": false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage || !cmd.SilenceErrors {
			t.Error("expected SilenceUsage and SilenceErrors to be true")
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("applies the config file", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cmd := NewRootCmd()
		if err := cmd.PersistentFlags().Set("config", env.config); err != nil {
			t.Fatal(err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.Station.Name != "IION" {
			t.Errorf("Station.Name = %q, want upper-cased IION", cfg.Station.Name)
		}
		if cfg.Sunspot.Table != filepath.Join(env.dir, "sunspot.txt") {
			t.Errorf("Sunspot.Table = %q, want path relative to the config file", cfg.Sunspot.Table)
		}
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		if err := cmd.PersistentFlags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
			t.Fatal(err)
		}
		if _, err := loadConfig(cmd); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("loadConfig() error = %v, want ErrConfigNotFound", err)
		}
	})
}

func TestSessionConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Parser.RawTransform = "log10"
	cfg.Parser.RequireSoundingName = true

	scfg, err := sessionConfig(cfg)
	if err != nil {
		t.Fatalf("sessionConfig() error = %v", err)
	}
	if scfg.Parse.RawTransform.String() != "log10" {
		t.Errorf("RawTransform = %v, want log10", scfg.Parse.RawTransform)
	}
	if !scfg.RequireSoundingName {
		t.Error("RequireSoundingName should be copied")
	}
	if scfg.Station.Name != config.DefaultStationName {
		t.Errorf("Station.Name = %q", scfg.Station.Name)
	}

	cfg.Parser.RawTransform = "sqrt"
	if _, err := sessionConfig(cfg); err == nil {
		t.Error("expected error for unknown transform")
	}
}
