package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/ionoview/internal/config"
	"github.com/nao1215/ionoview/internal/database"
	ionolog "github.com/nao1215/ionoview/internal/log"
	"github.com/nao1215/ionoview/internal/session"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ionoview.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ionoview",
		Short: "Inspect and scale ionosonde soundings",
		Long: `ionoview reads vertical-incidence ionosonde soundings, shows their
frequency/height grid and records the operator's scaling of the E, F1 and F2
layers in a ".STD" companion file next to each sounding.

Station metadata, parser options and the sunspot table come from a .ionoview
configuration file (see "ionoview init").`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .ionoview in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewAnnotateCmd())
	cmd.AddCommand(NewSunspotCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getBoolFlag retrieves a bool flag from the command or the root's
// persistent flags. Missing flags read as false.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getStringFlag retrieves a string flag from the command or the root's
// persistent flags. Missing flags read as "".
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// loadConfig builds the configuration from defaults and the config file.
// If the user named a config file explicitly it must exist; otherwise a
// missing file leaves the defaults in place.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.ConfigFilePath = getStringFlag(cmd, "config")

	path := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case path != "":
		f, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.ApplyFile(f, filepath.Dir(path))
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Normalize()
	return cfg, nil
}

// setupLogger creates the structured logger for a command and installs it
// as the default.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	logger := ionolog.NewLogger(cmd.ErrOrStderr(), verbose)
	slog.SetDefault(logger)
	return logger
}

// sessionConfig converts the CLI configuration to a session configuration.
func sessionConfig(cfg *config.Config) (session.Config, error) {
	opts, err := cfg.ParseOptions()
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		Station: session.Station{
			Name:          cfg.Station.Name,
			Latitude:      cfg.Station.Latitude,
			Longitude:     cfg.Station.Longitude,
			Gyrofrequency: cfg.Station.Gyrofrequency,
			Dip:           cfg.Station.Dip,
		},
		Parse:               opts,
		SunspotTable:        cfg.Sunspot.Table,
		RequireSoundingName: cfg.Parser.RequireSoundingName,
	}, nil
}

// openArchive opens the archive database in the configured directory.
func openArchive(cfg *config.Config, logger *slog.Logger) (*database.ArchiveDB, error) {
	db, err := database.Open(cfg.Database.Dir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	logger.Debug("archive database opened", "path", db.Path())
	return db, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
