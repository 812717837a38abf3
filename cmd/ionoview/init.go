package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/ionoview/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/ionoview.yaml
var configTemplate embed.FS

// configTemplateName is the path of the template inside configTemplate.
const configTemplateName = "templates/ionoview.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new ionoview configuration file",
		Long: `Initialize creates a new .ionoview configuration file in the current directory.

The generated file includes:
- Station metadata written to every companion file
- Parser options for raw sample transforms
- The location of the daily sunspot table

Examples:
  # Create .ionoview in current directory
  ionoview init

  # Create config file at a specific path
  ionoview init -o station.yaml

  # Force overwrite existing file
  ionoview init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(configTemplateName)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to set:")
	fmt.Fprintln(out, "  - Station name, coordinates, gyrofrequency and dip")
	fmt.Fprintln(out, "  - The daily sunspot table")
	fmt.Fprintln(out, "  - Raw sample transform")

	return nil
}
