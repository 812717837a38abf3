package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/ionoview/internal/ionogram"
)

// Default configuration values.
// The station defaults describe the IION instrument the file format was
// designed for; other deployments override them in the configuration file.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "ionoview"

	// DefaultStationName is written as the first line of companion files.
	DefaultStationName = "IION"

	// DefaultLatitude is the station latitude in degrees north.
	DefaultLatitude = 49.676

	// DefaultLongitude is the station longitude in degrees east.
	DefaultLongitude = 36.292

	// DefaultGyrofrequency is the local electron gyrofrequency in MHz.
	DefaultGyrofrequency = 1.2

	// DefaultDip is the magnetic dip angle in degrees.
	DefaultDip = 66.7

	// DefaultRawTransform stores raw amplitudes unchanged. The older
	// deployment used "log10".
	DefaultRawTransform = "identity"

	// DefaultSunspotFile is the sunspot table name looked up in the XDG data
	// directory when no explicit table is configured.
	DefaultSunspotFile = "sunspot.txt"

	// DefaultBatchSize is the number of soundings summarised concurrently.
	// Parsing is CPU bound, so a small pool saturates a laptop without
	// thrashing the disk on network mounts.
	DefaultBatchSize = 4
)

// StationConfig describes the instrument that produced the soundings.
// Sounding files do not carry these values.
type StationConfig struct {
	// Name is the station identifier, normalised to upper case.
	Name string `yaml:"name" toml:"name"`

	// Latitude is the station latitude in degrees north.
	Latitude float64 `yaml:"latitude" toml:"latitude"`

	// Longitude is the station longitude in degrees east.
	Longitude float64 `yaml:"longitude" toml:"longitude"`

	// Gyrofrequency is the electron gyrofrequency in MHz.
	Gyrofrequency float64 `yaml:"gyrofrequency" toml:"gyrofrequency"`

	// Dip is the magnetic dip angle in degrees.
	Dip float64 `yaml:"dip" toml:"dip"`
}

// ParserConfig holds the per-deployment parser switches.
//
// Design decision: The two known deployments of the instrument software
// differ only in these switches, so they are configuration rather than
// separate parsers.
type ParserConfig struct {
	// RawTransform is "identity" or "log10".
	RawTransform string `yaml:"raw_transform" toml:"raw_transform"`

	// ContrastHack pins grid[0][0] to the negated maximum for legacy
	// colour maps.
	ContrastHack bool `yaml:"contrast_hack" toml:"contrast_hack"`

	// StripTimeZone drops a trailing time-zone marker from the TIME header.
	StripTimeZone bool `yaml:"strip_time_zone" toml:"strip_time_zone"`

	// RequireSoundingName rejects files not named "YYYYMMDD_HHMM_iono.<ext>".
	RequireSoundingName bool `yaml:"require_sounding_name" toml:"require_sounding_name"`
}

// SunspotConfig locates the daily sunspot table.
type SunspotConfig struct {
	// Table is the path of the sunspot table. Empty disables the lookup.
	Table string `yaml:"table" toml:"table"`
}

// DatabaseConfig configures the scaled-parameter archive.
type DatabaseConfig struct {
	// Dir is the directory holding the SQLite archive.
	// Defaults to the XDG data directory (~/.local/share/ionoview on Linux).
	Dir string `yaml:"dir" toml:"dir"`

	// Enabled records every saved annotation in the archive.
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

// Config holds all configuration options for ionoview.
// It is populated from defaults, the optional configuration file and CLI
// flags, in that order, and passed down explicitly.
type Config struct {
	// Station is the instrument metadata.
	Station StationConfig

	// Parser holds the parser deployment switches.
	Parser ParserConfig

	// Sunspot locates the sunspot table.
	Sunspot SunspotConfig

	// Database configures the archive.
	Database DatabaseConfig

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// JSONReport selects JSON output for summaries.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output for summaries.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for reports.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// BatchSize is the number of soundings processed concurrently.
	BatchSize int
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because the station defaults and StripTimeZone are non-zero.
func NewConfig() *Config {
	return &Config{
		Station: StationConfig{
			Name:          DefaultStationName,
			Latitude:      DefaultLatitude,
			Longitude:     DefaultLongitude,
			Gyrofrequency: DefaultGyrofrequency,
			Dip:           DefaultDip,
		},
		Parser: ParserConfig{
			RawTransform:  DefaultRawTransform,
			StripTimeZone: true,
		},
		Sunspot: SunspotConfig{
			Table: filepath.Join(XDGDataDir(), DefaultSunspotFile),
		},
		Database: DatabaseConfig{
			Dir: XDGDataDir(),
		},
		BatchSize: DefaultBatchSize,
	}
}

// ApplyFile overlays the sections of a configuration file onto c.
// Relative sunspot and database paths are resolved against baseDir.
func (c *Config) ApplyFile(f *File, baseDir string) {
	if f == nil {
		return
	}
	c.Station = f.Station
	c.Parser = f.Parser
	c.Sunspot = f.Sunspot
	c.Database = f.Database
	c.Sunspot.Table = resolvePath(baseDir, c.Sunspot.Table)
	c.Database.Dir = resolvePath(baseDir, c.Database.Dir)
}

func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

// Normalize canonicalises free-form values. It is called after all sources
// have been applied and before Validate.
func (c *Config) Normalize() {
	c.Station.Name = cases.Upper(language.Und).String(c.Station.Name)
}

// ParseOptions converts the parser section into ionogram.Options.
func (c *Config) ParseOptions() (ionogram.Options, error) {
	transform, err := ionogram.ParseRawTransform(c.Parser.RawTransform)
	if err != nil {
		return ionogram.Options{}, err
	}
	return ionogram.Options{
		RawTransform:  transform,
		ContrastHack:  c.Parser.ContrastHack,
		StripTimeZone: c.Parser.StripTimeZone,
	}, nil
}

// XDGDataDir returns the XDG data directory for ionoview.
// On Linux: ~/.local/share/ionoview
// On macOS: ~/Library/Application Support/ionoview
// On Windows: %LOCALAPPDATA%\ionoview
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ionoview.
// On Linux: ~/.config/ionoview
// On macOS: ~/Library/Application Support/ionoview
// On Windows: %APPDATA%\ionoview
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for ionoview.
// On Linux: ~/.cache/ionoview
// On macOS: ~/Library/Caches/ionoview
// On Windows: %LOCALAPPDATA%\ionoview\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
func (c *Config) Validate() error {
	if c.Station.Name == "" {
		return ErrEmptyStation
	}

	if c.Station.Latitude < -90 || c.Station.Latitude > 90 {
		return ErrInvalidLatitude
	}

	if c.Station.Longitude < -180 || c.Station.Longitude > 360 {
		return ErrInvalidLongitude
	}

	if _, err := ionogram.ParseRawTransform(c.Parser.RawTransform); err != nil {
		return ErrInvalidRawTransform
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
