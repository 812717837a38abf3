package config

// File represents the structure of the configuration file. Every section is
// optional; missing keys keep their default values.
type File struct {
	// Station overrides the instrument metadata.
	Station StationConfig `yaml:"station" toml:"station"`

	// Parser overrides the parser deployment switches.
	Parser ParserConfig `yaml:"parser" toml:"parser"`

	// Sunspot overrides the sunspot table location.
	Sunspot SunspotConfig `yaml:"sunspot" toml:"sunspot"`

	// Database overrides the archive settings.
	Database DatabaseConfig `yaml:"database" toml:"database"`
}

// DefaultFile returns a File holding the values of NewConfig. Configuration
// files are decoded on top of it so absent keys keep their defaults.
func DefaultFile() *File {
	c := NewConfig()
	return &File{
		Station:  c.Station,
		Parser:   c.Parser,
		Sunspot:  c.Sunspot,
		Database: c.Database,
	}
}
