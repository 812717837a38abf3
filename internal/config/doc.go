// Package config provides configuration structures and utilities for ionoview.
// It defines the station metadata copied into every sounding header, the
// parser deployment switches, the sunspot table location and the archive
// database settings, together with the YAML/TOML configuration file that
// overrides their defaults.
package config
