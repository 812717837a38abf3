package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrEmptyStation is returned when the station name is empty.
	// Companion files start with the station name, so it cannot be blank.
	ErrEmptyStation = errors.New("invalid station: name must not be empty")

	// ErrInvalidLatitude is returned when the latitude is outside [-90, 90].
	ErrInvalidLatitude = errors.New("invalid station latitude: must be within [-90, 90]")

	// ErrInvalidLongitude is returned when the longitude is outside [-180, 360].
	// Both signed and 0-360 east longitudes are accepted.
	ErrInvalidLongitude = errors.New("invalid station longitude: must be within [-180, 360]")

	// ErrInvalidRawTransform is returned when parser.raw_transform names an
	// unknown transform.
	ErrInvalidRawTransform = errors.New("invalid raw transform: must be identity or log10")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
