package ionogram

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTransform is returned by ParseRawTransform for unsupported names.
var ErrUnknownTransform = errors.New("unknown raw transform")

// RawTransform selects how raw amplitude fields are stored in the grid.
// It is a per-deployment policy, never inferred from the data.
type RawTransform int

const (
	// TransformIdentity stores raw values as-is.
	TransformIdentity RawTransform = iota
	// TransformLog10 stores log10 of each raw value. Non-positive raw values
	// are stored as 0.
	TransformLog10
)

// String returns the configuration name of the transform.
func (t RawTransform) String() string {
	switch t {
	case TransformLog10:
		return "log10"
	default:
		return "identity"
	}
}

// ParseRawTransform converts a configuration value into a RawTransform.
// An empty string selects TransformIdentity.
func ParseRawTransform(name string) (RawTransform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "identity", "none":
		return TransformIdentity, nil
	case "log10", "log":
		return TransformLog10, nil
	default:
		return TransformIdentity, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}
}

// Options configures Parse.
//
// Design decision: The two historical deployments differ only in these
// switches, so they are flags on one parser instead of two parsers.
type Options struct {
	// RawTransform is applied to every raw sample before storage.
	RawTransform RawTransform

	// ContrastHack overwrites the cell at height 0, frequency 0 with the
	// negated grid maximum. Legacy colour maps rely on it to pin their
	// extreme bucket.
	ContrastHack bool

	// StripTimeZone drops a trailing time-zone marker (e.g. "UT") from the
	// TIME header. When false, a suffixed timestamp is a format error.
	StripTimeZone bool
}

// DefaultOptions returns the options of the current deployment.
func DefaultOptions() Options {
	return Options{
		RawTransform:  TransformIdentity,
		ContrastHack:  false,
		StripTimeZone: true,
	}
}
