package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLayer is returned by ParseLayer when the name is not E, F1 or F2.
var ErrUnknownLayer = errors.New("unknown layer")

// Layer identifies an ionospheric layer that can be annotated.
type Layer int

const (
	// LayerE is the E layer (roughly 90-150 km).
	LayerE Layer = iota
	// LayerF1 is the F1 layer, present in daytime.
	LayerF1
	// LayerF2 is the F2 layer, the highest and densest layer.
	LayerF2
)

// layerCount is the number of annotatable layers.
const layerCount = 3

// Layers returns all layers in companion file order (E, F1, F2).
func Layers() []Layer {
	return []Layer{LayerE, LayerF1, LayerF2}
}

// String returns the conventional layer name.
func (l Layer) String() string {
	switch l {
	case LayerE:
		return "E"
	case LayerF1:
		return "F1"
	case LayerF2:
		return "F2"
	default:
		return "unknown"
	}
}

// CriticalName returns the URSI name of the layer's critical frequency
// (foE, foF1, foF2).
func (l Layer) CriticalName() string {
	return "fo" + l.String()
}

// Valid reports whether l is one of the known layers.
func (l Layer) Valid() bool {
	return l >= LayerE && l <= LayerF2
}

// ParseLayer converts a layer name such as "f2" or "E" into a Layer.
// Matching is case-insensitive and ignores a leading "fo".
func ParseLayer(name string) (Layer, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "FO")
	for _, l := range Layers() {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

// MarshalText implements encoding.TextMarshaler so layers appear by name in JSON.
func (l Layer) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLayer, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layer) UnmarshalText(text []byte) error {
	parsed, err := ParseLayer(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
