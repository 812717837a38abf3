package ionogram

import (
	"fmt"
	"math"
	"strconv"

	"github.com/nao1215/ionoview/internal/model"
)

// Grid is an immutable ionogram: frequency axis, height axis and the
// amplitude samples indexed [height][frequency].
//
// Rows run from the lowest to the highest height and columns from the lowest
// to the highest frequency. A Grid is safe for concurrent reads.
type Grid struct {
	frequencies []float64
	heights     []float64
	samples     [][]float64
	step        float64
	logStep     float64
	max         float64
}

// Extent is the plot rectangle in (coordinate, height) space.
type Extent struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

// Contains reports whether coord lies within [Left, Right].
func (e Extent) Contains(coord float64) bool {
	return coord >= e.Left && coord <= e.Right
}

// Tick is one labelled position on the frequency axis.
type Tick struct {
	// Coordinate is the transformed position of the labelled frequency.
	Coordinate float64 `json:"coordinate"`
	// Label is the frequency in MHz rounded to an integer.
	Label string `json:"label"`
}

// NewGrid validates the axes and samples and builds a Grid.
// Heights are z0 + dz*h for h in [0, len(samples)). The samples slice is
// copied; later changes by the caller do not affect the grid.
func NewGrid(frequencies []float64, z0, dz float64, samples [][]float64) (*Grid, error) {
	if err := validateFrequencies(frequencies); err != nil {
		return nil, err
	}
	if !(dz > 0) || math.IsInf(dz, 0) {
		return nil, model.NewFormatError(0, "height step dz must be positive, got %g", dz)
	}
	if math.IsNaN(z0) || math.IsInf(z0, 0) {
		return nil, model.NewFormatError(0, "start height z0 must be finite, got %g", z0)
	}
	if len(samples) == 0 {
		return nil, model.NewFormatError(0, "sample grid has no heights")
	}

	nFreq := len(frequencies)
	g := &Grid{
		frequencies: append([]float64(nil), frequencies...),
		heights:     make([]float64, len(samples)),
		samples:     make([][]float64, len(samples)),
		max:         math.Inf(-1),
	}
	for h, row := range samples {
		if len(row) != nFreq {
			return nil, model.NewFormatError(0, "sample row %d has %d values, expected %d", h, len(row), nFreq)
		}
		g.heights[h] = z0 + dz*float64(h)
		g.samples[h] = append([]float64(nil), row...)
		for _, v := range row {
			if v > g.max {
				g.max = v
			}
		}
	}

	g.step = frequencies[1] / frequencies[0]
	g.logStep = math.Log(g.step)
	return g, nil
}

func validateFrequencies(frequencies []float64) error {
	if len(frequencies) < 2 {
		return model.NewFormatError(0, "frequency set needs at least 2 entries, got %d", len(frequencies))
	}
	for i, f := range frequencies {
		if !(f > 0) || math.IsInf(f, 0) {
			return model.NewFormatError(0, "frequency %d is not a positive number: %g", i+1, f)
		}
		if i > 0 && f <= frequencies[i-1] {
			return model.NewFormatError(0, "frequencies must be strictly increasing: %g follows %g", f, frequencies[i-1])
		}
	}
	return nil
}

// Step returns the ratio of the second to the first tabulated frequency,
// the base of the logarithmic coordinate system.
func (g *Grid) Step() float64 {
	return g.step
}

// FrequencyToCoordinate maps a frequency in MHz to the plot coordinate
// log_step(freq).
func (g *Grid) FrequencyToCoordinate(freq float64) (float64, error) {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return 0, &model.DomainError{Op: "frequency to coordinate", Value: freq}
	}
	return math.Log(freq) / g.logStep, nil
}

// CoordinateToFrequency is the inverse of FrequencyToCoordinate.
func (g *Grid) CoordinateToFrequency(coord float64) (float64, error) {
	if math.IsNaN(coord) || math.IsInf(coord, 0) {
		return 0, &model.DomainError{Op: "coordinate to frequency", Value: coord}
	}
	freq := math.Pow(g.step, coord)
	if math.IsInf(freq, 0) || freq == 0 {
		return 0, &model.DomainError{Op: "coordinate to frequency", Value: coord}
	}
	return freq, nil
}

// Extent returns the transformed first and last frequency and the first and
// last height.
func (g *Grid) Extent() Extent {
	// Frequencies were validated positive, so the transform cannot fail.
	left, _ := g.FrequencyToCoordinate(g.frequencies[0])
	right, _ := g.FrequencyToCoordinate(g.frequencies[len(g.frequencies)-1])
	return Extent{
		Left:   left,
		Right:  right,
		Bottom: g.heights[0],
		Top:    g.heights[len(g.heights)-1],
	}
}

// FrequencyTicks returns integer-MHz labels for the frequency axis in
// ascending order.
//
// Every integer coordinate x in [floor(left), floor(right)) proposes the
// frequency step^x rounded to a whole number. Proposals with an already seen
// label are dropped, and each remaining tick is placed at the coordinate of
// its label value, not at x. Labels that round to 0 are skipped.
func (g *Grid) FrequencyTicks() []Tick {
	ext := g.Extent()
	first := int(math.Floor(ext.Left))
	last := int(math.Floor(ext.Right))

	ticks := make([]Tick, 0, last-first)
	seen := make(map[string]struct{}, last-first)
	for x := first; x < last; x++ {
		label := fmt.Sprintf("%.0f", math.Pow(g.step, float64(x)))
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}

		value, err := strconv.ParseFloat(label, 64)
		if err != nil {
			continue
		}
		coord, err := g.FrequencyToCoordinate(value)
		if err != nil {
			continue
		}
		ticks = append(ticks, Tick{Coordinate: coord, Label: label})
	}
	return ticks
}

// NFreq returns the number of tabulated frequencies.
func (g *Grid) NFreq() int {
	return len(g.frequencies)
}

// NRang returns the number of heights.
func (g *Grid) NRang() int {
	return len(g.heights)
}

// Frequencies returns a copy of the frequency axis in MHz.
func (g *Grid) Frequencies() []float64 {
	return append([]float64(nil), g.frequencies...)
}

// Heights returns a copy of the height axis in km.
func (g *Grid) Heights() []float64 {
	return append([]float64(nil), g.heights...)
}

// Samples returns a deep copy of the sample grid indexed [height][frequency].
func (g *Grid) Samples() [][]float64 {
	out := make([][]float64, len(g.samples))
	for h, row := range g.samples {
		out[h] = append([]float64(nil), row...)
	}
	return out
}

// At returns the sample at height index h and frequency index f.
// It panics when an index is out of range, like a slice access.
func (g *Grid) At(h, f int) float64 {
	return g.samples[h][f]
}

// Max returns the largest sample value.
func (g *Grid) Max() float64 {
	return g.max
}
