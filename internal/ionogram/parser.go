package ionogram

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/nao1215/ionoview/internal/model"
	"github.com/nao1215/ionoview/internal/rawio"
)

// Header keys recognised in a sounding file.
const (
	keyZ0     = "z0"
	keyDz     = "dz"
	keyNstrob = "Nstrob"
	keyNsound = "Nsound"
	keyTime   = "TIME"
)

// timeLayout matches "day.month.year hour:minute:second" with or without
// zero padding.
const timeLayout = "2.1.2006 15:4:5"

// maxLineSize bounds a single data row. Real instruments emit a few KiB.
const maxLineSize = 1 << 20

// Sounding is a parsed sounding file.
type Sounding struct {
	// Header holds the values read from the file: ObservedAt, Nstrob and
	// Nsound. Station metadata and the sunspot number are filled in later.
	Header model.SoundingHeader
	// Grid is the validated sample grid.
	Grid *Grid
}

// ParseFile opens path (transparently decompressing .gz and .zst) and parses
// it. Format errors carry the path.
func ParseFile(path string, opts Options) (*Sounding, error) {
	rc, err := rawio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sounding: %w", err)
	}
	defer rc.Close() //nolint:errcheck // read-only handle

	s, err := Parse(rc, opts)
	if err != nil {
		return nil, model.WithPath(err, path)
	}
	return s, nil
}

// Parse reads a sounding from r. On any structural problem it returns a
// *model.FormatError and no Sounding.
func Parse(r io.Reader, opts Options) (*Sounding, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	sec, err := locateSections(lines)
	if err != nil {
		return nil, err
	}

	frequencies, err := parseFrequencies(lines, sec)
	if err != nil {
		return nil, err
	}

	hdr, err := parseHeader(lines, sec, opts)
	if err != nil {
		return nil, err
	}

	raw, err := parseData(lines, sec, len(frequencies))
	if err != nil {
		return nil, err
	}

	samples := assemble(raw, opts.RawTransform)
	if opts.ContrastHack {
		applyContrastHack(samples)
	}

	grid, err := NewGrid(frequencies, hdr.z0, hdr.dz, samples)
	if err != nil {
		return nil, err
	}

	return &Sounding{
		Header: model.SoundingHeader{
			ObservedAt: hdr.observedAt,
			Nstrob:     hdr.nstrob,
			Nsound:     hdr.nsound,
		},
		Grid: grid,
	}, nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, model.NewFormatError(len(lines)+1, "line longer than %d bytes", maxLineSize)
		}
		return nil, fmt.Errorf("failed to read sounding: %w", err)
	}
	return lines, nil
}

func parseFrequencies(lines []string, sec sections) ([]float64, error) {
	from, to := sec.frequencyLines()
	frequencies := make([]float64, 0, to-from)
	for i := from; i < to; i++ {
		if lines[i] == "" {
			continue
		}
		fields := strings.Fields(lines[i])
		token := fields[len(fields)-1]
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, model.NewFormatError(i+1, "frequency %q is not a number", token)
		}
		frequencies = append(frequencies, f)
	}

	if err := validateFrequencies(frequencies); err != nil {
		var fe *model.FormatError
		if errors.As(err, &fe) && fe.Line == 0 {
			fe.Line = sec.frequencySet + 1
		}
		return nil, err
	}
	return frequencies, nil
}

type fileHeader struct {
	z0, dz         float64
	nstrob, nsound int
	observedAt     time.Time
}

func parseHeader(lines []string, sec sections, opts Options) (fileHeader, error) {
	var (
		hdr                      fileHeader
		haveZ0, haveDz, haveTime bool
	)

	for i, line := range lines {
		if sec.inData(i) {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		lineNo := i + 1

		var err error
		switch key {
		case keyZ0:
			hdr.z0, err = parseFloatValue(lineNo, key, value)
			haveZ0 = true
		case keyDz:
			hdr.dz, err = parseFloatValue(lineNo, key, value)
			haveDz = true
		case keyNstrob:
			hdr.nstrob, err = parseIntValue(lineNo, key, value)
		case keyNsound:
			hdr.nsound, err = parseIntValue(lineNo, key, value)
		case keyTime:
			hdr.observedAt, err = parseTime(lineNo, value, opts.StripTimeZone)
			haveTime = true
		default:
			continue
		}
		if err != nil {
			return fileHeader{}, err
		}
	}

	switch {
	case !haveZ0:
		return fileHeader{}, model.NewFormatError(0, "missing %s header key", keyZ0)
	case !haveDz:
		return fileHeader{}, model.NewFormatError(0, "missing %s header key", keyDz)
	case !haveTime:
		return fileHeader{}, model.NewFormatError(0, "missing %s header key", keyTime)
	case !(hdr.dz > 0):
		return fileHeader{}, model.NewFormatError(0, "%s must be positive, got %g", keyDz, hdr.dz)
	}
	return hdr, nil
}

func parseFloatValue(line int, key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, model.NewFormatError(line, "%s value %q is not a number", key, value)
	}
	return v, nil
}

func parseIntValue(line int, key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, model.NewFormatError(line, "%s value %q is not an integer", key, value)
	}
	return v, nil
}

func parseTime(line int, value string, stripZone bool) (time.Time, error) {
	fields := strings.Fields(value)
	if stripZone {
		if len(fields) > 2 {
			fields = fields[:2]
		}
		// "10:30:00UT" carries the zone glued to the clock.
		if len(fields) == 2 {
			fields[1] = strings.TrimRightFunc(fields[1], unicode.IsLetter)
		}
	}
	if len(fields) != 2 {
		return time.Time{}, model.NewFormatError(line, "TIME value %q is not \"dd.mm.yyyy HH:MM:SS\"", value)
	}
	t, err := time.Parse(timeLayout, fields[0]+" "+fields[1])
	if err != nil {
		return time.Time{}, model.NewFormatError(line, "TIME value %q: %v", value, err)
	}
	return t.UTC(), nil
}

// parseData returns the raw block indexed [frequency][range gate].
func parseData(lines []string, sec sections, nFreq int) ([][]float64, error) {
	from, to := sec.dataLines()
	raw := make([][]float64, 0, nFreq)
	nRang := -1
	for i := from; i < to; i++ {
		if lines[i] == "" {
			continue
		}
		fields := strings.Fields(lines[i])
		if nRang < 0 {
			nRang = len(fields)
		} else if len(fields) != nRang {
			return nil, model.NewFormatError(i+1, "data row has %d values, previous rows have %d", len(fields), nRang)
		}

		row := make([]float64, len(fields))
		for j, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, model.NewFormatError(i+1, "data value %q in column %d is not a number", field, j+1)
			}
			row[j] = v
		}
		raw = append(raw, row)
	}

	if len(raw) != nFreq {
		return nil, model.NewFormatError(sec.dataEnd+1, "data block has %d rows, frequency set has %d entries", len(raw), nFreq)
	}
	return raw, nil
}

// assemble transposes the raw block so that grid[h][f] = raw[f][nRang-1-h]
// and applies the raw transform.
func assemble(raw [][]float64, transform RawTransform) [][]float64 {
	nFreq := len(raw)
	nRang := len(raw[0])
	grid := make([][]float64, nRang)
	for h := range grid {
		grid[h] = make([]float64, nFreq)
		for f := range nFreq {
			grid[h][f] = transformSample(raw[f][nRang-1-h], transform)
		}
	}
	return grid
}

func transformSample(v float64, transform RawTransform) float64 {
	if transform != TransformLog10 {
		return v
	}
	if !(v > 0) {
		return 0
	}
	return math.Log10(v)
}

// applyContrastHack sets grid[0][0] to the negated grid maximum.
func applyContrastHack(grid [][]float64) {
	peak := math.Inf(-1)
	for _, row := range grid {
		for _, v := range row {
			peak = max(peak, v)
		}
	}
	grid[0][0] = -peak
}
