package annotation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/ionoview/internal/model"
)

// Extension is appended to a sounding path to form its companion path.
const Extension = ".STD"

const (
	blockEnd   = "END"
	dateLayout = "2006 01 02 15 04 00"
	pointFmt   = "%5.2f %5.1f"
)

// Document is the content of a companion file.
type Document struct {
	// Header holds the station, coordinates, sunspot number and observation
	// time. Seconds are not stored.
	Header model.SoundingHeader
	// Annotations holds the critical frequency and trace points per layer.
	Annotations *model.Annotations
}

// NewDocument returns an empty document for header.
func NewDocument(header model.SoundingHeader) *Document {
	return &Document{Header: header, Annotations: model.NewAnnotations()}
}

// CompanionPath returns the companion file path of a sounding.
func CompanionPath(soundingPath string) string {
	return soundingPath + Extension
}

// Write serialises doc to w.
func Write(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)
	h := doc.Header

	fmt.Fprintln(bw, h.Station)
	fmt.Fprintln(bw, strings.Join([]string{
		formatDecimal(h.Latitude),
		formatDecimal(h.Longitude),
		formatDecimal(h.Gyrofrequency),
		formatDecimal(h.Dip),
		strconv.Itoa(h.Sunspot),
	}, " "))
	fmt.Fprintln(bw, h.ObservedAt.Format(dateLayout))

	annotations := doc.Annotations
	if annotations == nil {
		annotations = model.NewAnnotations()
	}
	for _, l := range model.Layers() {
		set := annotations.Get(l)
		fmt.Fprintln(bw, formatCritical(set.Critical))
		for _, p := range set.Points {
			fmt.Fprintf(bw, pointFmt+"\n", p.Frequency, p.Height)
		}
		fmt.Fprintln(bw, blockEnd)
	}

	return bw.Flush()
}

// WriteFile writes doc to path through a temporary file and a rename, so an
// interrupted save never leaves a truncated companion behind.
func WriteFile(path string, doc *Document) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary companion: %w", err)
	}

	if err := Write(tmp, doc); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write companion: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write companion: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace companion: %w", err)
	}
	return nil
}

// ReadFile reads the companion at path. A missing file is not an error: it
// returns an empty document and found == false.
func ReadFile(path string) (doc *Document, found bool, err error) {
	f, err := os.Open(path) //nolint:gosec // companion path derives from an operator-selected sounding
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewDocument(model.SoundingHeader{}), false, nil
		}
		return nil, false, fmt.Errorf("failed to open companion: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	doc, err = Read(f)
	if err != nil {
		return nil, true, model.WithPath(err, path)
	}
	return doc, true, nil
}

// Read parses a companion document from r. Critical frequencies within 1.0 of
// 99 are kept as exactly model.CriticalUnset.
func Read(r io.Reader) (*Document, error) {
	lr := &lineReader{scanner: bufio.NewScanner(r)}

	station, err := lr.next("station")
	if err != nil {
		return nil, err
	}
	doc := NewDocument(model.SoundingHeader{Station: station})

	if err := readCoordinates(lr, &doc.Header); err != nil {
		return nil, err
	}
	if err := readDate(lr, &doc.Header); err != nil {
		return nil, err
	}

	for _, l := range model.Layers() {
		set, err := readBlock(lr, l)
		if err != nil {
			return nil, err
		}
		doc.Annotations.Set(l, set)
	}
	return doc, nil
}

// lineReader hands out trimmed lines and tracks the 1-based line number.
type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

func (lr *lineReader) next(what string) (string, error) {
	if !lr.scanner.Scan() {
		if err := lr.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read companion: %w", err)
		}
		return "", model.NewFormatError(lr.line+1, "unexpected end of file, expected %s", what)
	}
	lr.line++
	return strings.TrimSpace(lr.scanner.Text()), nil
}

func readCoordinates(lr *lineReader, h *model.SoundingHeader) error {
	line, err := lr.next("coordinates")
	if err != nil {
		return err
	}
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return model.NewFormatError(lr.line, "coordinates line has %d fields, expected 5", len(fields))
	}

	targets := []*float64{&h.Latitude, &h.Longitude, &h.Gyrofrequency, &h.Dip}
	for i, dst := range targets {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return model.NewFormatError(lr.line, "coordinate field %d %q is not a number", i+1, fields[i])
		}
		*dst = v
	}

	ssn, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return model.NewFormatError(lr.line, "sunspot number %q is not a number", fields[4])
	}
	h.Sunspot = int(math.Round(ssn))
	h.SunspotKnown = h.Sunspot > 0
	return nil
}

func readDate(lr *lineReader, h *model.SoundingHeader) error {
	line, err := lr.next("date")
	if err != nil {
		return err
	}
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return model.NewFormatError(lr.line, "date line has %d fields, expected 6", len(fields))
	}
	var v [6]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return model.NewFormatError(lr.line, "date field %d %q is not an integer", i+1, f)
		}
		v[i] = n
	}
	h.ObservedAt = time.Date(v[0], time.Month(v[1]), v[2], v[3], v[4], v[5], 0, time.UTC)
	return nil
}

func readBlock(lr *lineReader, l model.Layer) (model.AnnotationSet, error) {
	set := model.NewAnnotationSet()

	line, err := lr.next(l.CriticalName())
	if err != nil {
		return set, err
	}
	critical, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return set, model.NewFormatError(lr.line, "%s value %q is not a number", l.CriticalName(), line)
	}
	set.SetCritical(critical)

	for {
		line, err := lr.next(blockEnd + " of layer " + l.String())
		if err != nil {
			return set, err
		}
		if line == blockEnd {
			return set, nil
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return set, model.NewFormatError(lr.line, "trace point has %d fields, expected 2", len(fields))
		}
		freq, errF := strconv.ParseFloat(fields[0], 64)
		height, errH := strconv.ParseFloat(fields[1], 64)
		if errF != nil || errH != nil {
			return set, model.NewFormatError(lr.line, "trace point %q is not numeric", line)
		}
		set.AddPoint(model.TracePoint{Frequency: freq, Height: height})
	}
}

// formatCritical renders a critical frequency, collapsing unset and
// near-sentinel values to "99.0".
func formatCritical(v float64) string {
	if model.IsCriticalUnset(v) {
		return formatDecimal(model.CriticalUnset)
	}
	return formatDecimal(v)
}

// formatDecimal prints the shortest exact representation with at least one
// decimal place, e.g. 5 -> "5.0", 2.85 -> "2.85".
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
