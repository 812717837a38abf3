package session

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/nao1215/ionoview/internal/annotation"
	"github.com/nao1215/ionoview/internal/ionogram"
	"github.com/nao1215/ionoview/internal/model"
	"github.com/nao1215/ionoview/internal/sunspot"
)

// Station describes the instrument. Its values are copied into every header
// because sounding files do not carry them.
type Station struct {
	Name          string
	Latitude      float64
	Longitude     float64
	Gyrofrequency float64
	Dip           float64
}

// Config configures a Session.
type Config struct {
	// Station is the instrument metadata.
	Station Station
	// Parse configures the sounding parser.
	Parse ionogram.Options
	// SunspotTable is the path of the daily sunspot table. Empty disables
	// the lookup. The table is read on every Open so edits are picked up.
	SunspotTable string
	// RequireSoundingName rejects files not named like
	// "YYYYMMDD_HHMM_iono.<ext>".
	RequireSoundingName bool
}

// State is an open sounding.
type State struct {
	// Path is the sounding file.
	Path string
	// Header is the merged header: file values, station metadata and the
	// resolved sunspot number.
	Header model.SoundingHeader
	// Grid is the parsed sample grid.
	Grid *ionogram.Grid
	// Annotations are the operator's markings.
	Annotations *model.Annotations
	// CompanionFound reports whether a companion file existed when the
	// sounding was opened.
	CompanionFound bool
	// CompanionErr is set when a companion file exists but could not be
	// read. Save refuses to overwrite it until BackupCompanion moves it
	// aside.
	CompanionErr error
}

// CompanionPath returns the path of the state's companion file.
func (s *State) CompanionPath() string {
	return annotation.CompanionPath(s.Path)
}

// clone returns a copy whose annotations can be read while the session
// keeps editing its own. The grid is never mutated and is shared.
func (s *State) clone() *State {
	c := *s
	c.Annotations = s.Annotations.Clone()
	return &c
}

// Marker is a trace point placed in plot coordinates.
type Marker struct {
	// Index is the position of the point within its layer.
	Index int
	// Coordinate is the transformed frequency.
	Coordinate float64
	// Height is the virtual height in km.
	Height float64
	// Point is the stored trace point.
	Point model.TracePoint
}

// Session manages the currently open sounding. It is safe for concurrent
// use; the states it hands out are snapshots and do not follow later edits.
type Session struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.RWMutex
	state *State
}

// New creates a Session with no open sounding.
func New(cfg Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{cfg: cfg, logger: logger}
}

// Open loads the sounding at path and makes it current. On failure the
// previously open sounding, if any, stays current and untouched.
//
// The stored path is absolute so that one sounding has a single archive key
// however it was named on the command line.
func (s *Session) Open(path string) (*State, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sounding path: %w", err)
	}
	if s.cfg.RequireSoundingName && !ionogram.IsSoundingName(path) {
		return nil, fmt.Errorf("%w: %s", ionogram.ErrNotSoundingName, path)
	}

	snd, err := ionogram.ParseFile(path, s.cfg.Parse)
	if err != nil {
		return nil, err
	}

	header := snd.Header
	st := s.cfg.Station
	header.Station = st.Name
	header.Latitude = st.Latitude
	header.Longitude = st.Longitude
	header.Gyrofrequency = st.Gyrofrequency
	header.Dip = st.Dip
	header.Sunspot, header.SunspotKnown = s.resolveSunspot(header)

	next := &State{
		Path:        path,
		Header:      header,
		Grid:        snd.Grid,
		Annotations: model.NewAnnotations(),
	}

	companion := next.CompanionPath()
	doc, found, err := annotation.ReadFile(companion)
	switch {
	case err != nil:
		next.CompanionErr = err
		s.logger.Warn("ignoring unreadable companion file", "path", companion, "error", err)
	case !found:
		s.logger.Debug("no companion file", "path", companion)
	default:
		next.Annotations = doc.Annotations
		next.CompanionFound = true
		if !next.Header.SunspotKnown && doc.Header.SunspotKnown {
			next.Header.Sunspot = doc.Header.Sunspot
			next.Header.SunspotKnown = true
		}
	}

	s.mu.Lock()
	s.state = next
	snapshot := next.clone()
	s.mu.Unlock()

	s.logger.Debug("opened sounding",
		"path", path,
		"observed_at", header.ObservedAt,
		"nfreq", snapshot.Grid.NFreq(),
		"nrang", snapshot.Grid.NRang(),
		"sunspot", snapshot.Header.Sunspot,
	)
	return snapshot, nil
}

func (s *Session) resolveSunspot(h model.SoundingHeader) (int, bool) {
	if s.cfg.SunspotTable == "" {
		return 0, false
	}
	tbl, err := sunspot.Load(s.cfg.SunspotTable)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("sunspot table not found", "path", s.cfg.SunspotTable)
		} else {
			s.logger.Warn("failed to load sunspot table", "path", s.cfg.SunspotTable, "error", err)
		}
		return 0, false
	}
	if n := tbl.Skipped(); n > 0 {
		s.logger.Debug("skipped malformed sunspot rows", "path", s.cfg.SunspotTable, "count", n)
	}
	v, ok := tbl.Resolve(h.ObservedAt)
	if !ok {
		s.logger.Debug("no sunspot number for date", "date", h.ObservedAt.Format("2006-01-02"))
	}
	return v, ok
}

// Close discards the open sounding and its unsaved annotations.
func (s *Session) Close() {
	s.mu.Lock()
	s.state = nil
	s.mu.Unlock()
}

// Current returns a snapshot of the open sounding, or nil when none is
// open. Use the Session mutators to change annotations.
func (s *Session) Current() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil
	}
	return s.state.clone()
}

// Save writes the annotations of the open sounding to its companion file
// and returns the companion path. It fails with ErrCompanionUnreadable
// instead of replacing a companion that could not be read on open.
func (s *Session) Save() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return "", ErrNoSounding
	}

	path := s.state.CompanionPath()
	if s.state.CompanionErr != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCompanionUnreadable, path, s.state.CompanionErr)
	}

	doc := &annotation.Document{Header: s.state.Header, Annotations: s.state.Annotations}
	if err := annotation.WriteFile(path, doc); err != nil {
		return "", err
	}
	s.state.CompanionFound = true
	s.logger.Debug("saved companion file", "path", path)
	return path, nil
}

// BackupCompanion renames an unreadable companion file to
// "<companion>.bak" so that the next Save can write a fresh one. It returns
// the backup path, or "" when the companion was readable.
func (s *Session) BackupCompanion() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return "", ErrNoSounding
	}
	if s.state.CompanionErr == nil {
		return "", nil
	}

	path := s.state.CompanionPath()
	backup := path + backupExtension
	if err := os.Rename(path, backup); err != nil {
		return "", fmt.Errorf("failed to back up companion: %w", err)
	}
	s.state.CompanionErr = nil
	s.logger.Warn("moved unreadable companion file aside", "path", path, "backup", backup)
	return backup, nil
}

// Markers returns the trace points of layer in plot coordinates. Points
// whose frequency cannot be transformed are skipped; their errors are
// returned alongside the markers that could be placed.
func (s *Session) Markers(l model.Layer) ([]Marker, []error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, []error{ErrNoSounding}
	}

	set := s.state.Annotations.Get(l)
	markers := make([]Marker, 0, len(set.Points))
	var errs []error
	for i, p := range set.Points {
		coord, err := s.state.Grid.FrequencyToCoordinate(p.Frequency)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s point %d: %w", l, i, err))
			continue
		}
		markers = append(markers, Marker{Index: i, Coordinate: coord, Height: p.Height, Point: p})
	}
	return markers, errs
}

// CriticalLine returns the coordinate of the critical frequency of layer.
// It reports false when the frequency is unset or falls outside the plot.
func (s *Session) CriticalLine(l model.Layer) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return 0, false
	}

	set := s.state.Annotations.Get(l)
	if !set.HasCritical() {
		return 0, false
	}
	coord, err := s.state.Grid.FrequencyToCoordinate(set.Critical)
	if err != nil {
		return 0, false
	}
	ext := s.state.Grid.Extent()
	if coord <= ext.Left || coord >= ext.Right {
		return 0, false
	}
	return coord, true
}

// SetCritical sets the critical frequency of layer in MHz.
func (s *Session) SetCritical(l model.Layer, freq float64) error {
	return s.update(l, func(set *model.AnnotationSet) error {
		set.SetCritical(freq)
		return nil
	})
}

// SetCriticalAt sets the critical frequency of layer from a plot coordinate,
// rounded to 0.01 MHz.
func (s *Session) SetCriticalAt(l model.Layer, coord float64) error {
	return s.updateAt(l, coord, func(set *model.AnnotationSet, freq float64) {
		set.SetCritical(freq)
	})
}

// AddPoint appends a trace point to layer.
func (s *Session) AddPoint(l model.Layer, p model.TracePoint) error {
	return s.update(l, func(set *model.AnnotationSet) error {
		set.AddPoint(p)
		return nil
	})
}

// AddPointAt appends a trace point placed in plot coordinates. The frequency
// is rounded to 0.01 MHz.
func (s *Session) AddPointAt(l model.Layer, coord, height float64) error {
	return s.updateAt(l, coord, func(set *model.AnnotationSet, freq float64) {
		set.AddPoint(model.TracePoint{Frequency: freq, Height: height})
	})
}

// RemovePoint removes the i-th trace point of layer.
func (s *Session) RemovePoint(l model.Layer, i int) error {
	return s.update(l, func(set *model.AnnotationSet) error {
		if !set.RemovePoint(i) {
			return fmt.Errorf("%s has no trace point %d", l, i)
		}
		return nil
	})
}

// ClearLayer removes the critical frequency and all trace points of layer.
func (s *Session) ClearLayer(l model.Layer) error {
	return s.update(l, func(set *model.AnnotationSet) error {
		set.Clear()
		return nil
	})
}

func (s *Session) updateAt(l model.Layer, coord float64, fn func(*model.AnnotationSet, float64)) error {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()
	if st == nil {
		return ErrNoSounding
	}

	freq, err := st.Grid.CoordinateToFrequency(coord)
	if err != nil {
		return err
	}
	freq = math.Round(freq*100) / 100

	return s.update(l, func(set *model.AnnotationSet) error {
		fn(set, freq)
		return nil
	})
}

func (s *Session) update(l model.Layer, fn func(*model.AnnotationSet) error) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %d", model.ErrUnknownLayer, int(l))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return ErrNoSounding
	}

	set := s.state.Annotations.Get(l)
	if err := fn(&set); err != nil {
		return err
	}
	s.state.Annotations.Set(l, set)
	return nil
}
