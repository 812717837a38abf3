package model

import (
	"encoding/json"
	"math"
)

// CriticalUnset is the sentinel critical frequency meaning "no data".
// It is written verbatim to companion files and must survive a round trip.
const CriticalUnset = 99.0

// criticalTolerance is how close to CriticalUnset a value has to be to be
// read as unset. Operators occasionally type 98.9 or 99.05 by hand.
const criticalTolerance = 1.0

// minCritical is the smallest critical frequency (MHz) that counts as set.
const minCritical = 0.1

// IsCriticalUnset reports whether v denotes "no critical frequency".
// Values within 1 MHz of 99.0 and values below 0.1 MHz are treated as unset.
func IsCriticalUnset(v float64) bool {
	return math.IsNaN(v) || math.Abs(v-CriticalUnset) < criticalTolerance || math.Abs(v) < minCritical
}

// TracePoint is a manually placed point of a layer trace.
// Frequency is in MHz, Height is the virtual height in km.
type TracePoint struct {
	Frequency float64 `json:"frequency"`
	Height    float64 `json:"height"`
}

// AnnotationSet holds the operator's markings for one layer.
type AnnotationSet struct {
	// Critical is the critical frequency in MHz, CriticalUnset when not set.
	Critical float64 `json:"critical"`

	// Points are the trace points in the order they were placed.
	Points []TracePoint `json:"points"`
}

// NewAnnotationSet returns an empty set with the critical frequency unset.
func NewAnnotationSet() AnnotationSet {
	return AnnotationSet{Critical: CriticalUnset}
}

// HasCritical reports whether a critical frequency is set.
func (s AnnotationSet) HasCritical() bool {
	return !IsCriticalUnset(s.Critical)
}

// SetCritical sets the critical frequency. Values that read as unset are
// normalized to CriticalUnset.
func (s *AnnotationSet) SetCritical(freq float64) {
	if IsCriticalUnset(freq) {
		s.Critical = CriticalUnset
		return
	}
	s.Critical = freq
}

// AddPoint appends a trace point.
func (s *AnnotationSet) AddPoint(p TracePoint) {
	s.Points = append(s.Points, p)
}

// RemovePoint removes the point at index i. It reports false when i is out of range.
func (s *AnnotationSet) RemovePoint(i int) bool {
	if i < 0 || i >= len(s.Points) {
		return false
	}
	s.Points = append(s.Points[:i], s.Points[i+1:]...)
	return true
}

// Clear resets the set to its empty state.
func (s *AnnotationSet) Clear() {
	s.Critical = CriticalUnset
	s.Points = nil
}

// IsEmpty reports whether neither a critical frequency nor points are set.
func (s AnnotationSet) IsEmpty() bool {
	return !s.HasCritical() && len(s.Points) == 0
}

// Annotations holds the annotation sets of all layers of one sounding.
type Annotations struct {
	sets [layerCount]AnnotationSet
}

// NewAnnotations returns annotations with every layer empty.
func NewAnnotations() *Annotations {
	a := &Annotations{}
	a.Clear()
	return a
}

// Get returns a copy of the set for layer l.
func (a *Annotations) Get(l Layer) AnnotationSet {
	if !l.Valid() {
		return NewAnnotationSet()
	}
	set := a.sets[l]
	set.Points = append([]TracePoint(nil), set.Points...)
	return set
}

// Set replaces the set for layer l. Invalid layers are ignored.
func (a *Annotations) Set(l Layer, set AnnotationSet) {
	if !l.Valid() {
		return
	}
	set.Points = append([]TracePoint(nil), set.Points...)
	a.sets[l] = set
}

// Update applies fn to the set of layer l in place.
func (a *Annotations) Update(l Layer, fn func(*AnnotationSet)) {
	if !l.Valid() {
		return
	}
	fn(&a.sets[l])
}

// Clone returns a deep copy of a.
func (a *Annotations) Clone() *Annotations {
	c := &Annotations{}
	for _, l := range Layers() {
		c.Set(l, a.sets[l])
	}
	return c
}

// Clear empties every layer.
func (a *Annotations) Clear() {
	for i := range a.sets {
		a.sets[i] = NewAnnotationSet()
	}
}

// IsEmpty reports whether no layer carries any annotation.
func (a *Annotations) IsEmpty() bool {
	for _, s := range a.sets {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the annotations as an object keyed by layer name.
func (a *Annotations) MarshalJSON() ([]byte, error) {
	m := make(map[Layer]AnnotationSet, layerCount)
	for _, l := range Layers() {
		m[l] = a.sets[l]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes annotations produced by MarshalJSON.
func (a *Annotations) UnmarshalJSON(data []byte) error {
	m := make(map[Layer]AnnotationSet, layerCount)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	a.Clear()
	for l, s := range m {
		a.Set(l, s)
	}
	return nil
}
