package model

import (
	"time"
)

// TimestampLayout is how observation times are shown in descriptions.
const TimestampLayout = "2006-01-02 15:04:05"

// SoundingHeader carries the metadata of one sounding.
//
// Station and geographic coordinates come from configuration, not from the
// sounding file. Sunspot is resolved after parsing; SunspotKnown is false
// when no sunspot row matched the observation date, in which case Sunspot is
// 0 and must be read as "unknown" rather than "no solar activity".
type SoundingHeader struct {
	Station       string    `json:"station"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Gyrofrequency float64   `json:"gyrofrequency"`
	Dip           float64   `json:"dip"`
	Sunspot       int       `json:"sunspot"`
	SunspotKnown  bool      `json:"sunspot_known"`
	ObservedAt    time.Time `json:"observed_at"`

	// Nstrob and Nsound are instrument metadata kept for reference only.
	Nstrob int `json:"nstrob,omitempty"`
	Nsound int `json:"nsound,omitempty"`
}

// Description returns "<station>, <timestamp>", the caption used for
// saved images and report titles.
func (h SoundingHeader) Description() string {
	return h.Station + ", " + h.ObservedAt.Format(TimestampLayout)
}
