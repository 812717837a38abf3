package report

import (
	"time"

	"github.com/nao1215/ionoview/internal/ionogram"
	"github.com/nao1215/ionoview/internal/model"
	"github.com/nao1215/ionoview/internal/session"
)

// Summary describes one sounding and its scaling.
type Summary struct {
	// Path is the sounding file.
	Path string `json:"path"`

	// Description is "<station>, <timestamp>".
	Description string `json:"description"`

	// Header is the merged sounding header.
	Header model.SoundingHeader `json:"header"`

	// NFreq and NRang are the grid dimensions.
	NFreq int `json:"nfreq"`
	NRang int `json:"nrang"`

	// FrequencyMin and FrequencyMax bound the frequency axis in MHz.
	FrequencyMin float64 `json:"frequency_min"`
	FrequencyMax float64 `json:"frequency_max"`

	// Step is the frequency ratio of the coordinate system.
	Step float64 `json:"step"`

	// Extent is the plot rectangle.
	Extent ionogram.Extent `json:"extent"`

	// MaxSample is the largest stored sample.
	MaxSample float64 `json:"max_sample"`

	// Ticks are the frequency axis labels.
	Ticks []ionogram.Tick `json:"ticks,omitempty"`

	// Layers holds the scaling per layer in E, F1, F2 order.
	Layers []LayerSummary `json:"layers"`

	// CompanionFound reports whether a companion file existed.
	CompanionFound bool `json:"companion_found"`

	// Error is set for batch entries that could not be opened.
	Error string `json:"error,omitempty"`
}

// LayerSummary is the scaling of one layer.
type LayerSummary struct {
	Layer       model.Layer        `json:"layer"`
	Critical    float64            `json:"critical"`
	HasCritical bool               `json:"has_critical"`
	Points      []model.TracePoint `json:"points"`
}

// NewSummary builds a Summary from an open sounding.
func NewSummary(st *session.State) *Summary {
	g := st.Grid
	freqs := g.Frequencies()

	s := &Summary{
		Path:           st.Path,
		Description:    st.Header.Description(),
		Header:         st.Header,
		NFreq:          g.NFreq(),
		NRang:          g.NRang(),
		FrequencyMin:   freqs[0],
		FrequencyMax:   freqs[len(freqs)-1],
		Step:           g.Step(),
		Extent:         g.Extent(),
		MaxSample:      g.Max(),
		Ticks:          g.FrequencyTicks(),
		CompanionFound: st.CompanionFound,
	}
	for _, l := range model.Layers() {
		set := st.Annotations.Get(l)
		s.Layers = append(s.Layers, LayerSummary{
			Layer:       l,
			Critical:    set.Critical,
			HasCritical: set.HasCritical(),
			Points:      set.Points,
		})
	}
	return s
}

// NewErrorSummary builds the Summary of a sounding that failed to open.
func NewErrorSummary(path string, err error) *Summary {
	return &Summary{Path: path, Error: err.Error()}
}

// Failed reports whether the summary describes a failed open.
func (s *Summary) Failed() bool {
	return s.Error != ""
}

// Critical returns the critical frequency of layer l and whether it is set.
func (s *Summary) Critical(l model.Layer) (float64, bool) {
	for _, ls := range s.Layers {
		if ls.Layer == l {
			return ls.Critical, ls.HasCritical
		}
	}
	return model.CriticalUnset, false
}

// HistoryRow is one archived scaling, as listed by the history command.
type HistoryRow struct {
	Station      string    `json:"station"`
	ObservedAt   time.Time `json:"observed_at"`
	FoE          float64   `json:"foE"`
	FoF1         float64   `json:"foF1"`
	FoF2         float64   `json:"foF2"`
	Sunspot      int       `json:"sunspot"`
	SunspotKnown bool      `json:"sunspot_known"`
	SoundingPath string    `json:"sounding_path"`
}
