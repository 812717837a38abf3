package ionogram

import (
	"github.com/nao1215/ionoview/internal/model"
)

// Structural markers, compared after trimming surrounding whitespace.
const (
	markerFrequencySet = "Frequency Set"
	markerEnd          = "END"
	markerData         = "DATA"
)

// sections holds the 0-based line indices of the four markers.
type sections struct {
	frequencySet int
	headerEnd    int
	data         int
	dataEnd      int
}

// frequencyLines returns the index range strictly between Frequency Set and
// the header END.
func (s sections) frequencyLines() (int, int) {
	return s.frequencySet + 1, s.headerEnd
}

// dataLines returns the index range strictly between DATA and its END.
func (s sections) dataLines() (int, int) {
	return s.data + 1, s.dataEnd
}

// inData reports whether line index i lies inside the data block,
// markers included.
func (s sections) inData(i int) bool {
	return i >= s.data && i <= s.dataEnd
}

// locateSections is the first parsing pass. It finds every marker and checks
// that Frequency Set and DATA occur once, END twice, and that they appear in
// the order Frequency Set, END, DATA, END.
func locateSections(lines []string) (sections, error) {
	var freqIdx, endIdx, dataIdx []int
	for i, line := range lines {
		switch line {
		case markerFrequencySet:
			freqIdx = append(freqIdx, i)
		case markerEnd:
			endIdx = append(endIdx, i)
		case markerData:
			dataIdx = append(dataIdx, i)
		}
	}

	switch {
	case len(freqIdx) == 0:
		return sections{}, model.NewFormatError(0, "missing %q marker", markerFrequencySet)
	case len(freqIdx) > 1:
		return sections{}, model.NewFormatError(freqIdx[1]+1, "duplicate %q marker", markerFrequencySet)
	case len(dataIdx) == 0:
		return sections{}, model.NewFormatError(0, "missing %q marker", markerData)
	case len(dataIdx) > 1:
		return sections{}, model.NewFormatError(dataIdx[1]+1, "duplicate %q marker", markerData)
	case len(endIdx) == 0:
		return sections{}, model.NewFormatError(0, "missing %q marker terminating the header", markerEnd)
	case len(endIdx) == 1:
		if endIdx[0] < dataIdx[0] {
			return sections{}, model.NewFormatError(0, "missing %q marker terminating the data block", markerEnd)
		}
		return sections{}, model.NewFormatError(0, "missing %q marker terminating the header", markerEnd)
	case len(endIdx) > 2:
		return sections{}, model.NewFormatError(endIdx[2]+1, "unexpected third %q marker", markerEnd)
	}

	s := sections{
		frequencySet: freqIdx[0],
		headerEnd:    endIdx[0],
		data:         dataIdx[0],
		dataEnd:      endIdx[1],
	}

	if !(s.frequencySet < s.headerEnd && s.headerEnd < s.data && s.data < s.dataEnd) {
		return sections{}, model.NewFormatError(s.data+1,
			"markers out of order: %q at line %d, %q at line %d, %q at line %d, %q at line %d",
			markerFrequencySet, s.frequencySet+1,
			markerEnd, s.headerEnd+1,
			markerData, s.data+1,
			markerEnd, s.dataEnd+1,
		)
	}

	return s, nil
}
