// Package ionogram parses IION vertical-sounding files into a validated grid
// and provides the logarithmic frequency coordinate system used to display
// and annotate them.
//
// # File layout
//
// A sounding is a line-oriented text file with four structural markers:
//
//	Frequency Set      <- start of the frequency list
//	...  1.000         <- one frequency per line, last token
//	END                <- end of header
//	...
//	DATA               <- start of the amplitude block
//	12 14 9 ...        <- one row per frequency, heights high to low
//	END                <- end of data
//
// Header lines of the form "KEY = VALUE" (z0, dz, Nstrob, Nsound, TIME) may
// appear anywhere outside the data block.
//
// # Parsing
//
// Parse works in two passes: it first locates all four markers and checks
// their order, then parses each bounded region on its own. A structural
// problem is reported as a *model.FormatError naming the line, and no
// partially built Sounding is ever returned.
//
// # Coordinates
//
// The horizontal plot axis is not frequency but log_step(frequency), where
// step is the ratio of the first two tabulated frequencies. Consecutive
// tabulated frequencies therefore sit on consecutive integer coordinates.
// Annotations are stored in MHz and converted back on load, so
// CoordinateToFrequency is the exact inverse of FrequencyToCoordinate.
package ionogram
