// Package annotation reads and writes the ".STD" companion file that stores
// an operator's scaling of one sounding.
//
// The companion lives next to the sounding as "<sounding>.STD":
//
//	IION                          station
//	49.676 36.292 1.2 66.7 45     lat lon gyrofrequency dip sunspot
//	2020 06 15 10 30 00           observation date
//	2.85                          foE, 99.0 when unset
//	 2.10 105.0                   trace points "%5.2f %5.1f"
//	END
//	99.0                          foF1
//	END
//	6.4                           foF2
//	 3.55 120.0
//	END
//
// A missing companion is normal: ReadFile reports found == false instead of
// an error.
package annotation
