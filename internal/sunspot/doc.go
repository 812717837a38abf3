// Package sunspot resolves the daily sunspot number for a sounding date.
//
// Two text layouts are accepted, line by line:
//
//	2020 6 15 45                          whitespace: year month day ... SSN
//	2020;06;15;2020.453; 45; 6.1;23;1     SIDC daily CSV: SSN is field 5
//
// Blank lines and lines starting with '#' are ignored. Lines that cannot be
// read as a date and a non-negative integer are skipped and counted, so a
// stray banner or a SIDC "-1" (no observation) never prevents a sounding
// from opening.
package sunspot
