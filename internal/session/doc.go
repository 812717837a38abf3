// Package session holds the sounding an operator is currently scaling.
//
// A Session owns at most one open sounding together with its header, grid
// and annotations. Open builds the complete new state first (parse, sunspot
// lookup, companion read) and only then replaces the current one, so a
// failed open never leaves a half-loaded sounding behind.
//
// A companion file that exists but cannot be read is kept on disk: Save
// refuses to replace it until BackupCompanion has moved it aside.
package session
