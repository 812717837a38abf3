// Package database provides SQLite-based storage for ionoview.
//
// This package implements the ArchiveDB, which keeps one row of scaled
// parameters per sounding: the critical frequencies foE, foF1 and foF2, the
// sunspot number, a SHA3-256 fingerprint of the sounding file and the full
// annotation set as JSON. The archive answers "what did we scale for this
// station last month" without re-reading thousands of companion files.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode lets a batch export read while an operator saves
//
// Companion files stay the source of truth; the archive is an index that can
// be rebuilt from them.
package database
