package session

import "errors"

// ErrNoSounding is returned by operations that need an open sounding.
var ErrNoSounding = errors.New("no sounding is open")

// ErrCompanionUnreadable is returned by Save when the existing companion
// file could not be read on open and would be lost by overwriting it.
var ErrCompanionUnreadable = errors.New("companion file is unreadable; refusing to overwrite it")

// backupExtension is appended to an unreadable companion moved aside by
// BackupCompanion.
const backupExtension = ".bak"
