package database

import "errors"

// ErrNotFound is returned when no scaled record exists for a sounding.
var ErrNotFound = errors.New("scaled record not found")
