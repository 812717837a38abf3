package ionogram

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// SoundingPattern is the glob matched by sounding file names,
// "YYYYMMDD_HHMM_iono.<ext>".
const SoundingPattern = "????????_????_iono.*"

const nameTimeLayout = "20060102_1504"

// ErrNotSoundingName is returned by TimestampFromName for names that do not
// follow SoundingPattern.
var ErrNotSoundingName = errors.New("not a sounding file name")

// IsSoundingName reports whether the base name of name matches
// SoundingPattern.
func IsSoundingName(name string) bool {
	ok, err := filepath.Match(SoundingPattern, filepath.Base(name))
	return err == nil && ok
}

// TimestampFromName extracts the UTC observation time encoded in a sounding
// file name.
func TimestampFromName(name string) (time.Time, error) {
	base := filepath.Base(name)
	if !IsSoundingName(base) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNotSoundingName, base)
	}
	stamp, _, _ := strings.Cut(base, "_iono")
	t, err := time.Parse(nameTimeLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrNotSoundingName, base, err)
	}
	return t, nil
}
