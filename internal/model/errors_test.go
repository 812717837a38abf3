package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("matches ErrFormat through wrapping", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("open failed: %w", NewFormatError(12, "missing %s marker", "DATA"))
		if !errors.Is(err, ErrFormat) {
			t.Error("expected errors.Is(err, ErrFormat)")
		}
		if errors.Is(err, ErrDomain) {
			t.Error("format error must not match ErrDomain")
		}
	})

	t.Run("message carries path and line", func(t *testing.T) {
		t.Parallel()
		err := WithPath(NewFormatError(3, "bad row"), "a.ion")
		msg := err.Error()
		for _, want := range []string{"a.ion", "line 3", "bad row"} {
			if !strings.Contains(msg, want) {
				t.Errorf("expected %q in %q", want, msg)
			}
		}
	})

	t.Run("WithPath leaves other errors alone", func(t *testing.T) {
		t.Parallel()
		base := errors.New("boom")
		if WithPath(base, "x") != base {
			t.Error("expected unchanged error")
		}
	})
}

func TestDomainError(t *testing.T) {
	t.Parallel()

	var err error = &DomainError{Op: "frequency to coordinate", Value: -1}
	if !errors.Is(err, ErrDomain) {
		t.Error("expected errors.Is(err, ErrDomain)")
	}

	var de *DomainError
	if !errors.As(err, &de) || de.Value != -1 {
		t.Errorf("expected DomainError with value -1, got %v", err)
	}
}

func TestSoundingHeaderDescription(t *testing.T) {
	t.Parallel()

	h := SoundingHeader{
		Station:    "IION",
		ObservedAt: time.Date(2020, 6, 15, 10, 30, 0, 0, time.UTC),
	}
	if got := h.Description(); got != "IION, 2020-06-15 10:30:00" {
		t.Errorf("unexpected description %q", got)
	}
}
