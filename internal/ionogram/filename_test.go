package ionogram

import (
	"errors"
	"testing"
	"time"
)

func TestIsSoundingName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"20200615_1030_iono.txt", true},
		{"/data/2020/20200615_1030_iono.ion.gz", true},
		{"20200615_iono.txt", false},
		{"20200615_1030_iono", false},
		{"notes.txt", false},
	}
	for _, tt := range tests {
		if got := IsSoundingName(tt.name); got != tt.want {
			t.Errorf("IsSoundingName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTimestampFromName(t *testing.T) {
	t.Parallel()

	t.Run("extracts the observation time", func(t *testing.T) {
		t.Parallel()

		got, err := TimestampFromName("/archive/20200615_1030_iono.txt")
		if err != nil {
			t.Fatalf("TimestampFromName() error = %v", err)
		}
		want := time.Date(2020, 6, 15, 10, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("TimestampFromName() = %v, want %v", got, want)
		}
	})

	t.Run("rejects names that do not encode a time", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"notes.txt", "2020AB15_1030_iono.txt"} {
			if _, err := TimestampFromName(name); !errors.Is(err, ErrNotSoundingName) {
				t.Errorf("TimestampFromName(%q) error = %v, want ErrNotSoundingName", name, err)
			}
		}
	})
}
