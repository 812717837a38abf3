package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseLayer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Layer
		wantErr error
	}{
		{name: "upper case E", input: "E", want: LayerE},
		{name: "lower case f1", input: "f1", want: LayerF1},
		{name: "critical name foF2", input: "foF2", want: LayerF2},
		{name: "surrounding spaces", input: "  F2 ", want: LayerF2},
		{name: "unknown layer", input: "D", wantErr: ErrUnknownLayer},
		{name: "empty name", input: "", wantErr: ErrUnknownLayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLayer(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLayerString(t *testing.T) {
	t.Parallel()

	t.Run("layers are listed in companion file order", func(t *testing.T) {
		t.Parallel()
		got := Layers()
		want := []string{"E", "F1", "F2"}
		for i, l := range got {
			if l.String() != want[i] {
				t.Errorf("index %d: expected %s, got %s", i, want[i], l.String())
			}
		}
	})

	t.Run("critical names follow URSI convention", func(t *testing.T) {
		t.Parallel()
		if LayerF2.CriticalName() != "foF2" {
			t.Errorf("expected foF2, got %s", LayerF2.CriticalName())
		}
	})

	t.Run("invalid layer reads as unknown", func(t *testing.T) {
		t.Parallel()
		if Layer(7).String() != "unknown" {
			t.Errorf("expected unknown, got %s", Layer(7).String())
		}
	})
}

func TestLayerJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(map[Layer]int{LayerF1: 1})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"F1":1}` {
		t.Errorf("unexpected JSON %s", data)
	}

	var back map[Layer]int
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back[LayerF1] != 1 {
		t.Errorf("expected F1 entry, got %v", back)
	}
}
