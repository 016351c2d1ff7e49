package cell

import (
	"errors"
	"testing"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		want    string
		size    int
	}{
		{name: "single cell A1", input: "A1", want: "A1", size: 1},
		{name: "simple range B2:D5", input: "B2:D5", want: "B2:D5", size: 12},
		{name: "large column range AA100:AB200", input: "AA100:AB200", want: "AA100:AB200", size: 202},
		{name: "reversed range normalizes D5:B2", input: "D5:B2", want: "B2:D5", size: 12},
		{name: "mixed corners B1:A2", input: "B1:A2", want: "A1:B2", size: 4},
		{name: "lowercase a1:b2", input: "a1:b2", want: "A1:B2", size: 4},
		{name: "with spaces", input: " A1:B2 ", want: "A1:B2", size: 4},
		{name: "invalid format", input: "invalid", wantErr: ErrInvalidAddress},
		{name: "incomplete range", input: "A1:B", wantErr: ErrInvalidRange},
		{name: "too many colons", input: "A1:B2:C3", wantErr: ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRange(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseRange(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRange(%q) unexpected error: %v", tt.input, err)
			}
			if r.String() != tt.want {
				t.Errorf("ParseRange(%q) = %s, want %s", tt.input, r, tt.want)
			}
			if r.Size() != tt.size {
				t.Errorf("ParseRange(%q).Size() = %d, want %d", tt.input, r.Size(), tt.size)
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	r := NewRange(MustParseAddress("D5"), MustParseAddress("B2"))

	tests := []struct {
		addr string
		want bool
	}{
		{"B2", true},
		{"D5", true},
		{"C3", true},
		{"A2", false},
		{"E3", false},
		{"C1", false},
		{"C6", false},
	}

	for _, tt := range tests {
		if got := r.Contains(MustParseAddress(tt.addr)); got != tt.want {
			t.Errorf("B2:D5.Contains(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
