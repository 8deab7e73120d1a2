package cardsheet

// Notes:
// - PageSettings: tests validation for size, orientation, and margin boundaries
// - CardSize: tests positive dimensions and "W,H" parsing
// - Card count: only 0, 8 and 9 are accepted
// - MissingPolicy: tests parsing and case folding

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPageSettings_Validate - PageSettings Validation
// ---------------------------------------------------------------------------

func TestPageSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ps      *PageSettings
		wantErr error
	}{
		{
			name:    "nil is valid (use defaults)",
			ps:      nil,
			wantErr: nil,
		},
		{
			name:    "valid letter portrait",
			ps:      &PageSettings{Size: PageSizeLetter, Orientation: OrientationPortrait, Margin: DefaultMargin},
			wantErr: nil,
		},
		{
			name:    "valid a4 landscape",
			ps:      &PageSettings{Size: PageSizeA4, Orientation: OrientationLandscape, Margin: 1.0},
			wantErr: nil,
		},
		{
			name:    "case insensitive size and orientation",
			ps:      &PageSettings{Size: "LEGAL", Orientation: "Landscape", Margin: MinMargin},
			wantErr: nil,
		},
		{
			name:    "unknown size",
			ps:      &PageSettings{Size: "tabloid", Orientation: OrientationPortrait, Margin: DefaultMargin},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "unknown orientation",
			ps:      &PageSettings{Size: PageSizeA4, Orientation: "diagonal", Margin: DefaultMargin},
			wantErr: ErrInvalidOrientation,
		},
		{
			name:    "negative margin",
			ps:      &PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: -0.1},
			wantErr: ErrInvalidMargin,
		},
		{
			name:    "margin above maximum",
			ps:      &PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: MaxMargin + 0.01},
			wantErr: ErrInvalidMargin,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.ps.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPageSettings_Dimensions - Sheet size in points
// ---------------------------------------------------------------------------

func TestPageSettings_Dimensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ps    *PageSettings
		wantW float64
		wantH float64
	}{
		{"letter portrait", &PageSettings{Size: PageSizeLetter, Orientation: OrientationPortrait}, 612, 792},
		{"letter landscape", &PageSettings{Size: PageSizeLetter, Orientation: OrientationLandscape}, 792, 612},
		{"a4 portrait", &PageSettings{Size: "A4", Orientation: OrientationPortrait}, 595.28, 841.89},
		{"legal portrait", &PageSettings{Size: PageSizeLegal, Orientation: OrientationPortrait}, 612, 1008},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, h := tt.ps.Dimensions()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Dimensions() = %gx%g, want %gx%g", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDefaultPageSettings - Default values
// ---------------------------------------------------------------------------

func TestDefaultPageSettings(t *testing.T) {
	t.Parallel()

	ps := DefaultPageSettings()
	if ps.Size != PageSizeLetter {
		t.Errorf("Size = %q, want %q", ps.Size, PageSizeLetter)
	}
	if ps.Orientation != OrientationPortrait {
		t.Errorf("Orientation = %q, want %q", ps.Orientation, OrientationPortrait)
	}
	if ps.Margin != DefaultMargin {
		t.Errorf("Margin = %v, want %v", ps.Margin, DefaultMargin)
	}
	if err := ps.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestParseCardSize - "W,H" flag values
// ---------------------------------------------------------------------------

func TestParseCardSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    *CardSize
		wantErr error
	}{
		{"poker", "2.5,3.5", &CardSize{Width: 2.5, Height: 3.5}, nil},
		{"spaces around values", " 2.25 , 3.5 ", &CardSize{Width: 2.25, Height: 3.5}, nil},
		{"missing height", "2.5", nil, ErrInvalidCardSize},
		{"three values", "1,2,3", nil, ErrInvalidCardSize},
		{"not a number", "wide,3", nil, ErrInvalidCardSize},
		{"zero width", "0,3", nil, ErrInvalidCardSize},
		{"negative height", "2,-1", nil, ErrInvalidCardSize},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCardSize(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseCardSize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if tt.want != nil && *got != *tt.want {
				t.Errorf("ParseCardSize(%q) = %+v, want %+v", tt.input, *got, *tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestValidateCardCount - Accepted cards per page
// ---------------------------------------------------------------------------

func TestValidateCardCount(t *testing.T) {
	t.Parallel()

	for _, n := range []int{CardsSingle, CardsEight, CardsNine} {
		n := n
		if err := ValidateCardCount(n); err != nil {
			t.Errorf("ValidateCardCount(%d) = %v, want nil", n, err)
		}
	}
	for _, n := range []int{-1, 1, 4, 7, 10, 12} {
		n := n
		if err := ValidateCardCount(n); !errors.Is(err, ErrInvalidCardCount) {
			t.Errorf("ValidateCardCount(%d) = %v, want ErrInvalidCardCount", n, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestParseMissingPolicy - Policy names
// ---------------------------------------------------------------------------

func TestParseMissingPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    MissingPolicy
		wantErr error
	}{
		{"", MissingAbort, nil},
		{"abort", MissingAbort, nil},
		{"SKIP", MissingSkip, nil},
		{" skip ", MissingSkip, nil},
		{"ignore", "", ErrInvalidMissingPolicy},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMissingPolicy(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseMissingPolicy(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMissingPolicy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestValidateMarker - Column marker
// ---------------------------------------------------------------------------

func TestValidateMarker(t *testing.T) {
	t.Parallel()

	if err := validateMarker(DefaultMarker); err != nil {
		t.Errorf("validateMarker(%q) = %v", DefaultMarker, err)
	}
	if err := validateMarker("$"); err != nil {
		t.Errorf("validateMarker(%q) = %v", "$", err)
	}
	for _, m := range []string{"", " ", " @"} {
		m := m
		if err := validateMarker(m); !errors.Is(err, ErrInvalidMarker) {
			t.Errorf("validateMarker(%q) = %v, want ErrInvalidMarker", m, err)
		}
	}
}
