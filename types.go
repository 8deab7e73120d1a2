package cardsheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-cardsheet/internal/assets"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.0
	MaxMargin     = 3.0
	DefaultMargin = 0.25
)

// pointsPerInch converts inches to PDF points.
const pointsPerInch = 72.0

// pageDimensions holds portrait sizes in points.
var pageDimensions = map[string][2]float64{
	PageSizeLetter: {612, 792},
	PageSizeA4:     {595.28, 841.89},
	PageSizeLegal:  {612, 1008},
}

// PageSettings configures the physical output sheet.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if _, ok := pageDimensions[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q (must be letter, a4, or legal)", ErrInvalidPageSize, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q (must be portrait or landscape)", ErrInvalidOrientation, p.Orientation)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// Dimensions returns the sheet width and height in points.
// Callers must validate p first; unknown sizes fall back to letter.
func (p *PageSettings) Dimensions() (width, height float64) {
	dims, ok := pageDimensions[strings.ToLower(p.Size)]
	if !ok {
		dims = pageDimensions[PageSizeLetter]
	}
	width, height = dims[0], dims[1]
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		width, height = height, width
	}
	return width, height
}

// CardSize is the size of one grid cell in inches.
type CardSize struct {
	Width  float64
	Height float64
}

// DefaultCardSize returns the standard poker card size (2.5 x 3.5 in).
func DefaultCardSize() *CardSize {
	return &CardSize{Width: 2.5, Height: 3.5}
}

// Validate checks that both dimensions are positive.
func (c *CardSize) Validate() error {
	if c == nil {
		return nil
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %gx%g (both sides must be positive)", ErrInvalidCardSize, c.Width, c.Height)
	}
	return nil
}

// ParseCardSize parses "W,H" (inches) as used by the --card-size flag.
func ParseCardSize(s string) (*CardSize, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %q (expected W,H in inches)", ErrInvalidCardSize, s)
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errW != nil || errH != nil {
		return nil, fmt.Errorf("%w: %q (expected W,H in inches)", ErrInvalidCardSize, s)
	}
	size := &CardSize{Width: w, Height: h}
	if err := size.Validate(); err != nil {
		return nil, err
	}
	return size, nil
}

// Cards per page. Zero means one component scaled to the whole page.
const (
	CardsSingle = 0
	CardsEight  = 8
	CardsNine   = 9
)

// ValidateCardCount accepts 0 (single), 8 and 9.
func ValidateCardCount(n int) error {
	switch n {
	case CardsSingle, CardsEight, CardsNine:
		return nil
	}
	return fmt.Errorf("%w: %d (must be 8 or 9)", ErrInvalidCardCount, n)
}

// MissingPolicy decides what happens when an image cell points nowhere.
type MissingPolicy string

// Missing asset policies.
const (
	MissingAbort MissingPolicy = "abort" // stop the run, write nothing
	MissingSkip  MissingPolicy = "skip"  // drop the record and continue
)

// ParseMissingPolicy parses a policy name (case-insensitive). Empty means abort.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MissingAbort):
		return MissingAbort, nil
	case string(MissingSkip):
		return MissingSkip, nil
	}
	return "", fmt.Errorf("%w: %q (must be abort or skip)", ErrInvalidMissingPolicy, s)
}

// DefaultMarker prefixes CSV headers that take part in the merge.
const DefaultMarker = "@"

// validateMarker rejects markers that would make every column eligible.
func validateMarker(marker string) error {
	if marker == "" || strings.TrimSpace(marker) != marker {
		return fmt.Errorf("%w: %q", ErrInvalidMarker, marker)
	}
	return nil
}

// Input contains conversion parameters.
type Input struct {
	Template *Template     // Parsed template (required)
	Records  []Record      // Data rows; empty renders the template defaults once
	Cards    int           // 0, 8 or 9
	Page     *PageSettings // nil = defaults
	Card     *CardSize     // nil = 2.5x3.5 in
	CutLines bool          // dashed borders around grid cells
	Footer   string        // sheet footer; supports {page}, {pages}, {date}, {template}
}

// Result holds the rendered document and run statistics.
type Result struct {
	PDF        []byte
	Sheets     int   // output pages
	Components int   // placed card instances
	Skipped    []int // record indexes dropped by the skip policy
}

// Option configures a Converter.
type Option func(*Converter)

// WithAssetLoader sets the loader used to resolve image cells.
func WithAssetLoader(loader assets.ImageLoader) Option {
	return func(c *Converter) {
		c.assets = loader
	}
}

// WithMarker overrides the "@" column prefix.
func WithMarker(marker string) Option {
	return func(c *Converter) {
		c.marker = marker
	}
}

// WithMissingPolicy sets the missing image policy (default: abort).
func WithMissingPolicy(p MissingPolicy) Option {
	return func(c *Converter) {
		c.onMissing = p
	}
}

// WithClock sets the time source used for document metadata and {date}.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

// WithCreator sets the PDF creator metadata.
func WithCreator(creator string) Option {
	return func(c *Converter) {
		c.creator = creator
	}
}

// WithDateFormat sets the token format of the {date} footer placeholder.
func WithDateFormat(format string) Option {
	return func(c *Converter) {
		c.dateFormat = format
	}
}
