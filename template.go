package cardsheet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-cardsheet/internal/yamlutil"
)

// Unit is the measurement unit of template coordinates.
type Unit string

// Supported template units.
const (
	UnitPoint      Unit = "pt"
	UnitPixel      Unit = "px" // 96 dpi
	UnitInch       Unit = "in"
	UnitMillimeter Unit = "mm"
	UnitCentimeter Unit = "cm"
)

// points returns the number of PDF points in one unit.
func (u Unit) points() (float64, bool) {
	switch u {
	case UnitPoint:
		return 1, true
	case UnitPixel:
		return 0.75, true
	case UnitInch:
		return pointsPerInch, true
	case UnitMillimeter:
		return pointsPerInch / 25.4, true
	case UnitCentimeter:
		return pointsPerInch / 2.54, true
	}
	return 0, false
}

// ShapeKind tags what a shape receives during the merge.
type ShapeKind string

// Shape kinds.
const (
	KindText    ShapeKind = "text"
	KindImage   ShapeKind = "image"
	KindQRCode  ShapeKind = "qrcode"
	KindBarcode ShapeKind = "barcode"
)

// Outline is the geometry drawn around (and clipping) a shape.
type Outline string

// Outline geometries.
const (
	OutlineNone      Outline = "none"
	OutlineRectangle Outline = "rectangle"
	OutlineOval      Outline = "oval"
	OutlineTriangle  Outline = "triangle"
	OutlineHexagon   Outline = "hexagon"
)

// Fit controls how an image fills its shape.
type Fit string

// Image fit modes.
const (
	FitContain Fit = "contain" // whole image visible, letterboxed
	FitCover   Fit = "cover"   // shape filled, image cropped
	FitStretch Fit = "stretch" // aspect ratio ignored
)

// Horizontal text alignment.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Vertical text alignment.
const (
	VAlignTop    = "top"
	VAlignMiddle = "middle"
	VAlignBottom = "bottom"
)

// Barcode symbologies.
const (
	SymbologyCode128 = "code128"
	SymbologyEAN13   = "ean13"
)

// Template defaults.
const (
	DefaultFontFamily = "Helvetica"
	DefaultFontSize   = 12.0
	DefaultLineHeight = 1.2
)

// Font specifies a font face. Size is in points on the unscaled component.
type Font struct {
	Family string  `json:"family,omitempty" yaml:"family,omitempty"`
	Style  string  `json:"style,omitempty" yaml:"style,omitempty"` // "", "B", "I", "BI", "U"
	Size   float64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// FontFile registers a TrueType font under a family and style.
type FontFile struct {
	Family string `json:"family" yaml:"family"`
	Style  string `json:"style,omitempty" yaml:"style,omitempty"`
	File   string `json:"file" yaml:"file"` // relative to the template directory
}

// Background is painted behind every component instance.
type Background struct {
	Color   string `json:"color,omitempty" yaml:"color,omitempty"`
	Image   string `json:"image,omitempty" yaml:"image,omitempty"`
	PDF     string `json:"pdf,omitempty" yaml:"pdf,omitempty"`
	PDFPage int    `json:"pdfPage,omitempty" yaml:"pdfPage,omitempty"` // 1-based, default 1
}

// Dimensions is a width and height pair.
type Dimensions struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Template describes one card: its canvas size and the named shapes on it.
// All lengths are in points once parsed, whatever Unit the file used.
type Template struct {
	Name       string
	Unit       Unit
	Page       Dimensions
	Font       Font
	Fonts      []FontFile
	Background *Background
	Shapes     []Shape

	// Dir is the directory used to resolve font and background paths.
	Dir string
}

// Shape is a named rectangular region receiving merged data.
type Shape struct {
	Name   string
	Kind   ShapeKind
	X      float64
	Y      float64
	Width  float64
	Height float64

	Font       *Font
	Color      string
	Align      string
	VAlign     string
	LineHeight float64
	Markdown   bool
	Text       string // default text
	Src        string // default image path
	Fit        Fit
	Symbology  string

	Outline   Outline
	LineWidth float64
	LineColor string
	Fill      string
}

// Shape returns the shape with the given name.
func (t *Template) Shape(name string) (*Shape, bool) {
	for i := range t.Shapes {
		if t.Shapes[i].Name == name {
			return &t.Shapes[i], true
		}
	}
	return nil, false
}

// FontFor returns the effective font of a shape (shape overrides template).
func (t *Template) FontFor(s *Shape) Font {
	f := t.Font
	if s.Font == nil {
		return f
	}
	if s.Font.Family != "" {
		f.Family = s.Font.Family
	}
	if s.Font.Style != "" {
		f.Style = s.Font.Style
	}
	if s.Font.Size > 0 {
		f.Size = s.Font.Size
	}
	return f
}

// ContentBox returns the area inside the outline stroke, in template points.
// Shapes without an outline use their full rectangle.
func (s *Shape) ContentBox() (x, y, w, h float64) {
	x, y, w, h = s.X, s.Y, s.Width, s.Height
	if s.Outline == OutlineNone || s.LineWidth <= 0 {
		return x, y, w, h
	}
	inset := min(s.LineWidth, w/2, h/2)
	return x + inset, y + inset, w - 2*inset, h - 2*inset
}

// resolve returns p relative to the template directory unless absolute.
func (t *Template) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || t.Dir == "" {
		return p
	}
	return filepath.Join(t.Dir, p)
}

// TemplateFormat selects the template decoder.
type TemplateFormat string

// Template formats.
const (
	FormatJSON TemplateFormat = "json"
	FormatYAML TemplateFormat = "yaml"
)

// templateFormatFor picks the format from a file extension (JSON by default).
func templateFormatFor(path string) TemplateFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// LoadTemplate reads and parses a template file. Relative font and
// background paths are resolved against the file's directory.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided template path
	if err != nil {
		return nil, fmt.Errorf("%w: template %s: %w", ErrReadFile, path, err)
	}
	tpl, err := ParseTemplate(data, templateFormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tpl.Dir = filepath.Dir(path)
	return tpl, nil
}

// templateDoc mirrors the file layout; pointers detect missing fields.
type templateDoc struct {
	Name       string      `json:"name" yaml:"name"`
	Unit       string      `json:"unit" yaml:"unit"`
	Page       *Dimensions `json:"page" yaml:"page"`
	Font       *Font       `json:"font" yaml:"font"`
	Fonts      []FontFile  `json:"fonts" yaml:"fonts"`
	Background *Background `json:"background" yaml:"background"`
	Shapes     []shapeDoc  `json:"shapes" yaml:"shapes"`
}

type shapeDoc struct {
	Name   string   `json:"name" yaml:"name"`
	Kind   string   `json:"kind" yaml:"kind"`
	X      *float64 `json:"x" yaml:"x"`
	Y      *float64 `json:"y" yaml:"y"`
	Width  *float64 `json:"width" yaml:"width"`
	Height *float64 `json:"height" yaml:"height"`

	Font       *Font   `json:"font" yaml:"font"`
	Color      string  `json:"color" yaml:"color"`
	Align      string  `json:"align" yaml:"align"`
	VAlign     string  `json:"valign" yaml:"valign"`
	LineHeight float64 `json:"lineHeight" yaml:"lineHeight"`
	Markdown   bool    `json:"markdown" yaml:"markdown"`
	Text       string  `json:"text" yaml:"text"`
	Src        string  `json:"src" yaml:"src"`
	Fit        string  `json:"fit" yaml:"fit"`
	Symbology  string  `json:"symbology" yaml:"symbology"`
	Outline    string  `json:"outline" yaml:"outline"`
	LineWidth  float64 `json:"lineWidth" yaml:"lineWidth"`
	LineColor  string  `json:"lineColor" yaml:"lineColor"`
	Fill       string  `json:"fill" yaml:"fill"`
}

// ParseTemplate decodes a template document. Unknown fields are rejected so
// typos in style attributes surface as errors instead of silent defaults.
func ParseTemplate(data []byte, format TemplateFormat) (*Template, error) {
	var doc templateDoc
	switch format {
	case FormatYAML:
		if err := yamlutil.UnmarshalStrict(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: trailing data after template", ErrTemplateParse)
		}
	}
	return doc.build()
}

// build validates the document and converts it to points.
func (d *templateDoc) build() (*Template, error) {
	unit := Unit(strings.ToLower(d.Unit))
	if unit == "" {
		unit = UnitPoint
	}
	k, ok := unit.points()
	if !ok {
		return nil, fmt.Errorf("%w: unknown unit %q (want pt, px, in, mm, cm)", ErrTemplateParse, d.Unit)
	}
	if len(d.Shapes) == 0 {
		return nil, fmt.Errorf("%w: template has no shapes", ErrTemplateParse)
	}

	tpl := &Template{
		Name:       d.Name,
		Unit:       unit,
		Font:       Font{Family: DefaultFontFamily, Size: DefaultFontSize},
		Background: d.Background,
		Shapes:     make([]Shape, 0, len(d.Shapes)),
	}
	if d.Font != nil {
		if d.Font.Family != "" {
			tpl.Font.Family = d.Font.Family
		}
		if d.Font.Size > 0 {
			tpl.Font.Size = d.Font.Size
		}
		tpl.Font.Style = d.Font.Style
	}
	if err := validateFont("font", &tpl.Font); err != nil {
		return nil, err
	}

	for i, f := range d.Fonts {
		if f.Family == "" || f.File == "" {
			return nil, fmt.Errorf("%w: fonts[%d]: family and file are required", ErrTemplateParse, i)
		}
		f.Style = strings.ToUpper(f.Style)
		tpl.Fonts = append(tpl.Fonts, f)
	}

	if bg := d.Background; bg != nil {
		if _, err := parseColor(bg.Color); err != nil {
			return nil, fmt.Errorf("%w: background.color: %v", ErrTemplateParse, err)
		}
		if bg.PDFPage < 0 {
			return nil, fmt.Errorf("%w: background.pdfPage must be positive", ErrTemplateParse)
		}
	}

	seen := make(map[string]bool, len(d.Shapes))
	for i := range d.Shapes {
		s, err := d.Shapes[i].build(i, k)
		if err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate shape name %q", ErrTemplateParse, s.Name)
		}
		seen[s.Name] = true
		tpl.Shapes = append(tpl.Shapes, s)
	}

	if d.Page != nil {
		if d.Page.Width <= 0 || d.Page.Height <= 0 {
			return nil, fmt.Errorf("%w: page width and height must be positive", ErrTemplateParse)
		}
		tpl.Page = Dimensions{Width: d.Page.Width * k, Height: d.Page.Height * k}
	} else {
		tpl.Page = shapeBounds(tpl.Shapes)
	}
	return tpl, nil
}

// shapeBounds measures the canvas from the origin to the farthest shape edge.
func shapeBounds(shapes []Shape) Dimensions {
	var dims Dimensions
	for _, s := range shapes {
		dims.Width = max(dims.Width, s.X+s.Width)
		dims.Height = max(dims.Height, s.Y+s.Height)
	}
	return dims
}

func (d *shapeDoc) build(index int, k float64) (Shape, error) {
	fail := func(format string, args ...any) error {
		where := fmt.Sprintf("shapes[%d]", index)
		if d.Name != "" {
			where += fmt.Sprintf(" (%q)", d.Name)
		}
		return fmt.Errorf("%w: %s: %s", ErrTemplateParse, where, fmt.Sprintf(format, args...))
	}

	if d.Name == "" {
		return Shape{}, fail("missing name")
	}
	var missing []string
	for _, f := range []struct {
		name string
		v    *float64
	}{{"x", d.X}, {"y", d.Y}, {"width", d.Width}, {"height", d.Height}} {
		if f.v == nil {
			missing = append(missing, f.name)
		}
	}
	if d.Kind == "" {
		missing = append([]string{"kind"}, missing...)
	}
	if len(missing) > 0 {
		return Shape{}, fail("missing %s", strings.Join(missing, ", "))
	}
	if *d.Width <= 0 || *d.Height <= 0 {
		return Shape{}, fail("width and height must be positive")
	}

	s := Shape{
		Name:       d.Name,
		Kind:       ShapeKind(strings.ToLower(d.Kind)),
		X:          *d.X * k,
		Y:          *d.Y * k,
		Width:      *d.Width * k,
		Height:     *d.Height * k,
		Font:       d.Font,
		Color:      d.Color,
		Align:      strings.ToLower(d.Align),
		VAlign:     strings.ToLower(d.VAlign),
		LineHeight: d.LineHeight,
		Markdown:   d.Markdown,
		Text:       d.Text,
		Src:        d.Src,
		Fit:        Fit(strings.ToLower(d.Fit)),
		Symbology:  strings.ToLower(d.Symbology),
		Outline:    Outline(strings.ToLower(d.Outline)),
		LineWidth:  d.LineWidth * k,
		LineColor:  d.LineColor,
		Fill:       d.Fill,
	}

	switch s.Kind {
	case KindText, KindImage, KindQRCode:
	case KindBarcode:
		switch s.Symbology {
		case "":
			s.Symbology = SymbologyCode128
		case SymbologyCode128, SymbologyEAN13:
		default:
			return Shape{}, fail("unknown symbology %q (want code128 or ean13)", d.Symbology)
		}
	default:
		return Shape{}, fail("unknown kind %q (want text, image, qrcode, barcode)", d.Kind)
	}

	switch s.Outline {
	case "":
		s.Outline = OutlineNone
	case OutlineNone, OutlineRectangle, OutlineOval, OutlineTriangle, OutlineHexagon:
	default:
		return Shape{}, fail("unknown outline %q", d.Outline)
	}
	if s.LineWidth < 0 {
		return Shape{}, fail("lineWidth must not be negative")
	}

	switch s.Fit {
	case "":
		s.Fit = FitContain
	case FitContain, FitCover, FitStretch:
	default:
		return Shape{}, fail("unknown fit %q (want contain, cover, stretch)", d.Fit)
	}

	switch s.Align {
	case "":
		s.Align = AlignLeft
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return Shape{}, fail("unknown align %q", d.Align)
	}
	switch s.VAlign {
	case "":
		s.VAlign = VAlignTop
	case VAlignTop, VAlignMiddle, VAlignBottom:
	default:
		return Shape{}, fail("unknown valign %q", d.VAlign)
	}

	switch {
	case s.LineHeight == 0:
		s.LineHeight = DefaultLineHeight
	case s.LineHeight < 0:
		return Shape{}, fail("lineHeight must be positive")
	}

	for field, c := range map[string]string{"color": s.Color, "lineColor": s.LineColor, "fill": s.Fill} {
		if _, err := parseColor(c); err != nil {
			return Shape{}, fail("%s: %v", field, err)
		}
	}
	if s.Font != nil {
		f := *s.Font
		if err := validateFont("font", &f); err != nil {
			return Shape{}, fail("%v", err)
		}
		s.Font = &f
	}
	return s, nil
}

// validateFont normalizes the style and rejects unknown style letters.
func validateFont(field string, f *Font) error {
	f.Style = strings.ToUpper(f.Style)
	for _, r := range f.Style {
		if !strings.ContainsRune("BIU", r) {
			return fmt.Errorf("%w: %s.style %q (use B, I, U)", ErrTemplateParse, field, f.Style)
		}
	}
	if f.Size < 0 {
		return fmt.Errorf("%w: %s.size must be positive", ErrTemplateParse, field)
	}
	return nil
}
