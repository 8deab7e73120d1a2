package cardsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"github.com/alnah/go-cardsheet/internal/assets"
)

// Rendering constants, in points.
const (
	textPadding     = 2.0
	cutLineWidth    = 0.5
	cutLineDash     = 3.0
	footerFontSize  = 8.0
	footerMinHeight = 12.0
)

var (
	black    = &rgb{0, 0, 0}
	cutColor = &rgb{160, 160, 160}
)

// coreFonts are the standard PDF fonts gofpdf provides without font files.
var coreFonts = map[string]bool{
	"helvetica":    true,
	"arial":        true,
	"times":        true,
	"courier":      true,
	"symbol":       true,
	"zapfdingbats": true,
}

// RenderOptions configures document-level output.
type RenderOptions struct {
	CutLines bool
	Footer   string // {page}, {pages}, {date} and {template} are expanded
	Date     string // value of {date}
	Title    string
	Creator  string
	Created  time.Time
}

// Renderer draws merged instances into a gofpdf document, filling the grid
// slot by slot and adding sheets as needed.
type Renderer struct {
	pdf  *gofpdf.Fpdf
	tpl  *Template
	grid *Grid
	opts RenderOptions

	cp1252   func(string) string
	utf8     map[string]map[string]bool // family -> registered styles
	images   map[string]bool
	bgImage  *assets.Image
	bgPDF    *gofpdi.Importer
	bgPDFTpl int

	placed int
}

// NewRenderer prepares a document for tpl laid out on grid. Template fonts
// and background assets are loaded here so per-card drawing cannot fail on I/O.
func NewRenderer(tpl *Template, grid *Grid, opts RenderOptions) (*Renderer, error) {
	if tpl == nil || grid == nil {
		return nil, fmt.Errorf("%w: renderer needs a template and a grid", ErrInternal)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: grid.Page.Width, Ht: grid.Page.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(0)
	pdf.AliasNbPages("")
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Creator != "" {
		pdf.SetCreator(opts.Creator, true)
	}
	if !opts.Created.IsZero() {
		pdf.SetCreationDate(opts.Created)
	}

	r := &Renderer{
		pdf:    pdf,
		tpl:    tpl,
		grid:   grid,
		opts:   opts,
		cp1252: pdf.UnicodeTranslatorFromDescriptor(""),
		utf8:   make(map[string]map[string]bool),
		images: make(map[string]bool),
	}
	if err := r.registerFonts(); err != nil {
		return nil, err
	}
	if err := r.checkFonts(); err != nil {
		return nil, err
	}
	if err := r.loadBackground(); err != nil {
		return nil, err
	}
	if opts.Footer != "" {
		pdf.SetFooterFunc(r.drawFooter)
	}
	if pdf.Err() {
		return nil, fmt.Errorf("%w: %w", ErrRender, pdf.Error())
	}
	return r, nil
}

func (r *Renderer) registerFonts() error {
	for _, f := range r.tpl.Fonts {
		path := r.tpl.resolve(f.File)
		data, err := os.ReadFile(path) // #nosec G304 -- font path from the template
		if err != nil {
			return fmt.Errorf("%w: font %s: %w", ErrReadFile, path, err)
		}
		family := strings.ToLower(f.Family)
		style := fontStyle(f.Style)
		r.pdf.AddUTF8FontFromBytes(family, style, data)
		if r.pdf.Err() {
			return fmt.Errorf("%w: font %s: %w", ErrRender, path, r.pdf.Error())
		}
		if r.utf8[family] == nil {
			r.utf8[family] = make(map[string]bool)
		}
		r.utf8[family][style] = true
	}
	return nil
}

// checkFonts rejects families that are neither core fonts nor registered.
func (r *Renderer) checkFonts() error {
	check := func(family string) error {
		if r.isCore(family) || r.utf8[strings.ToLower(family)] != nil {
			return nil
		}
		return fmt.Errorf("%w: font family %q is not a core font and not listed in fonts", ErrTemplateParse, family)
	}
	if err := check(r.tpl.Font.Family); err != nil {
		return err
	}
	for i := range r.tpl.Shapes {
		if err := check(r.tpl.FontFor(&r.tpl.Shapes[i]).Family); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) loadBackground() error {
	bg := r.tpl.Background
	if bg == nil {
		return nil
	}
	if bg.Image != "" {
		path := r.tpl.resolve(bg.Image)
		f, err := os.Open(path) // #nosec G304 -- background path from the template
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: background image %s", ErrMissingAsset, path)
			}
			return fmt.Errorf("%w: background image %s: %w", ErrReadFile, path, err)
		}
		defer func() { _ = f.Close() }()
		if r.bgImage, err = assets.Decode(f, "background:"+path); err != nil {
			return fmt.Errorf("%w: %w", ErrMissingAsset, err)
		}
	}
	if bg.PDF != "" {
		path := r.tpl.resolve(bg.PDF)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: background pdf %s: %w", ErrMissingAsset, path, err)
		}
		page := max(bg.PDFPage, 1)
		if err := r.importPage(path, page); err != nil {
			return fmt.Errorf("%w: background pdf %s page %d: %w", ErrRender, path, page, err)
		}
	}
	return nil
}

// importPage loads one page of an existing PDF as a reusable template.
// The importer panics on unreadable documents.
func (r *Renderer) importPage(path string, page int) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	imp := gofpdi.NewImporter()
	r.bgPDFTpl = imp.ImportPage(r.pdf, path, page, "/MediaBox")
	r.bgPDF = imp
	return nil
}

// Draw places inst in the next free slot, starting a new sheet when the
// current one is full.
func (r *Renderer) Draw(inst *Instance) error {
	if inst == nil {
		return fmt.Errorf("%w: nil instance", ErrInternal)
	}
	if r.placed%r.grid.PerPage() == 0 {
		r.pdf.AddPage()
	}

	w, h := r.tpl.Page.Width, r.tpl.Page.Height
	p := r.grid.Place(r.placed, w, h)

	r.pdf.TransformBegin()
	if p.Rotated {
		r.pdf.TransformRotate(-90, p.PivotX, p.PivotY)
	}
	r.pdf.TransformScale(p.Scale*100, p.Scale*100, p.PivotX, p.PivotY)

	ox, oy := p.PivotX, p.PivotY
	r.pdf.ClipRect(ox, oy, w, h, false)
	err := r.drawBackground(ox, oy, w, h)
	if err != nil {
		err = fmt.Errorf("%s: background: %w", recordLabel(inst.Record), err)
	}
	for i := 0; err == nil && i < len(inst.Contents); i++ {
		if err = r.drawShape(ox, oy, &inst.Contents[i]); err != nil {
			err = fmt.Errorf("%s: shape %q: %w", recordLabel(inst.Record), inst.Contents[i].Shape.Name, err)
		}
	}
	r.pdf.ClipEnd()
	r.pdf.TransformEnd()
	if err != nil {
		return err
	}

	if r.opts.CutLines {
		r.drawCutLines(p.Slot)
	}
	r.placed++

	if r.pdf.Err() {
		return fmt.Errorf("%w: %s: %w", ErrRender, recordLabel(inst.Record), r.pdf.Error())
	}
	return nil
}

// Placed returns the number of instances drawn so far.
func (r *Renderer) Placed() int {
	return r.placed
}

// Sheets returns the number of pages started so far.
func (r *Renderer) Sheets() int {
	return Paginate(r.placed, r.grid.PerPage())
}

// Output finalizes the document and writes it to w.
func (r *Renderer) Output(w io.Writer) error {
	if r.pdf.Err() {
		return fmt.Errorf("%w: %w", ErrRender, r.pdf.Error())
	}
	if err := r.pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

// Measurer returns a Measurer using this document's metrics for font f.
func (r *Renderer) Measurer(f Font) Measurer {
	return pdfMeasurer{r: r, font: f}
}

type pdfMeasurer struct {
	r    *Renderer
	font Font
}

func (m pdfMeasurer) Measure(s Span) float64 {
	core := m.r.setFont(m.font, s)
	return m.r.pdf.GetStringWidth(m.r.encode(core, s.Text))
}

func (r *Renderer) drawBackground(x, y, w, h float64) error {
	bg := r.tpl.Background
	if bg == nil {
		return nil
	}
	if c := mustColor(bg.Color, nil); c != nil {
		r.pdf.SetFillColor(c.R, c.G, c.B)
		r.pdf.Rect(x, y, w, h, "F")
	}
	if r.bgPDF != nil {
		r.bgPDF.UseImportedTemplate(r.pdf, r.bgPDFTpl, x, y, w, h)
	}
	if r.bgImage != nil {
		return r.placeImage(r.bgImage, x, y, w, h)
	}
	return nil
}

func (r *Renderer) drawShape(ox, oy float64, c *Content) error {
	s := c.Shape
	x, y := ox+s.X, oy+s.Y
	outlined := s.Outline != OutlineNone && s.LineWidth > 0

	if fill := mustColor(s.Fill, nil); fill != nil {
		r.pdf.SetFillColor(fill.R, fill.G, fill.B)
		r.path(s.Outline, x, y, s.Width, s.Height, "F")
	}

	bx, by, bw, bh := s.ContentBox()
	bx, by = ox+bx, oy+by
	if bw > 0 && bh > 0 {
		r.clip(s.Outline, bx, by, bw, bh)
		err := r.drawContent(c, bx, by, bw, bh)
		r.pdf.ClipEnd()
		if err != nil {
			return err
		}
	}

	if outlined {
		line := mustColor(s.LineColor, black)
		r.pdf.SetDrawColor(line.R, line.G, line.B)
		r.pdf.SetLineWidth(s.LineWidth)
		half := s.LineWidth / 2
		r.path(s.Outline, x+half, y+half, s.Width-s.LineWidth, s.Height-s.LineWidth, "D")
	}
	return nil
}

func (r *Renderer) drawContent(c *Content, x, y, w, h float64) error {
	switch c.Shape.Kind {
	case KindText:
		r.drawText(c, x, y, w, h)
	case KindImage:
		if c.Image == nil {
			return nil
		}
		if c.Shape.Fit == FitContain {
			x, y, w, h = containBox(c.Image.Aspect(), x, y, w, h)
		}
		return r.placeImage(c.Image, x, y, w, h)
	case KindQRCode:
		if c.Image == nil {
			return nil
		}
		x, y, w, h = containBox(1, x, y, w, h)
		return r.placeImage(c.Image, x, y, w, h)
	case KindBarcode:
		if c.Image == nil {
			return nil
		}
		return r.placeImage(c.Image, x, y, w, h)
	}
	return nil
}

// containBox fits a box of the given aspect inside w x h, centered.
func containBox(aspect, x, y, w, h float64) (float64, float64, float64, float64) {
	if aspect <= 0 || w <= 0 || h <= 0 {
		return x, y, w, h
	}
	if w/h > aspect {
		nw := h * aspect
		return x + (w-nw)/2, y, nw, h
	}
	nh := w / aspect
	return x, y + (h-nh)/2, w, nh
}

func (r *Renderer) placeImage(img *assets.Image, x, y, w, h float64) error {
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	if !r.images[img.Key] {
		data, err := img.EncodePNG()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
		r.pdf.RegisterImageOptionsReader(img.Key, opts, bytes.NewReader(data))
		r.images[img.Key] = true
	}
	r.pdf.ImageOptions(img.Key, x, y, w, h, false, opts, 0, "")
	return nil
}

func (r *Renderer) drawText(c *Content, x, y, w, h float64) {
	if len(c.Spans) == 0 {
		return
	}
	s := c.Shape
	font := r.tpl.FontFor(s)

	pad := min(textPadding, w/4, h/4)
	x, y, w, h = x+pad, y+pad, w-2*pad, h-2*pad

	lh := font.Size * s.LineHeight
	if s.LineHeight <= 0 {
		lh = font.Size * DefaultLineHeight
	}
	m := r.Measurer(font)
	lines := FitLines(Wrap(c.Spans, w, m), lh, h)

	color := mustColor(s.Color, black)
	r.pdf.SetTextColor(color.R, color.G, color.B)

	block := float64(len(lines)) * lh
	ly := y
	switch s.VAlign {
	case VAlignMiddle:
		ly = y + (h-block)/2
	case VAlignBottom:
		ly = y + h - block
	}

	for _, line := range lines {
		lx := x
		switch s.Align {
		case AlignCenter:
			lx = x + (w-line.Width)/2
		case AlignRight:
			lx = x + w - line.Width
		}
		for _, span := range line.Spans {
			sw := m.Measure(span)
			core := r.setFont(font, span)
			r.pdf.SetXY(lx, ly)
			r.pdf.CellFormat(sw, lh, r.encode(core, span.Text), "", 0, "LM", false, 0, "")
			lx += sw
		}
		ly += lh
	}
}

// setFont selects the face for a span and reports whether it is a core font.
// Missing styles of registered families fall back to the nearest registered
// face.
func (r *Renderer) setFont(f Font, s Span) bool {
	family := f.Family
	style := fontStyle(f.Style + s.Style())
	core := r.isCore(family)
	if s.Code && core {
		family = "Courier"
	}
	if !core {
		family = strings.ToLower(family)
		face := faceStyle(r.utf8[family], strings.ReplaceAll(style, "U", ""))
		if strings.Contains(style, "U") {
			face += "U"
		}
		style = face
	}
	r.pdf.SetFont(family, style, f.Size)
	return core
}

// faceStyle picks a registered face for want, dropping italic, then bold,
// then taking any face the family has.
func faceStyle(styles map[string]bool, want string) string {
	for _, s := range []string{want, strings.ReplaceAll(want, "I", ""), strings.ReplaceAll(want, "B", ""), ""} {
		if styles[s] {
			return s
		}
	}
	for _, s := range []string{"B", "I", "BI"} {
		if styles[s] {
			return s
		}
	}
	return ""
}

func (r *Renderer) isCore(family string) bool {
	key := strings.ToLower(family)
	return coreFonts[key] && r.utf8[key] == nil
}

// encode converts UTF-8 text for core fonts, which use cp1252.
func (r *Renderer) encode(core bool, s string) string {
	if core {
		return r.cp1252(s)
	}
	return s
}

// fontStyle normalizes style letters to gofpdf's "BIU" order.
func fontStyle(s string) string {
	s = strings.ToUpper(s)
	var b strings.Builder
	for _, c := range "BIU" {
		if strings.ContainsRune(s, c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// path draws a geometry with a gofpdf style ("D", "F" or "FD").
func (r *Renderer) path(o Outline, x, y, w, h float64, style string) {
	switch o {
	case OutlineOval:
		r.pdf.Ellipse(x+w/2, y+h/2, w/2, h/2, 0, style)
	case OutlineTriangle, OutlineHexagon:
		r.pdf.Polygon(polygon(o, x, y, w, h), style)
	default:
		r.pdf.Rect(x, y, w, h, style)
	}
}

// clip starts a clipping region; callers end it with ClipEnd.
func (r *Renderer) clip(o Outline, x, y, w, h float64) {
	switch o {
	case OutlineOval:
		r.pdf.ClipEllipse(x+w/2, y+h/2, w/2, h/2, false)
	case OutlineTriangle, OutlineHexagon:
		r.pdf.ClipPolygon(polygon(o, x, y, w, h), false)
	default:
		r.pdf.ClipRect(x, y, w, h, false)
	}
}

// polygon returns the vertices of a triangle (apex up) or a flat-topped
// hexagon inscribed in the box.
func polygon(o Outline, x, y, w, h float64) []gofpdf.PointType {
	if o == OutlineTriangle {
		return []gofpdf.PointType{
			{X: x + w/2, Y: y},
			{X: x + w, Y: y + h},
			{X: x, Y: y + h},
		}
	}
	return []gofpdf.PointType{
		{X: x + w/4, Y: y},
		{X: x + 3*w/4, Y: y},
		{X: x + w, Y: y + h/2},
		{X: x + 3*w/4, Y: y + h},
		{X: x + w/4, Y: y + h},
		{X: x, Y: y + h/2},
	}
}

func (r *Renderer) drawCutLines(slot Rect) {
	r.pdf.SetDrawColor(cutColor.R, cutColor.G, cutColor.B)
	r.pdf.SetLineWidth(cutLineWidth)
	r.pdf.SetDashPattern([]float64{cutLineDash, cutLineDash}, 0)
	r.pdf.Rect(slot.X, slot.Y, slot.W, slot.H, "D")
	r.pdf.SetDashPattern([]float64{}, 0)
}

// drawFooter runs when gofpdf closes each sheet.
func (r *Renderer) drawFooter() {
	text := strings.NewReplacer(
		"{page}", strconv.Itoa(r.pdf.PageNo()),
		"{pages}", "{nb}",
		"{date}", r.opts.Date,
		"{template}", r.tpl.Name,
	).Replace(r.opts.Footer)

	bottom := r.grid.Area.Y + r.grid.Area.H
	height := max(r.grid.Page.Height-bottom, footerMinHeight)
	r.pdf.SetFont(DefaultFontFamily, "", footerFontSize)
	r.pdf.SetTextColor(cutColor.R, cutColor.G, cutColor.B)
	r.pdf.SetXY(r.grid.Area.X, r.grid.Page.Height-height)
	r.pdf.CellFormat(r.grid.Area.W, height, r.cp1252(text), "", 0, "CM", false, 0, "")
}
