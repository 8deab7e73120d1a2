package cardsheet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/alnah/go-cardsheet/internal/assets"
	"github.com/alnah/go-cardsheet/internal/markup"
)

// RenderDPI is the resolution used to rasterize generated symbols.
const RenderDPI = 300

// Content is the merged payload of one shape. Text shapes carry Text and its
// Spans; image, qrcode and barcode shapes carry Image (nil draws nothing).
type Content struct {
	Shape *Shape
	Text  string
	Spans []Span
	Image *assets.Image
	Bound bool // value came from the record rather than the template
}

// Instance is a template bound to one record, ready to render.
type Instance struct {
	Template *Template
	Record   *Record // nil when rendering template defaults
	Contents []Content
}

// Content returns the merged content of the named shape.
func (in *Instance) Content(name string) (*Content, bool) {
	for i := range in.Contents {
		if in.Contents[i].Shape.Name == name {
			return &in.Contents[i], true
		}
	}
	return nil, false
}

// Merger binds records to templates.
type Merger struct {
	Assets assets.ImageLoader
	Marker string

	markdown *markup.Parser
}

// NewMerger creates a Merger. An empty marker means DefaultMarker.
func NewMerger(loader assets.ImageLoader, marker string) *Merger {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Merger{Assets: loader, Marker: marker, markdown: markup.NewParser()}
}

// Merge produces the instance of tpl for rec. A nil rec renders the template
// defaults. Shapes bind to marked columns by exact name; empty cells keep the
// template default. A missing or undecodable image fails with ErrMissingAsset,
// a read error with ErrReadFile.
func (m *Merger) Merge(ctx context.Context, tpl *Template, rec *Record) (*Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: nil template", ErrTemplateParse)
	}

	var bindings map[string]string
	if rec != nil {
		var err error
		if bindings, err = rec.Bindings(m.Marker); err != nil {
			return nil, err
		}
	}

	inst := &Instance{Template: tpl, Record: rec, Contents: make([]Content, 0, len(tpl.Shapes))}
	for i := range tpl.Shapes {
		shape := &tpl.Shapes[i]
		value, bound := bindings[shape.Name]
		bound = bound && strings.TrimSpace(value) != ""

		c, err := m.content(shape, value, bound)
		if err != nil {
			return nil, fmt.Errorf("%s: shape %q: %w", recordLabel(rec), shape.Name, err)
		}
		inst.Contents = append(inst.Contents, c)
	}
	return inst, nil
}

func (m *Merger) content(shape *Shape, value string, bound bool) (Content, error) {
	c := Content{Shape: shape, Bound: bound}

	switch shape.Kind {
	case KindText:
		c.Text = shape.Text
		if bound {
			c.Text = value
		}
		if shape.Markdown {
			c.Spans = MarkdownSpans(m.parser(), c.Text)
		} else {
			c.Spans = PlainSpans(c.Text)
		}

	case KindImage:
		src := shape.Src
		if bound {
			src = strings.TrimSpace(value)
		}
		if src == "" {
			return c, nil
		}
		img, err := m.loadImage(src)
		if err != nil {
			return c, err
		}
		if shape.Fit == FitCover {
			_, _, w, h := shape.ContentBox()
			if h > 0 {
				img = img.Cover(w / h)
			}
		}
		c.Text, c.Image = src, img

	case KindQRCode, KindBarcode:
		c.Text = shape.Text
		if bound {
			c.Text = value
		}
		if c.Text == "" {
			return c, nil
		}
		img, err := symbol(shape, c.Text)
		if err != nil {
			return c, fmt.Errorf("%w: %v", ErrDataParse, err)
		}
		c.Image = img
	}
	return c, nil
}

func (m *Merger) parser() *markup.Parser {
	if m.markdown == nil {
		m.markdown = markup.NewParser()
	}
	return m.markdown
}

func (m *Merger) loadImage(src string) (*assets.Image, error) {
	if m.Assets == nil {
		return nil, fmt.Errorf("%w: %s (no image loader configured)", ErrMissingAsset, src)
	}
	img, err := m.Assets.LoadImage(src)
	switch {
	case err == nil:
		return img, nil
	case errors.Is(err, assets.ErrImageNotFound), errors.Is(err, assets.ErrImageDecode):
		return nil, fmt.Errorf("%w: %w", ErrMissingAsset, err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrReadFile, err)
	}
}

// symbol rasterizes a QR code or barcode at RenderDPI for the shape's box.
func symbol(shape *Shape, value string) (*assets.Image, error) {
	_, _, w, h := shape.ContentBox()
	pw := int(math.Ceil(w * RenderDPI / pointsPerInch))
	ph := int(math.Ceil(h * RenderDPI / pointsPerInch))

	if shape.Kind == KindQRCode {
		return assets.QRCode(value, max(1, min(pw, ph)))
	}
	return assets.Barcode(value, shape.Symbology, max(1, pw), max(1, ph))
}

func recordLabel(rec *Record) string {
	if rec == nil {
		return "template defaults"
	}
	if rec.Row > 0 {
		return fmt.Sprintf("row %d", rec.Row)
	}
	return fmt.Sprintf("record %d", rec.Index+1)
}
