package cardsheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alnah/go-cardsheet/internal/assets"
	"github.com/alnah/go-cardsheet/internal/ctxlog"
	"github.com/alnah/go-cardsheet/internal/dateutil"
)

// Compile-time interface implementation check.
var _ Measurer = pdfMeasurer{}

// DefaultCreator is written to the PDF creator field.
const DefaultCreator = "cardsheet"

// Converter runs the merge, layout and render pipeline.
// Create with NewConverter(), then call Convert() for each document.
type Converter struct {
	assets     assets.ImageLoader
	marker     string
	onMissing  MissingPolicy
	now        func() time.Time
	creator    string
	dateFormat string
}

// NewConverter creates a Converter. Without WithAssetLoader, image paths are
// resolved against the working directory.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		marker:    DefaultMarker,
		onMissing: MissingAbort,
		now:       time.Now,
		creator:   DefaultCreator,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := validateMarker(c.marker); err != nil {
		return nil, err
	}
	policy, err := ParseMissingPolicy(string(c.onMissing))
	if err != nil {
		return nil, err
	}
	c.onMissing = policy
	if _, err := dateutil.Layout(c.dateFormat); c.dateFormat != "" && err != nil {
		return nil, fmt.Errorf("date format: %w", err)
	}
	if c.assets == nil {
		loader, err := assets.NewAssetResolver(".")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadFile, err)
		}
		c.assets = loader
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// Convert merges every record into the template and renders the sheets.
// Records with missing images abort the run, or are dropped and reported in
// Result.Skipped under MissingSkip. The context is checked between records.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}
	log := ctxlog.FromContext(ctx)

	grid, err := NewGrid(input.Page, input.Card, input.Cards)
	if err != nil {
		return nil, err
	}
	log.Debug("layout", "cols", grid.Cols, "rows", grid.Rows, "rotated", grid.Rotated)

	now := c.now()
	date, err := dateutil.Format(now, c.dateFormat)
	if err != nil {
		return nil, fmt.Errorf("date format: %w", err)
	}
	renderer, err := NewRenderer(input.Template, grid, RenderOptions{
		CutLines: input.CutLines,
		Footer:   input.Footer,
		Date:     date,
		Title:    input.Template.Name,
		Creator:  c.creator,
		Created:  now,
	})
	if err != nil {
		return nil, err
	}

	records := make([]*Record, len(input.Records))
	for i := range input.Records {
		records[i] = &input.Records[i]
	}
	if len(records) == 0 {
		log.Info("no records, rendering template defaults")
		records = []*Record{nil}
	}

	merger := NewMerger(c.assets, c.marker)
	res := &Result{}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		inst, err := merger.Merge(ctx, input.Template, rec)
		if err != nil {
			if rec != nil && c.onMissing == MissingSkip && errors.Is(err, ErrMissingAsset) {
				log.Warn("skipping record", "row", rec.Row, "error", err)
				res.Skipped = append(res.Skipped, rec.Index)
				continue
			}
			return nil, err
		}
		if err := renderer.Draw(inst); err != nil {
			return nil, err
		}
	}

	if renderer.Placed() == 0 {
		return nil, fmt.Errorf("%w: all %d records were skipped", ErrMissingAsset, len(res.Skipped))
	}

	var buf bytes.Buffer
	if err := renderer.Output(&buf); err != nil {
		return nil, err
	}
	res.PDF = buf.Bytes()
	res.Sheets = renderer.Sheets()
	res.Components = renderer.Placed()
	log.Debug("rendered", "sheets", res.Sheets, "components", res.Components, "skipped", len(res.Skipped))
	return res, nil
}

// validateInput checks that required fields are present and valid.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI users have their settings validated earlier by Config.Validate().
func (c *Converter) validateInput(input Input) error {
	if input.Template == nil {
		return fmt.Errorf("%w: no template", ErrTemplateParse)
	}
	if len(input.Template.Shapes) == 0 {
		return fmt.Errorf("%w: template has no shapes", ErrTemplateParse)
	}
	if input.Template.Page.Width <= 0 || input.Template.Page.Height <= 0 {
		return fmt.Errorf("%w: template page must have a positive size", ErrTemplateParse)
	}
	if err := input.Page.Validate(); err != nil {
		return err
	}
	if err := input.Card.Validate(); err != nil {
		return err
	}
	return ValidateCardCount(input.Cards)
}
