package cardsheet

import (
	"fmt"
	"math"
)

// layoutEpsilon lets cards fill the printable area exactly despite rounding
// (3 x 3.5 in on letter with 0.25 in margins is a perfect fit).
const layoutEpsilon = 1e-6

// Rect is a rectangle in page points, origin top-left.
type Rect struct {
	X, Y, W, H float64
}

// Grid is the arrangement of card slots on one sheet.
type Grid struct {
	Page    Dimensions // sheet size in points
	Area    Rect       // printable area inside the margins
	Cols    int
	Rows    int
	Rotated bool // cards turned 90 degrees clockwise
	Cell    Dimensions
	Origin  struct{ X, Y float64 } // top-left of the first cell
}

// arrangement is a candidate grid shape for a card count.
type arrangement struct {
	cols, rows int
	rotated    bool
}

// arrangements lists the candidates in preference order.
var arrangements = map[int][]arrangement{
	CardsNine: {{3, 3, false}},
	CardsEight: {
		{2, 4, true},
		{4, 2, true},
		{4, 2, false},
		{2, 4, false},
	},
}

// NewGrid computes the slot grid. count is 8 or 9 for card sheets, or 0 for
// one component scaled to the printable area. The grid is centered inside the
// margins; ErrInvalidLayout means no arrangement fits.
func NewGrid(page *PageSettings, card *CardSize, count int) (*Grid, error) {
	if page == nil {
		page = DefaultPageSettings()
	}
	if card == nil {
		card = DefaultCardSize()
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateCardCount(count); err != nil {
		return nil, err
	}

	pw, ph := page.Dimensions()
	m := page.Margin * pointsPerInch
	area := Rect{X: m, Y: m, W: pw - 2*m, H: ph - 2*m}
	if area.W <= 0 || area.H <= 0 {
		return nil, fmt.Errorf("%w: margin %.2f in leaves no printable area", ErrInvalidMargin, page.Margin)
	}

	g := &Grid{Page: Dimensions{Width: pw, Height: ph}, Area: area}
	if count == CardsSingle {
		g.Cols, g.Rows = 1, 1
		g.Cell = Dimensions{Width: area.W, Height: area.H}
		g.Origin.X, g.Origin.Y = area.X, area.Y
		return g, nil
	}

	cw, ch := card.Width*pointsPerInch, card.Height*pointsPerInch
	for _, a := range arrangements[count] {
		w, h := cw, ch
		if a.rotated {
			w, h = ch, cw
		}
		gw, gh := float64(a.cols)*w, float64(a.rows)*h
		if gw > area.W+layoutEpsilon || gh > area.H+layoutEpsilon {
			continue
		}
		g.Cols, g.Rows, g.Rotated = a.cols, a.rows, a.rotated
		g.Cell = Dimensions{Width: w, Height: h}
		g.Origin.X = area.X + (area.W-gw)/2
		g.Origin.Y = area.Y + (area.H-gh)/2
		return g, nil
	}
	return nil, fmt.Errorf("%w: %d cards of %gx%g in on %s %s with %.2f in margins",
		ErrInvalidLayout, count, card.Width, card.Height, page.Size, page.Orientation, page.Margin)
}

// PerPage returns the number of slots on one sheet.
func (g *Grid) PerPage() int {
	return g.Cols * g.Rows
}

// Slot returns the rectangle of slot i (row-major: column i % cols, row i / cols).
// Indexes wrap around, so i may be a record index.
func (g *Grid) Slot(i int) Rect {
	i %= g.PerPage()
	col, row := i%g.Cols, i/g.Cols
	return Rect{
		X: g.Origin.X + float64(col)*g.Cell.Width,
		Y: g.Origin.Y + float64(row)*g.Cell.Height,
		W: g.Cell.Width,
		H: g.Cell.Height,
	}
}

// Placement describes where one component lands on the sheet.
type Placement struct {
	Slot      Rect    // the grid cell
	Footprint Rect    // area covered by the scaled (and rotated) component
	Scale     float64 // uniform scale factor
	Rotated   bool
	// Pivot is where the component origin lands; rotation and scaling are
	// applied around it.
	PivotX, PivotY float64
}

// Place fits a w x h component into slot i: uniformly scaled, centered, and
// rotated when the grid is.
func (g *Grid) Place(i int, w, h float64) Placement {
	slot := g.Slot(i)
	p := Placement{Slot: slot, Rotated: g.Rotated}
	if w <= 0 || h <= 0 {
		return p
	}

	cw, ch := w, h
	if g.Rotated {
		cw, ch = h, w
	}
	p.Scale = math.Min(slot.W/cw, slot.H/ch)
	fw, fh := cw*p.Scale, ch*p.Scale
	p.Footprint = Rect{
		X: slot.X + (slot.W-fw)/2,
		Y: slot.Y + (slot.H-fh)/2,
		W: fw,
		H: fh,
	}

	p.PivotX, p.PivotY = p.Footprint.X, p.Footprint.Y
	if g.Rotated {
		// Turning clockwise about the pivot swings the component to the left,
		// so the pivot sits on the footprint's top-right corner.
		p.PivotX += fw
	}
	return p
}

// Paginate returns how many sheets n components need at perPage per sheet.
func Paginate(n, perPage int) int {
	if n <= 0 {
		return 0
	}
	if perPage <= 1 {
		return n
	}
	return (n + perPage - 1) / perPage
}
