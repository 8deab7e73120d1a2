package cardsheet

import (
	"unicode"

	"github.com/alnah/go-cardsheet/internal/markup"
)

// wrapEpsilon absorbs float rounding when comparing widths.
const wrapEpsilon = 1e-6

// Span is a run of text sharing one style.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// Style returns the gofpdf style letters of the span.
func (s Span) Style() string {
	return markup.Span{Bold: s.Bold, Italic: s.Italic}.Style()
}

func (s Span) withText(text string) Span {
	s.Text = text
	return s
}

func (s Span) sameStyle(o Span) bool {
	return s.Bold == o.Bold && s.Italic == o.Italic && s.Code == o.Code
}

// PlainSpans returns text as a single unstyled span.
func PlainSpans(text string) []Span {
	if text == "" {
		return nil
	}
	return []Span{{Text: text}}
}

// MarkdownSpans parses inline Markdown into styled spans.
func MarkdownSpans(p *markup.Parser, text string) []Span {
	parsed := p.Parse(text)
	spans := make([]Span, len(parsed))
	for i, s := range parsed {
		spans[i] = Span{Text: s.Text, Bold: s.Bold, Italic: s.Italic, Code: s.Code}
	}
	return spans
}

// Measurer reports the rendered width of a span, in points.
type Measurer interface {
	Measure(s Span) float64
}

// Line is one wrapped line: styled spans and their total width.
type Line struct {
	Spans []Span
	Width float64
}

// Text returns the line content without styles.
func (l Line) Text() string {
	var n int
	for _, s := range l.Spans {
		n += len(s.Text)
	}
	b := make([]byte, 0, n)
	for _, s := range l.Spans {
		b = append(b, s.Text...)
	}
	return string(b)
}

func (l *Line) add(s Span, width float64) {
	if n := len(l.Spans); n > 0 && l.Spans[n-1].sameStyle(s) {
		l.Spans[n-1].Text += s.Text
	} else {
		l.Spans = append(l.Spans, s)
	}
	l.Width += width
}

// Wrap breaks spans into lines no wider than width. Words are packed greedily;
// a word wider than the box is split between characters. Runs of whitespace
// collapse to one space and "\n" forces a new line.
func Wrap(spans []Span, width float64, m Measurer) []Line {
	w := wrapper{width: width, m: m}

	var (
		word  []Span
		space *Span
	)
	flush := func() {
		if len(word) > 0 {
			w.addWord(space, word)
			word, space = nil, nil
		}
	}

	for _, s := range spans {
		for _, r := range s.Text {
			switch {
			case r == '\n':
				flush()
				space = nil
				w.emit()
			case unicode.IsSpace(r):
				flush()
				if space == nil {
					sp := s.withText(" ")
					space = &sp
				}
			default:
				if n := len(word); n > 0 && word[n-1].sameStyle(s) {
					word[n-1].Text += string(r)
				} else {
					word = append(word, s.withText(string(r)))
				}
			}
		}
	}
	flush()
	if len(w.cur.Spans) > 0 {
		w.emit()
	}
	return w.lines
}

type wrapper struct {
	width float64
	m     Measurer
	lines []Line
	cur   Line
}

func (w *wrapper) emit() {
	w.lines = append(w.lines, w.cur)
	w.cur = Line{}
}

func (w *wrapper) measure(parts []Span) float64 {
	var total float64
	for _, p := range parts {
		total += w.m.Measure(p)
	}
	return total
}

func (w *wrapper) addWord(space *Span, parts []Span) {
	ww := w.measure(parts)

	if len(w.cur.Spans) > 0 {
		var sw float64
		if space != nil {
			sw = w.m.Measure(*space)
		}
		if w.cur.Width+sw+ww <= w.width+wrapEpsilon {
			if space != nil {
				w.cur.add(*space, sw)
			}
			for _, p := range parts {
				w.cur.add(p, w.m.Measure(p))
			}
			return
		}
		w.emit()
	}

	if ww <= w.width+wrapEpsilon {
		for _, p := range parts {
			w.cur.add(p, w.m.Measure(p))
		}
		return
	}
	w.breakWord(parts)
}

// breakWord splits an over-long word by characters. Each line gets at least
// one character, so a box narrower than a glyph still makes progress.
func (w *wrapper) breakWord(parts []Span) {
	for _, p := range parts {
		for _, r := range p.Text {
			piece := p.withText(string(r))
			rw := w.m.Measure(piece)
			if len(w.cur.Spans) > 0 && w.cur.Width+rw > w.width+wrapEpsilon {
				w.emit()
			}
			w.cur.add(piece, rw)
		}
	}
}

// FitLines drops the lines that do not fit in height. At least one line is
// kept so a too-small box still shows the start of its text.
func FitLines(lines []Line, lineHeight, height float64) []Line {
	if len(lines) == 0 || lineHeight <= 0 {
		return lines
	}
	n := max(1, int((height+wrapEpsilon)/lineHeight))
	if n < len(lines) {
		return lines[:n]
	}
	return lines
}
