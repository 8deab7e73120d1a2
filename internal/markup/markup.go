// Package markup turns the inline Markdown allowed in card text
// (**bold**, *italic*, `code`, line breaks, simple lists) into styled spans.
package markup

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Span is a run of text sharing one style. A Text of "\n" is a line break.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// Style returns the gofpdf style string ("", "B", "I" or "BI").
func (s Span) Style() string {
	var b strings.Builder
	if s.Bold {
		b.WriteByte('B')
	}
	if s.Italic {
		b.WriteByte('I')
	}
	return b.String()
}

// Parser parses inline Markdown. It is safe for concurrent use.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a Parser with CommonMark defaults. Raw HTML is dropped.
func NewParser() *Parser {
	return &Parser{md: goldmark.New()}
}

// Parse returns the spans of src. Paragraphs, soft and hard line breaks all
// become "\n" spans because card text is laid out line by line.
func (p *Parser) Parse(src string) []Span {
	source := []byte(src)
	doc := p.md.Parser().Parse(text.NewReader(source))

	w := walker{source: source}
	w.blocks(doc)
	return w.finish()
}

type walker struct {
	source []byte
	spans  []Span
}

type style struct {
	bold, italic, code bool
}

func (w *walker) emit(s string, st style) {
	if s == "" {
		return
	}
	if n := len(w.spans); n > 0 {
		last := &w.spans[n-1]
		if last.Text != "\n" && s != "\n" && last.Bold == st.bold && last.Italic == st.italic && last.Code == st.code {
			last.Text += s
			return
		}
	}
	w.spans = append(w.spans, Span{Text: s, Bold: st.bold, Italic: st.italic, Code: st.code})
}

func (w *walker) newline() {
	w.emit("\n", style{})
}

// blocks walks block-level nodes, separating them with line breaks.
func (w *walker) blocks(n ast.Node) {
	first := true
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *ast.ThematicBreak, *ast.HTMLBlock:
			continue
		}
		if !first {
			w.newline()
		}
		first = false

		switch node := c.(type) {
		case *ast.Heading:
			w.inlines(node, style{bold: true})
		case *ast.Paragraph, *ast.TextBlock:
			w.inlines(node, style{})
		case *ast.List:
			w.list(node)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			w.codeBlock(node)
		default:
			w.blocks(node)
		}
	}
}

func (w *walker) list(l *ast.List) {
	i := l.Start
	first := true
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		if !first {
			w.newline()
		}
		first = false
		if l.IsOrdered() {
			w.emit(strconv.Itoa(i)+". ", style{})
			i++
		} else {
			w.emit("• ", style{})
		}
		w.blocks(item)
	}
}

func (w *walker) codeBlock(n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		if i > 0 {
			w.newline()
		}
		seg := lines.At(i)
		w.emit(strings.TrimRight(string(seg.Value(w.source)), "\r\n"), style{code: true})
	}
}

// inlines walks inline nodes, accumulating emphasis into st.
func (w *walker) inlines(n ast.Node, st style) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			w.emit(unescape(node.Segment.Value(w.source)), st)
			if node.SoftLineBreak() || node.HardLineBreak() {
				w.newline()
			}
		case *ast.String:
			w.emit(unescape(node.Value), st)
		case *ast.Emphasis:
			inner := st
			if node.Level >= 2 {
				inner.bold = true
			} else {
				inner.italic = true
			}
			w.inlines(node, inner)
		case *ast.CodeSpan:
			inner := st
			inner.code = true
			for t := node.FirstChild(); t != nil; t = t.NextSibling() {
				if txt, ok := t.(*ast.Text); ok {
					w.emit(string(txt.Segment.Value(w.source)), inner)
				}
			}
		case *ast.AutoLink:
			w.emit(string(node.Label(w.source)), st)
		case *ast.RawHTML:
		default:
			w.inlines(node, st)
		}
	}
}

func (w *walker) finish() []Span {
	for len(w.spans) > 0 && w.spans[len(w.spans)-1].Text == "\n" {
		w.spans = w.spans[:len(w.spans)-1]
	}
	return w.spans
}

func unescape(b []byte) string {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(b)
}
