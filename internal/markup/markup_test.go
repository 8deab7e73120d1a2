package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestParse - Inline Markdown to spans
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	nl := Span{Text: "\n"}

	tests := []struct {
		name  string
		input string
		want  []Span
	}{
		{
			name:  "plain text",
			input: "Deal 3 damage.",
			want:  []Span{{Text: "Deal 3 damage."}},
		},
		{
			name:  "bold and italic",
			input: "Deal **3** damage to *any* target",
			want: []Span{
				{Text: "Deal "},
				{Text: "3", Bold: true},
				{Text: " damage to "},
				{Text: "any", Italic: true},
				{Text: " target"},
			},
		},
		{
			name:  "nested emphasis",
			input: "***Flying***",
			want:  []Span{{Text: "Flying", Bold: true, Italic: true}},
		},
		{
			name:  "soft line break is kept",
			input: "Line one\nLine two",
			want:  []Span{{Text: "Line one"}, nl, {Text: "Line two"}},
		},
		{
			name:  "paragraphs separated by one break",
			input: "First\n\nSecond",
			want:  []Span{{Text: "First"}, nl, {Text: "Second"}},
		},
		{
			name:  "code span",
			input: "Roll `2d6`",
			want:  []Span{{Text: "Roll "}, {Text: "2d6", Code: true}},
		},
		{
			name:  "escaped marker",
			input: `5 \* 2`,
			want:  []Span{{Text: "5 * 2"}},
		},
		{
			name:  "bullet list",
			input: "- Draw\n- Discard",
			want:  []Span{{Text: "• Draw"}, nl, {Text: "• Discard"}},
		},
		{
			name:  "heading is bold",
			input: "# Goblin",
			want:  []Span{{Text: "Goblin", Bold: true}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	p := NewParser()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := p.Parse(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestSpan_Style - gofpdf style letters
// ---------------------------------------------------------------------------

func TestSpan_Style(t *testing.T) {
	t.Parallel()

	tests := []struct {
		span Span
		want string
	}{
		{Span{}, ""},
		{Span{Bold: true}, "B"},
		{Span{Italic: true}, "I"},
		{Span{Bold: true, Italic: true, Code: true}, "BI"},
	}
	for _, tt := range tests {
		tt := tt
		if got := tt.span.Style(); got != tt.want {
			t.Errorf("%+v.Style() = %q, want %q", tt.span, got, tt.want)
		}
	}
}
