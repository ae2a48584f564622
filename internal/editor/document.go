// Package editor is the rich-text surface for post content. A Document is a
// list of blocks with inline marks; it converts to and from HTML for the API
// and to and from a lightweight line markup for editing in a textarea.
package editor

import "strings"

// Kind is the block type of one line
type Kind int

const (
	Paragraph Kind = iota
	Heading1
	Heading2
	Heading3
	Bullet
	Ordered
	Quote
)

func (k Kind) String() string {
	switch k {
	case Heading1:
		return "h1"
	case Heading2:
		return "h2"
	case Heading3:
		return "h3"
	case Bullet:
		return "bullet"
	case Ordered:
		return "ordered"
	case Quote:
		return "quote"
	default:
		return "paragraph"
	}
}

// Marks are the inline formats of a span
type Marks struct {
	Bold   bool
	Italic bool
	Strike bool
	Href   string
}

// Span is a run of text sharing the same marks
type Span struct {
	Text string
	Marks
}

// Block is one paragraph, heading, list item or quote line
type Block struct {
	Kind  Kind
	Spans []Span
}

// Text returns the block's text without formatting
func (b Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Document is an ordered list of blocks
type Document struct {
	Blocks []Block
}

// PlainText joins the block texts with newlines
func (d Document) PlainText() string {
	lines := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if t := strings.TrimSpace(b.Text()); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// IsEmpty reports a document without visible text
func (d Document) IsEmpty() bool {
	return d.PlainText() == ""
}

// appendSpan adds text to spans, merging with the previous span when the
// marks match
func appendSpan(spans []Span, text string, m Marks) []Span {
	if text == "" {
		return spans
	}
	if n := len(spans); n > 0 && spans[n-1].Marks == m {
		spans[n-1].Text += text
		return spans
	}
	return append(spans, Span{Text: text, Marks: m})
}

// trimSpans strips outer whitespace from a block's spans and drops empties
func trimSpans(spans []Span) []Span {
	for len(spans) > 0 {
		spans[0].Text = strings.TrimLeft(spans[0].Text, " \t")
		if spans[0].Text != "" {
			break
		}
		spans = spans[1:]
	}
	for len(spans) > 0 {
		last := len(spans) - 1
		spans[last].Text = strings.TrimRight(spans[last].Text, " \t")
		if spans[last].Text != "" {
			break
		}
		spans = spans[:last]
	}
	return spans
}
