package editor

import (
	"strconv"
	"strings"
)

// Line markup used inside the textarea:
//
//	# / ## / ###   headings
//	- item         bullet list
//	1. item        ordered list
//	> text         quote
//	**bold** _italic_ ~~strike~~ [text](url)
//
// A backslash escapes the next character.

// ParseMarkup reads textarea markup, one block per non-blank line
func ParseMarkup(src string) Document {
	var doc Document
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kind, body := splitLine(line)
		spans := trimSpans(parseInline(body))
		if len(spans) == 0 {
			continue
		}
		doc.Blocks = append(doc.Blocks, Block{Kind: kind, Spans: spans})
	}
	return doc
}

// Markup renders the document as textarea markup
func (d Document) Markup() string {
	lines := make([]string, 0, len(d.Blocks))
	n := 0
	for _, b := range d.Blocks {
		if b.Kind == Ordered {
			n++
		} else {
			n = 0
		}
		lines = append(lines, renderLine(b.Kind, n, b.Spans))
	}
	return strings.Join(lines, "\n")
}

func renderLine(kind Kind, n int, spans []Span) string {
	body := renderInline(spans)
	if kind == Paragraph {
		// keep literal "# " or "- " text from turning into a block prefix
		if k, _ := splitLine(body); k != Paragraph {
			return `\` + body
		}
		return body
	}
	return prefix(kind, n) + body
}

func prefix(kind Kind, n int) string {
	switch kind {
	case Heading1:
		return "# "
	case Heading2:
		return "## "
	case Heading3:
		return "### "
	case Bullet:
		return "- "
	case Ordered:
		return strconv.Itoa(max(n, 1)) + ". "
	case Quote:
		return "> "
	default:
		return ""
	}
}

// splitLine detects the block prefix of a markup line
func splitLine(line string) (Kind, string) {
	trimmed := strings.TrimLeft(line, " \t")
	switch {
	case strings.HasPrefix(trimmed, "### "):
		return Heading3, trimmed[4:]
	case strings.HasPrefix(trimmed, "## "):
		return Heading2, trimmed[3:]
	case strings.HasPrefix(trimmed, "# "):
		return Heading1, trimmed[2:]
	case strings.HasPrefix(trimmed, "- "):
		return Bullet, trimmed[2:]
	case strings.HasPrefix(trimmed, "> "):
		return Quote, trimmed[2:]
	}

	digits := 0
	for digits < len(trimmed) && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
		digits++
	}
	if digits > 0 && strings.HasPrefix(trimmed[digits:], ". ") {
		return Ordered, trimmed[digits+2:]
	}
	return Paragraph, line
}

func parseInline(s string) []Span {
	return parseInlineWith(s, Marks{})
}

func parseInlineWith(s string, m Marks) []Span {
	var spans []Span
	var text strings.Builder

	emit := func() {
		spans = appendSpan(spans, text.String(), m)
		text.Reset()
	}

	for i := 0; i < len(s); {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			text.WriteByte(s[i+1])
			i += 2
		case strings.HasPrefix(s[i:], "**"):
			emit()
			m.Bold = !m.Bold
			i += 2
		case strings.HasPrefix(s[i:], "~~"):
			emit()
			m.Strike = !m.Strike
			i += 2
		case s[i] == '_':
			emit()
			m.Italic = !m.Italic
			i++
		case s[i] == '[':
			inner, href, next, ok := scanLink(s, i)
			if !ok {
				text.WriteByte('[')
				i++
				continue
			}
			emit()
			lm := m
			lm.Href = SafeHref(href)
			for _, sp := range parseInlineWith(inner, lm) {
				spans = appendSpan(spans, sp.Text, sp.Marks)
			}
			i = next
		default:
			text.WriteByte(s[i])
			i++
		}
	}
	emit()
	return spans
}

// scanLink matches "[text](href)" starting at s[start]
func scanLink(s string, start int) (inner, href string, next int, ok bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth != 0 {
				continue
			}
			if i+1 >= len(s) || s[i+1] != '(' {
				return "", "", 0, false
			}
			end := strings.IndexByte(s[i+2:], ')')
			if end < 0 {
				return "", "", 0, false
			}
			return s[start+1 : i], strings.TrimSpace(s[i+2 : i+2+end]), i + 3 + end, true
		}
	}
	return "", "", 0, false
}

func renderInline(spans []Span) string {
	var b strings.Builder
	for i := 0; i < len(spans); {
		href := spans[i].Href
		if href == "" {
			b.WriteString(renderSpan(spans[i]))
			i++
			continue
		}
		j := i
		b.WriteByte('[')
		for j < len(spans) && spans[j].Href == href {
			b.WriteString(renderSpan(spans[j]))
			j++
		}
		b.WriteString("](")
		b.WriteString(href)
		b.WriteByte(')')
		i = j
	}
	return b.String()
}

func renderSpan(s Span) string {
	t := escapeMarkup(s.Text)
	if s.Strike {
		t = "~~" + t + "~~"
	}
	if s.Italic {
		t = "_" + t + "_"
	}
	if s.Bold {
		t = "**" + t + "**"
	}
	return t
}

var markupEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	`~`, `\~`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}
