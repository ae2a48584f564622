package editor

import "strings"

// Command is a formatting action applied to the current line
type Command int

const (
	CmdParagraph Command = iota
	CmdHeading1
	CmdHeading2
	CmdHeading3
	CmdBulletList
	CmdOrderedList
	CmdQuote
	CmdBold
	CmdItalic
	CmdStrike
	CmdLink
	CmdClear
)

var commandNames = map[string]Command{
	"p":      CmdParagraph,
	"h1":     CmdHeading1,
	"h2":     CmdHeading2,
	"h3":     CmdHeading3,
	"ul":     CmdBulletList,
	"ol":     CmdOrderedList,
	"quote":  CmdQuote,
	"bold":   CmdBold,
	"italic": CmdItalic,
	"strike": CmdStrike,
	"link":   CmdLink,
	"clear":  CmdClear,
}

// ParseCommand looks up a command by its short name ("h2", "bold", ...)
func ParseCommand(name string) (Command, bool) {
	cmd, ok := commandNames[strings.ToLower(strings.TrimSpace(name))]
	return cmd, ok
}

// ApplyLine applies cmd to one markup line. Block commands set the line type
// (lists and quotes toggle); inline commands toggle the mark over the whole
// line. CmdLink sets arg as the target, or removes links when arg is blank.
func ApplyLine(line string, cmd Command, arg string) string {
	kind, body := splitLine(line)
	spans := trimSpans(parseInline(body))

	switch cmd {
	case CmdParagraph:
		kind = Paragraph
	case CmdHeading1:
		kind = Heading1
	case CmdHeading2:
		kind = Heading2
	case CmdHeading3:
		kind = Heading3
	case CmdBulletList:
		kind = toggleKind(kind, Bullet)
	case CmdOrderedList:
		kind = toggleKind(kind, Ordered)
	case CmdQuote:
		kind = toggleKind(kind, Quote)
	case CmdBold:
		toggleMark(spans, func(m *Marks) *bool { return &m.Bold })
	case CmdItalic:
		toggleMark(spans, func(m *Marks) *bool { return &m.Italic })
	case CmdStrike:
		toggleMark(spans, func(m *Marks) *bool { return &m.Strike })
	case CmdLink:
		href := SafeHref(arg)
		for i := range spans {
			spans[i].Href = href
		}
	case CmdClear:
		kind = Paragraph
		for i := range spans {
			spans[i].Marks = Marks{}
		}
	}

	return renderLine(kind, 1, mergeSpans(spans))
}

func toggleKind(current, target Kind) Kind {
	if current == target {
		return Paragraph
	}
	return target
}

// toggleMark clears the mark when every span has it, otherwise sets it on all
func toggleMark(spans []Span, field func(*Marks) *bool) {
	all := len(spans) > 0
	for i := range spans {
		if !*field(&spans[i].Marks) {
			all = false
			break
		}
	}
	for i := range spans {
		*field(&spans[i].Marks) = !all
	}
}

func mergeSpans(spans []Span) []Span {
	var out []Span
	for _, s := range spans {
		out = appendSpan(out, s.Text, s.Marks)
	}
	return out
}
