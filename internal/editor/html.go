package editor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML reads editor HTML into a Document. Unknown elements contribute
// their text; headings below h3 become h3.
func ParseHTML(src string) (Document, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return Document{}, fmt.Errorf("parse html: %w", err)
	}

	p := &htmlParser{}
	for _, n := range nodes {
		p.walk(n, Paragraph, Marks{})
	}
	p.flush()
	return Document{Blocks: p.blocks}, nil
}

// PlainText extracts the visible text of editor HTML
func PlainText(src string) string {
	doc, err := ParseHTML(src)
	if err != nil {
		return ""
	}
	return doc.PlainText()
}

type htmlParser struct {
	blocks []Block
	cur    *Block
}

func (p *htmlParser) flush() {
	if p.cur == nil {
		return
	}
	p.cur.Spans = trimSpans(p.cur.Spans)
	if len(p.cur.Spans) > 0 {
		p.blocks = append(p.blocks, *p.cur)
	}
	p.cur = nil
}

func (p *htmlParser) start(kind Kind) {
	p.flush()
	p.cur = &Block{Kind: kind}
}

func (p *htmlParser) text(s string, kind Kind, m Marks) {
	s = collapseSpace(s)
	if p.cur == nil {
		if strings.TrimSpace(s) == "" {
			return
		}
		p.cur = &Block{Kind: kind}
	}
	if n := len(p.cur.Spans); n > 0 && strings.HasSuffix(p.cur.Spans[n-1].Text, " ") {
		s = strings.TrimLeft(s, " ")
	}
	p.cur.Spans = appendSpan(p.cur.Spans, s, m)
}

func (p *htmlParser) children(n *html.Node, kind Kind, m Marks) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, kind, m)
	}
}

func (p *htmlParser) walk(n *html.Node, kind Kind, m Marks) {
	switch n.Type {
	case html.TextNode:
		p.text(n.Data, kind, m)
		return
	case html.ElementNode:
	default:
		p.children(n, kind, m)
		return
	}

	switch n.DataAtom {
	case atom.P, atom.Div, atom.Pre:
		blockKind := kind
		if blockKind != Quote && blockKind != Bullet && blockKind != Ordered {
			blockKind = Paragraph
		}
		p.start(blockKind)
		p.children(n, blockKind, m)
		p.flush()
	case atom.H1:
		p.block(n, Heading1, m)
	case atom.H2:
		p.block(n, Heading2, m)
	case atom.H3, atom.H4, atom.H5, atom.H6:
		p.block(n, Heading3, m)
	case atom.Ul:
		p.flush()
		p.children(n, Bullet, m)
		p.flush()
	case atom.Ol:
		p.flush()
		p.children(n, Ordered, m)
		p.flush()
	case atom.Li:
		if kind != Bullet && kind != Ordered {
			kind = Bullet
		}
		p.block(n, kind, m)
	case atom.Blockquote:
		p.flush()
		p.children(n, Quote, m)
		p.flush()
	case atom.Br:
		if p.cur != nil {
			k := p.cur.Kind
			p.flush()
			p.cur = &Block{Kind: k}
		}
	case atom.Strong, atom.B:
		m.Bold = true
		p.children(n, kind, m)
	case atom.Em, atom.I:
		m.Italic = true
		p.children(n, kind, m)
	case atom.S, atom.Strike, atom.Del:
		m.Strike = true
		p.children(n, kind, m)
	case atom.A:
		m.Href = SafeHref(attr(n, "href"))
		p.children(n, kind, m)
	case atom.Script, atom.Style:
	default:
		p.children(n, kind, m)
	}
}

func (p *htmlParser) block(n *html.Node, kind Kind, m Marks) {
	p.start(kind)
	p.children(n, kind, m)
	p.flush()
}

// HTML renders the document as editor HTML. An empty document renders "".
func (d Document) HTML() string {
	var buf bytes.Buffer
	var list *html.Node

	for _, b := range d.Blocks {
		if len(b.Spans) == 0 {
			continue
		}
		switch b.Kind {
		case Bullet, Ordered:
			a := atom.Ul
			if b.Kind == Ordered {
				a = atom.Ol
			}
			if list == nil || list.DataAtom != a {
				renderNode(&buf, list)
				list = element(a)
			}
			li := element(atom.Li)
			appendInline(li, b.Spans)
			list.AppendChild(li)
			continue
		}

		renderNode(&buf, list)
		list = nil

		var n *html.Node
		switch b.Kind {
		case Heading1:
			n = element(atom.H1)
			appendInline(n, b.Spans)
		case Heading2:
			n = element(atom.H2)
			appendInline(n, b.Spans)
		case Heading3:
			n = element(atom.H3)
			appendInline(n, b.Spans)
		case Quote:
			n = element(atom.Blockquote)
			para := element(atom.P)
			appendInline(para, b.Spans)
			n.AppendChild(para)
		default:
			n = element(atom.P)
			appendInline(n, b.Spans)
		}
		renderNode(&buf, n)
	}
	renderNode(&buf, list)
	return buf.String()
}

func appendInline(parent *html.Node, spans []Span) {
	var link *html.Node
	for _, s := range spans {
		n := &html.Node{Type: html.TextNode, Data: s.Text}
		if s.Strike {
			n = wrap(atom.S, n)
		}
		if s.Italic {
			n = wrap(atom.Em, n)
		}
		if s.Bold {
			n = wrap(atom.Strong, n)
		}

		if SafeHref(s.Href) == "" {
			link = nil
			parent.AppendChild(n)
			continue
		}
		if link == nil || attr(link, "href") != s.Href {
			link = element(atom.A)
			link.Attr = []html.Attribute{{Key: "href", Val: s.Href}}
			parent.AppendChild(link)
		}
		link.AppendChild(n)
	}
}

// SafeHref returns href trimmed when it is an absolute http, https or mailto
// URL and "" otherwise
func SafeHref(href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return ""
		}
		return href
	case "mailto":
		return href
	default:
		return ""
	}
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

func wrap(a atom.Atom, child *html.Node) *html.Node {
	n := element(a)
	n.AppendChild(child)
	return n
}

func renderNode(buf *bytes.Buffer, n *html.Node) {
	if n == nil {
		return
	}
	// Render only fails on writer errors; bytes.Buffer never returns one
	_ = html.Render(buf, n)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
