package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/editor"
	"github.com/mmcdole/quill/internal/tui/styles"
)

// excerptLength is the plain-text preview length used for the "other post" card
const excerptLength = 160

// RenderDocument renders post HTML as styled, wrapped terminal text
func RenderDocument(html string, width int) string {
	doc, err := editor.ParseHTML(html)
	if err != nil {
		return wrap(editor.PlainText(html), width)
	}

	var out []string
	number := 0
	for _, block := range doc.Blocks {
		if block.Kind != editor.Ordered {
			number = 0
		}
		text := renderSpans(block.Spans)

		switch block.Kind {
		case editor.Heading1:
			out = append(out, "", styles.HeadingStyle.Underline(true).Width(width).Render(strings.ToUpper(block.Text())))
		case editor.Heading2:
			out = append(out, "", styles.HeadingStyle.Width(width).Render(block.Text()))
		case editor.Heading3:
			out = append(out, styles.TitleStyle.Width(width).Render(block.Text()))
		case editor.Bullet:
			out = append(out, hanging("• ", text, width))
		case editor.Ordered:
			number++
			out = append(out, hanging(strconv.Itoa(number)+". ", text, width))
		case editor.Quote:
			out = append(out, styles.QuoteStyle.Width(max(width-2, 10)).Render(text))
		default:
			out = append(out, wrap(text, width), "")
		}
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}

func renderSpans(spans []editor.Span) string {
	var b strings.Builder
	for _, span := range spans {
		style := lipgloss.NewStyle()
		if span.Bold {
			style = style.Bold(true)
		}
		if span.Italic {
			style = style.Italic(true)
		}
		if span.Strike {
			style = style.Strikethrough(true)
		}
		if span.Href != "" {
			style = style.Inherit(styles.LinkStyle)
		}
		b.WriteString(style.Render(span.Text))
		if span.Href != "" && span.Href != span.Text {
			b.WriteString(styles.DimStyle.Render(" (" + span.Href + ")"))
		}
	}
	return b.String()
}

func hanging(marker, text string, width int) string {
	body := lipgloss.NewStyle().Width(max(width-lipgloss.Width(marker), 10)).Render(text)
	return lipgloss.JoinHorizontal(lipgloss.Top, styles.AccentStyle.Render(marker), body)
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

// RenderPostHeader renders title, byline, tags and counters. likes and liked
// come from the like toggle so optimistic changes show immediately.
func RenderPostHeader(post domain.Post, likes int, liked bool, width int) string {
	lines := []string{
		styles.TitleStyle.Width(width).Render(post.Title),
	}

	byline := post.Author.DisplayName()
	if post.Author.Headline != "" {
		byline += " · " + post.Author.Headline
	}
	if d := post.FormattedDate(); d != "" {
		byline += " · " + d
	}
	lines = append(lines, styles.SubtitleStyle.Render(styles.Truncate(byline, width)))

	if tags := post.TagLine(); tags != "" {
		lines = append(lines, styles.TagStyle.Width(width).Render(tags))
	}

	heart := styles.DimStyle.Render("♡")
	if liked {
		heart = styles.LikedStyle.Render("♥")
	}
	counters := fmt.Sprintf("%s %d   ✎ %d", heart, likes, post.CommentCount)
	lines = append(lines, counters)

	if post.ImageURL != "" {
		lines = append(lines, styles.DimStyle.Render(styles.Truncate("cover: "+post.ImageURL, width)))
	}
	lines = append(lines, styles.DimStyle.Render("/posts/"+post.Slug()))

	return strings.Join(lines, "\n")
}

// RenderComments renders a comment list, newest first
func RenderComments(comments []domain.Comment, total int, width int) string {
	header := styles.AccentStyle.Render(fmt.Sprintf("Comments (%d)", total))
	if len(comments) == 0 {
		return header + "\n" + styles.DimStyle.Render("No comments yet. Press c to write one.")
	}

	lines := []string{header}
	for _, c := range comments {
		meta := c.GetDescription()
		body := wrap(c.Content, max(width-2, 10))
		if c.Pending {
			lines = append(lines, styles.PendingStyle.Render(meta))
			lines = append(lines, styles.PendingStyle.Render(body))
		} else {
			lines = append(lines, styles.SubtitleStyle.Render(meta))
			lines = append(lines, body)
		}
		lines = append(lines, "")
	}
	if len(comments) < total {
		lines = append(lines, styles.DimStyle.Render(fmt.Sprintf("%d more, press C to show all", total-len(comments))))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// RenderOtherPost renders the suggestion card under a post
func RenderOtherPost(post domain.Post, width int) string {
	excerpt := domain.Excerpt(editor.PlainText(post.Content), excerptLength)
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.DimStyle.Render("Read next (O)"),
		styles.TitleStyle.Render(styles.Truncate(post.Title, max(width-4, 10))),
		styles.SubtitleStyle.Render(post.Author.DisplayName()+" · "+post.Stats()),
		wrap(excerpt, max(width-4, 10)),
	)
	return styles.InactiveBorder.Width(max(width-2, 10)).Render(content)
}

// RenderProfile renders the account card at the top of the profile screen
func RenderProfile(p domain.Profile, width int) string {
	lines := []string{
		styles.BadgeStyle.Render(p.Author().Initials()) + " " + styles.TitleStyle.Render(p.Author().DisplayName()),
		styles.SubtitleStyle.Render(p.Email),
	}
	if p.Headline != "" {
		lines = append(lines, wrap(p.Headline, width))
	}
	if p.AvatarURL != "" {
		lines = append(lines, styles.DimStyle.Render(styles.Truncate("avatar: "+p.AvatarURL, width)))
	}
	return strings.Join(lines, "\n")
}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return styles.SpinnerStyle.Render(frames[frame%len(frames)])
}

// RenderError renders an error message
func RenderError(err error, width int) string {
	return styles.ErrorStyle.Width(max(width-4, 10)).Render("Error: " + domain.UserMessage(err))
}
