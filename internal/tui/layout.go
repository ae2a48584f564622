package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/editor"
	"github.com/mmcdole/quill/internal/feed"
	"github.com/mmcdole/quill/internal/tui/styles"
)

// Layout constants
const (
	// ChromeHeight is the header line plus the footer line
	ChromeHeight = 2

	// PreviewMinWidth is the terminal width from which the feed shows a preview pane
	PreviewMinWidth = 100

	// ListColumnPercent is the feed list share of the width when the preview is shown
	ListColumnPercent = 55

	// MinColumnWidth keeps narrow panes readable
	MinColumnWidth = 24

	profileCardHeight = 5
	composeChrome     = 6
	maxFormWidth      = 64
)

func (m Model) contentHeight() int {
	return max(m.Height-ChromeHeight, 3)
}

// feedColumns splits the width between the list and the preview pane.
// previewWidth is 0 when the terminal is too narrow.
func (m Model) feedColumns() (listWidth, previewWidth int) {
	if m.Width < PreviewMinWidth {
		return m.Width, 0
	}
	listWidth = max(m.Width*ListColumnPercent/100, MinColumnWidth)
	return listWidth, m.Width - listWidth
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	contentHeight := m.contentHeight()

	listWidth, _ := m.feedColumns()
	for _, t := range m.tabs {
		t.list.SetSize(listWidth, contentHeight)
	}
	m.profile.stats.SetSize(m.Width-m.Width/2, contentHeight-profileCardHeight)

	if m.detail != nil {
		m.detail.viewport.Width = m.Width
		m.detail.viewport.Height = contentHeight
		m.refreshDetail()
	}

	if m.compose != nil {
		m.compose.setWidth(m.Width)
		m.compose.body.SetSize(m.Width-2, max(contentHeight-composeChrome, 3))
	}

	formWidth := min(maxFormWidth, m.Width-4)
	m.LoginForm.SetWidth(formWidth)
	m.RegisterForm.SetWidth(formWidth)
	m.ProfileForm.SetWidth(formWidth)
	m.PasswordForm.SetWidth(formWidth)

	m.help.Width = m.Width
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	var content string
	switch m.State {
	case StateDetail:
		content = m.renderDetail()
	case StateCompose:
		content = m.renderCompose()
	case StateProfile:
		content = m.renderProfile()
	default:
		content = m.renderFeed()
	}
	content = lipgloss.NewStyle().Height(m.contentHeight()).MaxHeight(m.contentHeight()).Render(content)

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderFooter(),
	)

	// Overlay the visible modal
	var modal string
	switch {
	case m.Confirm.IsVisible():
		modal = m.Confirm.View()
	case m.LoginForm.IsVisible():
		modal = m.LoginForm.View()
	case m.RegisterForm.IsVisible():
		modal = m.RegisterForm.View()
	case m.ProfileForm.IsVisible():
		modal = m.ProfileForm.View()
	case m.PasswordForm.IsVisible():
		modal = m.PasswordForm.View()
	case m.Prompt.IsVisible():
		modal = m.Prompt.View()
	}
	if modal != "" {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			modal)
	}

	return view
}

// renderHeader renders the app name, the feed tabs and the account
func (m Model) renderHeader() string {
	parts := []string{styles.AccentStyle.Bold(true).Render("quill") + " "}
	for i, t := range m.tabs {
		label := feed.Title(t.resource)
		if i == m.activeTab && m.State == StateFeed {
			parts = append(parts, styles.ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, styles.TabStyle.Render(label))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	right := styles.DimStyle.Render("not logged in")
	if m.LoggedIn {
		name := "logged in"
		if m.Me != nil {
			name = m.Me.Author().DisplayName()
		}
		right = styles.SubtitleStyle.Render(name)
	}

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.Truncate(left, m.Width)
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderFooter renders the status message on the left and key hints on the right
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(m.StatusMsg)
	case m.busy():
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Working...")
	}

	right := m.help.View(Keys)
	if m.State == StateCompose {
		right = styles.HelpKeyStyle.Render("C-s") + styles.HelpDescStyle.Render(" publish  ") +
			styles.HelpKeyStyle.Render("C-f") + styles.HelpDescStyle.Render(" format  ") +
			styles.HelpKeyStyle.Render("C-g") + styles.HelpDescStyle.Render(" image  ") +
			styles.HelpKeyStyle.Render("esc") + styles.HelpDescStyle.Render(" close")
	}

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.Truncate(left, m.Width)
	}
	return left + strings.Repeat(" ", gap) + right
}

// busy reports whether a request started by the user is still running
func (m Model) busy() bool {
	if m.compose != nil && m.compose.busy {
		return true
	}
	if m.detail != nil && m.detail.like.InFlight() {
		return true
	}
	return m.LoginForm.IsBusy() || m.RegisterForm.IsBusy() || m.ProfileForm.IsBusy() || m.PasswordForm.IsBusy()
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render("Keys"),
		h.View(Keys),
		"",
		styles.DimStyle.Render("Compose: C-s publish · C-f format line · C-g image · tab next field"),
		styles.DimStyle.Render("Press any key to return..."),
	)
	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content))
}

// renderFeed renders the active tab with a preview of the selected post
func (m Model) renderFeed() string {
	t := m.tabs[m.activeTab]
	listWidth, previewWidth := m.feedColumns()
	t.list.SetSize(listWidth, m.contentHeight())
	if previewWidth == 0 {
		return t.list.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		t.list.View(),
		m.renderPreview(t.list.SelectedPost(), previewWidth),
	)
}

// renderPreview renders the side pane for the selected post
func (m Model) renderPreview(post *domain.Post, width int) string {
	inner := max(width-4, 10)
	var content string
	if post == nil {
		content = styles.DimStyle.Render("Nothing selected")
	} else {
		excerpt := domain.Excerpt(editor.PlainText(post.Content), inner*6)
		content = lipgloss.JoinVertical(lipgloss.Left,
			RenderPostHeader(*post, post.LikeCount, false, inner),
			"",
			wrap(excerpt, inner),
		)
	}
	return styles.InactiveBorder.
		Width(width - 2).
		Height(m.contentHeight() - 2).
		MaxHeight(m.contentHeight()).
		Render(content)
}

// renderDetail renders the open post
func (m Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}
	return m.detail.viewport.View()
}

// renderCompose renders the authoring screen
func (m Model) renderCompose() string {
	c := m.compose
	if c == nil {
		return ""
	}

	heading := "New post"
	if c.postID != 0 {
		heading = "Edit post"
	}

	lines := []string{
		styles.TitleStyle.Render(heading),
		c.title.View(),
	}
	if e := c.fieldError("title"); e != "" {
		lines = append(lines, styles.FieldErrorStyle.Render(e))
	}
	lines = append(lines, c.tags.View())
	if e := c.fieldError("tags"); e != "" {
		lines = append(lines, styles.FieldErrorStyle.Render(e))
	}

	image := styles.DimStyle.Render("No cover image (C-g to attach)")
	if c.image != nil {
		image = styles.SubtitleStyle.Render("Cover: " + c.image.FileName)
	}
	lines = append(lines, image)
	if e := c.fieldError("image"); e != "" {
		lines = append(lines, styles.FieldErrorStyle.Render(e))
	}

	label := styles.LabelStyle.Render("Content")
	if c.focus == 2 {
		label = styles.FocusedLabelStyle.Render("Content")
	}
	lines = append(lines, label, c.body.View())
	if e := c.fieldError("content"); e != "" {
		lines = append(lines, styles.FieldErrorStyle.Render(e))
	}
	if c.err != nil && c.fieldError("title") == "" && c.fieldError("content") == "" &&
		c.fieldError("tags") == "" && c.fieldError("image") == "" {
		lines = append(lines, styles.ErrorStyle.Render(domain.UserMessage(c.err)))
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// renderProfile renders the account card, the user's posts and the stats pane
func (m Model) renderProfile() string {
	card := styles.DimStyle.Render("Loading profile...")
	if m.Me != nil {
		card = RenderProfile(*m.Me, m.Width-2)
	}
	card = lipgloss.NewStyle().
		Padding(0, 1).
		Height(profileCardHeight).
		MaxHeight(profileCardHeight).
		Render(card + "\n" + styles.DimStyle.Render("e edit profile · P change password · i likes & comments · x delete"))

	height := m.contentHeight() - profileCardHeight
	leftWidth := m.Width / 2
	posts := m.tabFor(feed.ResourceMyPosts).list
	posts.SetSize(leftWidth, height)
	m.profile.stats.SetSize(m.Width-leftWidth, height)

	return lipgloss.JoinVertical(lipgloss.Left,
		card,
		lipgloss.JoinHorizontal(lipgloss.Top, posts.View(), m.profile.stats.View()),
	)
}
