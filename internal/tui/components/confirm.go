package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/quill/internal/tui/styles"
)

// Confirm is a yes/no modal
type Confirm struct {
	visible bool
	title   string
	body    string
}

// Show displays the question
func (c *Confirm) Show(title, body string) {
	c.visible = true
	c.title = title
	c.body = body
}

// Hide dismisses the modal
func (c *Confirm) Hide() {
	c.visible = false
}

// IsVisible returns whether the modal is shown
func (c Confirm) IsVisible() bool {
	return c.visible
}

// Update returns (confirm, answered, yes). Any answer hides the modal.
func (c Confirm) Update(msg tea.Msg) (Confirm, bool, bool) {
	if !c.visible {
		return c, false, false
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, false, false
	}
	switch keyMsg.String() {
	case "y", "Y":
		c.Hide()
		return c, true, true
	case "n", "N", "esc", "q":
		c.Hide()
		return c, true, false
	}
	return c, false, false
}

// View renders the modal
func (c Confirm) View() string {
	if !c.visible {
		return ""
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.ModalTitleStyle.Render(c.title),
		styles.SubtitleStyle.Render(c.body),
		"",
		styles.AccentStyle.Render("[Y]")+" Yes      "+styles.AccentStyle.Render("[N]")+" No",
	)
	return styles.ModalStyle.Render(content)
}
