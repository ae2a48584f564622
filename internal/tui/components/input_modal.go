package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/quill/internal/tui/styles"
)

// InputModal is a single-line prompt with optional suggestions underneath.
// Search uses the suggestions for history; the open-post prompt has none.
type InputModal struct {
	visible bool
	title   string
	input   textinput.Model

	suggestions []string
	selected    int // -1 when no suggestion is highlighted
}

// NewInputModal creates a new input modal
func NewInputModal() InputModal {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return InputModal{
		input:    ti,
		selected: -1,
	}
}

// Show displays the modal with a title, a placeholder and an initial value
func (m *InputModal) Show(title, placeholder, value string) {
	m.visible = true
	m.title = title
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	m.suggestions = nil
	m.selected = -1
}

// Hide dismisses the modal
func (m *InputModal) Hide() {
	m.visible = false
	m.input.Blur()
}

// IsVisible returns whether the modal is shown
func (m InputModal) IsVisible() bool {
	return m.visible
}

// Title returns the prompt's title
func (m InputModal) Title() string {
	return m.title
}

// Value returns the highlighted suggestion, or the typed text
func (m InputModal) Value() string {
	if m.selected >= 0 && m.selected < len(m.suggestions) {
		return m.suggestions[m.selected]
	}
	return m.input.Value()
}

// Typed returns the raw input text, ignoring any highlighted suggestion
func (m InputModal) Typed() string {
	return m.input.Value()
}

// SetSuggestions replaces the suggestion list
func (m *InputModal) SetSuggestions(suggestions []string) {
	m.suggestions = suggestions
	if m.selected >= len(suggestions) {
		m.selected = -1
	}
}

// Suggestions returns the current suggestion list
func (m InputModal) Suggestions() []string {
	return m.suggestions
}

// Update handles input events, returns (modal, cmd, submitted)
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, FormKeys.Cancel):
			m.Hide()
			return m, nil, false
		case keyMsg.String() == "enter":
			return m, nil, true
		case key.Matches(keyMsg, PromptKeys.Down):
			if len(m.suggestions) > 0 {
				m.selected = (m.selected + 1) % len(m.suggestions)
			}
			return m, nil, false
		case key.Matches(keyMsg, PromptKeys.Up):
			if len(m.suggestions) > 0 {
				if m.selected <= 0 {
					m.selected = len(m.suggestions) - 1
				} else {
					m.selected--
				}
			}
			return m, nil, false
		case key.Matches(keyMsg, PromptKeys.Complete):
			if len(m.suggestions) > 0 {
				idx := max(m.selected, 0)
				m.input.SetValue(m.suggestions[idx])
				m.input.CursorEnd()
				m.selected = -1
			}
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.selected = -1
	}
	return m, cmd, false
}

// View renders the input modal
func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 44

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.White).
		Bold(true).
		Width(modalWidth).
		Background(styles.SlateDark)

	rowStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Background(styles.SlateDark)

	spacer := rowStyle.Render("")

	rows := []string{
		titleStyle.Render(m.title),
		spacer,
		rowStyle.Render(m.input.View()),
	}

	if len(m.suggestions) > 0 {
		rows = append(rows, spacer)
		for i, s := range m.suggestions {
			line := styles.Truncate(s, modalWidth-2)
			if i == m.selected {
				rows = append(rows, styles.HighlightStyle.Width(modalWidth).Render(line))
			} else {
				rows = append(rows, rowStyle.Foreground(styles.LightGray).Render("  "+line))
			}
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Ink).
		Background(styles.SlateDark).
		Padding(1, 2).
		Render(content)
}
