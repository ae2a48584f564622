package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// Capability is what the compose screen needs from a rich-text editor
type Capability interface {
	HTML() string
	SetContent(html string)
	Apply(cmd Command, arg string)
}

var _ Capability = (*Model)(nil)

// Model edits a Document as line markup in a bubbles textarea
type Model struct {
	input textarea.Model
}

// New creates an empty editor
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "Write your post... (# heading, - list, **bold**, _italic_)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	return Model{input: ta}
}

// HTML renders the current content as editor HTML
func (m *Model) HTML() string {
	return m.Document().HTML()
}

// SetContent replaces the content with parsed HTML. Unparseable input
// leaves the editor empty.
func (m *Model) SetContent(src string) {
	doc, err := ParseHTML(src)
	if err != nil {
		doc = Document{}
	}
	m.input.SetValue(doc.Markup())
}

// Apply runs cmd on the line under the cursor
func (m *Model) Apply(cmd Command, arg string) {
	row := m.input.Line()
	lines := strings.Split(m.input.Value(), "\n")
	if row < 0 || row >= len(lines) {
		return
	}
	lines[row] = ApplyLine(lines[row], cmd, arg)
	m.input.SetValue(strings.Join(lines, "\n"))

	// SetValue leaves the cursor on the last line
	for i := 0; i < len(lines)*4 && m.input.Line() > row; i++ {
		m.input.CursorUp()
	}
	m.input.CursorEnd()
}

// Document parses the current markup
func (m *Model) Document() Document {
	return ParseMarkup(m.input.Value())
}

// PlainText returns the visible text of the content
func (m *Model) PlainText() string {
	return m.Document().PlainText()
}

// Reset clears the content
func (m *Model) Reset() {
	m.input.Reset()
}

func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

func (m *Model) Blur() {
	m.input.Blur()
}

func (m Model) Focused() bool {
	return m.input.Focused()
}

// SetSize sets the editing area dimensions
func (m *Model) SetSize(width, height int) {
	m.input.SetWidth(width)
	m.input.SetHeight(height)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.input.View()
}
