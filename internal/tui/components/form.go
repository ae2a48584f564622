package components

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/tui/styles"
)

// FieldSpec describes one form input
type FieldSpec struct {
	Key         string // matches the ValidationError field name
	Label       string
	Placeholder string
	Password    bool
	CharLimit   int
}

type formField struct {
	spec  FieldSpec
	input textinput.Model
}

// Form is a modal set of labelled text inputs with per-field error lines.
// Server and validation errors are shown under the field they name.
type Form struct {
	visible bool
	title   string
	fields  []formField
	focus   int
	width   int

	errors  map[string]string
	message string // general error not tied to a field
	busy    bool
}

// NewForm creates a hidden form
func NewForm(title string, specs ...FieldSpec) Form {
	fields := make([]formField, len(specs))
	for i, spec := range specs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = spec.Placeholder
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		if spec.CharLimit > 0 {
			ti.CharLimit = spec.CharLimit
		}
		if spec.Password {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		fields[i] = formField{spec: spec, input: ti}
	}
	return Form{title: title, fields: fields, width: 48, errors: map[string]string{}}
}

// Show resets the form and focuses the first field
func (f *Form) Show() {
	f.visible = true
	f.busy = false
	f.ClearErrors()
	for i := range f.fields {
		f.fields[i].input.SetValue("")
	}
	f.focusField(0)
}

// Hide dismisses the form
func (f *Form) Hide() {
	f.visible = false
	f.busy = false
	for i := range f.fields {
		f.fields[i].input.Blur()
	}
}

// IsVisible returns whether the form is shown
func (f Form) IsVisible() bool {
	return f.visible
}

// SetWidth sets the input width
func (f *Form) SetWidth(width int) {
	f.width = max(width, 20)
	for i := range f.fields {
		f.fields[i].input.Width = f.width - 2
	}
}

// Value returns the trimmed value of the field named key. Passwords are not trimmed.
func (f Form) Value(key string) string {
	for _, field := range f.fields {
		if field.spec.Key == key {
			if field.spec.Password {
				return field.input.Value()
			}
			return strings.TrimSpace(field.input.Value())
		}
	}
	return ""
}

// SetValue prefills the field named key
func (f *Form) SetValue(key, value string) {
	for i := range f.fields {
		if f.fields[i].spec.Key == key {
			f.fields[i].input.SetValue(value)
			f.fields[i].input.CursorEnd()
			return
		}
	}
}

// SetBusy marks the form as submitting; input is ignored while busy
func (f *Form) SetBusy(busy bool) {
	f.busy = busy
}

func (f Form) IsBusy() bool {
	return f.busy
}

// SetError shows err on the form. A ValidationError is spread over the
// fields it names; anything else becomes the general message.
func (f *Form) SetError(err error) {
	f.busy = false
	f.ClearErrors()
	if err == nil {
		return
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		known := make(map[string]bool, len(f.fields))
		for _, field := range f.fields {
			known[field.spec.Key] = true
		}
		var other []string
		for name, msg := range verr.Fields {
			if known[name] {
				f.errors[name] = msg
			} else {
				other = append(other, msg)
			}
		}
		f.message = strings.Join(other, " ")
		return
	}
	f.message = domain.UserMessage(err)
}

// FieldError returns the error shown under the field named key
func (f Form) FieldError(key string) string {
	return f.errors[key]
}

// Message returns the general error line
func (f Form) Message() string {
	return f.message
}

// ClearErrors removes every error line
func (f *Form) ClearErrors() {
	f.errors = map[string]string{}
	f.message = ""
}

// Update handles input events, returns (form, cmd, submitted)
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd, bool) {
	if !f.visible || f.busy {
		return f, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, FormKeys.Cancel):
			f.Hide()
			return f, nil, false
		case keyMsg.String() == "enter":
			if f.focus == len(f.fields)-1 {
				return f, nil, true
			}
			f.focusField(f.focus + 1)
			return f, nil, false
		case key.Matches(keyMsg, FormKeys.Submit):
			return f, nil, true
		case key.Matches(keyMsg, FormKeys.Next):
			f.focusField((f.focus + 1) % len(f.fields))
			return f, nil, false
		case key.Matches(keyMsg, FormKeys.Prev):
			f.focusField((f.focus - 1 + len(f.fields)) % len(f.fields))
			return f, nil, false
		}
	}

	if len(f.fields) == 0 {
		return f, nil, false
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd, false
}

func (f *Form) focusField(i int) {
	if len(f.fields) == 0 {
		return
	}
	f.focus = i
	for j := range f.fields {
		if j == i {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
}

// View renders the form modal
func (f Form) View() string {
	if !f.visible {
		return ""
	}

	var rows []string
	rows = append(rows, styles.ModalTitleStyle.Render(f.title))

	for i, field := range f.fields {
		label := styles.LabelStyle.Render(field.spec.Label)
		if i == f.focus {
			label = styles.FocusedLabelStyle.Render(field.spec.Label)
		}
		rows = append(rows, label, field.input.View())
		if msg := f.errors[field.spec.Key]; msg != "" {
			rows = append(rows, styles.FieldErrorStyle.Render(styles.Truncate(msg, f.width)))
		}
		rows = append(rows, "")
	}

	switch {
	case f.busy:
		rows = append(rows, styles.DimStyle.Render("Submitting..."))
	case f.message != "":
		rows = append(rows, styles.ErrorStyle.Width(f.width).Render(f.message))
	default:
		rows = append(rows, styles.HelpKeyStyle.Render("enter")+styles.HelpDescStyle.Render(" submit  ")+
			styles.HelpKeyStyle.Render("tab")+styles.HelpDescStyle.Render(" next  ")+
			styles.HelpKeyStyle.Render("esc")+styles.HelpDescStyle.Render(" cancel"))
	}

	return styles.ModalStyle.Width(f.width + 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
