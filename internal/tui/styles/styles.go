package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Color palette
var (
	Ink        = lipgloss.Color("#6D5BD0")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Rose       = lipgloss.Color("#F472B6")
	Blue       = lipgloss.Color("#3B82F6")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Ink)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Ink)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Ink).
			Padding(0, 1)
)

// Tabs
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Ink).
			Bold(true).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// Post rendering
var (
	TagStyle = lipgloss.NewStyle().
			Foreground(Blue)

	LikedStyle = lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true)

	PendingStyle = lipgloss.NewStyle().
			Foreground(DimGray).
			Italic(true)

	QuoteStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(DimGray).
			PaddingLeft(1)

	HeadingStyle = lipgloss.NewStyle().
			Foreground(Ink).
			Bold(true)

	LinkStyle = lipgloss.NewStyle().
			Foreground(Blue).
			Underline(true)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Ink).
			Padding(1, 2).
			Background(SlateDark)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)
)

// Form styles
var (
	LabelStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(Ink).
				Bold(true)

	FieldErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Italic(true)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Ink)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Badge styles
var (
	BadgeStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Ink).
			Padding(0, 1)

	DimBadgeStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateLight).
			Padding(0, 1)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Ink)
)

// Filter styles
var (
	FilterStyle = lipgloss.NewStyle().
			Foreground(Ink)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Ink).
				Bold(true)
)

// Helper functions

// Truncate shortens s to the given display width with an ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return ansi.Truncate(s, width, "")
	}
	return ansi.Truncate(s, width, "...")
}

// Pad pads a string to the given display width
func Pad(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return Truncate(s, width)
	}
	return s + spaces(width-w)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// RenderListRow renders a complete list row with uniform background when selected.
// This function styles each part explicitly to avoid ANSI reset code issues.
// parts is a slice of {text, fgColor} pairs. Use nil for default foreground.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	bg := SlateLight
	defaultFg := LightGray
	selectedFg := White

	var result string
	visibleLen := 0

	for _, part := range parts {
		style := lipgloss.NewStyle()
		if part.Foreground != nil {
			style = style.Foreground(*part.Foreground)
		} else if selected {
			style = style.Foreground(selectedFg)
		} else {
			style = style.Foreground(defaultFg)
		}
		if selected {
			style = style.Background(bg)
		}
		result += style.Render(part.Text)
		visibleLen += lipgloss.Width(part.Text)
	}

	// Add padding to fill width (subtract 2 for left/right margin)
	paddingNeeded := width - visibleLen - 2
	if paddingNeeded > 0 {
		padStyle := lipgloss.NewStyle()
		if selected {
			padStyle = padStyle.Background(bg)
		}
		result += padStyle.Render(spaces(paddingNeeded))
	}

	marginStyle := lipgloss.NewStyle()
	if selected {
		marginStyle = marginStyle.Background(bg)
	}
	margin := marginStyle.Render(" ")

	return margin + result + margin
}

// RowPart represents a part of a row with optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
}
