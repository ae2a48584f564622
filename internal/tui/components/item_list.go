package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Spinner frames for loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Layout constants for item lists
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Each row is a title line plus a description line
	rowLines = 2

	// title, scroll header, scroll footer, pager
	chromeLines = 4
)

// ItemList is a scrollable, filterable list of posts, comments or users.
// The filter only narrows the items already loaded; it never fetches.
type ItemList struct {
	items []domain.ListItem

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title string

	// Server-side pagination shown under the rows
	pager paginator.Model
	paged bool

	// Placeholder state
	loading      bool
	spinnerFrame int
	message      string
	messageIsErr bool

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items
}

// NewItemList creates an empty list with the given title
func NewItemList(title string) *ItemList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	p := paginator.New()
	p.Type = paginator.Arabic
	p.ArabicFormat = "page %d of %d"

	return &ItemList{
		title:       title,
		filterInput: ti,
		pager:       p,
	}
}

// NewPostList wraps posts into a list
func NewPostList(title string, posts []domain.Post) *ItemList {
	l := NewItemList(title)
	l.SetItems(PostItems(posts))
	return l
}

// PostItems converts posts to list items
func PostItems(posts []domain.Post) []domain.ListItem {
	items := make([]domain.ListItem, len(posts))
	for i := range posts {
		items[i] = posts[i]
	}
	return items
}

// CommentItems converts comments to list items
func CommentItems(comments []domain.Comment) []domain.ListItem {
	items := make([]domain.ListItem, len(comments))
	for i := range comments {
		items[i] = comments[i]
	}
	return items
}

// AuthorItems converts authors to list items
func AuthorItems(authors []domain.Author) []domain.ListItem {
	items := make([]domain.ListItem, len(authors))
	for i := range authors {
		items[i] = authors[i]
	}
	return items
}

// Update handles navigation and filter typing. It only reacts while focused.
func (l *ItemList) Update(msg tea.Msg) tea.Cmd {
	if !l.focused {
		return nil
	}
	keyMsg, isKey := msg.(tea.KeyMsg)

	if l.filterActive && l.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, ItemListKeys.Escape):
				l.clearFilter()
				return nil
			case key.Matches(keyMsg, ItemListKeys.Enter):
				l.filterInput.Blur()
				return nil
			case keyMsg.String() == "backspace" && l.filterInput.Value() == "":
				l.clearFilter()
				return nil
			}
		}
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd
	}

	if !isKey {
		return nil
	}

	if l.filterActive {
		switch {
		case key.Matches(keyMsg, ItemListKeys.Escape):
			l.clearFilter()
			return nil
		case key.Matches(keyMsg, ItemListKeys.Filter):
			l.filterInput.Focus()
			return nil
		}
	}

	count := l.Len()
	if count == 0 {
		return nil
	}

	switch {
	case key.Matches(keyMsg, ItemListKeys.Down):
		if l.cursor < count-1 {
			l.cursor++
			l.ensureVisible()
		}
	case key.Matches(keyMsg, ItemListKeys.Up):
		if l.cursor > 0 {
			l.cursor--
			l.ensureVisible()
		}
	case key.Matches(keyMsg, ItemListKeys.Home):
		l.cursor = 0
		l.offset = 0
	case key.Matches(keyMsg, ItemListKeys.End):
		l.cursor = count - 1
		l.ensureVisible()
	case key.Matches(keyMsg, ItemListKeys.HalfDown):
		l.cursor = min(l.cursor+max(l.maxVisible/2, 1), count-1)
		l.ensureVisible()
	case key.Matches(keyMsg, ItemListKeys.HalfUp):
		l.cursor = max(l.cursor-max(l.maxVisible/2, 1), 0)
		l.ensureVisible()
	}
	return nil
}

// View renders the bordered list
func (l *ItemList) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(l.width-frameW, 0)).
		Height(max(l.height-frameH, 0)).
		Render(l.renderContent())
}

func (l *ItemList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

func (l *ItemList) SetFocused(focused bool) {
	l.focused = focused
}

func (l *ItemList) IsFocused() bool {
	return l.focused
}

func (l *ItemList) Title() string {
	return l.title
}

func (l *ItemList) SetTitle(title string) {
	l.title = title
}

// SetItems replaces the rows. The cursor stays where it was, clamped to the
// new length, so a background refresh does not jump the selection.
func (l *ItemList) SetItems(items []domain.ListItem) {
	l.items = items
	l.loading = false
	l.message = ""
	if l.filterActive {
		l.applyFilter()
	}
	l.SetSelectedIndex(l.cursor)
}

// ResetCursor moves the selection to the first row
func (l *ItemList) ResetCursor() {
	l.cursor = 0
	l.offset = 0
}

// SetPages shows "page x of y" under the rows. last <= 1 hides it.
func (l *ItemList) SetPages(page, last int) {
	l.paged = last > 1
	l.pager.TotalPages = max(last, 1)
	l.pager.Page = min(max(page-1, 0), max(last-1, 0))
}

// SetLoading shows a spinner instead of rows while there is nothing to show
func (l *ItemList) SetLoading(loading bool) {
	l.loading = loading
}

func (l *ItemList) IsLoading() bool {
	return l.loading
}

// SetSpinnerFrame updates the spinner animation frame
func (l *ItemList) SetSpinnerFrame(frame int) {
	l.spinnerFrame = frame
}

// SetMessage replaces the "No items" placeholder
func (l *ItemList) SetMessage(msg string, isErr bool) {
	l.message = msg
	l.messageIsErr = isErr
}

// Selected returns the item under the cursor, or nil
func (l *ItemList) Selected() domain.ListItem {
	count := l.Len()
	if count == 0 || l.cursor >= count {
		return nil
	}
	return l.items[l.mapIndex(l.cursor)]
}

// SelectedPost returns the selected row when it is a post
func (l *ItemList) SelectedPost() *domain.Post {
	if p, ok := l.Selected().(domain.Post); ok {
		return &p
	}
	return nil
}

func (l *ItemList) SelectedIndex() int {
	return l.cursor
}

func (l *ItemList) SetSelectedIndex(idx int) {
	last := l.Len() - 1
	if last < 0 {
		l.cursor = 0
		l.offset = 0
		return
	}
	l.cursor = min(max(idx, 0), last)
	l.ensureVisible()
}

// Len returns the number of visible rows after filtering
func (l *ItemList) Len() int {
	if l.filteredIdx != nil {
		return len(l.filteredIdx)
	}
	return len(l.items)
}

func (l *ItemList) IsEmpty() bool {
	return l.Len() == 0
}

// ToggleFilter activates the filter input
func (l *ItemList) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (l *ItemList) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (l *ItemList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (l *ItemList) ClearFilter() {
	l.clearFilter()
}

// Internal methods

func (l *ItemList) recalcMaxVisible() {
	interior := l.height - BorderHeight - chromeLines
	if l.filterActive {
		interior--
	}
	l.maxVisible = max(interior/rowLines, 1)
}

func (l *ItemList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *ItemList) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filteredIdx = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
}

func (l *ItemList) applyFilter() {
	query := l.filterInput.Value()
	l.filterQuery = query

	if query == "" {
		l.filteredIdx = nil
		return
	}

	lowerTitles := make([]string, len(l.items))
	for i, item := range l.items {
		lowerTitles[i] = strings.ToLower(item.GetTitle())
	}

	matches := fuzzy.Find(strings.ToLower(query), lowerTitles)

	l.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		l.filteredIdx[i] = match.Index
	}

	l.cursor = 0
	l.offset = 0
}

func (l *ItemList) mapIndex(i int) int {
	if l.filteredIdx != nil && i < len(l.filteredIdx) {
		return l.filteredIdx[i]
	}
	return i
}

// Rendering

func (l *ItemList) renderContent() string {
	itemWidth := max(l.width-BorderWidth, 10)

	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	count := l.Len()
	if count == 0 {
		var placeholder string
		switch {
		case l.loading:
			spinner := spinnerFrames[l.spinnerFrame%len(spinnerFrames)]
			placeholder = styles.DimStyle.Render(spinner + " Loading...")
		case l.message != "" && l.messageIsErr:
			placeholder = styles.ErrorStyle.Render(l.message)
		case l.filterActive && l.filterQuery != "":
			placeholder = styles.DimStyle.Render("No matches")
		case l.message != "":
			placeholder = styles.DimStyle.Render(l.message)
		default:
			placeholder = styles.DimStyle.Render("No items")
		}
		content := titleLine + "\n \n" + placeholder + "\n "
		if l.filterActive {
			content += "\n" + l.renderFilterBar()
		}
		return content
	}

	end := min(l.offset+l.maxVisible, count)

	var lines []string
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderItem(l.items[l.mapIndex(i)], i == l.cursor, itemWidth))
	}

	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer

	if l.paged {
		content += "\n" + styles.DimStyle.Render(l.pager.View())
	}
	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}
	if l.message != "" && l.messageIsErr {
		content += "\n" + styles.ErrorStyle.Render(styles.Truncate(l.message, itemWidth))
	}
	return content
}

func (l *ItemList) renderItem(item domain.ListItem, selected bool, width int) string {
	var markerFg lipgloss.Color
	marker := " "
	switch it := item.(type) {
	case domain.Post:
		marker = "•"
		markerFg = styles.Ink
	case domain.Comment:
		marker = "›"
		markerFg = styles.LightGray
		if it.Pending {
			markerFg = styles.DimGray
		}
	case domain.Author:
		marker = "@"
		markerFg = styles.Blue
	}

	// width - marker(1) - space(1) - margins(2)
	available := max(width-4, 5)
	title := styles.Truncate(strings.Join(strings.Fields(item.GetTitle()), " "), available)
	desc := styles.Truncate(item.GetDescription(), available)

	dim := styles.DimGray
	top := styles.RenderListRow([]styles.RowPart{
		{Text: marker, Foreground: &markerFg},
		{Text: " " + title},
	}, selected, width)
	bottom := styles.RenderListRow([]styles.RowPart{
		{Text: "  " + desc, Foreground: &dim},
	}, selected, width)
	return top + "\n" + bottom
}

func (l *ItemList) renderFilterBar() string {
	countStr := ""
	if l.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.Len(), len(l.items)))
	}
	return l.filterInput.View() + countStr
}
