package components

import "github.com/charmbracelet/bubbles/key"

// ItemListKeyMap defines key bindings for item list navigation
type ItemListKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Home     key.Binding
	End      key.Binding
	HalfUp   key.Binding
	HalfDown key.Binding
	Escape   key.Binding
	Enter    key.Binding
	Filter   key.Binding
}

// DefaultItemListKeyMap returns the default item list key bindings
func DefaultItemListKeyMap() ItemListKeyMap {
	return ItemListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		HalfUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("C-u", "half page up"),
		),
		HalfDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "half page down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "accept filter"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter page"),
		),
	}
}

// FormKeyMap defines key bindings shared by forms and prompts
type FormKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

// DefaultFormKeyMap returns the default form key bindings
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter", "ctrl+s"),
			key.WithHelp("enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// PromptKeyMap defines key bindings for the single-line prompt
type PromptKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Complete key.Binding
}

// DefaultPromptKeyMap returns the default prompt key bindings
func DefaultPromptKeyMap() PromptKeyMap {
	return PromptKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑/C-p", "previous suggestion"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓/C-n", "next suggestion"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete"),
		),
	}
}

// Package-level key map instances
var (
	ItemListKeys = DefaultItemListKeyMap()
	FormKeys     = DefaultFormKeyMap()
	PromptKeys   = DefaultPromptKeyMap()
)
