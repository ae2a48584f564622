package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Back     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Actions
	Quit     key.Binding
	Help     key.Binding
	Escape   key.Binding
	Filter   key.Binding
	Search   key.Binding
	Open     key.Binding
	Refresh  key.Binding
	Like     key.Binding
	Comment  key.Binding
	Comments key.Binding
	Other    key.Binding
	Compose  key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Stats    key.Binding
	Login    key.Binding
	Register key.Binding
	Logout   key.Binding
	Profile  key.Binding
	Password key.Binding
	Image    key.Binding
	Format   key.Binding
	Save     key.Binding

	// Confirmations
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter", "read post"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "h", "left", "backspace"),
			key.WithHelp("esc/h", "back"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next feed"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "previous feed"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "n", "pgdown"),
			key.WithHelp("]/n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "p", "pgup"),
			key.WithHelp("[/p", "previous page"),
		),

		// Actions
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close/cancel"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter page"),
		),
		Search: key.NewBinding(
			key.WithKeys("s", "f"),
			key.WithHelp("s", "search posts"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open by id/slug/url"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Like: key.NewBinding(
			key.WithKeys("L", " "),
			key.WithHelp("space/L", "like"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		Comments: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "all comments"),
		),
		Other: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "read other post"),
		),
		Compose: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "write post"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit post"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete post"),
		),
		Stats: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "likes & comments"),
		),
		Login: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "log in"),
		),
		Register: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "sign up"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "log out"),
		),
		Profile: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "profile"),
		),
		Password: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "change password"),
		),
		Image: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "attach image"),
		),
		Format: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("C-f", "format line"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "publish"),
		),

		// Confirmations
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// Keys is the global key map instance
var Keys = DefaultKeyMap()

// ShortHelp implements help.KeyMap for the footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.NextTab, k.NextPage, k.Search, k.Compose, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap for the help screen
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back, k.NextTab, k.PrevTab, k.NextPage, k.PrevPage},
		{k.Filter, k.Search, k.Open, k.Refresh, k.Like, k.Comment, k.Comments, k.Other},
		{k.Compose, k.Edit, k.Delete, k.Stats, k.Image, k.Format, k.Save},
		{k.Login, k.Register, k.Logout, k.Profile, k.Password, k.Help, k.Quit},
	}
}
