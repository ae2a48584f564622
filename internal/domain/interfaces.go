package domain

import (
	"strconv"
)

// ListItem is the polymorphic interface for rows shown in list panes.
// Post, Comment and Author implement it so one list component renders all three.
type ListItem interface {
	// GetID returns the unique identifier for this item
	GetID() string

	// GetTitle returns the primary line
	GetTitle() string

	// GetDescription returns the secondary line (author, date, counters)
	GetDescription() string

	// GetItemType returns "post", "comment" or "user"
	GetItemType() string
}

func (p Post) GetID() string       { return strconv.FormatInt(p.ID, 10) }
func (p Post) GetTitle() string    { return p.Title }
func (p Post) GetItemType() string { return "post" }
func (p Post) GetDescription() string {
	desc := p.Author.DisplayName()
	if d := p.FormattedDate(); d != "" {
		desc += " · " + d
	}
	return desc + " · " + p.Stats()
}

func (c Comment) GetID() string       { return strconv.FormatInt(c.ID, 10) }
func (c Comment) GetTitle() string    { return c.Content }
func (c Comment) GetItemType() string { return "comment" }
func (c Comment) GetDescription() string {
	desc := c.Author.DisplayName()
	if !c.CreatedAt.IsZero() {
		desc += " · " + c.CreatedAt.Format("Jan 2, 15:04")
	}
	if c.Pending {
		desc += " · sending…"
	}
	return desc
}

func (a Author) GetID() string          { return strconv.FormatInt(a.ID, 10) }
func (a Author) GetTitle() string       { return a.DisplayName() }
func (a Author) GetDescription() string { return a.Headline }
func (a Author) GetItemType() string    { return "user" }
