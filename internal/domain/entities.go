package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Author is the public face of a user attached to posts and comments
type Author struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Headline  string `json:"headline,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// DisplayName falls back to the e-mail local part when no name is set
func (a Author) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if at := strings.IndexByte(a.Email, '@'); at > 0 {
		return a.Email[:at]
	}
	return "anonymous"
}

// Initials returns up to two uppercase initials for avatar placeholders
func (a Author) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(a.DisplayName()) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteString(strings.ToUpper(string(r)))
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}

// Post is an immutable snapshot of a blog post as served by the API.
// Content holds the HTML produced by the rich-text editor.
type Post struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Author       Author    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int       `json:"likes"`
	CommentCount int       `json:"comments"`
}

// Slug returns the "{id}-{title}" path segment used in post URLs
func (p Post) Slug() string {
	return MakeSlug(p.ID, p.Title)
}

// FormattedDate renders the creation date like "Jan 2, 2006"
func (p Post) FormattedDate() string {
	if p.CreatedAt.IsZero() {
		return ""
	}
	return p.CreatedAt.Format("Jan 2, 2006")
}

// TagLine joins the tags as "#go #tui"
func (p Post) TagLine() string {
	if len(p.Tags) == 0 {
		return ""
	}
	parts := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		parts[i] = "#" + t
	}
	return strings.Join(parts, " ")
}

// Stats renders the like/comment counters
func (p Post) Stats() string {
	return fmt.Sprintf("♥ %d  ✎ %d", p.LikeCount, p.CommentCount)
}

// Comment is a single comment on a post
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    Author    `json:"author"`

	// Pending marks an optimistic placeholder not yet confirmed by the server
	Pending bool `json:"-"`
}

// Profile is the signed-in user's own account
type Profile struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Headline  string `json:"headline,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Author converts the profile into the public author shape
func (p Profile) Author() Author {
	return Author{ID: p.ID, Name: p.Name, Email: p.Email, Headline: p.Headline, AvatarURL: p.AvatarURL}
}

// LikeResult is the server's answer to a like toggle.
// Confirmed is false when the server omitted the counter; LikedKnown is false
// when it omitted the liked flag.
type LikeResult struct {
	Likes      int
	Liked      bool
	Confirmed  bool
	LikedKnown bool
}

// Upload is a file attached to a multipart request
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Size returns the payload size in bytes
func (u *Upload) Size() int {
	if u == nil {
		return 0
	}
	return len(u.Data)
}

// PostDraft is the authoring payload for create and update
type PostDraft struct {
	Title   string
	Content string // HTML
	Tags    []string
	Image   *Upload // required on create, optional on update
}

// RegisterInput is the account creation payload
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// ProfileUpdate is the profile edit payload. Nil Avatar keeps the current one.
type ProfileUpdate struct {
	Name     string
	Headline string
	Avatar   *Upload
}

// PasswordChange is the password edit payload
type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

// Excerpt shortens plain text to max runes, appending "..." when cut
func Excerpt(plain string, max int) string {
	plain = strings.Join(strings.Fields(plain), " ")
	if max <= 0 || utf8.RuneCountInString(plain) <= max {
		return plain
	}
	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:max])) + "..."
}
