package tui

import (
	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/engagement"
	"github.com/mmcdole/quill/internal/query"
	"github.com/mmcdole/quill/internal/service"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// CacheUpdatedMsg signals that a cached page changed
type CacheUpdatedMsg struct {
	Key query.Key
}

// PageSettledMsg signals that a page the UI waited on has no fetch in flight
type PageSettledMsg struct {
	Key query.Key
}

// AuthChangedMsg signals a sign-in or sign-out
type AuthChangedMsg struct {
	LoggedIn bool
}

// ProfileLoadedMsg carries the signed-in user's profile
type ProfileLoadedMsg struct {
	Profile *domain.Profile
}

// PostLoadedMsg carries the post opened in the detail screen
type PostLoadedMsg struct {
	Post *domain.Post
}

// RelatedLoadedMsg carries the "other post" suggestion for a detail screen
type RelatedLoadedMsg struct {
	PostID int64
	Other  *domain.Post
}

// CommentsLoadedMsg signals that a thread finished loading
type CommentsLoadedMsg struct {
	PostID int64
	Err    error
}

// LikeSentMsg carries the server's answer to a like toggle
type LikeSentMsg struct {
	PostID  int64
	Pending engagement.LikePending
	Result  domain.LikeResult
	Err     error
}

// CommentSentMsg carries the server's answer to a new comment
type CommentSentMsg struct {
	PostID  int64
	Pending engagement.CommentPending
	Created *domain.Comment
	Err     error
}

// LoginResultMsg is the outcome of the login form
type LoginResultMsg struct {
	Err error
}

// RegisterResultMsg is the outcome of the sign-up form
type RegisterResultMsg struct {
	Email string
	Err   error
}

// PostSavedMsg is the outcome of a create or update
type PostSavedMsg struct {
	Post    *domain.Post
	Created bool
	Err     error
}

// PostDeletedMsg is the outcome of a delete
type PostDeletedMsg struct {
	PostID int64
	Err    error
}

// ImageLoadedMsg carries an image read from disk for the compose or profile form
type ImageLoadedMsg struct {
	Target string
	Upload *domain.Upload
	Err    error
}

// ProfileSavedMsg is the outcome of the profile form
type ProfileSavedMsg struct {
	Profile *domain.Profile
	Err     error
}

// PasswordChangedMsg is the outcome of the password form
type PasswordChangedMsg struct {
	Message string
	Err     error
}

// StatsLoadedMsg carries the likers and comments of one of the user's posts
type StatsLoadedMsg struct {
	PostID int64
	Stats  service.PostStats
	Err    error
}

// LoggedOutMsg signals that the credential was cleared
type LoggedOutMsg struct {
	Err error
}

// StatusMsg shows a transient message in the footer
type StatusMsg struct {
	Text  string
	IsErr bool
}

// ClearStatusMsg clears the footer message
type ClearStatusMsg struct{}

// TickMsg drives the spinner animation
type TickMsg struct{}
