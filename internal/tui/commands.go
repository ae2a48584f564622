package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/engagement"
	"github.com/mmcdole/quill/internal/query"
	"github.com/mmcdole/quill/internal/service"
)

// requestTimeout bounds one command; the HTTP client has its own timeout too
const requestTimeout = 30 * time.Second

// Command factories for async operations

// LoadProfileCmd loads the signed-in user's profile. Logged out yields a nil profile.
func LoadProfileCmd(svc *service.AccountService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		profile, err := svc.Me(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotLoggedIn) || errors.Is(err, domain.ErrUnauthorized) {
				return ProfileLoadedMsg{}
			}
			return ErrMsg{Err: err, Context: "loading profile"}
		}
		return ProfileLoadedMsg{Profile: profile}
	}
}

// OpenPostCmd loads the post named by an id, slug or URL
func OpenPostCmd(svc *service.PostService, ref string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		post, err := svc.Open(ctx, ref)
		if err != nil {
			return ErrMsg{Err: err, Context: "opening post"}
		}
		return PostLoadedMsg{Post: post}
	}
}

// LoadPostCmd reloads one post
func LoadPostCmd(svc *service.PostService, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		post, err := svc.Get(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading post"}
		}
		return PostLoadedMsg{Post: post}
	}
}

// LoadRelatedCmd finds another post to suggest under a detail screen.
// Failures only lose the suggestion.
func LoadRelatedCmd(svc *service.PostService, postID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		other, _ := svc.Related(ctx, postID)
		return RelatedLoadedMsg{PostID: postID, Other: other}
	}
}

// LoadCommentsCmd fills a thread
func LoadCommentsCmd(thread *engagement.CommentThread) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := thread.Load(ctx)
		return CommentsLoadedMsg{PostID: thread.PostID(), Err: err}
	}
}

// SendLikeCmd sends a toggle already applied locally by Begin
func SendLikeCmd(toggle *engagement.LikeToggle, pending engagement.LikePending) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		res, err := toggle.Send(ctx)
		return LikeSentMsg{PostID: toggle.PostID(), Pending: pending, Result: res, Err: err}
	}
}

// SendCommentCmd sends a comment whose placeholder is already shown
func SendCommentCmd(thread *engagement.CommentThread, pending engagement.CommentPending) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		created, err := thread.Send(ctx, pending)
		return CommentSentMsg{PostID: thread.PostID(), Pending: pending, Created: created, Err: err}
	}
}

// LoginCmd signs in
func LoginCmd(svc *service.AccountService, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return LoginResultMsg{Err: svc.Login(ctx, email, password)}
	}
}

// RegisterCmd creates an account
func RegisterCmd(svc *service.AccountService, form service.RegisterForm) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return RegisterResultMsg{Email: form.Email, Err: svc.Register(ctx, form)}
	}
}

// LogoutCmd clears the credential and every cached page
func LogoutCmd(svc *service.AccountService) tea.Cmd {
	return func() tea.Msg {
		return LoggedOutMsg{Err: svc.Logout()}
	}
}

// SavePostCmd creates a post when id is 0, otherwise updates it
func SavePostCmd(svc *service.PostService, id int64, form service.PostForm) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if id == 0 {
			post, err := svc.Create(ctx, form)
			return PostSavedMsg{Post: post, Created: true, Err: err}
		}
		post, err := svc.Update(ctx, id, form)
		return PostSavedMsg{Post: post, Err: err}
	}
}

// DeletePostCmd removes a post
func DeletePostCmd(svc *service.PostService, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return PostDeletedMsg{PostID: id, Err: svc.Delete(ctx, id)}
	}
}

// LoadImageCmd reads an image file for the form named target
func LoadImageCmd(target, path string) tea.Cmd {
	return func() tea.Msg {
		upload, err := service.LoadImage(path)
		return ImageLoadedMsg{Target: target, Upload: upload, Err: err}
	}
}

// SaveProfileCmd submits the profile form
func SaveProfileCmd(svc *service.ProfileService, update domain.ProfileUpdate) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		profile, err := svc.UpdateProfile(ctx, update)
		return ProfileSavedMsg{Profile: profile, Err: err}
	}
}

// ChangePasswordCmd submits the password form
func ChangePasswordCmd(svc *service.ProfileService, change domain.PasswordChange) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msg, err := svc.ChangePassword(ctx, change)
		return PasswordChangedMsg{Message: msg, Err: err}
	}
}

// LoadStatsCmd loads who liked and commented on a post
func LoadStatsCmd(svc *service.ProfileService, postID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		stats, err := svc.Stats(ctx, postID)
		return StatsLoadedMsg{PostID: postID, Stats: stats, Err: err}
	}
}

// WaitPageCmd reports when key has no fetch in flight
func WaitPageCmd(cache PageCache, key query.Key) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		// A failed or timed-out wait still resyncs; fetch errors live on the entry
		_, _ = cache.Wait(ctx, key)
		return PageSettledMsg{Key: key}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
