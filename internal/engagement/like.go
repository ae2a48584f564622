// Package engagement holds the optimistic like and comment state of an open post.
package engagement

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/quill/internal/domain"
)

// AuthState reports whether a credential is present
type AuthState interface {
	IsLoggedIn() bool
}

// LikePending captures the values a failed toggle rolls back to
type LikePending struct {
	likes int
	liked bool
}

// LikeToggle is the like counter of one post with optimistic updates.
// Only one toggle may be in flight at a time.
type LikeToggle struct {
	repo   domain.LikeRepository
	auth   AuthState
	postID int64
	logger *slog.Logger

	mu       sync.Mutex
	likes    int
	liked    bool
	inFlight bool
	err      error
}

func NewLikeToggle(repo domain.LikeRepository, auth AuthState, postID int64, likes int, liked bool, logger *slog.Logger) *LikeToggle {
	if logger == nil {
		logger = slog.Default()
	}
	return &LikeToggle{
		repo:   repo,
		auth:   auth,
		postID: postID,
		logger: logger,
		likes:  max(likes, 0),
		liked:  liked,
	}
}

// Begin applies the tentative toggle. It refuses without touching state when
// signed out or while another toggle is in flight.
func (t *LikeToggle) Begin() (LikePending, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.auth == nil || !t.auth.IsLoggedIn() {
		return LikePending{}, domain.ErrNotLoggedIn
	}
	if t.inFlight {
		return LikePending{}, domain.ErrBusy
	}

	p := LikePending{likes: t.likes, liked: t.liked}
	if t.liked {
		t.likes = max(t.likes-1, 0)
	} else {
		t.likes++
	}
	t.liked = !t.liked
	t.inFlight = true
	t.err = nil
	return p, nil
}

// Send performs the network toggle
func (t *LikeToggle) Send(ctx context.Context) (domain.LikeResult, error) {
	return t.repo.ToggleLike(ctx, t.postID)
}

// Settle applies the server answer. Confirmed counts replace the tentative
// ones; a failure restores the values captured by Begin.
func (t *LikeToggle) Settle(p LikePending, res domain.LikeResult, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight = false

	if err != nil {
		t.likes, t.liked = p.likes, p.liked
		t.err = err
		t.logger.Warn("like toggle failed", "postID", t.postID, "error", err)
		return
	}
	if res.Confirmed {
		t.likes = max(res.Likes, 0)
	}
	if res.LikedKnown {
		t.liked = res.Liked
	}
	t.logger.Debug("like toggled", "postID", t.postID, "likes", t.likes, "liked", t.liked)
}

// Toggle runs Begin, Send and Settle in sequence
func (t *LikeToggle) Toggle(ctx context.Context) error {
	p, err := t.Begin()
	if err != nil {
		return err
	}
	res, err := t.Send(ctx)
	t.Settle(p, res, err)
	return err
}

func (t *LikeToggle) PostID() int64 { return t.postID }

func (t *LikeToggle) Likes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.likes
}

func (t *LikeToggle) Liked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.liked
}

func (t *LikeToggle) InFlight() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight
}

// Err returns the error of the last failed toggle
func (t *LikeToggle) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
