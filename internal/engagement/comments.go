package engagement

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/quill/internal/domain"
)

// PreviewSize is the number of comments shown under a post
const PreviewSize = 3

// CommentPending identifies an optimistic placeholder
type CommentPending struct {
	tempID int64
}

// CommentThread is the comment list of one post with optimistic submits
type CommentThread struct {
	repo   domain.CommentRepository
	auth   AuthState
	postID int64
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	comments   []domain.Comment
	count      int
	loaded     bool
	submitting bool
	nextTemp   int64
	err        error
}

// NewCommentThread creates a thread; count seeds the counter until Load
func NewCommentThread(repo domain.CommentRepository, auth AuthState, postID int64, count int, logger *slog.Logger) *CommentThread {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentThread{
		repo:   repo,
		auth:   auth,
		postID: postID,
		logger: logger,
		now:    time.Now,
		count:  max(count, 0),
	}
}

// Load fetches the comments, newest first
func (t *CommentThread) Load(ctx context.Context) error {
	comments, err := t.repo.Comments(ctx, t.postID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.err = err
		t.logger.Error("failed to load comments", "postID", t.postID, "error", err)
		return err
	}
	sortNewestFirst(comments)
	t.setLocked(comments)
	t.err = nil
	return nil
}

// Begin validates text and inserts a pending placeholder at the top
func (t *CommentThread) Begin(text string, author domain.Author) (CommentPending, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return CommentPending{}, domain.NewValidationError("content", "Comment cannot be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.auth == nil || !t.auth.IsLoggedIn() {
		return CommentPending{}, domain.ErrNotLoggedIn
	}
	if t.submitting {
		return CommentPending{}, domain.ErrBusy
	}

	t.nextTemp--
	placeholder := domain.Comment{
		ID:        t.nextTemp,
		PostID:    t.postID,
		Content:   text,
		CreatedAt: t.now(),
		Author:    author,
		Pending:   true,
	}
	t.comments = append([]domain.Comment{placeholder}, t.comments...)
	t.count++
	t.submitting = true
	t.err = nil
	return CommentPending{tempID: placeholder.ID}, nil
}

// Send posts the comment text of the pending placeholder
func (t *CommentThread) Send(ctx context.Context, p CommentPending) (*domain.Comment, error) {
	t.mu.Lock()
	text := ""
	for _, c := range t.comments {
		if c.ID == p.tempID {
			text = c.Content
			break
		}
	}
	t.mu.Unlock()
	return t.repo.AddComment(ctx, t.postID, text)
}

// Settle resolves a placeholder. It reports true when the server did not echo
// the comment and the list should be reloaded; the placeholder is dropped
// then, while the count keeps the accepted comment.
func (t *CommentThread) Settle(p CommentPending, created *domain.Comment, err error) (reload bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.submitting = false

	idx := -1
	for i, c := range t.comments {
		if c.ID == p.tempID {
			idx = i
			break
		}
	}

	if err != nil {
		if idx >= 0 {
			t.comments = append(t.comments[:idx], t.comments[idx+1:]...)
			t.count = max(t.count-1, 0)
		}
		t.err = err
		t.logger.Warn("comment submit failed", "postID", t.postID, "error", err)
		return false
	}

	if created == nil {
		if idx >= 0 {
			t.comments = append(t.comments[:idx], t.comments[idx+1:]...)
		}
		t.logger.Debug("comment accepted without echo, reloading", "postID", t.postID)
		return true
	}
	if idx >= 0 {
		t.comments[idx] = *created
	} else {
		t.comments = append([]domain.Comment{*created}, t.comments...)
		t.count++
	}
	return false
}

// Submit runs Begin, Send and Settle, reloading when the server gave no echo
func (t *CommentThread) Submit(ctx context.Context, text string, author domain.Author) error {
	p, err := t.Begin(text, author)
	if err != nil {
		return err
	}
	created, err := t.Send(ctx, p)
	if reload := t.Settle(p, created, err); reload {
		return t.Load(ctx)
	}
	return err
}

// Comments returns a copy of the thread, newest first
func (t *CommentThread) Comments() []domain.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Comment(nil), t.comments...)
}

// Preview returns the first n comments
func (t *CommentThread) Preview(n int) []domain.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > len(t.comments) {
		n = len(t.comments)
	}
	if n <= 0 {
		return nil
	}
	return append([]domain.Comment(nil), t.comments[:n]...)
}

func (t *CommentThread) PostID() int64 { return t.postID }

func (t *CommentThread) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func (t *CommentThread) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

func (t *CommentThread) Submitting() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.submitting
}

func (t *CommentThread) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *CommentThread) setLocked(comments []domain.Comment) {
	t.comments = comments
	t.count = len(comments)
	t.loaded = true
}

func sortNewestFirst(comments []domain.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
}
