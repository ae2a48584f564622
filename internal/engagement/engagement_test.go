package engagement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/quill/internal/domain"
)

type loggedIn bool

func (l loggedIn) IsLoggedIn() bool { return bool(l) }

type fakeLikes struct {
	calls  int
	result domain.LikeResult
	err    error
}

func (f *fakeLikes) ToggleLike(context.Context, int64) (domain.LikeResult, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeLikes) Likes(context.Context, int64) ([]domain.Author, error) { return nil, nil }

func TestLikeToggleUsesConfirmedCount(t *testing.T) {
	repo := &fakeLikes{result: domain.LikeResult{Likes: 10, Liked: true, Confirmed: true, LikedKnown: true}}
	toggle := NewLikeToggle(repo, loggedIn(true), 7, 4, false, nil)

	require.NoError(t, toggle.Toggle(context.Background()))
	assert.Equal(t, 10, toggle.Likes())
	assert.True(t, toggle.Liked())
	assert.False(t, toggle.InFlight())
}

func TestLikeToggleKeepsTentativeCountWhenServerOmitsIt(t *testing.T) {
	repo := &fakeLikes{}
	toggle := NewLikeToggle(repo, loggedIn(true), 7, 4, true, nil)

	require.NoError(t, toggle.Toggle(context.Background()))
	assert.Equal(t, 3, toggle.Likes())
	assert.False(t, toggle.Liked())
}

func TestLikeToggleRollsBackOnFailure(t *testing.T) {
	repo := &fakeLikes{err: errors.New("offline")}
	toggle := NewLikeToggle(repo, loggedIn(true), 7, 4, false, nil)

	p, err := toggle.Begin()
	require.NoError(t, err)
	assert.Equal(t, 5, toggle.Likes(), "tentative count is visible immediately")
	assert.True(t, toggle.Liked())

	res, err := toggle.Send(context.Background())
	toggle.Settle(p, res, err)

	assert.Equal(t, 4, toggle.Likes())
	assert.False(t, toggle.Liked())
	assert.EqualError(t, toggle.Err(), "offline")
}

func TestLikeToggleNeverGoesNegative(t *testing.T) {
	toggle := NewLikeToggle(&fakeLikes{}, loggedIn(true), 7, 0, true, nil)
	_, err := toggle.Begin()
	require.NoError(t, err)
	assert.Equal(t, 0, toggle.Likes())
}

func TestLikeToggleRefusals(t *testing.T) {
	repo := &fakeLikes{}

	out := NewLikeToggle(repo, loggedIn(false), 7, 4, false, nil)
	assert.ErrorIs(t, out.Toggle(context.Background()), domain.ErrNotLoggedIn)
	assert.Equal(t, 4, out.Likes())

	in := NewLikeToggle(repo, loggedIn(true), 7, 4, false, nil)
	_, err := in.Begin()
	require.NoError(t, err)
	_, err = in.Begin()
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, 5, in.Likes())

	assert.Equal(t, 0, repo.calls)
}

type fakeComments struct {
	list    []domain.Comment
	created *domain.Comment
	addErr  error
	loadErr error
	loads   int
	added   []string
}

func (f *fakeComments) Comments(context.Context, int64) ([]domain.Comment, error) {
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]domain.Comment(nil), f.list...), nil
}

func (f *fakeComments) AddComment(_ context.Context, _ int64, content string) (*domain.Comment, error) {
	f.added = append(f.added, content)
	return f.created, f.addErr
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func comment(id int64, ago time.Duration) domain.Comment {
	return domain.Comment{ID: id, PostID: 7, Content: "c", CreatedAt: base.Add(-ago)}
}

func TestLoadSortsNewestFirst(t *testing.T) {
	repo := &fakeComments{list: []domain.Comment{comment(1, 3*time.Hour), comment(2, time.Hour), comment(3, 2*time.Hour)}}
	thread := NewCommentThread(repo, loggedIn(true), 7, 0, nil)

	require.NoError(t, thread.Load(context.Background()))
	ids := []int64{}
	for _, c := range thread.Comments() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{2, 3, 1}, ids)
	assert.Equal(t, 3, thread.Count())
	assert.Len(t, thread.Preview(PreviewSize), 3)
	assert.Len(t, thread.Preview(2), 2)
}

func TestSubmitRejectsBlankText(t *testing.T) {
	repo := &fakeComments{}
	thread := NewCommentThread(repo, loggedIn(true), 7, 0, nil)

	err := thread.Submit(context.Background(), "  \n ", domain.Author{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Field("content"))
	assert.Empty(t, repo.added)
}

func TestSubmitRequiresLogin(t *testing.T) {
	repo := &fakeComments{}
	thread := NewCommentThread(repo, loggedIn(false), 7, 0, nil)
	assert.ErrorIs(t, thread.Submit(context.Background(), "hi", domain.Author{}), domain.ErrNotLoggedIn)
	assert.Empty(t, repo.added)
}

func TestSubmitReplacesPlaceholder(t *testing.T) {
	created := comment(99, 0)
	repo := &fakeComments{list: []domain.Comment{comment(1, time.Hour)}, created: &created}
	thread := NewCommentThread(repo, loggedIn(true), 7, 1, nil)
	require.NoError(t, thread.Load(context.Background()))

	p, err := thread.Begin(" hello ", domain.Author{Name: "Ana"})
	require.NoError(t, err)
	top := thread.Comments()[0]
	assert.True(t, top.Pending)
	assert.Equal(t, "hello", top.Content)
	assert.Equal(t, 2, thread.Count())

	got, err := thread.Send(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, thread.Settle(p, got, nil))

	top = thread.Comments()[0]
	assert.Equal(t, int64(99), top.ID)
	assert.False(t, top.Pending)
	assert.Equal(t, 2, thread.Count())
	assert.Equal(t, []string{"hello"}, repo.added)
}

func TestSubmitFailureRemovesPlaceholder(t *testing.T) {
	repo := &fakeComments{list: []domain.Comment{comment(1, time.Hour)}, addErr: errors.New("boom")}
	thread := NewCommentThread(repo, loggedIn(true), 7, 1, nil)
	require.NoError(t, thread.Load(context.Background()))

	err := thread.Submit(context.Background(), "hello", domain.Author{})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, thread.Count())
	require.Len(t, thread.Comments(), 1)
	assert.Equal(t, int64(1), thread.Comments()[0].ID)
	assert.Error(t, thread.Err())
	assert.False(t, thread.Submitting())
}

func TestSubmitWithoutEchoReloads(t *testing.T) {
	repo := &fakeComments{list: []domain.Comment{comment(1, time.Hour)}}
	thread := NewCommentThread(repo, loggedIn(true), 7, 1, nil)
	require.NoError(t, thread.Load(context.Background()))

	repo.list = append(repo.list, comment(2, 0))
	require.NoError(t, thread.Submit(context.Background(), "hello", domain.Author{}))

	assert.Equal(t, 2, repo.loads)
	assert.Equal(t, 2, thread.Count())
	assert.Equal(t, int64(2), thread.Comments()[0].ID)
	for _, c := range thread.Comments() {
		assert.False(t, c.Pending)
	}
}

func TestSubmitWithoutEchoDropsPlaceholderWhenReloadFails(t *testing.T) {
	repo := &fakeComments{list: []domain.Comment{comment(1, time.Hour)}}
	thread := NewCommentThread(repo, loggedIn(true), 7, 1, nil)
	require.NoError(t, thread.Load(context.Background()))

	repo.loadErr = errors.New("offline")
	err := thread.Submit(context.Background(), "hello", domain.Author{})
	assert.EqualError(t, err, "offline")

	require.Len(t, thread.Comments(), 1)
	assert.Equal(t, int64(1), thread.Comments()[0].ID)
	assert.False(t, thread.Comments()[0].Pending)
	assert.Equal(t, 2, thread.Count(), "the server accepted the comment")
	assert.False(t, thread.Submitting())
}
