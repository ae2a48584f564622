package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/query"
)

// fakePosts serves three pages of ten posts for every listing
type fakePosts struct {
	mu    sync.Mutex
	calls []query.Key
	err   error
}

func (f *fakePosts) record(resource, term string, page int) (domain.PageResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query.Key{Resource: resource, Term: term, Page: page})
	if f.err != nil {
		return domain.PageResult{}, f.err
	}
	return domain.PageResult{
		Items:    []domain.Post{{ID: int64(page*100 + 1), Title: resource}},
		Total:    30,
		Page:     page,
		LastPage: 3,
	}, nil
}

func (f *fakePosts) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakePosts) called(key query.Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

func (f *fakePosts) Recommended(_ context.Context, page, _ int) (domain.PageResult, error) {
	return f.record(ResourceRecommended, "", page)
}

func (f *fakePosts) MostLiked(_ context.Context, page, _ int) (domain.PageResult, error) {
	return f.record(ResourceMostLiked, "", page)
}

func (f *fakePosts) MyPosts(_ context.Context, page, _ int) (domain.PageResult, error) {
	return f.record(ResourceMyPosts, "", page)
}

func (f *fakePosts) Search(_ context.Context, term string, page, _ int) (domain.PageResult, error) {
	return f.record(ResourceSearch, term, page)
}

func (f *fakePosts) Post(context.Context, int64) (*domain.Post, error) { return nil, nil }
func (f *fakePosts) CreatePost(context.Context, domain.PostDraft) (*domain.Post, error) {
	return nil, nil
}
func (f *fakePosts) UpdatePost(context.Context, int64, domain.PostDraft) (*domain.Post, error) {
	return nil, nil
}
func (f *fakePosts) DeletePost(context.Context, int64) error { return nil }

func newHarness(t *testing.T, repo *fakePosts) *query.Cache[domain.PageResult] {
	t.Helper()
	cache := query.New(NewFetcher(repo, 10, 10))
	t.Cleanup(cache.Close)
	return cache
}

// settle waits for key and feeds the notification to the controller
func settle(t *testing.T, cache *query.Cache[domain.PageResult], c *Controller, key query.Key) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := cache.Wait(ctx, key)
	require.NoError(t, err)
	c.Sync(key)
}

func TestStartLoadsFirstPage(t *testing.T) {
	repo := &fakePosts{}
	cache := newHarness(t, repo)
	c := New(cache, ResourceRecommended, nil)

	c.Start()
	assert.Equal(t, StateLoading, c.State())
	assert.Nil(t, c.Items())

	settle(t, cache, c, c.Key())
	assert.Equal(t, StateLoaded, c.State())
	require.Len(t, c.Items(), 1)
	assert.Equal(t, int64(101), c.Items()[0].ID)
	assert.True(t, c.HasNextPage())
	assert.False(t, c.HasPrevPage())
	assert.False(t, c.IsEmpty())
	assert.Equal(t, 3, c.LastPage())
	assert.Equal(t, 30, c.Total())
}

func TestSetPageRejectsOutOfRange(t *testing.T) {
	repo := &fakePosts{}
	cache := newHarness(t, repo)
	c := New(cache, ResourceRecommended, nil)

	c.Start()
	settle(t, cache, c, c.Key())

	assert.False(t, c.SetPage(4))
	assert.False(t, c.SetPage(0))
	assert.Equal(t, 1, c.Page())
	assert.Equal(t, StateLoaded, c.State())

	assert.True(t, c.SetPage(3))
	assert.Equal(t, 3, c.Page())
}

func TestSetPageBeforeFirstLoadOnlyAllowsPageOne(t *testing.T) {
	repo := &fakePosts{}
	cache := newHarness(t, repo)
	c := New(cache, ResourceMostLiked, nil)

	assert.False(t, c.SetPage(2))
	assert.True(t, c.SetPage(1))
}

func TestNextAndPrev(t *testing.T) {
	repo := &fakePosts{}
	cache := newHarness(t, repo)
	c := New(cache, ResourceRecommended, nil)

	c.Start()
	settle(t, cache, c, c.Key())
	assert.False(t, c.Prev())

	require.True(t, c.Next())
	settle(t, cache, c, c.Key())
	assert.Equal(t, 2, c.Page())
	assert.True(t, c.HasPrevPage())
	assert.Equal(t, int64(201), c.Items()[0].ID)

	require.True(t, c.Prev())
	assert.Equal(t, 1, c.Page())
	assert.Equal(t, StateLoaded, c.State(), "page 1 is still cached")
}

func TestBlankSearchTermMakesNoRequest(t *testing.T) {
	repo := &fakePosts{}
	cache := newHarness(t, repo)
	c := NewSearch(cache, nil)

	c.Start()
	c.SetTerm("   ")
	assert.Equal(t, StateNoQuery, c.State())
	assert.Equal(t, 0, repo.callCount())
	assert.False(t, c.SetPage(1))
}

func TestSearchTermResetsToFirstPage(t *testing.T) {
	repo := &fakePosts{}
	cache := newHarness(t, repo)
	c := NewSearch(cache, nil)

	c.SetTerm(" golang ")
	assert.Equal(t, "golang", c.Term())
	settle(t, cache, c, c.Key())
	require.True(t, c.SetPage(2))
	settle(t, cache, c, c.Key())

	c.SetTerm("rust")
	assert.Equal(t, 1, c.Page())
	assert.Equal(t, query.Key{Resource: ResourceSearch, Term: "rust", Page: 1}, c.Key())
	settle(t, cache, c, c.Key())
	assert.True(t, repo.called(query.Key{Resource: ResourceSearch, Term: "rust", Page: 1}))

	c.SetTerm("")
	assert.Equal(t, StateNoQuery, c.State())
	assert.Nil(t, c.Items())
}

func TestPrefetchDoesNotChangeVisibleState(t *testing.T) {
	repo := &fakePosts{}
	cache := newHarness(t, repo)
	c := New(cache, ResourceRecommended, nil)

	c.Start()
	settle(t, cache, c, c.Key())
	items := c.Items()

	next := query.Key{Resource: ResourceRecommended, Page: 2}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := cache.Wait(ctx, next)
	require.NoError(t, err, "page 2 was prefetched")

	assert.False(t, c.Sync(next))
	assert.Equal(t, 1, c.Page())
	assert.Equal(t, items, c.Items())
	assert.Equal(t, StateLoaded, c.State())

	// a second notification for page 1 does not prefetch again
	calls := repo.callCount()
	c.Sync(c.Key())
	assert.Equal(t, calls, repo.callCount())
}

func TestLastPageIsNotPrefetchedPastTheEnd(t *testing.T) {
	repo := &fakePosts{}
	cache := newHarness(t, repo)
	c := New(cache, ResourceRecommended, nil)

	c.Start()
	settle(t, cache, c, c.Key())
	require.True(t, c.SetPage(3))
	settle(t, cache, c, c.Key())

	_, ok := cache.Peek(query.Key{Resource: ResourceRecommended, Page: 4})
	assert.False(t, ok)
}

func TestStaleNotificationsAreIgnored(t *testing.T) {
	repo := &fakePosts{}
	cache := newHarness(t, repo)
	c := New(cache, ResourceRecommended, nil)

	c.Start()
	first := c.Key()
	settle(t, cache, c, first)
	require.True(t, c.SetPage(2))

	assert.False(t, c.Sync(first))
	assert.Equal(t, 2, c.Page())
}

func TestFailureIsExposedWithoutRetry(t *testing.T) {
	repo := &fakePosts{err: errors.New("offline")}
	cache := newHarness(t, repo)
	c := New(cache, ResourceRecommended, nil)

	c.Start()
	settle(t, cache, c, c.Key())
	assert.Equal(t, StateFailed, c.State())
	assert.EqualError(t, c.Err(), "offline")

	c.Sync(c.Key())
	assert.Equal(t, 1, repo.callCount())

	repo.mu.Lock()
	repo.err = nil
	repo.mu.Unlock()

	c.Refresh()
	assert.Equal(t, StateLoading, c.State())
	settle(t, cache, c, c.Key())
	assert.Equal(t, StateLoaded, c.State())
	assert.NoError(t, c.Err())
}

func TestRefreshKeepsDataWhileFetching(t *testing.T) {
	repo := &fakePosts{}
	cache := newHarness(t, repo)
	c := New(cache, ResourceRecommended, nil)

	c.Start()
	settle(t, cache, c, c.Key())

	c.Refresh()
	assert.Equal(t, StateLoaded, c.State())
	assert.NotEmpty(t, c.Items())
	settle(t, cache, c, c.Key())
	assert.False(t, c.IsRefreshing())
}

func TestClosedControllerIgnoresEverything(t *testing.T) {
	repo := &fakePosts{}
	cache := newHarness(t, repo)
	c := New(cache, ResourceRecommended, nil)

	c.Start()
	key := c.Key()
	c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := cache.Wait(ctx, key)
	require.NoError(t, err)

	assert.False(t, c.Sync(key))
	assert.Equal(t, StateLoading, c.State())
	assert.False(t, c.SetPage(1))
}

func TestFetcherRejectsUnknownResource(t *testing.T) {
	fetch := NewFetcher(&fakePosts{}, 0, 10)
	_, err := fetch(context.Background(), query.Key{Resource: "drafts", Page: 1})
	assert.Error(t, err)
}
