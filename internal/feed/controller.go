// Package feed drives one paginated post listing on top of the query cache.
package feed

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/query"
)

// State is the lifecycle of the current page
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
	StateNoQuery
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	case StateNoQuery:
		return "no-query"
	default:
		return "unknown"
	}
}

// PageCache is the part of query.Cache the controller needs
type PageCache interface {
	Get(key query.Key) query.Entry[domain.PageResult]
	Peek(key query.Key) (query.Entry[domain.PageResult], bool)
	Prefetch(key query.Key)
	Refetch(key query.Key) query.Entry[domain.PageResult]
}

// Controller tracks the page a view is showing. Methods are safe for
// concurrent use but are normally called from the UI loop.
type Controller struct {
	cache    PageCache
	resource string
	search   bool
	logger   *slog.Logger

	mu         sync.Mutex
	term       string
	page       int
	lastPage   int
	state      State
	result     domain.PageResult
	err        error
	refreshing bool
	prefetched query.Key // page whose successor was already prefetched
	closed     bool
}

// New creates a controller for a non-search resource
func New(cache PageCache, resource string, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		cache:    cache,
		resource: resource,
		logger:   logger,
		page:     1,
		lastPage: 1,
	}
}

// NewSearch creates a search controller. It starts without a query.
func NewSearch(cache PageCache, logger *slog.Logger) *Controller {
	c := New(cache, ResourceSearch, logger)
	c.search = true
	c.state = StateNoQuery
	return c
}

// Start loads page 1
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.search && c.term == "" {
		c.state = StateNoQuery
		return
	}
	c.loadLocked(1)
}

// SetPage moves to page n if it lies within 1..lastPage
func (c *Controller) SetPage(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == StateNoQuery {
		return false
	}
	if n < 1 || n > max(c.lastPage, 1) {
		c.logger.Debug("page out of range", "resource", c.resource, "page", n, "lastPage", c.lastPage)
		return false
	}
	c.loadLocked(n)
	return true
}

// Next moves to the following page
func (c *Controller) Next() bool {
	return c.SetPage(c.Page() + 1)
}

// Prev moves to the previous page
func (c *Controller) Prev() bool {
	return c.SetPage(c.Page() - 1)
}

// Refresh forces a fetch of the current page
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == StateNoQuery {
		return
	}
	c.prefetched = query.Key{}
	c.applyLocked(c.cache.Refetch(c.keyLocked()))
}

// SetTerm starts a new search. A blank term clears the results without a request.
func (c *Controller) SetTerm(term string) {
	term = strings.TrimSpace(term)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.term = term
	c.prefetched = query.Key{}
	if term == "" {
		c.state = StateNoQuery
		c.page, c.lastPage = 1, 1
		c.result = domain.PageResult{}
		c.err = nil
		c.refreshing = false
		return
	}
	c.lastPage = 1
	c.loadLocked(1)
}

// Sync applies a cache notification. Keys other than the current one are
// ignored; the result reports whether the notification was applied.
func (c *Controller) Sync(key query.Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == StateNoQuery || key != c.keyLocked() {
		return false
	}
	entry, ok := c.cache.Peek(key)
	if !ok {
		return false
	}
	c.applyLocked(entry)
	return true
}

// Close detaches the controller; later calls are no-ops
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Controller) Resource() string { return c.resource }

func (c *Controller) Key() query.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyLocked()
}

func (c *Controller) Term() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller) LastPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPage
}

// Total is the server-reported number of matching posts
func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result.Total
}

// Items returns the posts of the loaded page
func (c *Controller) Items() []domain.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoaded {
		return nil
	}
	return c.result.Items
}

func (c *Controller) HasNextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateLoaded && c.page < c.lastPage
}

func (c *Controller) HasPrevPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateLoaded && c.page > 1
}

// IsEmpty reports a successful load with no posts
func (c *Controller) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateLoaded && len(c.result.Items) == 0
}

// Err returns the last fetch error. It may be set while Loaded when a
// background refresh failed and the previous page is still shown.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// IsRefreshing reports a background fetch while data is displayed
func (c *Controller) IsRefreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

func (c *Controller) keyLocked() query.Key {
	return query.Key{Resource: c.resource, Term: c.term, Page: c.page}
}

func (c *Controller) loadLocked(page int) {
	c.page = page
	c.applyLocked(c.cache.Get(c.keyLocked()))
}

func (c *Controller) applyLocked(entry query.Entry[domain.PageResult]) {
	c.refreshing = entry.Fetching && entry.HasData

	switch {
	case entry.HasData:
		c.state = StateLoaded
		c.result = entry.Data
		c.lastPage = entry.Data.LastPage
		c.err = nil
		if entry.Status == query.StatusError {
			c.err = entry.Err
		}
	case entry.Status == query.StatusError:
		c.state = StateFailed
		c.result = domain.PageResult{}
		c.err = entry.Err
	default:
		c.state = StateLoading
		c.result = domain.PageResult{}
		c.err = nil
	}

	if entry.Status == query.StatusSuccess && !entry.Fetching {
		c.prefetchLocked(entry.Key)
	}
}

func (c *Controller) prefetchLocked(key query.Key) {
	if c.prefetched == key || key.Page+1 > c.lastPage {
		return
	}
	c.prefetched = key
	c.logger.Debug("prefetching next page", "resource", key.Resource, "page", key.Page+1)
	c.cache.Prefetch(key.WithPage(key.Page + 1))
}
