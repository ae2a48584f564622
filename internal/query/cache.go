// Package query is a keyed, de-duplicating, stale-while-revalidate cache for
// paginated reads. It knows nothing about the UI: callers read snapshots with
// Get or Peek and learn about changes through Subscribe.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrNotRequested is returned by Wait for a key nobody has asked for
var ErrNotRequested = errors.New("query: key was never requested")

// Fetcher loads the data for one key
type Fetcher[T any] func(ctx context.Context, key Key) (T, error)

// Cache holds one entry per Key. At most one fetch per key is in flight
// unless Refetch forces a newer one; only the newest issued fetch may write
// its result.
type Cache[T any] struct {
	fetch  Fetcher[T]
	opts   options
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[Key]*slot[T]
	seq     uint64 // generation source shared by all keys

	// persistMu orders snapshot writes against Invalidate and Reset deletes.
	// Lock order is persistMu then mu.
	persistMu sync.Mutex

	subMu   sync.Mutex
	subs    map[int]chan<- Key
	nextSub int
}

type slot[T any] struct {
	entry Entry[T]
	gen   uint64        // generation of the newest issued fetch
	done  chan struct{} // closed when the key stops fetching; nil while idle

	// invalidGen is the generation that was in flight when the resource was
	// invalidated. Its response is stored already stale and never persisted.
	invalidGen uint64
}

// New creates a cache around fetch
func New[T any](fetch Fetcher[T], opts ...Option) *Cache[T] {
	o := options{
		staleTime: DefaultStaleTime,
		now:       time.Now,
		logger:    slog.Default(),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Cache[T]{
		fetch:   fetch,
		opts:    o,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[Key]*slot[T]),
		subs:    make(map[int]chan<- Key),
	}
}

// Get returns the current entry for key. A missing, stale or failed entry
// triggers a background fetch; stale data is still returned meanwhile.
func (c *Cache[T]) Get(key Key) Entry[T] {
	return c.access(key, OriginGet)
}

// Prefetch warms key using the same policy as Get. Lookups are recorded
// under OriginPrefetch.
func (c *Cache[T]) Prefetch(key Key) {
	c.access(key, OriginPrefetch)
}

// Peek returns the entry without triggering a fetch
func (c *Cache[T]) Peek(key Key) (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key]
	if !ok {
		return Entry[T]{Key: key}, false
	}
	return s.entry, true
}

// Refetch starts a new fetch even if one is in flight. The older response is
// discarded when it arrives.
func (c *Cache[T]) Refetch(key Key) Entry[T] {
	c.mu.Lock()
	s := c.slotLocked(key)
	c.startLocked(key, s)
	entry := s.entry
	c.mu.Unlock()

	c.notify(key)
	return entry
}

// Wait blocks until key has no fetch in flight and returns the entry
func (c *Cache[T]) Wait(ctx context.Context, key Key) (Entry[T], error) {
	for {
		c.mu.Lock()
		s, ok := c.entries[key]
		if !ok {
			c.mu.Unlock()
			return Entry[T]{Key: key}, ErrNotRequested
		}
		if !s.entry.Fetching {
			entry := s.entry
			c.mu.Unlock()
			return entry, nil
		}
		done := s.done
		c.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return Entry[T]{Key: key}, ctx.Err()
		}
	}
}

// Invalidate marks every entry of resource stale. Nothing is fetched until
// the next access. A fetch already in flight still settles, but its data is
// stored stale.
func (c *Cache[T]) Invalidate(resource string) {
	c.persistMu.Lock()
	c.mu.Lock()
	var touched []Key
	for key, s := range c.entries {
		if key.Resource == resource {
			s.entry.StaleUntil = time.Time{}
			if s.entry.Fetching {
				s.invalidGen = s.gen
			}
			touched = append(touched, key)
		}
	}
	c.mu.Unlock()

	if c.opts.persister != nil {
		c.opts.persister.DeletePages(resource + "|")
	}
	c.persistMu.Unlock()
	c.opts.logger.Debug("invalidated resource", "resource", resource, "entries", len(touched))
	for _, key := range touched {
		c.notify(key)
	}
}

// Reset drops every entry and snapshot. In-flight fetches are discarded on arrival.
func (c *Cache[T]) Reset() {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	for _, s := range c.entries {
		if s.done != nil {
			close(s.done)
			s.done = nil
		}
	}
	c.entries = make(map[Key]*slot[T])
	c.mu.Unlock()

	if c.opts.persister != nil {
		c.opts.persister.DeletePages("")
	}
	c.opts.logger.Debug("query cache reset")
}

// Subscribe registers ch to receive keys whose entry changed. Sends never
// block; a full channel misses the event. The returned func unsubscribes.
func (c *Cache[T]) Subscribe(ch chan<- Key) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

// Close cancels the context shared by in-flight fetches
func (c *Cache[T]) Close() {
	c.cancel()
}

func (c *Cache[T]) access(key Key, origin Origin) Entry[T] {
	now := c.opts.now()
	rec := c.opts.recorder

	c.mu.Lock()
	s := c.slotLocked(key)

	started := false
	switch {
	case s.entry.Fetching:
		rec.Lookup(key.Resource, origin, OutcomeCoalesced)
	case s.entry.Status == StatusSuccess && !s.entry.IsStale(now):
		rec.Lookup(key.Resource, origin, OutcomeHit)
	default:
		if s.entry.HasData {
			rec.Lookup(key.Resource, origin, OutcomeStale)
		} else {
			rec.Lookup(key.Resource, origin, OutcomeMiss)
		}
		c.startLocked(key, s)
		started = true
	}
	entry := s.entry
	c.mu.Unlock()

	if started {
		c.notify(key)
	}
	return entry
}

// slotLocked returns the slot for key, creating it from a snapshot or empty
func (c *Cache[T]) slotLocked(key Key) *slot[T] {
	if s, ok := c.entries[key]; ok {
		return s
	}
	s := c.restoreLocked(key)
	if s == nil {
		s = &slot[T]{entry: Entry[T]{Key: key, Status: StatusPending}}
	}
	c.entries[key] = s
	return s
}

func (c *Cache[T]) restoreLocked(key Key) *slot[T] {
	if c.opts.persister == nil {
		return nil
	}
	raw, fetchedAt, ok := c.opts.persister.LoadPage(key.String())
	if !ok {
		return nil
	}
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		c.opts.logger.Warn("dropping unreadable snapshot", "key", key.String(), "error", err)
		return nil
	}
	c.opts.logger.Debug("restored snapshot", "key", key.String(), "fetchedAt", fetchedAt)
	return &slot[T]{entry: Entry[T]{
		Key:        key,
		Status:     StatusSuccess,
		Data:       data,
		HasData:    true,
		FetchedAt:  fetchedAt,
		StaleUntil: fetchedAt.Add(c.opts.staleTime),
	}}
}

func (c *Cache[T]) startLocked(key Key, s *slot[T]) {
	c.seq++
	gen := c.seq
	s.gen = gen

	if !s.entry.Fetching {
		s.done = make(chan struct{})
	}
	s.entry.Fetching = true
	if s.entry.Status == StatusError {
		s.entry.Status = StatusPending
		s.entry.Err = nil
	}

	c.opts.logger.Debug("fetch started", "key", key.String(), "gen", gen)
	go c.run(key, gen)
}

func (c *Cache[T]) run(key Key, gen uint64) {
	started := time.Now()
	data, err := c.fetch(c.ctx, key)
	c.settle(key, gen, data, err, time.Since(started))
}

// settle applies a finished fetch if it is still the newest for its key
func (c *Cache[T]) settle(key Key, gen uint64, data T, err error, elapsed time.Duration) {
	now := c.opts.now()
	rec := c.opts.recorder

	c.mu.Lock()
	s, ok := c.entries[key]
	if !ok || s.gen != gen {
		c.mu.Unlock()
		rec.Discarded(key.Resource)
		c.opts.logger.Debug("discarding superseded response", "key", key.String(), "gen", gen)
		return
	}

	if err != nil {
		s.entry.Status = StatusError
		s.entry.Err = err
		s.entry.StaleUntil = now
	} else {
		s.entry.Status = StatusSuccess
		s.entry.Data = data
		s.entry.HasData = true
		s.entry.Err = nil
		s.entry.FetchedAt = now
		s.entry.StaleUntil = now.Add(c.opts.staleTime)
		if s.invalidGen == gen {
			s.entry.StaleUntil = time.Time{}
		}
	}
	s.entry.Fetching = false
	done := s.done
	s.done = nil
	c.mu.Unlock()

	if done != nil {
		close(done)
	}
	rec.FetchFinished(key.Resource, elapsed, err)

	if err != nil {
		c.opts.logger.Warn("fetch failed", "key", key.String(), "error", err)
	} else {
		c.opts.logger.Debug("fetch succeeded", "key", key.String(), "elapsed", elapsed)
		c.persist(key, s, gen, data, now)
	}
	c.notify(key)
}

// persist writes a snapshot unless the slot was reset, superseded or
// invalidated since the fetch settled
func (c *Cache[T]) persist(key Key, s *slot[T], gen uint64, data T, fetchedAt time.Time) {
	if c.opts.persister == nil {
		return
	}
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	current := c.entries[key] == s && s.gen == gen && s.invalidGen != gen && !s.entry.IsStale(fetchedAt)
	c.mu.Unlock()
	if !current {
		c.opts.logger.Debug("skipping snapshot of outdated page", "key", key.String())
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		c.opts.logger.Warn("failed to encode snapshot", "key", key.String(), "error", err)
		return
	}
	if err := c.opts.persister.SavePage(key.String(), raw, fetchedAt); err != nil {
		c.opts.logger.Warn("failed to save snapshot", "key", key.String(), "error", err)
	}
}

func (c *Cache[T]) notify(key Key) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- key:
		default: // Non-blocking if channel full
		}
	}
}
