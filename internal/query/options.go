package query

import (
	"log/slog"
	"time"
)

// DefaultStaleTime is how long a successful page is served without a refresh
const DefaultStaleTime = 60 * time.Second

// Origin labels who asked for a key
type Origin string

const (
	OriginGet      Origin = "get"
	OriginPrefetch Origin = "prefetch"
)

// Outcome is how a lookup was answered
type Outcome string

const (
	OutcomeHit       Outcome = "hit"
	OutcomeMiss      Outcome = "miss"
	OutcomeStale     Outcome = "stale"
	OutcomeCoalesced Outcome = "coalesced"
)

// Recorder receives cache instrumentation events
type Recorder interface {
	Lookup(resource string, origin Origin, outcome Outcome)
	FetchFinished(resource string, elapsed time.Duration, err error)
	Discarded(resource string)
}

// Persister stores page snapshots for warm starts
type Persister interface {
	LoadPage(key string) ([]byte, time.Time, bool)
	SavePage(key string, data []byte, fetchedAt time.Time) error
	DeletePages(prefix string)
}

type options struct {
	staleTime time.Duration
	now       func() time.Time
	logger    *slog.Logger
	recorder  Recorder
	persister Persister
}

// Option configures a Cache
type Option func(*options)

// WithStaleTime sets the freshness window
func WithStaleTime(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.staleTime = d
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder attaches instrumentation
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithPersister enables warm starts from stored snapshots
func WithPersister(p Persister) Option {
	return func(o *options) { o.persister = p }
}

type nopRecorder struct{}

func (nopRecorder) Lookup(string, Origin, Outcome)             {}
func (nopRecorder) FetchFinished(string, time.Duration, error) {}
func (nopRecorder) Discarded(string)                           {}
