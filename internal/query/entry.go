package query

import (
	"fmt"
	"time"
)

// Key identifies one cached page: a resource, an optional search term and a
// 1-based page number. Keys compare structurally.
type Key struct {
	Resource string
	Term     string
	Page     int
}

// String renders "resource|term|page", used for logging and persistence
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%d", k.Resource, k.Term, k.Page)
}

// WithPage returns the sibling key for another page
func (k Key) WithPage(page int) Key {
	k.Page = page
	return k
}

// Status is the lifecycle state of an entry
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is a snapshot of a cached key. HasData stays true after a failed
// refresh so callers can keep showing the previous result.
type Entry[T any] struct {
	Key        Key
	Status     Status
	Data       T
	HasData    bool
	Err        error
	FetchedAt  time.Time
	StaleUntil time.Time

	// Fetching is true while a request for this key is in flight
	Fetching bool
}

// IsStale reports whether the entry is past its freshness window
func (e Entry[T]) IsStale(now time.Time) bool {
	return now.After(e.StaleUntil)
}
