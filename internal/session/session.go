// Package session holds the bearer credential and tells subscribers when the
// signed-in state changes.
package session

import (
	"log/slog"
	"sync"
)

// TokenStore persists the credential between runs
type TokenStore interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	DeleteToken() error
}

// Event is published whenever the credential is set or cleared
type Event struct {
	LoggedIn bool
}

// Session is the injectable credential holder read by the HTTP adapter.
// It is safe for concurrent use.
type Session struct {
	store  TokenStore
	logger *slog.Logger

	mu    sync.RWMutex
	token string

	subMu  sync.Mutex
	subs   map[int]chan<- Event
	nextID int
}

// New creates a session and restores any persisted credential. store may be nil.
func New(store TokenStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		store:  store,
		logger: logger,
		subs:   make(map[int]chan<- Event),
	}
	if store != nil {
		token, err := store.LoadToken()
		if err != nil {
			logger.Warn("failed to restore credential", "error", err)
		}
		s.token = token
	}
	return s
}

// Token returns the current credential, or "" when signed out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsLoggedIn reports whether a credential is present
func (s *Session) IsLoggedIn() bool {
	return s.Token() != ""
}

// SetToken stores a new credential and notifies subscribers
func (s *Session) SetToken(token string) error {
	if token == "" {
		return s.Clear()
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	var err error
	if s.store != nil {
		err = s.store.SaveToken(token)
		if err != nil {
			s.logger.Error("failed to persist credential", "error", err)
		}
	}

	s.publish(Event{LoggedIn: true})
	return err
}

// Clear drops the credential and notifies subscribers. Clearing an already
// empty session is a no-op without notification.
func (s *Session) Clear() error {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	s.mu.Unlock()

	var err error
	if s.store != nil {
		err = s.store.DeleteToken()
		if err != nil {
			s.logger.Error("failed to delete credential", "error", err)
		}
	}

	if had {
		s.publish(Event{LoggedIn: false})
	}
	return err
}

// Subscribe registers ch for auth-changed events. Delivery is best effort:
// a full channel drops the event. The returned func unsubscribes.
func (s *Session) Subscribe(ch chan<- Event) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Session) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.logger.Debug("auth changed", "loggedIn", ev.LoggedIn, "subscribers", len(s.subs))
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default: // Non-blocking if channel full
		}
	}
}
