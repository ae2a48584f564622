package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/quill/internal/query"
	"github.com/mmcdole/quill/internal/session"
)

// KeySource publishes the keys of changed cache entries
type KeySource interface {
	Subscribe(ch chan<- query.Key) (cancel func())
}

// AuthSource reports and publishes the sign-in state
type AuthSource interface {
	IsLoggedIn() bool
	Subscribe(ch chan<- session.Event) (cancel func())
}

// Observer adapts cache and session notifications to channels for Bubble Tea.
// Publishers never block on it; a full channel drops the notification.
type Observer struct {
	keys   chan query.Key
	auth   chan session.Event
	cancel []func()
}

// NewObserver subscribes to both sources. Either may be nil.
func NewObserver(cache KeySource, auth AuthSource) *Observer {
	o := &Observer{
		keys: make(chan query.Key, 64),
		auth: make(chan session.Event, 4),
	}
	if cache != nil {
		o.cancel = append(o.cancel, cache.Subscribe(o.keys))
	}
	if auth != nil {
		o.cancel = append(o.cancel, auth.Subscribe(o.auth))
	}
	return o
}

// Close unsubscribes from both sources
func (o *Observer) Close() {
	for _, cancel := range o.cancel {
		cancel()
	}
	o.cancel = nil
}

// ListenCmd waits for the next notification of either kind
func (o *Observer) ListenCmd() tea.Cmd {
	return tea.Batch(o.WaitKeyCmd(), o.WaitAuthCmd())
}

// WaitKeyCmd waits for the next changed cache key
func (o *Observer) WaitKeyCmd() tea.Cmd {
	return func() tea.Msg {
		key, ok := <-o.keys
		if !ok {
			return nil
		}
		return CacheUpdatedMsg{Key: key}
	}
}

// WaitAuthCmd waits for the next sign-in state change
func (o *Observer) WaitAuthCmd() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-o.auth
		if !ok {
			return nil
		}
		return AuthChangedMsg{LoggedIn: ev.LoggedIn}
	}
}
