package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTokens struct {
	token   string
	saveErr error
}

func (m *memTokens) LoadToken() (string, error) { return m.token, nil }
func (m *memTokens) SaveToken(t string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = t
	return nil
}
func (m *memTokens) DeleteToken() error { m.token = ""; return nil }

func TestRestoresPersistedToken(t *testing.T) {
	s := New(&memTokens{token: "saved"}, nil)
	assert.Equal(t, "saved", s.Token())
	assert.True(t, s.IsLoggedIn())
}

func TestSetAndClearNotify(t *testing.T) {
	store := &memTokens{}
	s := New(store, nil)

	events := make(chan Event, 4)
	cancel := s.Subscribe(events)
	defer cancel()

	require.NoError(t, s.SetToken("t1"))
	assert.Equal(t, "t1", store.token)
	assert.Equal(t, Event{LoggedIn: true}, <-events)

	require.NoError(t, s.Clear())
	assert.Empty(t, store.token)
	assert.Equal(t, Event{LoggedIn: false}, <-events)

	// clearing twice does not publish again
	require.NoError(t, s.Clear())
	assert.Len(t, events, 0)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	s := New(nil, nil)

	full := make(chan Event) // unbuffered, never read
	fast := make(chan Event, 1)
	s.Subscribe(full)
	s.Subscribe(fast)

	require.NoError(t, s.SetToken("x"))
	assert.Equal(t, Event{LoggedIn: true}, <-fast)
}

func TestUnsubscribe(t *testing.T) {
	s := New(nil, nil)
	events := make(chan Event, 1)
	cancel := s.Subscribe(events)
	cancel()
	cancel()

	require.NoError(t, s.SetToken("x"))
	assert.Len(t, events, 0)
}

func TestPersistFailureKeepsInMemoryToken(t *testing.T) {
	s := New(&memTokens{saveErr: errors.New("disk full")}, nil)
	err := s.SetToken("x")
	assert.Error(t, err)
	assert.Equal(t, "x", s.Token())
}
