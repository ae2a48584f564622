package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]*BoltStore {
	t.Helper()
	disk, err := New(t.TempDir(), "http://blog.local/")
	require.NoError(t, err)
	t.Cleanup(func() { disk.Close() })

	mem, err := New("", "")
	require.NoError(t, err)

	return map[string]*BoltStore{"bolt": disk, "memory": mem}
}

func TestTokenLifecycle(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			token, err := s.LoadToken()
			require.NoError(t, err)
			assert.Empty(t, token)

			require.NoError(t, s.SaveToken("abc"))
			token, _ = s.LoadToken()
			assert.Equal(t, "abc", token)

			require.NoError(t, s.DeleteToken())
			token, _ = s.LoadToken()
			assert.Empty(t, token)
		})
	}
}

func TestPageSnapshots(t *testing.T) {
	fetched := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SavePage("recommended||1", []byte(`{"page":1}`), fetched))
			require.NoError(t, s.SavePage("recommended||2", []byte(`{"page":2}`), fetched))
			require.NoError(t, s.SavePage("search|go|1", []byte(`{"page":1}`), fetched))

			data, at, ok := s.LoadPage("recommended||2")
			require.True(t, ok)
			assert.JSONEq(t, `{"page":2}`, string(data))
			assert.True(t, fetched.Equal(at))

			s.DeletePages("recommended|")
			_, _, ok = s.LoadPage("recommended||1")
			assert.False(t, ok)
			_, _, ok = s.LoadPage("search|go|1")
			assert.True(t, ok)
		})
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir, "https://api.example.com")
	require.NoError(t, err)
	require.NoError(t, s.SaveToken("persisted"))
	require.NoError(t, s.SaveSearchHistory([]string{"bolt", "bubbletea"}))
	require.NoError(t, s.Close())

	s, err = New(dir, "https://API.example.com/")
	require.NoError(t, err)
	defer s.Close()

	token, _ := s.LoadToken()
	assert.Equal(t, "persisted", token)
	assert.Equal(t, []string{"bolt", "bubbletea"}, s.SearchHistory())

	other, err := New(dir, "https://other.example.com")
	require.NoError(t, err)
	defer other.Close()
	token, _ = other.LoadToken()
	assert.Empty(t, token)
}
