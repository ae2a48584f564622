package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugRoundTrip(t *testing.T) {
	tests := []struct {
		id    int64
		title string
		want  string
	}{
		{42, "Hello, World!", "42-hello-world"},
		{7, "  Crème brûlée   recipes ", "7-creme-brulee-recipes"},
		{3, "Go_1.25 -- what's new", "3-go-125-whats-new"},
		{9, "!!!", "9"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			slug := MakeSlug(tt.id, tt.title)
			assert.Equal(t, tt.want, slug)

			id, err := ParseSlugID(slug)
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestParseSlugID(t *testing.T) {
	id, err := ParseSlugID("https://blog.example.com/posts/128-some-title/")
	require.NoError(t, err)
	assert.Equal(t, int64(128), id)

	id, err = ParseSlugID(" 15 ")
	require.NoError(t, err)
	assert.Equal(t, int64(15), id)

	for _, bad := range []string{"", "abc-12", "/posts/", "0-zero"} {
		_, err := ParseSlugID(bad)
		assert.ErrorIs(t, err, ErrInvalidSlug, bad)
	}
}

func TestPageResultValidate(t *testing.T) {
	posts := func(n int) []Post { return make([]Post, n) }

	assert.NoError(t, PageResult{Items: posts(10), Total: 25, Page: 1, LastPage: 3}.Validate(10))
	assert.NoError(t, PageResult{Total: 0, Page: 1, LastPage: 0}.Validate(10))
	assert.NoError(t, PageResult{Items: posts(30), Total: 30, Page: 1, LastPage: 1}.Validate(0))

	assert.ErrorIs(t, PageResult{Items: posts(11), Total: 25, Page: 1, LastPage: 3}.Validate(10), ErrMalformedPage)
	assert.ErrorIs(t, PageResult{Items: posts(1), Total: 25, Page: 4, LastPage: 3}.Validate(10), ErrMalformedPage)
	assert.ErrorIs(t, PageResult{Items: posts(1), Total: 25, Page: 0, LastPage: 3}.Validate(10), ErrMalformedPage)
}

func TestPageResultNavigation(t *testing.T) {
	r := PageResult{Page: 2, LastPage: 3, Total: 21}
	assert.True(t, r.HasNext())
	assert.True(t, r.HasPrev())
	assert.True(t, r.IsEmpty())

	r.Page = 3
	assert.False(t, r.HasNext())
}

func TestErrorMatching(t *testing.T) {
	unauthorized := fmt.Errorf("loading profile: %w", &HTTPError{Status: http.StatusUnauthorized})
	assert.ErrorIs(t, unauthorized, ErrUnauthorized)
	assert.NotErrorIs(t, unauthorized, ErrNotFound)

	missing := &HTTPError{Status: http.StatusNotFound, Message: "Post not found"}
	assert.ErrorIs(t, missing, ErrNotFound)
	assert.Equal(t, "Post not found", UserMessage(missing))

	offline := &TransportError{Op: "GET", URL: "http://x/posts", Err: errors.New("connection refused")}
	assert.ErrorIs(t, offline, ErrServerOffline)
	assert.Contains(t, UserMessage(offline), "Cannot reach the server")

	verr := &ValidationError{Fields: map[string]string{"title": "Title is required", "email": "Enter a valid e-mail"}}
	assert.Equal(t, "Enter a valid e-mail; Title is required", verr.Error())
	assert.Equal(t, "Title is required", verr.Field("title"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short text", Excerpt("  short \n text ", 160))
	assert.Equal(t, "abcde...", Excerpt("abcdefghij", 5))
	assert.Equal(t, "héllo...", Excerpt("héllo wörld", 5))
}

func TestAuthorDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Author{Name: "Ada Lovelace"}.DisplayName())
	assert.Equal(t, "ada", Author{Email: "ada@example.com"}.DisplayName())
	assert.Equal(t, "AL", Author{Name: "ada lovelace"}.Initials())
}
