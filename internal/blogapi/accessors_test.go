package blogapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/mmcdole/quill/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageBody = `{
  "data": [
    {"id": 1, "title": "First", "content": "<p>a</p>", "tags": ["go"], "imageUrl": "https://img/1.png",
     "author": {"id": 9, "name": "Ada", "email": "ada@example.com", "avatarUrl": null},
     "createdAt": "2025-03-01T10:00:00.000Z", "likes": 4, "comments": 2},
    {"id": 2, "title": "Second", "content": "<p>b</p>", "tags": null,
     "author": {"id": 9, "name": "Ada", "email": "ada@example.com"},
     "createdAt": "2025-03-02T10:00:00Z", "likes": 0, "comments": [{"id": 1}, {"id": 2}, {"id": 3}]}
  ],
  "total": 12, "page": 1, "lastPage": 2
}`

func TestSearchSendsQueryAndMapsPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/search", r.URL.Path)
		assert.Equal(t, "golang tips", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(pageBody))
	}, "")

	page, err := c.Search(context.Background(), "golang tips", 1, 10)
	require.NoError(t, err)

	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.LastPage)
	require.Len(t, page.Items, 2)

	first := page.Items[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "Ada", first.Author.Name)
	assert.Equal(t, "", first.Author.AvatarURL)
	assert.Equal(t, 4, first.LikeCount)
	assert.Equal(t, 2025, first.CreatedAt.Year())

	second := page.Items[1]
	assert.Equal(t, []string{}, second.Tags)
	assert.Equal(t, 3, second.CommentCount)
}

func TestFeedsHitTheirEndpoints(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		w.Write([]byte(`{"data":[],"total":0,"page":1,"lastPage":0}`))
	}, "tok")

	ctx := context.Background()
	_, err := c.Recommended(ctx, 2, 0)
	require.NoError(t, err)
	_, err = c.MostLiked(ctx, 1, 0)
	require.NoError(t, err)
	_, err = c.MyPosts(ctx, 3, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/posts/recommended?page=2",
		"/posts/most-liked?page=1",
		"/posts/my-posts?limit=5&page=3",
	}, paths)
}

func TestListRejectsMalformedPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"total":30,"page":5,"lastPage":3}`))
	}, "")

	_, err := c.Recommended(context.Background(), 5, 0)
	assert.ErrorIs(t, err, domain.ErrMalformedPage)
}

func TestPostUnwrapsEnvelope(t *testing.T) {
	for name, body := range map[string]string{
		"bare":    `{"id": 7, "title": "Hello", "author": {"id": 1, "name": "A"}, "likes": 1, "comments": 0}`,
		"wrapped": `{"data": {"id": 7, "title": "Hello", "author": {"id": 1, "name": "A"}, "likes": 1, "comments": 0}}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/posts/7", r.URL.Path)
				w.Write([]byte(body))
			}, "")

			post, err := c.Post(context.Background(), 7)
			require.NoError(t, err)
			assert.Equal(t, "Hello", post.Title)
			assert.Equal(t, "7-hello", post.Slug())
		})
	}
}

func TestCommentsAcceptBothShapes(t *testing.T) {
	for name, body := range map[string]string{
		"array":    `[{"id": 1, "content": "nice", "createdAt": "2025-01-01T00:00:00Z", "author": {"id": 3, "name": "Bo"}}]`,
		"envelope": `{"data": [{"id": 1, "content": "nice", "createdAt": "2025-01-01T00:00:00Z", "author": {"id": 3, "name": "Bo"}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/posts/5/comments", r.URL.Path)
				w.Write([]byte(body))
			}, "")

			comments, err := c.Comments(context.Background(), 5)
			require.NoError(t, err)
			require.Len(t, comments, 1)
			assert.Equal(t, int64(5), comments[0].PostID)
			assert.Equal(t, "Bo", comments[0].Author.Name)
		})
	}
}

func TestAddComment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "great read", body["content"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id": 44, "content": "great read", "author": {"id": 2, "name": "Me"}}}`))
	}, "tok")

	comment, err := c.AddComment(context.Background(), 3, "great read")
	require.NoError(t, err)
	require.NotNil(t, comment)
	assert.Equal(t, int64(44), comment.ID)
	assert.Equal(t, int64(3), comment.PostID)
}

func TestToggleLikeShapes(t *testing.T) {
	tests := []struct {
		body string
		want domain.LikeResult
	}{
		{`{"likes": 5, "liked": true}`, domain.LikeResult{Likes: 5, Liked: true, Confirmed: true, LikedKnown: true}},
		{`{"data": {"likes": 2, "liked": false}}`, domain.LikeResult{Likes: 2, Liked: false, Confirmed: true, LikedKnown: true}},
		{`{"likes": 8}`, domain.LikeResult{Likes: 8, Confirmed: true}},
		{`{"message": "ok"}`, domain.LikeResult{}},
		{``, domain.LikeResult{}},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/posts/11/like", r.URL.Path)
				w.Write([]byte(tt.body))
			}, "tok")

			got, err := c.ToggleLike(context.Background(), 11)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreatePostSendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Title", r.FormValue("title"))
		assert.Equal(t, "<p>Body</p>", r.FormValue("content"))
		assert.Equal(t, []string{"go", "tui"}, r.MultipartForm.Value["tags"])

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "cover.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte("png-bytes"), data)

		w.Write([]byte(`{"id": 99, "title": "Title"}`))
	}, "tok")

	post, err := c.CreatePost(context.Background(), domain.PostDraft{
		Title:   "Title",
		Content: "<p>Body</p>",
		Tags:    []string{"go", "tui"},
		Image:   &domain.Upload{FileName: "cover.png", ContentType: "image/png", Data: []byte("png-bytes")},
	})
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, int64(99), post.ID)
}

func TestUpdatePostWithoutImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/posts/4", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Empty(t, r.MultipartForm.File)
		w.WriteHeader(http.StatusOK)
	}, "tok")

	post, err := c.UpdatePost(context.Background(), 4, domain.PostDraft{Title: "T", Content: "<p>x</p>", Tags: []string{"a"}})
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		w.Write([]byte(`{"token":"jwt-abc"}`))
	}, "")

	token, err := c.Login(context.Background(), "a@b.co", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)

	_, err = c.Login(context.Background(), "a@b.co", "wrong!")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestChangePasswordHonoursSuccessFlag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body passwordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.CurrentPassword == "old-pass" {
			w.Write([]byte(`{"success":true,"message":"Password changed"}`))
			return
		}
		w.Write([]byte(`{"success":false,"message":"Current password is incorrect"}`))
	}, "tok")

	msg, err := c.ChangePassword(context.Background(), domain.PasswordChange{Current: "old-pass", New: "n", Confirm: "n"})
	require.NoError(t, err)
	assert.Equal(t, "Password changed", msg)

	_, err = c.ChangePassword(context.Background(), domain.PasswordChange{Current: "nope", New: "n", Confirm: "n"})
	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect", domain.UserMessage(err))
}

func TestProbe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"total":0,"page":1,"lastPage":0}`))
	}, "")

	url, err := Probe(context.Background(), c.BaseURL()+"/")
	require.NoError(t, err)
	assert.Equal(t, c.BaseURL(), url)

	other := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hello":"world"}`))
	}, "")
	_, err = Probe(context.Background(), other.BaseURL())
	assert.Error(t, err)
}
