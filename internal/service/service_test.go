package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/feed"
	"github.com/mmcdole/quill/internal/session"
)

// pngHeader is enough for http.DetectContentType to report image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeAuth struct {
	token       string
	loginErr    error
	registerErr error
	registered  []domain.RegisterInput
	logins      int
}

func (f *fakeAuth) Login(context.Context, string, string) (string, error) {
	f.logins++
	return f.token, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, in domain.RegisterInput) error {
	f.registered = append(f.registered, in)
	return f.registerErr
}

type fakeProfiles struct {
	me        *domain.Profile
	meErr     error
	updated   *domain.Profile
	updates   []domain.ProfileUpdate
	passMsg   string
	passErr   error
	passCalls int
}

func (f *fakeProfiles) Me(context.Context) (*domain.Profile, error) { return f.me, f.meErr }

func (f *fakeProfiles) UpdateProfile(_ context.Context, u domain.ProfileUpdate) (*domain.Profile, error) {
	f.updates = append(f.updates, u)
	return f.updated, nil
}

func (f *fakeProfiles) ChangePassword(context.Context, domain.PasswordChange) (string, error) {
	f.passCalls++
	return f.passMsg, f.passErr
}

type countingCache struct {
	resets      int
	invalidated []string
}

func (c *countingCache) Reset()                     { c.resets++ }
func (c *countingCache) Invalidate(resource string) { c.invalidated = append(c.invalidated, resource) }

func fieldErr(t *testing.T, err error, field string) string {
	t.Helper()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Field(field)
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	auth := &fakeAuth{token: "tok"}
	svc := NewAccountService(auth, &fakeProfiles{}, session.New(nil, nil), nil, nil)

	err := svc.Login(context.Background(), "not-an-email", "123")
	assert.Equal(t, "Invalid email format.", fieldErr(t, err, "email"))
	assert.Equal(t, "Password must be at least 6 characters long.", fieldErr(t, err, "password"))
	assert.Equal(t, 0, auth.logins)
}

func TestLoginStoresTokenAndResetsCache(t *testing.T) {
	auth := &fakeAuth{token: "tok"}
	sess := session.New(nil, nil)
	cache := &countingCache{}
	svc := NewAccountService(auth, &fakeProfiles{}, sess, cache, nil)

	require.NoError(t, svc.Login(context.Background(), " ana@example.com ", "secret1"))
	assert.Equal(t, "tok", sess.Token())
	assert.Equal(t, 1, cache.resets)

	require.NoError(t, svc.Logout())
	assert.False(t, sess.IsLoggedIn())
	assert.Equal(t, 2, cache.resets)
}

func TestLoginRejectedCredentials(t *testing.T) {
	auth := &fakeAuth{loginErr: &domain.HTTPError{Status: http.StatusUnauthorized}}
	svc := NewAccountService(auth, &fakeProfiles{}, session.New(nil, nil), nil, nil)

	err := svc.Login(context.Background(), "ana@example.com", "secret1")
	assert.NotEmpty(t, fieldErr(t, err, "password"))
}

func TestRegisterValidation(t *testing.T) {
	auth := &fakeAuth{}
	svc := NewAccountService(auth, &fakeProfiles{}, session.New(nil, nil), nil, nil)

	err := svc.Register(context.Background(), RegisterForm{
		Email:    "ana@example.com",
		Password: "short",
		Confirm:  "other",
	})
	assert.Equal(t, "Name is required.", fieldErr(t, err, "name"))
	assert.Equal(t, "Password must be at least 8 characters long.", fieldErr(t, err, "password"))
	assert.Equal(t, "Passwords do not match.", fieldErr(t, err, "confirmPassword"))
	assert.Empty(t, auth.registered)
}

func TestRegisterDerivesUsername(t *testing.T) {
	auth := &fakeAuth{}
	svc := NewAccountService(auth, &fakeProfiles{}, session.New(nil, nil), nil, nil)

	require.NoError(t, svc.Register(context.Background(), RegisterForm{
		Name:     " Ana Lima ",
		Email:    "ana.lima@example.com",
		Password: "password1",
		Confirm:  "password1",
	}))
	require.Len(t, auth.registered, 1)
	assert.Equal(t, "ana.lima", auth.registered[0].Username)
	assert.Equal(t, "Ana Lima", auth.registered[0].Name)

	assert.Equal(t, "analima", Username("", "Ana Lima"))
}

func TestRegisterDetectsTakenEmail(t *testing.T) {
	auth := &fakeAuth{registerErr: &domain.HTTPError{Status: http.StatusConflict, Message: "Email already exists"}}
	svc := NewAccountService(auth, &fakeProfiles{}, session.New(nil, nil), nil, nil)

	err := svc.Register(context.Background(), RegisterForm{
		Name: "Ana", Email: "ana@example.com", Password: "password1", Confirm: "password1",
	})
	assert.Equal(t, "Email is already registered.", fieldErr(t, err, "email"))

	auth.registerErr = &domain.HTTPError{Status: http.StatusBadRequest, Message: "bad"}
	err = svc.Register(context.Background(), RegisterForm{
		Name: "Ana", Email: "ana@example.com", Password: "password1", Confirm: "password1",
	})
	assert.Equal(t, "Registration failed. Please check your input or try again.", domain.UserMessage(err))
}

func TestMeClearsRejectedCredential(t *testing.T) {
	profiles := &fakeProfiles{meErr: &domain.HTTPError{Status: http.StatusUnauthorized}}
	sess := session.New(nil, nil)
	require.NoError(t, sess.SetToken("expired"))
	cache := &countingCache{}
	svc := NewAccountService(&fakeAuth{}, profiles, sess, cache, nil)

	_, err := svc.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.False(t, sess.IsLoggedIn())
	assert.Equal(t, 1, cache.resets)

	_, err = svc.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestMeKeepsCredentialOnOtherErrors(t *testing.T) {
	profiles := &fakeProfiles{meErr: &domain.TransportError{Op: "GET", URL: "/users/me", Err: errors.New("refused")}}
	sess := session.New(nil, nil)
	require.NoError(t, sess.SetToken("tok"))
	svc := NewAccountService(&fakeAuth{}, profiles, sess, nil, nil)

	_, err := svc.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerOffline)
	assert.True(t, sess.IsLoggedIn())
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"go", "tui", "Web"}, ParseTags(" go, #tui,, Web ,GO "))
	assert.Nil(t, ParseTags(" , "))
}

func TestDraftValidation(t *testing.T) {
	_, err := PostForm{Content: "<p></p>"}.Draft(true)
	assert.Equal(t, "The title is required.", fieldErr(t, err, "title"))
	assert.Equal(t, "Content is required.", fieldErr(t, err, "content"))
	assert.Equal(t, "Tags are required (separate with commas).", fieldErr(t, err, "tags"))
	assert.Equal(t, "Cover image is required (PNG/JPG, max 5MB).", fieldErr(t, err, "image"))

	gif := &domain.Upload{FileName: "a.gif", ContentType: "image/gif", Data: []byte("GIF89a")}
	_, err = PostForm{Title: "t", Content: "<p>x</p>", Tags: "go", Image: gif}.Draft(true)
	assert.Equal(t, "Image format must be PNG or JPG.", fieldErr(t, err, "image"))

	big := &domain.Upload{FileName: "a.png", ContentType: "image/png", Data: make([]byte, MaxImageBytes+1)}
	_, err = PostForm{Title: "t", Content: "<p>x</p>", Tags: "go", Image: big}.Draft(true)
	assert.Equal(t, "Image size exceeds 5MB.", fieldErr(t, err, "image"))

	draft, err := PostForm{Title: " t ", Content: "<p>x</p>", Tags: "go, tui"}.Draft(false)
	require.NoError(t, err)
	assert.Equal(t, "t", draft.Title)
	assert.Equal(t, []string{"go", "tui"}, draft.Tags)
	assert.Nil(t, draft.Image)
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cover.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0644))

	up, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "cover.png", up.FileName)
	assert.Equal(t, "image/png", up.ContentType)
	assert.Empty(t, imageProblem(up))

	none, err := LoadImage("  ")
	assert.NoError(t, err)
	assert.Nil(t, none)

	_, err = LoadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

type fakePosts struct {
	created  []domain.PostDraft
	updated  map[int64]domain.PostDraft
	deleted  []int64
	byID     map[int64]domain.Post
	featured domain.PageResult
}

func (f *fakePosts) Recommended(context.Context, int, int) (domain.PageResult, error) {
	return f.featured, nil
}
func (f *fakePosts) MostLiked(context.Context, int, int) (domain.PageResult, error) {
	return domain.PageResult{}, nil
}
func (f *fakePosts) MyPosts(context.Context, int, int) (domain.PageResult, error) {
	return domain.PageResult{}, nil
}
func (f *fakePosts) Search(context.Context, string, int, int) (domain.PageResult, error) {
	return domain.PageResult{}, nil
}

func (f *fakePosts) Post(_ context.Context, id int64) (*domain.Post, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, &domain.HTTPError{Status: http.StatusNotFound}
	}
	return &p, nil
}

func (f *fakePosts) CreatePost(_ context.Context, d domain.PostDraft) (*domain.Post, error) {
	f.created = append(f.created, d)
	return &domain.Post{ID: 1, Title: d.Title}, nil
}

func (f *fakePosts) UpdatePost(_ context.Context, id int64, d domain.PostDraft) (*domain.Post, error) {
	if f.updated == nil {
		f.updated = make(map[int64]domain.PostDraft)
	}
	f.updated[id] = d
	return nil, nil
}

func (f *fakePosts) DeletePost(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestCreateInvalidatesListings(t *testing.T) {
	repo := &fakePosts{}
	cache := &countingCache{}
	svc := NewPostService(repo, cache, nil)

	png := &domain.Upload{FileName: "c.png", ContentType: "image/png", Data: pngHeader}
	post, err := svc.Create(context.Background(), PostForm{Title: "Hello", Content: "<p>body</p>", Tags: "go", Image: png})
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.ID)
	require.Len(t, repo.created, 1)
	assert.Contains(t, cache.invalidated, feed.ResourceMyPosts)
	assert.Contains(t, cache.invalidated, feed.ResourceRecommended)
}

func TestCreateRejectsInvalidFormWithoutNetwork(t *testing.T) {
	repo := &fakePosts{}
	cache := &countingCache{}
	svc := NewPostService(repo, cache, nil)

	_, err := svc.Create(context.Background(), PostForm{Title: "Hello", Content: "<p>body</p>", Tags: "go"})
	assert.NotEmpty(t, fieldErr(t, err, "image"))
	assert.Empty(t, repo.created)
	assert.Empty(t, cache.invalidated)
}

func TestUpdateAndDelete(t *testing.T) {
	repo := &fakePosts{}
	svc := NewPostService(repo, nil, nil)

	_, err := svc.Update(context.Background(), 5, PostForm{Title: "T", Content: "<p>b</p>", Tags: "go"})
	require.NoError(t, err)
	assert.Nil(t, repo.updated[5].Image)

	require.NoError(t, svc.Delete(context.Background(), 5))
	assert.Equal(t, []int64{5}, repo.deleted)
	assert.Error(t, svc.Delete(context.Background(), 0))
}

func TestOpenAcceptsSlugsAndURLs(t *testing.T) {
	repo := &fakePosts{byID: map[int64]domain.Post{42: {ID: 42, Title: "Answer"}}}
	svc := NewPostService(repo, nil, nil)

	for _, ref := range []string{"42", "42-answer", "https://blog.example/posts/42-answer"} {
		post, err := svc.Open(context.Background(), ref)
		require.NoError(t, err, ref)
		assert.Equal(t, int64(42), post.ID)
	}

	_, err := svc.Open(context.Background(), "answer")
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)

	_, err = svc.Open(context.Background(), "7")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRelatedSkipsCurrentPost(t *testing.T) {
	repo := &fakePosts{featured: domain.PageResult{Items: []domain.Post{{ID: 3}, {ID: 9}}, Total: 2, Page: 1, LastPage: 1}}
	svc := NewPostService(repo, nil, nil)

	other, err := svc.Related(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(9), other.ID)

	repo.featured.Items = repo.featured.Items[:1]
	other, err = svc.Related(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, other)
}

type fakeEngagement struct{}

func (fakeEngagement) ToggleLike(context.Context, int64) (domain.LikeResult, error) {
	return domain.LikeResult{}, nil
}
func (fakeEngagement) Likes(context.Context, int64) ([]domain.Author, error) {
	return []domain.Author{{ID: 1, Name: "Ana"}}, nil
}
func (fakeEngagement) Comments(context.Context, int64) ([]domain.Comment, error) {
	return []domain.Comment{{ID: 2}}, nil
}
func (fakeEngagement) AddComment(context.Context, int64, string) (*domain.Comment, error) {
	return nil, nil
}

type signedIn bool

func (s signedIn) IsLoggedIn() bool { return bool(s) }

func TestChangePasswordValidation(t *testing.T) {
	profiles := &fakeProfiles{passMsg: "Password updated successfully."}
	svc := NewProfileService(profiles, fakeEngagement{}, fakeEngagement{}, signedIn(true), nil)

	_, err := svc.ChangePassword(context.Background(), domain.PasswordChange{Current: "a"})
	assert.Equal(t, "All fields are required.", fieldErr(t, err, "newPassword"))

	_, err = svc.ChangePassword(context.Background(), domain.PasswordChange{Current: "a", New: "b", Confirm: "c"})
	assert.Equal(t, "New Password and Confirm New Password do not match.", fieldErr(t, err, "confirmPassword"))
	assert.Equal(t, 0, profiles.passCalls)

	msg, err := svc.ChangePassword(context.Background(), domain.PasswordChange{Current: "a", New: "b", Confirm: "b"})
	require.NoError(t, err)
	assert.Equal(t, "Password updated successfully.", msg)

	out := NewProfileService(profiles, fakeEngagement{}, fakeEngagement{}, signedIn(false), nil)
	_, err = out.ChangePassword(context.Background(), domain.PasswordChange{})
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestUpdateProfileFallsBackToMe(t *testing.T) {
	profiles := &fakeProfiles{me: &domain.Profile{ID: 1, Name: "Ana"}}
	svc := NewProfileService(profiles, fakeEngagement{}, fakeEngagement{}, signedIn(true), nil)

	_, err := svc.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: "  "})
	assert.Equal(t, "Name is required.", fieldErr(t, err, "name"))

	p, err := svc.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: " Ana ", Headline: " dev "})
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
	require.Len(t, profiles.updates, 1)
	assert.Equal(t, "dev", profiles.updates[0].Headline)
}

func TestStats(t *testing.T) {
	svc := NewProfileService(&fakeProfiles{}, fakeEngagement{}, fakeEngagement{}, signedIn(true), nil)
	stats, err := svc.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, stats.Likes, 1)
	assert.Len(t, stats.Comments, 1)
}

type memHistory struct{ saved []string }

func (m *memHistory) SearchHistory() []string           { return m.saved }
func (m *memHistory) SaveSearchHistory(t []string) error { m.saved = t; return nil }

func TestSearchHistory(t *testing.T) {
	store := &memHistory{saved: []string{"golang"}}
	h := NewSearchHistory(store, nil)

	h.Add("  bubbletea ")
	h.Add("GoLang")
	h.Add("")
	assert.Equal(t, []string{"GoLang", "bubbletea"}, h.Terms())
	assert.Equal(t, h.Terms(), store.saved)

	assert.Equal(t, []string{"GoLang"}, h.Suggest("gl", 5))
	assert.Equal(t, []string{"GoLang"}, h.Suggest("", 1))
	assert.Empty(t, h.Suggest("golang", 5), "exact match is not suggested")

	for i := 0; i < HistoryLimit+10; i++ {
		h.Add(string(rune('a'+i%26)) + string(rune('a'+i/26)))
	}
	assert.Len(t, h.Terms(), HistoryLimit)

	h.Clear()
	assert.Empty(t, h.Terms())
	assert.Empty(t, store.saved)
}
