package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/editor"
	"github.com/mmcdole/quill/internal/feed"
)

// Invalidator marks a cached resource stale
type Invalidator interface {
	Invalidate(resource string)
}

// PostForm is the compose screen's input. Content is editor HTML and Tags a
// comma-separated list.
type PostForm struct {
	Title   string
	Content string
	Tags    string
	Image   *domain.Upload
}

type postFields struct {
	Title string   `field:"title" validate:"required"`
	Tags  []string `field:"tags" validate:"min=1"`
}

var postMessages = messages{
	"title": "The title is required.",
	"tags":  "Tags are required (separate with commas).",
}

// Draft validates the form and builds the API payload. The image is only
// mandatory when creating.
func (f PostForm) Draft(requireImage bool) (domain.PostDraft, error) {
	fields := postFields{Title: strings.TrimSpace(f.Title), Tags: ParseTags(f.Tags)}

	extra := map[string]string{}
	if editor.PlainText(f.Content) == "" {
		extra["content"] = "Content is required."
	}
	if f.Image == nil && requireImage {
		extra["image"] = "Cover image is required (PNG/JPG, max 5MB)."
	} else {
		extra["image"] = imageProblem(f.Image)
	}

	if err := validateStruct(fields, postMessages, extra); err != nil {
		return domain.PostDraft{}, err
	}
	return domain.PostDraft{
		Title:   fields.Title,
		Content: f.Content,
		Tags:    fields.Tags,
		Image:   f.Image,
	}, nil
}

// ParseTags splits a comma list, trimming blanks, '#' prefixes and duplicates
func ParseTags(s string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, part := range strings.Split(s, ",") {
		tag := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "#"))
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}

// PostService reads single posts and runs authoring mutations. Mutations
// mark the affected listings stale.
type PostService struct {
	posts  domain.PostRepository
	cache  Invalidator
	logger *slog.Logger
}

// NewPostService creates a new PostService. cache may be nil.
func NewPostService(posts domain.PostRepository, cache Invalidator, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{posts: posts, cache: cache, logger: logger}
}

// Get fetches one post
func (s *PostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Post(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch post", "postID", id, "error", err)
		return nil, err
	}
	return post, nil
}

// Open fetches the post named by an id, a slug or a post URL
func (s *PostService) Open(ctx context.Context, ref string) (*domain.Post, error) {
	id, err := domain.ParseSlugID(ref)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Related returns the first recommended post other than post, or nil
func (s *PostService) Related(ctx context.Context, postID int64) (*domain.Post, error) {
	page, err := s.posts.Recommended(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		if page.Items[i].ID != postID {
			other := page.Items[i]
			return &other, nil
		}
	}
	return nil, nil
}

// Create validates and publishes a new post. The result is nil when the
// server did not echo the post back.
func (s *PostService) Create(ctx context.Context, form PostForm) (*domain.Post, error) {
	draft, err := form.Draft(true)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.CreatePost(ctx, draft)
	if err != nil {
		s.logger.Error("failed to create post", "error", err)
		return nil, err
	}
	s.invalidateListings()
	s.logger.Info("post created", "title", draft.Title)
	return post, nil
}

// Update validates and saves an edit. A nil image keeps the current one.
func (s *PostService) Update(ctx context.Context, id int64, form PostForm) (*domain.Post, error) {
	draft, err := form.Draft(false)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.UpdatePost(ctx, id, draft)
	if err != nil {
		s.logger.Error("failed to update post", "postID", id, "error", err)
		return nil, err
	}
	s.invalidateListings()
	return post, nil
}

// Delete removes a post
func (s *PostService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidSlug, id)
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		s.logger.Error("failed to delete post", "postID", id, "error", err)
		return err
	}
	s.invalidateListings()
	s.logger.Info("post deleted", "postID", id)
	return nil
}

func (s *PostService) invalidateListings() {
	if s.cache == nil {
		return
	}
	for _, resource := range []string{
		feed.ResourceRecommended,
		feed.ResourceMostLiked,
		feed.ResourceMyPosts,
		feed.ResourceSearch,
	} {
		s.cache.Invalidate(resource)
	}
}
