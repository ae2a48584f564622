package blogapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmcdole/quill/internal/domain"
)

// Recommended returns one page of the recommended feed
func (c *Client) Recommended(ctx context.Context, page, limit int) (domain.PageResult, error) {
	return c.listPage(ctx, "/posts/recommended", pageQuery(page, limit), limit)
}

// MostLiked returns one page of the most-liked feed
func (c *Client) MostLiked(ctx context.Context, page, limit int) (domain.PageResult, error) {
	return c.listPage(ctx, "/posts/most-liked", pageQuery(page, limit), limit)
}

// MyPosts returns one page of the signed-in user's posts
func (c *Client) MyPosts(ctx context.Context, page, limit int) (domain.PageResult, error) {
	return c.listPage(ctx, "/posts/my-posts", pageQuery(page, limit), limit)
}

// Search returns one page of posts matching term
func (c *Client) Search(ctx context.Context, term string, page, limit int) (domain.PageResult, error) {
	query := pageQuery(page, limit)
	query.Set("query", term)
	return c.listPage(ctx, "/posts/search", query, limit)
}

func (c *Client) listPage(ctx context.Context, path string, query url.Values, limit int) (domain.PageResult, error) {
	raw, err := c.Request(ctx, http.MethodGet, path, nil, query)
	if err != nil {
		return domain.PageResult{}, err
	}

	dto, err := decode[pageDTO](raw)
	if err != nil {
		c.logger.Error("JSON parse error", "path", path, "error", err, "bodyLen", len(raw))
		return domain.PageResult{}, err
	}

	result := MapPage(dto)
	if err := result.Validate(limit); err != nil {
		c.logger.Warn("rejecting malformed page", "path", path, "error", err)
		return domain.PageResult{}, err
	}
	return result, nil
}

// Post returns a single post
func (c *Client) Post(ctx context.Context, id int64) (*domain.Post, error) {
	raw, err := c.Request(ctx, http.MethodGet, postPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	dto, ok := unwrapObject[postDTO](raw)
	if !ok {
		return nil, fmt.Errorf("failed to parse post %d", id)
	}
	post := MapPost(dto)
	return &post, nil
}

// CreatePost publishes a new post as multipart: title, content, tags (repeated), image
func (c *Client) CreatePost(ctx context.Context, draft domain.PostDraft) (*domain.Post, error) {
	raw, err := c.RequestForm(ctx, http.MethodPost, "/posts", draftForm(draft))
	if err != nil {
		return nil, err
	}
	return c.echoedPost(raw), nil
}

// UpdatePost edits a post; the image part is omitted when draft.Image is nil
func (c *Client) UpdatePost(ctx context.Context, id int64, draft domain.PostDraft) (*domain.Post, error) {
	raw, err := c.RequestForm(ctx, http.MethodPatch, postPath(id), draftForm(draft))
	if err != nil {
		return nil, err
	}
	return c.echoedPost(raw), nil
}

// DeletePost removes a post
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	_, err := c.Request(ctx, http.MethodDelete, postPath(id), nil, nil)
	return err
}

// echoedPost maps the post a mutation echoed back, or nil when it did not
func (c *Client) echoedPost(raw []byte) *domain.Post {
	dto, ok := unwrapObject[postDTO](raw)
	if !ok {
		return nil
	}
	post := MapPost(dto)
	return &post
}

func draftForm(draft domain.PostDraft) *Form {
	form := NewForm().
		Add("title", draft.Title).
		Add("content", draft.Content)
	for _, tag := range draft.Tags {
		form.Add("tags", tag)
	}
	return form.File("image", draft.Image)
}

func pageQuery(page, limit int) url.Values {
	query := url.Values{}
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return query
}

func postPath(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10)
}
