package blogapi

import (
	"context"
	"net/http"

	"github.com/mmcdole/quill/internal/domain"
)

// Comments returns a post's comments. The server answers with either a bare
// array or a {"data": [...]} envelope.
func (c *Client) Comments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	raw, err := c.Request(ctx, http.MethodGet, postPath(postID)+"/comments", nil, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []domain.Comment{}, nil
	}
	items, err := unwrapList[commentDTO](raw)
	if err != nil {
		return nil, err
	}
	return MapComments(items, postID), nil
}

// AddComment posts a comment. A nil comment with a nil error means the server
// accepted it without echoing the created record.
func (c *Client) AddComment(ctx context.Context, postID int64, content string) (*domain.Comment, error) {
	body := map[string]string{"content": content}
	raw, err := c.Request(ctx, http.MethodPost, postPath(postID)+"/comments", body, nil)
	if err != nil {
		return nil, err
	}
	dto, ok := unwrapObject[commentDTO](raw)
	if !ok {
		return nil, nil
	}
	comment := MapComment(dto, postID)
	return &comment, nil
}
