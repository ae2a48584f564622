package blogapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mmcdole/quill/internal/domain"
)

// ToggleLike likes or unlikes a post for the signed-in user
func (c *Client) ToggleLike(ctx context.Context, postID int64) (domain.LikeResult, error) {
	raw, err := c.Request(ctx, http.MethodPost, postPath(postID)+"/like", struct{}{}, nil)
	if err != nil {
		return domain.LikeResult{}, err
	}
	var dto likeDTO
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &dto); err != nil {
			c.logger.Warn("unparseable like response", "post", postID, "error", err)
		}
	}
	return MapLike(dto), nil
}

// Likes returns the users who liked a post
func (c *Client) Likes(ctx context.Context, postID int64) ([]domain.Author, error) {
	raw, err := c.Request(ctx, http.MethodGet, postPath(postID)+"/likes", nil, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []domain.Author{}, nil
	}
	items, err := unwrapList[authorDTO](raw)
	if err != nil {
		return nil, err
	}
	return MapAuthors(items), nil
}
