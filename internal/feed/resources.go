package feed

import (
	"context"
	"fmt"

	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/query"
)

// Paginated resources served through the query cache
const (
	ResourceRecommended = "recommended"
	ResourceMostLiked   = "most-liked"
	ResourceMyPosts     = "my-posts"
	ResourceSearch      = "search"
)

// Title returns the tab label for a resource
func Title(resource string) string {
	switch resource {
	case ResourceRecommended:
		return "Recommended"
	case ResourceMostLiked:
		return "Most liked"
	case ResourceMyPosts:
		return "My posts"
	case ResourceSearch:
		return "Search"
	default:
		return resource
	}
}

// NewFetcher routes cache keys to the post accessors. A limit of zero lets
// the server choose the page size.
func NewFetcher(repo domain.PostRepository, limit, searchLimit int) query.Fetcher[domain.PageResult] {
	return func(ctx context.Context, key query.Key) (domain.PageResult, error) {
		switch key.Resource {
		case ResourceRecommended:
			return repo.Recommended(ctx, key.Page, limit)
		case ResourceMostLiked:
			return repo.MostLiked(ctx, key.Page, limit)
		case ResourceMyPosts:
			return repo.MyPosts(ctx, key.Page, limit)
		case ResourceSearch:
			return repo.Search(ctx, key.Term, key.Page, searchLimit)
		default:
			return domain.PageResult{}, fmt.Errorf("feed: unknown resource %q", key.Resource)
		}
	}
}
