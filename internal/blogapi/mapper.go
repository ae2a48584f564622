package blogapi

import (
	"time"

	"github.com/mmcdole/quill/internal/domain"
)

// MapPost converts an API post to a domain post
func MapPost(p postDTO) domain.Post {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Post{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Tags:         tags,
		ImageURL:     deref(p.ImageURL),
		Author:       MapAuthor(p.Author),
		CreatedAt:    parseTime(p.CreatedAt),
		LikeCount:    int(p.Likes),
		CommentCount: int(p.Comments),
	}
}

// MapPosts converts a slice of API posts
func MapPosts(items []postDTO) []domain.Post {
	posts := make([]domain.Post, 0, len(items))
	for _, p := range items {
		posts = append(posts, MapPost(p))
	}
	return posts
}

// MapPage converts a paginated envelope
func MapPage(p pageDTO) domain.PageResult {
	return domain.PageResult{
		Items:    MapPosts(p.Data),
		Total:    p.Total,
		Page:     p.Page,
		LastPage: p.LastPage,
	}
}

// MapAuthor converts an API user reference
func MapAuthor(a authorDTO) domain.Author {
	return domain.Author{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Headline:  a.Headline,
		AvatarURL: deref(a.AvatarURL),
	}
}

// MapAuthors converts a slice of API users
func MapAuthors(items []authorDTO) []domain.Author {
	out := make([]domain.Author, 0, len(items))
	for _, a := range items {
		out = append(out, MapAuthor(a))
	}
	return out
}

// MapProfile converts the /users/me payload
func MapProfile(a authorDTO) domain.Profile {
	return domain.Profile{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Headline:  a.Headline,
		AvatarURL: deref(a.AvatarURL),
	}
}

// MapComment converts an API comment
func MapComment(c commentDTO, postID int64) domain.Comment {
	if c.PostID != 0 {
		postID = c.PostID
	}
	return domain.Comment{
		ID:        c.ID,
		PostID:    postID,
		Content:   c.Content,
		CreatedAt: parseTime(c.CreatedAt),
		Author:    MapAuthor(c.Author),
	}
}

// MapComments converts a slice of API comments
func MapComments(items []commentDTO, postID int64) []domain.Comment {
	out := make([]domain.Comment, 0, len(items))
	for _, c := range items {
		out = append(out, MapComment(c, postID))
	}
	return out
}

// MapLike flattens {likes, liked} or {data: {likes, liked}}
func MapLike(l likeDTO) domain.LikeResult {
	src := l
	if src.Likes == nil && src.Data != nil {
		src = *src.Data
	}
	if src.Likes == nil {
		return domain.LikeResult{}
	}
	res := domain.LikeResult{Likes: *src.Likes, Confirmed: true}
	if src.Liked != nil {
		res.Liked = *src.Liked
		res.LikedKnown = true
	}
	return res
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
