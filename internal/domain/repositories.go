package domain

import (
	"context"
)

// PostRepository provides access to posts and their paginated listings
type PostRepository interface {
	// Recommended returns one page of the recommended feed
	Recommended(ctx context.Context, page, limit int) (PageResult, error)

	// MostLiked returns one page of posts ordered by like count
	MostLiked(ctx context.Context, page, limit int) (PageResult, error)

	// MyPosts returns one page of the signed-in user's posts
	MyPosts(ctx context.Context, page, limit int) (PageResult, error)

	// Search returns one page of posts matching term
	Search(ctx context.Context, term string, page, limit int) (PageResult, error)

	// Post returns a single post
	Post(ctx context.Context, id int64) (*Post, error)

	// CreatePost publishes a new post
	CreatePost(ctx context.Context, draft PostDraft) (*Post, error)

	// UpdatePost edits an existing post; a nil draft.Image keeps the current image
	UpdatePost(ctx context.Context, id int64, draft PostDraft) (*Post, error)

	// DeletePost removes a post
	DeletePost(ctx context.Context, id int64) error
}

// CommentRepository provides access to a post's comments
type CommentRepository interface {
	Comments(ctx context.Context, postID int64) ([]Comment, error)

	// AddComment returns the created comment, or nil when the server did not echo it
	AddComment(ctx context.Context, postID int64, content string) (*Comment, error)
}

// LikeRepository provides the like toggle and the list of likers
type LikeRepository interface {
	ToggleLike(ctx context.Context, postID int64) (LikeResult, error)
	Likes(ctx context.Context, postID int64) ([]Author, error)
}

// AuthRepository exchanges credentials for a bearer token
type AuthRepository interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, input RegisterInput) error
}

// ProfileRepository provides the signed-in user's account operations
type ProfileRepository interface {
	Me(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error)

	// ChangePassword returns the server's confirmation message
	ChangePassword(ctx context.Context, change PasswordChange) (string, error)
}
