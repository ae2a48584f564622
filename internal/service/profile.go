package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/quill/internal/domain"
)

// AuthState reports whether a credential is present
type AuthState interface {
	IsLoggedIn() bool
}

type profileFields struct {
	Name string `field:"name" validate:"required"`
}

type passwordFields struct {
	Current string `field:"currentPassword" validate:"required"`
	New     string `field:"newPassword" validate:"required"`
	Confirm string `field:"confirmPassword" validate:"required,eqfield=New"`
}

var profileMessages = messages{
	"name": "Name is required.",
}

var passwordMessages = messages{
	"currentPassword":          "All fields are required.",
	"newPassword":              "All fields are required.",
	"confirmPassword.required": "All fields are required.",
	"confirmPassword.eqfield":  "New Password and Confirm New Password do not match.",
}

// PostStats lists who liked a post and what was said about it
type PostStats struct {
	Likes    []domain.Author
	Comments []domain.Comment
}

// ProfileService edits the signed-in user's account and reports on their posts
type ProfileService struct {
	profiles domain.ProfileRepository
	likes    domain.LikeRepository
	comments domain.CommentRepository
	auth     AuthState
	logger   *slog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(profiles domain.ProfileRepository, likes domain.LikeRepository, comments domain.CommentRepository, auth AuthState, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{profiles: profiles, likes: likes, comments: comments, auth: auth, logger: logger}
}

// UpdateProfile saves name, headline and an optional new avatar
func (s *ProfileService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Profile, error) {
	if !s.auth.IsLoggedIn() {
		return nil, domain.ErrNotLoggedIn
	}
	update.Name = strings.TrimSpace(update.Name)
	update.Headline = strings.TrimSpace(update.Headline)

	extra := map[string]string{"avatar": imageProblem(update.Avatar)}
	if err := validateStruct(profileFields{Name: update.Name}, profileMessages, extra); err != nil {
		return nil, err
	}

	profile, err := s.profiles.UpdateProfile(ctx, update)
	if err != nil {
		s.logger.Error("failed to update profile", "error", err)
		return nil, err
	}
	if profile == nil {
		// server did not echo the profile; read it back
		return s.profiles.Me(ctx)
	}
	return profile, nil
}

// ChangePassword validates and submits a password change, returning the
// server's confirmation
func (s *ProfileService) ChangePassword(ctx context.Context, change domain.PasswordChange) (string, error) {
	if !s.auth.IsLoggedIn() {
		return "", domain.ErrNotLoggedIn
	}
	fields := passwordFields{Current: change.Current, New: change.New, Confirm: change.Confirm}
	if err := validateStruct(fields, passwordMessages, nil); err != nil {
		return "", err
	}
	msg, err := s.profiles.ChangePassword(ctx, change)
	if err != nil {
		s.logger.Warn("password change failed", "error", err)
		return "", err
	}
	return msg, nil
}

// Stats loads the likers and comments of one post
func (s *ProfileService) Stats(ctx context.Context, postID int64) (PostStats, error) {
	likes, err := s.likes.Likes(ctx, postID)
	if err != nil {
		return PostStats{}, err
	}
	comments, err := s.comments.Comments(ctx, postID)
	if err != nil {
		return PostStats{}, err
	}
	return PostStats{Likes: likes, Comments: comments}, nil
}
