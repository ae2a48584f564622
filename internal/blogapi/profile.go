package blogapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/quill/internal/domain"
)

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Me returns the signed-in user's profile
func (c *Client) Me(ctx context.Context) (*domain.Profile, error) {
	raw, err := c.Request(ctx, http.MethodGet, "/users/me", nil, nil)
	if err != nil {
		return nil, err
	}
	dto, ok := unwrapObject[authorDTO](raw)
	if !ok {
		return nil, fmt.Errorf("failed to parse profile")
	}
	profile := MapProfile(dto)
	return &profile, nil
}

// UpdateProfile edits name, headline and, when given, the avatar
func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Profile, error) {
	form := NewForm().
		Add("name", update.Name).
		Add("headline", update.Headline).
		File("avatar", update.Avatar)

	raw, err := c.RequestForm(ctx, http.MethodPatch, "/users/profile", form)
	if err != nil {
		return nil, err
	}
	dto, ok := unwrapObject[authorDTO](raw)
	if !ok {
		return nil, nil
	}
	profile := MapProfile(dto)
	return &profile, nil
}

// ChangePassword updates the password. A body with "success": false is an
// error even on a 2xx status.
func (c *Client) ChangePassword(ctx context.Context, change domain.PasswordChange) (string, error) {
	req := passwordRequest{
		CurrentPassword: change.Current,
		NewPassword:     change.New,
		ConfirmPassword: change.Confirm,
	}
	raw, err := c.Request(ctx, http.MethodPatch, "/users/password", req, nil)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "Password updated", nil
	}

	dto, err := decode[passwordDTO](raw)
	if err != nil {
		return "", err
	}
	if dto.Success != nil && !*dto.Success {
		msg := dto.Message
		if msg == "" {
			msg = "password change was rejected"
		}
		return "", &domain.HTTPError{Status: http.StatusBadRequest, Body: string(raw), Message: msg}
	}
	if dto.Message == "" {
		return "Password updated", nil
	}
	return dto.Message, nil
}
