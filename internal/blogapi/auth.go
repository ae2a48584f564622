package blogapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/quill/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges e-mail and password for a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	raw, err := c.Request(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return "", err
	}

	dto, err := decode[tokenDTO](raw)
	if err != nil {
		return "", err
	}

	token := dto.Token
	if token == "" {
		token = dto.AccessToken
	}
	if token == "" && dto.Data != nil {
		token = dto.Data.Token
	}
	if token == "" {
		return "", fmt.Errorf("login response did not include a token")
	}

	c.logger.Info("login succeeded", "email", email)
	return token, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, input domain.RegisterInput) error {
	req := registerRequest{
		Name:     input.Name,
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	}
	_, err := c.Request(ctx, http.MethodPost, "/auth/register", req, nil)
	return err
}
