package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mmcdole/quill/internal/domain"
)

// Session is the credential holder the account flows write to
type Session interface {
	IsLoggedIn() bool
	SetToken(token string) error
	Clear() error
}

// Resetter drops every cached page
type Resetter interface {
	Reset()
}

// RegisterForm is the sign-up form as typed by the user
type RegisterForm struct {
	Name     string `field:"name" validate:"required"`
	Email    string `field:"email" validate:"required,email"`
	Password string `field:"password" validate:"required,min=8"`
	Confirm  string `field:"confirmPassword" validate:"required,eqfield=Password"`
}

type loginForm struct {
	Email    string `field:"email" validate:"required,email"`
	Password string `field:"password" validate:"required,min=6"`
}

var loginMessages = messages{
	"email.required":    "Email is required.",
	"email.email":       "Invalid email format.",
	"password.required": "Password is required.",
	"password.min":      "Password must be at least 6 characters long.",
}

var registerMessages = messages{
	"name":                     "Name is required.",
	"email.required":           "Email is required.",
	"email.email":              "Invalid email format.",
	"password.required":        "Password is required.",
	"password.min":             "Password must be at least 8 characters long.",
	"confirmPassword.required": "Please confirm your password.",
	"confirmPassword.eqfield":  "Passwords do not match.",
}

// AccountService handles sign-in, sign-up, sign-out and the current user
type AccountService struct {
	auth     domain.AuthRepository
	profiles domain.ProfileRepository
	session  Session
	cache    Resetter
	logger   *slog.Logger
}

// NewAccountService creates a new AccountService. cache may be nil.
func NewAccountService(auth domain.AuthRepository, profiles domain.ProfileRepository, session Session, cache Resetter, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{auth: auth, profiles: profiles, session: session, cache: cache, logger: logger}
}

// Login validates the form, exchanges it for a token and stores the token
func (s *AccountService) Login(ctx context.Context, email, password string) error {
	form := loginForm{Email: strings.TrimSpace(email), Password: password}
	if err := validateStruct(form, loginMessages, nil); err != nil {
		return err
	}

	token, err := s.auth.Login(ctx, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return domain.NewValidationError("password", "Invalid email or password.")
		}
		return err
	}

	if err := s.session.SetToken(token); err != nil {
		// the in-memory session is still signed in
		s.logger.Warn("failed to persist credential", "error", err)
	}
	s.resetCache()
	return nil
}

// Register validates the form and creates the account. It does not sign in.
func (s *AccountService) Register(ctx context.Context, form RegisterForm) error {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	if err := validateStruct(form, registerMessages, nil); err != nil {
		return err
	}

	input := domain.RegisterInput{
		Name:     form.Name,
		Username: Username(form.Email, form.Name),
		Email:    form.Email,
		Password: form.Password,
	}
	if err := s.auth.Register(ctx, input); err != nil {
		var herr *domain.HTTPError
		if errors.As(err, &herr) {
			if emailTaken(herr.Message + " " + herr.Body) {
				return domain.NewValidationError("email", "Email is already registered.")
			}
			if herr.Status < 500 {
				s.logger.Warn("registration rejected", "status", herr.Status, "message", herr.Message)
				return &domain.HTTPError{
					Status:  herr.Status,
					Body:    herr.Body,
					Message: "Registration failed. Please check your input or try again.",
				}
			}
		}
		return err
	}
	s.logger.Info("account registered", "username", input.Username)
	return nil
}

// Logout clears the credential and every cached page
func (s *AccountService) Logout() error {
	err := s.session.Clear()
	s.resetCache()
	return err
}

// Me returns the current user's profile. A rejected credential is cleared.
func (s *AccountService) Me(ctx context.Context) (*domain.Profile, error) {
	if !s.session.IsLoggedIn() {
		return nil, domain.ErrNotLoggedIn
	}
	profile, err := s.profiles.Me(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.logger.Info("credential rejected, signing out")
			if cerr := s.Logout(); cerr != nil {
				s.logger.Warn("failed to clear credential", "error", cerr)
			}
		}
		return nil, err
	}
	return profile, nil
}

func (s *AccountService) IsLoggedIn() bool {
	return s.session.IsLoggedIn()
}

func (s *AccountService) resetCache() {
	if s.cache != nil {
		s.cache.Reset()
	}
}

// Username derives a username from the e-mail local part, falling back to
// the name without spaces
func Username(email, name string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		if u := strings.TrimSpace(email[:at]); u != "" {
			return u
		}
	}
	return strings.Join(strings.Fields(strings.ToLower(name)), "")
}

func emailTaken(msg string) bool {
	lower := strings.ToLower(msg)
	if !strings.Contains(lower, "email") {
		return false
	}
	for _, word := range []string{"taken", "exist", "already", "terdaftar", "sudah"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
