package domain

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the blog API is unreachable
	ErrServerOffline = errors.New("blog server is unreachable")

	// ErrUnauthorized indicates the server rejected the credential
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrNotLoggedIn indicates an action that needs a credential was attempted without one
	ErrNotLoggedIn = errors.New("please log in first")

	// ErrMalformedPage indicates a paginated envelope that violates its invariants
	ErrMalformedPage = errors.New("malformed page")

	// ErrInvalidSlug indicates a post slug without a leading numeric id
	ErrInvalidSlug = errors.New("invalid post slug")

	// ErrBusy indicates a mutation is already in flight
	ErrBusy = errors.New("another request is in progress")
)

// TransportError is a network-level failure: no HTTP response was received
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets callers match any transport failure with ErrServerOffline
func (e *TransportError) Is(target error) bool { return target == ErrServerOffline }

// HTTPError is a non-2xx response. Message is the server-supplied explanation
// when the body carried one.
type HTTPError struct {
	Status  int
	Body    string
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, http.StatusText(e.Status))
}

// Is maps well-known statuses onto the sentinels
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// ValidationError is a client-side rejection raised before any network call
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = e.Fields[k]
	}
	return strings.Join(parts, "; ")
}

// Field returns the message for one field, or ""
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// UserMessage renders an error for the status line
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if errors.Is(err, ErrServerOffline) {
		return "Cannot reach the server. Check your connection."
	}
	if errors.Is(err, ErrNotLoggedIn) {
		return ErrNotLoggedIn.Error()
	}
	var herr *HTTPError
	if errors.As(err, &herr) {
		switch {
		case herr.Status == http.StatusUnauthorized:
			return "Your session has expired. Please log in again."
		case herr.Message != "":
			return herr.Message
		case herr.Status >= 500:
			return "The server had a problem. Try again later."
		}
		return http.StatusText(herr.Status)
	}
	return err.Error()
}
