package service

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmcdole/quill/internal/domain"
)

// MaxImageBytes is the upload limit for cover images and avatars
const MaxImageBytes = 5 * 1024 * 1024

// LoadImage reads an image file for upload. A blank path returns nil.
func LoadImage(path string) (*domain.Upload, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return &domain.Upload{
		FileName:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// imageProblem returns a user message when u is not an acceptable image
func imageProblem(u *domain.Upload) string {
	if u == nil {
		return ""
	}
	switch u.ContentType {
	case "image/png", "image/jpeg", "image/jpg":
	default:
		return "Image format must be PNG or JPG."
	}
	if u.Size() > MaxImageBytes {
		return "Image size exceeds 5MB."
	}
	return ""
}
