package blogapi

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const probeTimeout = 10 * time.Second

// Probe checks that baseURL serves the blog API by requesting the first
// recommended page anonymously. It returns the normalized URL.
func Probe(ctx context.Context, baseURL string) (string, error) {
	client, err := NewClient(baseURL, nil, nil, WithTimeout(probeTimeout))
	if err != nil {
		return "", err
	}

	raw, err := client.Request(ctx, http.MethodGet, "/posts/recommended", nil, pageQuery(1, 1))
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	dto, err := decode[pageDTO](raw)
	if err != nil {
		return "", fmt.Errorf("not a blog API: %w", err)
	}
	if dto.Data == nil && dto.LastPage == 0 && dto.Page == 0 {
		return "", fmt.Errorf("not a blog API: response has no pagination envelope")
	}

	return client.BaseURL(), nil
}
