package imagegen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RenderProvider requests a direct image-rendering endpoint with the
// URL-encoded prompt appended to the path. The response must be image
// content; an error JSON or a 4xx/5xx reply fails the tier.
type RenderProvider struct {
	endpoint string
	client   *http.Client
}

// NewRenderProvider creates the tier-2 provider. A nil client falls back
// to a default with a 30s timeout.
func NewRenderProvider(endpoint string, client *http.Client) *RenderProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RenderProvider{endpoint: strings.TrimRight(endpoint, "/"), client: client}
}

func (p *RenderProvider) Name() string { return "render" }

func (p *RenderProvider) Generate(ctx context.Context, prompt string) (string, error) {
	imageURL := p.endpoint + "/" + url.PathEscape(prompt)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("render call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("render endpoint returned status %d", resp.StatusCode)
	}
	if contentType := resp.Header.Get("Content-Type"); !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("render endpoint returned non-image content type %q", contentType)
	}

	return imageURL, nil
}
