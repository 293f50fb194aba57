package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	toolName        = "generateImageUrl"
	maxToolResponse = 1 << 20 // 1 MiB
)

// ToolProvider calls a remote structured image-generation tool endpoint.
// The tool's reply wraps its output in text content blocks; each block is
// either a bare URL or a JSON payload carrying the URL under one of the
// keys url, imageUrl, or image_url.
type ToolProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewToolProvider creates the tier-1 provider. A nil client falls back to
// a default with a 30s timeout.
func NewToolProvider(endpoint, apiKey string, client *http.Client) *ToolProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ToolProvider{endpoint: endpoint, apiKey: apiKey, client: client}
}

func (p *ToolProvider) Name() string { return "flux-tool" }

type toolCall struct {
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *ToolProvider) Generate(ctx context.Context, prompt string) (string, error) {
	endpoint := p.endpoint
	if p.apiKey != "" {
		endpoint += "?" + url.Values{"api_key": []string{p.apiKey}}.Encode()
	}

	body, err := json.Marshal(toolCall{
		Tool:      toolName,
		Arguments: map[string]interface{}{"prompt": prompt},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tool call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("tool call returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxToolResponse))
	if err != nil {
		return "", fmt.Errorf("failed to read tool response: %w", err)
	}

	var result toolResult
	if err := json.Unmarshal(raw, &result); err == nil && len(result.Content) > 0 {
		for _, block := range result.Content {
			if block.Type != "text" {
				continue
			}
			if imageURL, ok := extractImageURL(strings.TrimSpace(block.Text)); ok {
				return imageURL, nil
			}
		}
		return "", fmt.Errorf("tool response did not contain an image URL")
	}

	// Some deployments reply with the payload directly rather than
	// wrapped in content blocks.
	if imageURL, ok := extractImageURL(strings.TrimSpace(string(raw))); ok {
		return imageURL, nil
	}
	return "", fmt.Errorf("tool response did not contain an image URL")
}

// extractImageURL handles both response shapes: a bare URL, or a JSON
// object carrying the URL under url, imageUrl, or image_url.
func extractImageURL(text string) (string, bool) {
	if strings.HasPrefix(text, "http") {
		return text, true
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return "", false
	}
	for _, key := range []string{"url", "imageUrl", "image_url"} {
		if value, ok := payload[key].(string); ok && value != "" {
			return value, true
		}
	}
	return "", false
}
