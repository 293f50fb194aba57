package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolProviderGenerate(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		wantURL  string
		wantErr  bool
	}{
		{
			name:     "content block with bare url",
			status:   http.StatusOK,
			response: `{"content":[{"type":"text","text":"https://img.example.com/gen.png"}]}`,
			wantURL:  "https://img.example.com/gen.png",
		},
		{
			name:     "content block with json payload",
			status:   http.StatusOK,
			response: `{"content":[{"type":"text","text":"{\"imageUrl\":\"https://img.example.com/gen2.png\"}"}]}`,
			wantURL:  "https://img.example.com/gen2.png",
		},
		{
			name:     "snake case key",
			status:   http.StatusOK,
			response: `{"content":[{"type":"text","text":"{\"image_url\":\"https://img.example.com/gen3.png\"}"}]}`,
			wantURL:  "https://img.example.com/gen3.png",
		},
		{
			name:     "non-text blocks skipped",
			status:   http.StatusOK,
			response: `{"content":[{"type":"image","text":"ignored"},{"type":"text","text":"https://img.example.com/gen4.png"}]}`,
			wantURL:  "https://img.example.com/gen4.png",
		},
		{
			name:     "raw body url without content wrapper",
			status:   http.StatusOK,
			response: `{"url":"https://img.example.com/raw.png"}`,
			wantURL:  "https://img.example.com/raw.png",
		},
		{
			name:     "no url anywhere",
			status:   http.StatusOK,
			response: `{"content":[{"type":"text","text":"sorry, no image"}]}`,
			wantErr:  true,
		},
		{
			name:     "upstream error status",
			status:   http.StatusBadGateway,
			response: `{"error":"overloaded"}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "sk-test", r.URL.Query().Get("api_key"))

				var call struct {
					Tool      string         `json:"tool"`
					Arguments map[string]any `json:"arguments"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&call))
				assert.Equal(t, "generateImageUrl", call.Tool)
				assert.Equal(t, "a sunset", call.Arguments["prompt"])

				w.WriteHeader(tt.status)
				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			provider := NewToolProvider(server.URL, "sk-test", server.Client())
			url, err := provider.Generate(context.Background(), "a sunset")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantURL, url)
			}
		})
	}
}

func TestToolProviderWithoutAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("api_key"))
		w.Write([]byte(`{"content":[{"type":"text","text":"https://img.example.com/k.png"}]}`))
	}))
	defer server.Close()

	provider := NewToolProvider(server.URL, "", server.Client())
	url, err := provider.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/k.png", url)
}
