package api

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// APIKeyHeader carries the external caller's key on proxy requests.
const APIKeyHeader = "X-MCP-API-Key"

// ProxyHandler accepts comment payloads from externally-keyed callers and
// forwards them into the regular comment-creation logic. The API key is
// validated separately from the bearer-token flow, which still identifies
// the acting principal.
type ProxyHandler struct {
	service simplesocial.Service
	apiKey  string
}

// NewProxyHandler creates a proxy handler validating against apiKey.
func NewProxyHandler(service simplesocial.Service, apiKey string) *ProxyHandler {
	return &ProxyHandler{service: service, apiKey: apiKey}
}

// ProxyCommentRequest is the externally-tagged comment payload
type ProxyCommentRequest struct {
	PostID           string `json:"post_id"`
	Content          string `json:"content"`
	ExternalUserID   string `json:"external_user_id,omitempty"`
	ExternalUsername string `json:"external_username,omitempty"`
	ExternalEmail    string `json:"external_email,omitempty"`
}

// CreateComment validates the caller's API key and creates the comment.
func (h *ProxyHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(APIKeyHeader)
	if h.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.apiKey)) != 1 {
		writeError(w, r, simplesocial.ErrInvalidToken)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, simplesocial.ErrInvalidToken)
		return
	}

	var req ProxyCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	if req.PostID == "" || req.Content == "" {
		badRequest(w, r, "post_id and content are required")
		return
	}

	comment, err := h.service.CreateComment(r.Context(), principal, req.PostID,
		simplesocial.CreateCommentRequest{Content: req.Content})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Proxy comment created", "comment_id", comment.ID,
		"post_id", comment.PostID, "external_user_id", req.ExternalUserID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, comment)
}
