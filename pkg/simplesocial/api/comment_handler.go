package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// CommentHandler handles HTTP requests addressing comments by id
type CommentHandler struct {
	service simplesocial.Service
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(service simplesocial.Service) *CommentHandler {
	return &CommentHandler{service: service}
}

// UpdateCommentBody is the request body for a partial comment update
type UpdateCommentBody struct {
	Content *string `json:"content"`
}

// GetComment retrieves a single comment
func (h *CommentHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.service.GetComment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, comment)
}

// UpdateComment applies a partial update; owner only
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, simplesocial.ErrInvalidToken)
		return
	}

	var body UpdateCommentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), principal, chi.URLParam(r, "id"),
		simplesocial.UpdateCommentRequest{Content: body.Content})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Comment updated", "comment_id", comment.ID)
	render.JSON(w, r, comment)
}

// DeleteComment deletes a comment; owner only
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, simplesocial.ErrInvalidToken)
		return
	}

	commentID := chi.URLParam(r, "id")
	if err := h.service.DeleteComment(r.Context(), principal, commentID); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Comment deleted", "comment_id", commentID)
	w.WriteHeader(http.StatusNoContent)
}
