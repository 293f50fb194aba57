package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// PostHandler handles HTTP requests for posts and their comments
type PostHandler struct {
	service simplesocial.Service
}

// NewPostHandler creates a new post handler
func NewPostHandler(service simplesocial.Service) *PostHandler {
	return &PostHandler{service: service}
}

// UpdatePostBody is the request body for a partial post update
type UpdatePostBody struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// CreateCommentBody is the request body for creating a comment
type CreateCommentBody struct {
	Content string `json:"content"`
}

// AttachImageBody is the request body for image enrichment
type AttachImageBody struct {
	Prompt string `json:"prompt"`
}

// CreatePost creates a new post authored by the request principal
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, simplesocial.ErrInvalidToken)
		return
	}

	var req simplesocial.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	if req.Title == "" || req.Content == "" {
		badRequest(w, r, "title and content are required")
		return
	}

	post, err := h.service.CreatePost(r.Context(), principal, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Post created", "post_id", post.ID, "author_id", post.AuthorID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, post)
}

// ListPosts lists posts newest first, optionally filtered by author
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	req := simplesocial.ListPostsRequest{
		Page:     pageFromQuery(r, "skip", "limit"),
		AuthorID: r.URL.Query().Get("author_id"),
	}

	posts, err := h.service.ListPosts(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, posts)
}

// GetPost retrieves a post with an optional page of its comments
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	req := simplesocial.GetPostRequest{
		IncludeComments: boolFromQuery(r, "include_comments", true),
		CommentsPage:    pageFromQuery(r, "comments_skip", "comments_limit"),
	}

	result, err := h.service.GetPostWithComments(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// UpdatePost applies a partial update; owner only
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, simplesocial.ErrInvalidToken)
		return
	}

	var body UpdatePostBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}

	post, err := h.service.UpdatePost(r.Context(), principal, chi.URLParam(r, "id"),
		simplesocial.UpdatePostRequest{Title: body.Title, Content: body.Content})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Post updated", "post_id", post.ID)
	render.JSON(w, r, post)
}

// DeletePost deletes a post and all of its comments; owner only
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, simplesocial.ErrInvalidToken)
		return
	}

	postID := chi.URLParam(r, "id")
	if err := h.service.DeletePost(r.Context(), principal, postID); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Post deleted", "post_id", postID)
	w.WriteHeader(http.StatusNoContent)
}

// CreateComment creates a comment on an existing post
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, simplesocial.ErrInvalidToken)
		return
	}

	var body CreateCommentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	if body.Content == "" {
		badRequest(w, r, "content is required")
		return
	}

	comment, err := h.service.CreateComment(r.Context(), principal, chi.URLParam(r, "postID"),
		simplesocial.CreateCommentRequest{Content: body.Content})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Comment created", "comment_id", comment.ID, "post_id", comment.PostID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, comment)
}

// ListComments lists a post's comments oldest first
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "postID"),
		pageFromQuery(r, "skip", "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, comments)
}

// AttachImage runs the image enrichment chain for a post. Unlike the
// side-effect path, an exhausted chain here is a user-visible failure.
func (h *PostHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	var body AttachImageBody
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			badRequest(w, r, "invalid request body")
			return
		}
	}

	post, err := h.service.AttachImage(r.Context(), chi.URLParam(r, "id"), body.Prompt)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Post image attached", "post_id", post.ID, "provider", post.ImageProvider)
	render.JSON(w, r, post)
}

func pageFromQuery(r *http.Request, skipParam, limitParam string) simplesocial.Page {
	return simplesocial.Page{
		Skip:  intFromQuery(r, skipParam, 0),
		Limit: intFromQuery(r, limitParam, 0),
	}
}

func intFromQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func boolFromQuery(r *http.Request, name string, fallback bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
