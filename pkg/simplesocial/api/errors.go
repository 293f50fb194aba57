package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// ErrorResponse is the uniform error body for every endpoint
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps a service-layer error to its fixed status code. Wrapped
// errors are matched through errors.Is so PostError/CommentError wrappers
// map the same as their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.Error("Internal error", "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, simplesocial.ErrEmptyUpdate):
		return http.StatusBadRequest, simplesocial.ErrEmptyUpdate.Error()
	case errors.Is(err, simplesocial.ErrInvalidCredentials):
		return http.StatusUnauthorized, simplesocial.ErrInvalidCredentials.Error()
	case errors.Is(err, simplesocial.ErrInvalidToken):
		return http.StatusUnauthorized, simplesocial.ErrInvalidToken.Error()
	case errors.Is(err, simplesocial.ErrNotOwner):
		return http.StatusForbidden, simplesocial.ErrNotOwner.Error()
	case errors.Is(err, simplesocial.ErrPostNotFound):
		return http.StatusNotFound, simplesocial.ErrPostNotFound.Error()
	case errors.Is(err, simplesocial.ErrCommentNotFound):
		return http.StatusNotFound, simplesocial.ErrCommentNotFound.Error()
	case errors.Is(err, simplesocial.ErrUserNotFound):
		return http.StatusNotFound, simplesocial.ErrUserNotFound.Error()
	case errors.Is(err, simplesocial.ErrDuplicateEmail):
		return http.StatusConflict, simplesocial.ErrDuplicateEmail.Error()
	case errors.Is(err, simplesocial.ErrUpstream):
		return http.StatusBadGateway, simplesocial.ErrUpstream.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// badRequest reports a malformed request body or parameter.
func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: message})
}
