package simplesocial

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrPostNotFound indicates a post was not found
	ErrPostNotFound = errors.New("post not found")

	// ErrCommentNotFound indicates a comment was not found
	ErrCommentNotFound = errors.New("comment not found")

	// ErrDuplicateEmail indicates the email is already registered
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNotOwner indicates the principal does not own the resource
	ErrNotOwner = errors.New("not the resource owner")

	// ErrEmptyUpdate indicates a partial update carried no fields
	ErrEmptyUpdate = errors.New("no fields to update")

	// ErrInvalidCredentials indicates a failed login; it is returned
	// uniformly for an unknown email and a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a token that failed validation for any
	// reason, including expiry
	ErrInvalidToken = errors.New("invalid token")

	// ErrUpstream indicates every enabled provider of an external
	// capability failed
	ErrUpstream = errors.New("upstream provider failure")

	// ErrStoreUnavailable indicates the document store is not reachable
	ErrStoreUnavailable = errors.New("store unavailable")
)

// PostError represents an error from a post operation
type PostError struct {
	PostID string
	Op     string
	Err    error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post operation %s failed for post %s: %v", e.Op, e.PostID, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}

// CommentError represents an error from a comment operation
type CommentError struct {
	CommentID string
	Op        string
	Err       error
}

func (e *CommentError) Error() string {
	return fmt.Sprintf("comment operation %s failed for comment %s: %v", e.Op, e.CommentID, e.Err)
}

func (e *CommentError) Unwrap() error {
	return e.Err
}
