package simplesocial

// Request DTOs

// Page describes skip/limit pagination. A zero Limit means no limit.
type Page struct {
	Skip  int
	Limit int
}

// CreatePostRequest contains parameters for creating a post
type CreatePostRequest struct {
	Title   string
	Content string
}

// UpdatePostRequest is a partial update for a post. Nil fields are left
// untouched; a request with no fields set is rejected with ErrEmptyUpdate.
type UpdatePostRequest struct {
	Title   *string
	Content *string
}

// Fields returns the storage-field patch for the request.
func (r UpdatePostRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Title != nil {
		fields[FieldTitle] = *r.Title
	}
	if r.Content != nil {
		fields[FieldContent] = *r.Content
	}
	return fields
}

// CreateCommentRequest contains parameters for creating a comment
type CreateCommentRequest struct {
	Content string
}

// UpdateCommentRequest is a partial update for a comment.
type UpdateCommentRequest struct {
	Content *string
}

// Fields returns the storage-field patch for the request.
func (r UpdateCommentRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Content != nil {
		fields[FieldContent] = *r.Content
	}
	return fields
}

// ListPostsRequest contains parameters for listing posts. AuthorID, when
// non-empty, restricts the listing to that author before pagination.
type ListPostsRequest struct {
	Page     Page
	AuthorID string
}

// GetPostRequest controls the comment page attached to a single-post read.
type GetPostRequest struct {
	IncludeComments bool
	CommentsPage    Page
}
