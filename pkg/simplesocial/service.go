package simplesocial

import "context"

// Service defines the main interface for the simple-social library
type Service interface {
	// Post operations
	CreatePost(ctx context.Context, principal Principal, req CreatePostRequest) (*Post, error)
	GetPostWithComments(ctx context.Context, postID string, req GetPostRequest) (*PostWithComments, error)
	UpdatePost(ctx context.Context, principal Principal, postID string, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, principal Principal, postID string) error
	ListPosts(ctx context.Context, req ListPostsRequest) ([]Post, error)

	// Comment operations
	CreateComment(ctx context.Context, principal Principal, postID string, req CreateCommentRequest) (*Comment, error)
	GetComment(ctx context.Context, commentID string) (*Comment, error)
	UpdateComment(ctx context.Context, principal Principal, commentID string, req UpdateCommentRequest) (*Comment, error)
	DeleteComment(ctx context.Context, principal Principal, commentID string) error
	ListComments(ctx context.Context, postID string, page Page) ([]Comment, error)

	// Image enrichment
	AttachImage(ctx context.Context, postID string, prompt string) (*Post, error)
}
