package simplesocial

import "context"

// Repository defines the interface for user, post, and comment persistence.
// Repository primitives are pure pass-throughs with no authorization logic;
// ownership enforcement lives exclusively in the Service layer.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)

	// Post operations
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	UpdatePost(ctx context.Context, id string, fields map[string]interface{}) (*Post, error)
	DeletePost(ctx context.Context, id string) error
	// ListPosts returns posts newest-created first. A non-empty authorID
	// filters before pagination; an identifier no backend could have
	// assigned yields an empty slice, not an error.
	ListPosts(ctx context.Context, page Page, authorID string) ([]EnrichedPost, error)

	// Comment operations
	CreateComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, id string) (*Comment, error)
	UpdateComment(ctx context.Context, id string, fields map[string]interface{}) (*Comment, error)
	DeleteComment(ctx context.Context, id string) error
	// DeleteCommentsForPost removes every comment on the post and returns
	// the number removed. Used by the post-delete cascade.
	DeleteCommentsForPost(ctx context.Context, postID string) (int64, error)
	// ListCommentsForPost returns comments oldest-created first.
	ListCommentsForPost(ctx context.Context, postID string, page Page) ([]EnrichedComment, error)
}

// Notifier accepts notifications for out-of-band delivery. Notify must not
// block; it reports whether the notification was accepted.
type Notifier interface {
	Notify(n Notification) bool
}

// ImageGenerator produces an image URL for a prompt and names the provider
// that produced it.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (url, provider string, err error)
}

// NoopNotifier discards notifications. Useful for tests and deployments
// without a mail transport.
type NoopNotifier struct{}

// Notify discards the notification and reports it as accepted.
func (NoopNotifier) Notify(Notification) bool { return true }
