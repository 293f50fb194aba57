package simplesocial

import "time"

// Collection names in the document store.
const (
	CollectionUsers    = "users"
	CollectionPosts    = "posts"
	CollectionComments = "comments"
)

// Storage field names shared by the service layer and repository backends.
// Partial updates are expressed as maps keyed by these names so that every
// backend applies the same patch semantics.
const (
	FieldTitle         = "title"
	FieldContent       = "content"
	FieldUpdatedAt     = "updated_at"
	FieldImageURL      = "image_url"
	FieldImagePrompt   = "image_prompt"
	FieldImageProvider = "image_provider"
)

// User represents a registered account. Identity fields are immutable after
// registration; there is no user update or delete path.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated identity attached to a request after token
// validation.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Post represents a post in its flat wire shape. AuthorUsername and
// AuthorAvatarURL are denormalized copies of the author's profile; the
// nested join form (EnrichedPost) never leaves the service layer.
type Post struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	AuthorID        string    `json:"author_id,omitempty"`
	AuthorUsername  string    `json:"author_username,omitempty"`
	AuthorAvatarURL string    `json:"author_avatar_url,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	ImagePrompt     string    `json:"image_prompt,omitempty"`
	ImageProvider   string    `json:"image_provider,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Comment represents a comment on a post in its flat wire shape.
type Comment struct {
	ID              string    `json:"id"`
	PostID          string    `json:"post_id"`
	Content         string    `json:"content"`
	AuthorID        string    `json:"author_id,omitempty"`
	AuthorUsername  string    `json:"author_username,omitempty"`
	AuthorAvatarURL string    `json:"author_avatar_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AuthorInfo is the joined users sub-document produced by listing
// aggregations. It is flattened into the denormalized author fields by the
// service layer and discarded before the record is rendered.
type AuthorInfo struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// EnrichedPost pairs a post with its joined author sub-document. Author is
// nil when the join found no matching user.
type EnrichedPost struct {
	Post
	Author *AuthorInfo `json:"-"`
}

// EnrichedComment pairs a comment with its joined author sub-document.
type EnrichedComment struct {
	Comment
	Author *AuthorInfo `json:"-"`
}

// PostWithComments is the read shape for a single post with an optional
// page of its comments in chronological order.
type PostWithComments struct {
	Post     Post      `json:"post"`
	Comments []Comment `json:"comments"`
}

// Notification is a message handed to a Notifier for out-of-band delivery.
type Notification struct {
	To      string
	Subject string
	Body    string
}
