package simplesocial

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// service implements the Service interface
type service struct {
	repository Repository
	notifier   Notifier
	images     ImageGenerator
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithNotifier sets the notifier used for comment notifications
func WithNotifier(n Notifier) Option {
	return func(s *service) {
		s.notifier = n
	}
}

// WithImageGenerator sets the image enrichment generator
func WithImageGenerator(g ImageGenerator) Option {
	return func(s *service) {
		s.images = g
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		notifier: NoopNotifier{},
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

// Post operations

func (s *service) CreatePost(ctx context.Context, principal Principal, req CreatePostRequest) (*Post, error) {
	now := time.Now().UTC()
	post := &Post{
		Title:          req.Title,
		Content:        req.Content,
		AuthorID:       principal.ID,
		AuthorUsername: principal.Username,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repository.CreatePost(ctx, post); err != nil {
		return nil, &PostError{Op: "create", Err: err}
	}

	return post, nil
}

func (s *service) GetPostWithComments(ctx context.Context, postID string, req GetPostRequest) (*PostWithComments, error) {
	post, err := s.repository.GetPost(ctx, postID)
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "get", Err: err}
	}

	result := &PostWithComments{
		Post:     *post,
		Comments: []Comment{},
	}

	if req.IncludeComments {
		rows, err := s.repository.ListCommentsForPost(ctx, postID, req.CommentsPage)
		if err != nil {
			return nil, &PostError{PostID: postID, Op: "get_comments", Err: err}
		}
		result.Comments = flattenComments(rows)
	}

	return result, nil
}

func (s *service) UpdatePost(ctx context.Context, principal Principal, postID string, req UpdatePostRequest) (*Post, error) {
	post, err := s.repository.GetPost(ctx, postID)
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "update", Err: err}
	}
	if post.AuthorID != principal.ID {
		return nil, &PostError{PostID: postID, Op: "update", Err: ErrNotOwner}
	}

	fields := req.Fields()
	if len(fields) == 0 {
		return nil, &PostError{PostID: postID, Op: "update", Err: ErrEmptyUpdate}
	}
	fields[FieldUpdatedAt] = time.Now().UTC()

	updated, err := s.repository.UpdatePost(ctx, postID, fields)
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "update", Err: err}
	}

	return updated, nil
}

func (s *service) DeletePost(ctx context.Context, principal Principal, postID string) error {
	post, err := s.repository.GetPost(ctx, postID)
	if err != nil {
		return &PostError{PostID: postID, Op: "delete", Err: err}
	}
	if post.AuthorID != principal.ID {
		return &PostError{PostID: postID, Op: "delete", Err: ErrNotOwner}
	}

	// Cascade before the post record goes away so no comment can outlive
	// its post. The two steps are not atomic; a crash in between leaves
	// orphaned comments.
	if _, err := s.repository.DeleteCommentsForPost(ctx, postID); err != nil {
		return &PostError{PostID: postID, Op: "delete_comments", Err: err}
	}
	if err := s.repository.DeletePost(ctx, postID); err != nil {
		return &PostError{PostID: postID, Op: "delete", Err: err}
	}

	return nil
}

func (s *service) ListPosts(ctx context.Context, req ListPostsRequest) ([]Post, error) {
	rows, err := s.repository.ListPosts(ctx, req.Page, req.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, flattenPost(row))
	}
	return posts, nil
}

// Comment operations

func (s *service) CreateComment(ctx context.Context, principal Principal, postID string, req CreateCommentRequest) (*Comment, error) {
	post, err := s.repository.GetPost(ctx, postID)
	if err != nil {
		return nil, &CommentError{Op: "create", Err: err}
	}

	now := time.Now().UTC()
	comment := &Comment{
		PostID:         postID,
		Content:        req.Content,
		AuthorID:       principal.ID,
		AuthorUsername: principal.Username,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repository.CreateComment(ctx, comment); err != nil {
		return nil, &CommentError{Op: "create", Err: err}
	}

	// Best effort: a failure anywhere in the notification path must not
	// surface to the caller.
	s.notifyPostAuthor(ctx, post, principal)

	return comment, nil
}

func (s *service) GetComment(ctx context.Context, commentID string) (*Comment, error) {
	comment, err := s.repository.GetComment(ctx, commentID)
	if err != nil {
		return nil, &CommentError{CommentID: commentID, Op: "get", Err: err}
	}
	return comment, nil
}

func (s *service) UpdateComment(ctx context.Context, principal Principal, commentID string, req UpdateCommentRequest) (*Comment, error) {
	comment, err := s.repository.GetComment(ctx, commentID)
	if err != nil {
		return nil, &CommentError{CommentID: commentID, Op: "update", Err: err}
	}
	if comment.AuthorID != principal.ID {
		return nil, &CommentError{CommentID: commentID, Op: "update", Err: ErrNotOwner}
	}

	fields := req.Fields()
	if len(fields) == 0 {
		return nil, &CommentError{CommentID: commentID, Op: "update", Err: ErrEmptyUpdate}
	}
	fields[FieldUpdatedAt] = time.Now().UTC()

	updated, err := s.repository.UpdateComment(ctx, commentID, fields)
	if err != nil {
		return nil, &CommentError{CommentID: commentID, Op: "update", Err: err}
	}

	return updated, nil
}

func (s *service) DeleteComment(ctx context.Context, principal Principal, commentID string) error {
	comment, err := s.repository.GetComment(ctx, commentID)
	if err != nil {
		return &CommentError{CommentID: commentID, Op: "delete", Err: err}
	}
	if comment.AuthorID != principal.ID {
		return &CommentError{CommentID: commentID, Op: "delete", Err: ErrNotOwner}
	}

	if err := s.repository.DeleteComment(ctx, commentID); err != nil {
		return &CommentError{CommentID: commentID, Op: "delete", Err: err}
	}

	return nil
}

func (s *service) ListComments(ctx context.Context, postID string, page Page) ([]Comment, error) {
	rows, err := s.repository.ListCommentsForPost(ctx, postID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for post %s: %w", postID, err)
	}
	return flattenComments(rows), nil
}

// Image enrichment

func (s *service) AttachImage(ctx context.Context, postID string, prompt string) (*Post, error) {
	post, err := s.repository.GetPost(ctx, postID)
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "attach_image", Err: err}
	}

	if s.images == nil {
		return nil, &PostError{PostID: postID, Op: "attach_image", Err: ErrUpstream}
	}

	if prompt == "" {
		prompt = defaultImagePrompt(post)
	}

	url, provider, err := s.images.Generate(ctx, prompt)
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "attach_image", Err: err}
	}

	fields := map[string]interface{}{
		FieldImageURL:      url,
		FieldImagePrompt:   prompt,
		FieldImageProvider: provider,
		FieldUpdatedAt:     time.Now().UTC(),
	}
	updated, err := s.repository.UpdatePost(ctx, postID, fields)
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "attach_image", Err: err}
	}

	return updated, nil
}

// notifyPostAuthor composes and enqueues a comment notification for the
// post's author. Skipped silently when the commenter is the author or the
// author has no email on file; lookup and enqueue failures are logged and
// swallowed.
func (s *service) notifyPostAuthor(ctx context.Context, post *Post, commenter Principal) {
	if post.AuthorID == "" || post.AuthorID == commenter.ID {
		return
	}

	author, err := s.repository.GetUserByID(ctx, post.AuthorID)
	if err != nil {
		slog.Warn("Comment notification skipped: author lookup failed",
			"post_id", post.ID, "author_id", post.AuthorID, "error", err)
		return
	}
	if author.Email == "" {
		return
	}

	accepted := s.notifier.Notify(Notification{
		To:      author.Email,
		Subject: fmt.Sprintf("New comment on %q", post.Title),
		Body: fmt.Sprintf("%s commented on your post %q.",
			commenter.Username, post.Title),
	})
	if !accepted {
		slog.Warn("Comment notification dropped", "post_id", post.ID, "to", author.Email)
	}
}

func defaultImagePrompt(post *Post) string {
	content := post.Content
	if len(content) > 200 {
		content = content[:200]
	}
	return fmt.Sprintf("Social media image for post: %s - %s", post.Title, content)
}

func flattenPost(row EnrichedPost) Post {
	post := row.Post
	if row.Author != nil {
		if row.Author.Username != "" {
			post.AuthorUsername = row.Author.Username
		}
		if row.Author.AvatarURL != "" {
			post.AuthorAvatarURL = row.Author.AvatarURL
		}
	}
	return post
}

func flattenComments(rows []EnrichedComment) []Comment {
	comments := make([]Comment, 0, len(rows))
	for _, row := range rows {
		comment := row.Comment
		if row.Author != nil {
			if row.Author.Username != "" {
				comment.AuthorUsername = row.Author.Username
			}
			if row.Author.AvatarURL != "" {
				comment.AuthorAvatarURL = row.Author.AvatarURL
			}
		}
		comments = append(comments, comment)
	}
	return comments
}
