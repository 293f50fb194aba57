// Package memory provides an in-memory Repository used by tests and
// store-less deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// Repository implements simplesocial.Repository using in-memory storage
type Repository struct {
	mu           sync.RWMutex
	users        map[string]*simplesocial.User
	usersByEmail map[string]string // email -> user id
	posts        map[string]*simplesocial.Post
	comments     map[string]*simplesocial.Comment
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		users:        make(map[string]*simplesocial.User),
		usersByEmail: make(map[string]string),
		posts:        make(map[string]*simplesocial.Post),
		comments:     make(map[string]*simplesocial.Comment),
	}
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *simplesocial.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByEmail[user.Email]; exists {
		return simplesocial.ErrDuplicateEmail
	}

	user.ID = uuid.New().String()
	userCopy := *user
	r.users[user.ID] = &userCopy
	r.usersByEmail[user.Email] = user.ID

	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*simplesocial.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByEmail[email]
	if !exists {
		return nil, simplesocial.ErrUserNotFound
	}
	userCopy := *r.users[id]
	return &userCopy, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*simplesocial.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, simplesocial.ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *simplesocial.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = uuid.New().String()
	postCopy := *post
	r.posts[post.ID] = &postCopy

	return nil
}

func (r *Repository) GetPost(ctx context.Context, id string) (*simplesocial.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	if !exists {
		return nil, simplesocial.ErrPostNotFound
	}
	postCopy := *post
	return &postCopy, nil
}

func (r *Repository) UpdatePost(ctx context.Context, id string, fields map[string]interface{}) (*simplesocial.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, exists := r.posts[id]
	if !exists {
		return nil, simplesocial.ErrPostNotFound
	}

	for key, value := range fields {
		switch key {
		case simplesocial.FieldTitle:
			post.Title = value.(string)
		case simplesocial.FieldContent:
			post.Content = value.(string)
		case simplesocial.FieldImageURL:
			post.ImageURL = value.(string)
		case simplesocial.FieldImagePrompt:
			post.ImagePrompt = value.(string)
		case simplesocial.FieldImageProvider:
			post.ImageProvider = value.(string)
		case simplesocial.FieldUpdatedAt:
			post.UpdatedAt = value.(time.Time)
		default:
			return nil, fmt.Errorf("unknown post field %q", key)
		}
	}

	postCopy := *post
	return &postCopy, nil
}

func (r *Repository) DeletePost(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[id]; !exists {
		return simplesocial.ErrPostNotFound
	}
	delete(r.posts, id)

	return nil
}

func (r *Repository) ListPosts(ctx context.Context, page simplesocial.Page, authorID string) ([]simplesocial.EnrichedPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var posts []*simplesocial.Post
	for _, post := range r.posts {
		if authorID != "" && post.AuthorID != authorID {
			continue
		}
		posts = append(posts, post)
	}

	// Newest first; ID as tiebreaker for a stable order.
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})

	posts = paginate(posts, page)

	rows := make([]simplesocial.EnrichedPost, 0, len(posts))
	for _, post := range posts {
		rows = append(rows, simplesocial.EnrichedPost{
			Post:   *post,
			Author: r.authorInfo(post.AuthorID),
		})
	}
	return rows, nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *simplesocial.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment.ID = uuid.New().String()
	commentCopy := *comment
	r.comments[comment.ID] = &commentCopy

	return nil
}

func (r *Repository) GetComment(ctx context.Context, id string) (*simplesocial.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, exists := r.comments[id]
	if !exists {
		return nil, simplesocial.ErrCommentNotFound
	}
	commentCopy := *comment
	return &commentCopy, nil
}

func (r *Repository) UpdateComment(ctx context.Context, id string, fields map[string]interface{}) (*simplesocial.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment, exists := r.comments[id]
	if !exists {
		return nil, simplesocial.ErrCommentNotFound
	}

	for key, value := range fields {
		switch key {
		case simplesocial.FieldContent:
			comment.Content = value.(string)
		case simplesocial.FieldUpdatedAt:
			comment.UpdatedAt = value.(time.Time)
		default:
			return nil, fmt.Errorf("unknown comment field %q", key)
		}
	}

	commentCopy := *comment
	return &commentCopy, nil
}

func (r *Repository) DeleteComment(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.comments[id]; !exists {
		return simplesocial.ErrCommentNotFound
	}
	delete(r.comments, id)

	return nil
}

func (r *Repository) DeleteCommentsForPost(ctx context.Context, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, comment := range r.comments {
		if comment.PostID == postID {
			delete(r.comments, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *Repository) ListCommentsForPost(ctx context.Context, postID string, page simplesocial.Page) ([]simplesocial.EnrichedComment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var comments []*simplesocial.Comment
	for _, comment := range r.comments {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}

	// Chronological reading order.
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID < comments[j].ID
	})

	comments = paginate(comments, page)

	rows := make([]simplesocial.EnrichedComment, 0, len(comments))
	for _, comment := range comments {
		rows = append(rows, simplesocial.EnrichedComment{
			Comment: *comment,
			Author:  r.authorInfo(comment.AuthorID),
		})
	}
	return rows, nil
}

// authorInfo resolves the join sub-document; callers hold the lock.
func (r *Repository) authorInfo(authorID string) *simplesocial.AuthorInfo {
	user, exists := r.users[authorID]
	if !exists {
		return nil
	}
	return &simplesocial.AuthorInfo{Username: user.Username, AvatarURL: user.AvatarURL}
}

func paginate[T any](items []T, page simplesocial.Page) []T {
	if page.Skip > 0 {
		if page.Skip >= len(items) {
			return nil
		}
		items = items[page.Skip:]
	}
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}
