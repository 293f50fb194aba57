package simplesocial_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-social/pkg/simplesocial"
	"github.com/tendant/simple-social/pkg/simplesocial/repo/memory"
)

// captureNotifier records notifications instead of delivering them.
type captureNotifier struct {
	notifications []simplesocial.Notification
	accept        bool
}

func (c *captureNotifier) Notify(n simplesocial.Notification) bool {
	c.notifications = append(c.notifications, n)
	return c.accept
}

// stubGenerator returns a fixed URL, or fails when url is empty.
type stubGenerator struct {
	url      string
	provider string
	prompts  []string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.url == "" {
		return "", "", fmt.Errorf("image generation failed: %w", simplesocial.ErrUpstream)
	}
	return g.url, g.provider, nil
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []simplesocial.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []simplesocial.Option{},
			expectError: true,
		},
		{
			name: "with repository should succeed",
			options: []simplesocial.Option{
				simplesocial.WithRepository(memory.New()),
			},
			expectError: false,
		},
		{
			name: "with repository and notifier should succeed",
			options: []simplesocial.Option{
				simplesocial.WithRepository(memory.New()),
				simplesocial.WithNotifier(simplesocial.NoopNotifier{}),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := simplesocial.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

type testEnv struct {
	svc      simplesocial.Service
	repo     *memory.Repository
	notifier *captureNotifier
	images   *stubGenerator
}

func setupTestService(t *testing.T) *testEnv {
	repo := memory.New()
	notifier := &captureNotifier{accept: true}
	images := &stubGenerator{url: "https://images.example.com/a.png", provider: "stub"}

	svc, err := simplesocial.New(
		simplesocial.WithRepository(repo),
		simplesocial.WithNotifier(notifier),
		simplesocial.WithImageGenerator(images),
	)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return &testEnv{svc: svc, repo: repo, notifier: notifier, images: images}
}

func registerUser(t *testing.T, repo *memory.Repository, email, username string) simplesocial.Principal {
	user := &simplesocial.User{
		Email:     email,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return simplesocial.Principal{ID: user.ID, Username: user.Username, Email: user.Email}
}

func TestCreatePost(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	alice := registerUser(t, env.repo, "alice@example.com", "alice")

	post, err := env.svc.CreatePost(ctx, alice, simplesocial.CreatePostRequest{
		Title:   "Hello",
		Content: "First post",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "First post", post.Content)
	assert.Equal(t, alice.ID, post.AuthorID)
	assert.Equal(t, "alice", post.AuthorUsername)
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
}

func TestUpdatePost(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	alice := registerUser(t, env.repo, "alice@example.com", "alice")
	bob := registerUser(t, env.repo, "bob@example.com", "bob")

	post, err := env.svc.CreatePost(ctx, alice, simplesocial.CreatePostRequest{
		Title:   "Original",
		Content: "Original content",
	})
	require.NoError(t, err)

	t.Run("owner can update a single field", func(t *testing.T) {
		title := "Updated"
		updated, err := env.svc.UpdatePost(ctx, alice, post.ID, simplesocial.UpdatePostRequest{Title: &title})
		require.NoError(t, err)

		assert.Equal(t, "Updated", updated.Title)
		assert.Equal(t, "Original content", updated.Content)
		assert.True(t, updated.UpdatedAt.After(post.UpdatedAt) || updated.UpdatedAt.Equal(post.UpdatedAt))
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		title := "Hijacked"
		_, err := env.svc.UpdatePost(ctx, bob, post.ID, simplesocial.UpdatePostRequest{Title: &title})
		assert.ErrorIs(t, err, simplesocial.ErrNotOwner)
	})

	t.Run("empty patch is rejected without mutation", func(t *testing.T) {
		before, err := env.svc.GetPostWithComments(ctx, post.ID, simplesocial.GetPostRequest{})
		require.NoError(t, err)

		_, err = env.svc.UpdatePost(ctx, alice, post.ID, simplesocial.UpdatePostRequest{})
		assert.ErrorIs(t, err, simplesocial.ErrEmptyUpdate)

		after, err := env.svc.GetPostWithComments(ctx, post.ID, simplesocial.GetPostRequest{})
		require.NoError(t, err)
		assert.Equal(t, before.Post, after.Post)
	})

	t.Run("unknown post", func(t *testing.T) {
		title := "x"
		_, err := env.svc.UpdatePost(ctx, alice, "no-such-id", simplesocial.UpdatePostRequest{Title: &title})
		assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
	})
}

func TestDeletePostCascade(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	alice := registerUser(t, env.repo, "alice@example.com", "alice")
	bob := registerUser(t, env.repo, "bob@example.com", "bob")

	post, err := env.svc.CreatePost(ctx, alice, simplesocial.CreatePostRequest{
		Title:   "Doomed",
		Content: "Will be deleted",
	})
	require.NoError(t, err)

	var commentIDs []string
	for i := 0; i < 3; i++ {
		comment, err := env.svc.CreateComment(ctx, bob, post.ID, simplesocial.CreateCommentRequest{
			Content: fmt.Sprintf("comment %d", i),
		})
		require.NoError(t, err)
		commentIDs = append(commentIDs, comment.ID)
	}

	t.Run("non-owner cannot delete", func(t *testing.T) {
		err := env.svc.DeletePost(ctx, bob, post.ID)
		assert.ErrorIs(t, err, simplesocial.ErrNotOwner)
	})

	t.Run("owner delete removes post and comments", func(t *testing.T) {
		require.NoError(t, env.svc.DeletePost(ctx, alice, post.ID))

		_, err := env.svc.GetPostWithComments(ctx, post.ID, simplesocial.GetPostRequest{})
		assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)

		for _, id := range commentIDs {
			_, err := env.svc.GetComment(ctx, id)
			assert.ErrorIs(t, err, simplesocial.ErrCommentNotFound)
		}
	})

	t.Run("second delete reports not found", func(t *testing.T) {
		err := env.svc.DeletePost(ctx, alice, post.ID)
		assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
	})
}

func TestDeletePostWithoutComments(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	alice := registerUser(t, env.repo, "alice@example.com", "alice")

	post, err := env.svc.CreatePost(ctx, alice, simplesocial.CreatePostRequest{
		Title:   "Lonely",
		Content: "No comments here",
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeletePost(ctx, alice, post.ID))
	_, err = env.svc.GetPostWithComments(ctx, post.ID, simplesocial.GetPostRequest{})
	assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
}

func TestListPosts(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	alice := registerUser(t, env.repo, "alice@example.com", "alice")
	bob := registerUser(t, env.repo, "bob@example.com", "bob")

	// Seed with explicit timestamps so the newest-first order is
	// deterministic.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seed := []struct {
		title     string
		author    simplesocial.Principal
		createdAt time.Time
	}{
		{"first", alice, base},
		{"second", bob, base.Add(time.Minute)},
		{"third", alice, base.Add(2 * time.Minute)},
	}
	for _, s := range seed {
		post := &simplesocial.Post{
			Title:     s.title,
			Content:   "content",
			AuthorID:  s.author.ID,
			CreatedAt: s.createdAt,
			UpdatedAt: s.createdAt,
		}
		require.NoError(t, env.repo.CreatePost(ctx, post))
	}

	t.Run("newest first with joined author fields", func(t *testing.T) {
		posts, err := env.svc.ListPosts(ctx, simplesocial.ListPostsRequest{})
		require.NoError(t, err)
		require.Len(t, posts, 3)

		assert.Equal(t, "third", posts[0].Title)
		assert.Equal(t, "second", posts[1].Title)
		assert.Equal(t, "first", posts[2].Title)
		assert.Equal(t, "alice", posts[0].AuthorUsername)
		assert.Equal(t, "bob", posts[1].AuthorUsername)
	})

	t.Run("pagination", func(t *testing.T) {
		posts, err := env.svc.ListPosts(ctx, simplesocial.ListPostsRequest{
			Page: simplesocial.Page{Skip: 1, Limit: 1},
		})
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, "second", posts[0].Title)
	})

	t.Run("author filter", func(t *testing.T) {
		posts, err := env.svc.ListPosts(ctx, simplesocial.ListPostsRequest{AuthorID: alice.ID})
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "third", posts[0].Title)
		assert.Equal(t, "first", posts[1].Title)
	})

	t.Run("unknown author yields empty slice", func(t *testing.T) {
		posts, err := env.svc.ListPosts(ctx, simplesocial.ListPostsRequest{AuthorID: "no-such-author"})
		require.NoError(t, err)
		assert.Empty(t, posts)
	})
}

func TestGetPostWithComments(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	alice := registerUser(t, env.repo, "alice@example.com", "alice")
	bob := registerUser(t, env.repo, "bob@example.com", "bob")

	post, err := env.svc.CreatePost(ctx, alice, simplesocial.CreatePostRequest{
		Title:   "Discussion",
		Content: "Talk here",
	})
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		comment := &simplesocial.Comment{
			PostID:    post.ID,
			Content:   fmt.Sprintf("comment %d", i),
			AuthorID:  bob.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			UpdatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, env.repo.CreateComment(ctx, comment))
	}

	t.Run("comments in chronological order", func(t *testing.T) {
		result, err := env.svc.GetPostWithComments(ctx, post.ID, simplesocial.GetPostRequest{
			IncludeComments: true,
		})
		require.NoError(t, err)

		assert.Equal(t, post.ID, result.Post.ID)
		require.Len(t, result.Comments, 5)
		for i, comment := range result.Comments {
			assert.Equal(t, fmt.Sprintf("comment %d", i), comment.Content)
			assert.Equal(t, "bob", comment.AuthorUsername)
		}
	})

	t.Run("comment pagination", func(t *testing.T) {
		result, err := env.svc.GetPostWithComments(ctx, post.ID, simplesocial.GetPostRequest{
			IncludeComments: true,
			CommentsPage:    simplesocial.Page{Skip: 2, Limit: 2},
		})
		require.NoError(t, err)
		require.Len(t, result.Comments, 2)
		assert.Equal(t, "comment 2", result.Comments[0].Content)
		assert.Equal(t, "comment 3", result.Comments[1].Content)
	})

	t.Run("comments excluded on request", func(t *testing.T) {
		result, err := env.svc.GetPostWithComments(ctx, post.ID, simplesocial.GetPostRequest{})
		require.NoError(t, err)
		assert.NotNil(t, result.Comments)
		assert.Empty(t, result.Comments)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := env.svc.GetPostWithComments(ctx, "no-such-id", simplesocial.GetPostRequest{})
		assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
	})
}

func TestCreateComment(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	alice := registerUser(t, env.repo, "alice@example.com", "alice")
	bob := registerUser(t, env.repo, "bob@example.com", "bob")

	post, err := env.svc.CreatePost(ctx, alice, simplesocial.CreatePostRequest{
		Title:   "Notify me",
		Content: "content",
	})
	require.NoError(t, err)

	t.Run("comment on unknown post", func(t *testing.T) {
		_, err := env.svc.CreateComment(ctx, bob, "no-such-id", simplesocial.CreateCommentRequest{Content: "hi"})
		assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
	})

	t.Run("comment notifies post author", func(t *testing.T) {
		comment, err := env.svc.CreateComment(ctx, bob, post.ID, simplesocial.CreateCommentRequest{Content: "nice post"})
		require.NoError(t, err)

		assert.NotEmpty(t, comment.ID)
		assert.Equal(t, post.ID, comment.PostID)
		assert.Equal(t, bob.ID, comment.AuthorID)

		require.Len(t, env.notifier.notifications, 1)
		n := env.notifier.notifications[0]
		assert.Equal(t, "alice@example.com", n.To)
		assert.Contains(t, n.Subject, "Notify me")
		assert.Contains(t, n.Body, "bob")
	})

	t.Run("self comment sends no notification", func(t *testing.T) {
		before := len(env.notifier.notifications)
		_, err := env.svc.CreateComment(ctx, alice, post.ID, simplesocial.CreateCommentRequest{Content: "thanks"})
		require.NoError(t, err)
		assert.Len(t, env.notifier.notifications, before)
	})

	t.Run("rejected notification does not fail the comment", func(t *testing.T) {
		env.notifier.accept = false
		comment, err := env.svc.CreateComment(ctx, bob, post.ID, simplesocial.CreateCommentRequest{Content: "still works"})
		require.NoError(t, err)
		assert.NotEmpty(t, comment.ID)
		env.notifier.accept = true
	})
}

func TestUpdateComment(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	alice := registerUser(t, env.repo, "alice@example.com", "alice")
	bob := registerUser(t, env.repo, "bob@example.com", "bob")

	post, err := env.svc.CreatePost(ctx, alice, simplesocial.CreatePostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	comment, err := env.svc.CreateComment(ctx, bob, post.ID, simplesocial.CreateCommentRequest{Content: "original"})
	require.NoError(t, err)

	t.Run("owner can update", func(t *testing.T) {
		content := "revised"
		updated, err := env.svc.UpdateComment(ctx, bob, comment.ID, simplesocial.UpdateCommentRequest{Content: &content})
		require.NoError(t, err)
		assert.Equal(t, "revised", updated.Content)
	})

	t.Run("post owner cannot update another user's comment", func(t *testing.T) {
		content := "hijacked"
		_, err := env.svc.UpdateComment(ctx, alice, comment.ID, simplesocial.UpdateCommentRequest{Content: &content})
		assert.ErrorIs(t, err, simplesocial.ErrNotOwner)
	})

	t.Run("empty patch rejected", func(t *testing.T) {
		_, err := env.svc.UpdateComment(ctx, bob, comment.ID, simplesocial.UpdateCommentRequest{})
		assert.ErrorIs(t, err, simplesocial.ErrEmptyUpdate)
	})
}

func TestDeleteComment(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	alice := registerUser(t, env.repo, "alice@example.com", "alice")
	bob := registerUser(t, env.repo, "bob@example.com", "bob")

	post, err := env.svc.CreatePost(ctx, alice, simplesocial.CreatePostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	comment, err := env.svc.CreateComment(ctx, bob, post.ID, simplesocial.CreateCommentRequest{Content: "delete me"})
	require.NoError(t, err)

	t.Run("non-owner is rejected", func(t *testing.T) {
		err := env.svc.DeleteComment(ctx, alice, comment.ID)
		assert.ErrorIs(t, err, simplesocial.ErrNotOwner)
	})

	t.Run("owner delete then double delete", func(t *testing.T) {
		require.NoError(t, env.svc.DeleteComment(ctx, bob, comment.ID))
		err := env.svc.DeleteComment(ctx, bob, comment.ID)
		assert.ErrorIs(t, err, simplesocial.ErrCommentNotFound)
	})
}

func TestAttachImage(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	alice := registerUser(t, env.repo, "alice@example.com", "alice")

	post, err := env.svc.CreatePost(ctx, alice, simplesocial.CreatePostRequest{
		Title:   "Sunset",
		Content: "A walk on the beach",
	})
	require.NoError(t, err)

	t.Run("explicit prompt", func(t *testing.T) {
		updated, err := env.svc.AttachImage(ctx, post.ID, "orange sky")
		require.NoError(t, err)

		assert.Equal(t, "https://images.example.com/a.png", updated.ImageURL)
		assert.Equal(t, "orange sky", updated.ImagePrompt)
		assert.Equal(t, "stub", updated.ImageProvider)
	})

	t.Run("default prompt derives from the post", func(t *testing.T) {
		_, err := env.svc.AttachImage(ctx, post.ID, "")
		require.NoError(t, err)

		last := env.images.prompts[len(env.images.prompts)-1]
		assert.Equal(t, "Social media image for post: Sunset - A walk on the beach", last)
	})

	t.Run("generator failure surfaces as upstream error", func(t *testing.T) {
		env.images.url = ""
		_, err := env.svc.AttachImage(ctx, post.ID, "anything")
		assert.ErrorIs(t, err, simplesocial.ErrUpstream)
		env.images.url = "https://images.example.com/a.png"
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := env.svc.AttachImage(ctx, "no-such-id", "prompt")
		assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)
	})
}

func TestErrorWrapping(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()
	alice := registerUser(t, env.repo, "alice@example.com", "alice")

	_, err := env.svc.GetPostWithComments(ctx, "missing", simplesocial.GetPostRequest{})
	require.Error(t, err)

	var postErr *simplesocial.PostError
	require.True(t, errors.As(err, &postErr))
	assert.Equal(t, "missing", postErr.PostID)
	assert.ErrorIs(t, err, simplesocial.ErrPostNotFound)

	err = env.svc.DeleteComment(ctx, alice, "missing")
	var commentErr *simplesocial.CommentError
	require.True(t, errors.As(err, &commentErr))
	assert.ErrorIs(t, err, simplesocial.ErrCommentNotFound)
}
