package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// Storage documents and their mapping to/from the domain types. Identifier
// fields are ObjectIDs in the store and hex strings everywhere else; the
// mapping functions below are the only place that translation happens.

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	AvatarURL string             `bson:"avatar_url,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

type postDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Title          string             `bson:"title"`
	Content        string             `bson:"content"`
	AuthorID       primitive.ObjectID `bson:"author_id,omitempty"`
	AuthorUsername string             `bson:"author_username,omitempty"`
	ImageURL       string             `bson:"image_url,omitempty"`
	ImagePrompt    string             `bson:"image_prompt,omitempty"`
	ImageProvider  string             `bson:"image_provider,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`

	// Populated only by the listing aggregation's $lookup.
	Author *authorDoc `bson:"author,omitempty"`
}

type commentDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	PostID         primitive.ObjectID `bson:"post_id"`
	Content        string             `bson:"content"`
	AuthorID       primitive.ObjectID `bson:"author_id,omitempty"`
	AuthorUsername string             `bson:"author_username,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`

	Author *authorDoc `bson:"author,omitempty"`
}

type authorDoc struct {
	Username  string `bson:"username"`
	AvatarURL string `bson:"avatar_url,omitempty"`
}

func userToDoc(user *simplesocial.User) userDoc {
	return userDoc{
		Email:     user.Email,
		Username:  user.Username,
		Password:  user.PasswordHash,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}

func docToUser(doc userDoc) *simplesocial.User {
	return &simplesocial.User{
		ID:           doc.ID.Hex(),
		Email:        doc.Email,
		Username:     doc.Username,
		PasswordHash: doc.Password,
		AvatarURL:    doc.AvatarURL,
		CreatedAt:    doc.CreatedAt,
	}
}

func postToDoc(post *simplesocial.Post) (postDoc, error) {
	doc := postDoc{
		Title:          post.Title,
		Content:        post.Content,
		AuthorUsername: post.AuthorUsername,
		ImageURL:       post.ImageURL,
		ImagePrompt:    post.ImagePrompt,
		ImageProvider:  post.ImageProvider,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
	}
	if post.AuthorID != "" {
		authorID, err := primitive.ObjectIDFromHex(post.AuthorID)
		if err != nil {
			return postDoc{}, err
		}
		doc.AuthorID = authorID
	}
	return doc, nil
}

func docToPost(doc postDoc) *simplesocial.Post {
	post := &simplesocial.Post{
		ID:             doc.ID.Hex(),
		Title:          doc.Title,
		Content:        doc.Content,
		AuthorUsername: doc.AuthorUsername,
		ImageURL:       doc.ImageURL,
		ImagePrompt:    doc.ImagePrompt,
		ImageProvider:  doc.ImageProvider,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	if !doc.AuthorID.IsZero() {
		post.AuthorID = doc.AuthorID.Hex()
	}
	return post
}

func docToEnrichedPost(doc postDoc) simplesocial.EnrichedPost {
	row := simplesocial.EnrichedPost{Post: *docToPost(doc)}
	if doc.Author != nil {
		row.Author = &simplesocial.AuthorInfo{
			Username:  doc.Author.Username,
			AvatarURL: doc.Author.AvatarURL,
		}
	}
	return row
}

func commentToDoc(comment *simplesocial.Comment) (commentDoc, error) {
	postID, err := primitive.ObjectIDFromHex(comment.PostID)
	if err != nil {
		return commentDoc{}, err
	}
	doc := commentDoc{
		PostID:         postID,
		Content:        comment.Content,
		AuthorUsername: comment.AuthorUsername,
		CreatedAt:      comment.CreatedAt,
		UpdatedAt:      comment.UpdatedAt,
	}
	if comment.AuthorID != "" {
		authorID, err := primitive.ObjectIDFromHex(comment.AuthorID)
		if err != nil {
			return commentDoc{}, err
		}
		doc.AuthorID = authorID
	}
	return doc, nil
}

func docToComment(doc commentDoc) *simplesocial.Comment {
	comment := &simplesocial.Comment{
		ID:             doc.ID.Hex(),
		PostID:         doc.PostID.Hex(),
		Content:        doc.Content,
		AuthorUsername: doc.AuthorUsername,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	if !doc.AuthorID.IsZero() {
		comment.AuthorID = doc.AuthorID.Hex()
	}
	return comment
}

func docToEnrichedComment(doc commentDoc) simplesocial.EnrichedComment {
	row := simplesocial.EnrichedComment{Comment: *docToComment(doc)}
	if doc.Author != nil {
		row.Author = &simplesocial.AuthorInfo{
			Username:  doc.Author.Username,
			AvatarURL: doc.Author.AvatarURL,
		}
	}
	return row
}
