// Package mongo provides a Repository backed by a MongoDB database.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// Repository implements simplesocial.Repository on a MongoDB database.
// Every method is a pass-through to the store; there is no authorization
// logic here.
type Repository struct {
	db *mongo.Database
}

// New creates a repository over an already-connected database handle.
func New(db *mongo.Database) *Repository {
	return &Repository{db: db}
}

// Open connects to MongoDB and verifies the connection. The returned close
// function disconnects the underlying client.
func Open(ctx context.Context, uri, dbName string) (*mongo.Database, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", simplesocial.ErrStoreUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("%w: %v", simplesocial.ErrStoreUnavailable, err)
	}
	return client.Database(dbName), client.Disconnect, nil
}

// EnsureIndexes creates the indexes the collections rely on: a unique index
// on users.email, a descending index on posts.created_at, and a compound
// ascending index on (comments.post_id, comments.created_at).
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(simplesocial.CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = r.db.Collection(simplesocial.CollectionPosts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create posts index: %w", err)
	}

	_, err = r.db.Collection(simplesocial.CollectionComments).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create comments index: %w", err)
	}

	return nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *simplesocial.User) error {
	res, err := r.db.Collection(simplesocial.CollectionUsers).InsertOne(ctx, userToDoc(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return simplesocial.ErrDuplicateEmail
		}
		return err
	}
	user.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*simplesocial.User, error) {
	var doc userDoc
	err := r.db.Collection(simplesocial.CollectionUsers).FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, simplesocial.ErrUserNotFound
		}
		return nil, err
	}
	return docToUser(doc), nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*simplesocial.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, simplesocial.ErrUserNotFound
	}

	var doc userDoc
	err = r.db.Collection(simplesocial.CollectionUsers).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, simplesocial.ErrUserNotFound
		}
		return nil, err
	}
	return docToUser(doc), nil
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *simplesocial.Post) error {
	doc, err := postToDoc(post)
	if err != nil {
		return fmt.Errorf("invalid author id %q: %w", post.AuthorID, err)
	}

	res, err := r.db.Collection(simplesocial.CollectionPosts).InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	post.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id string) (*simplesocial.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, simplesocial.ErrPostNotFound
	}

	var doc postDoc
	err = r.db.Collection(simplesocial.CollectionPosts).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, simplesocial.ErrPostNotFound
		}
		return nil, err
	}
	return docToPost(doc), nil
}

func (r *Repository) UpdatePost(ctx context.Context, id string, fields map[string]interface{}) (*simplesocial.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, simplesocial.ErrPostNotFound
	}

	res, err := r.db.Collection(simplesocial.CollectionPosts).UpdateOne(ctx,
		bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, simplesocial.ErrPostNotFound
	}

	return r.GetPost(ctx, id)
}

func (r *Repository) DeletePost(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return simplesocial.ErrPostNotFound
	}

	res, err := r.db.Collection(simplesocial.CollectionPosts).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return simplesocial.ErrPostNotFound
	}
	return nil
}

func (r *Repository) ListPosts(ctx context.Context, page simplesocial.Page, authorID string) ([]simplesocial.EnrichedPost, error) {
	match := bson.D{}
	if authorID != "" {
		oid, err := primitive.ObjectIDFromHex(authorID)
		if err != nil {
			// An identifier the store could never have assigned matches
			// nothing.
			return []simplesocial.EnrichedPost{}, nil
		}
		match = bson.D{{Key: "author_id", Value: oid}}
	}

	pipeline := listPipeline(match, bson.D{{Key: "created_at", Value: -1}}, page)
	cursor, err := r.db.Collection(simplesocial.CollectionPosts).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]simplesocial.EnrichedPost, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, docToEnrichedPost(doc))
	}
	return rows, nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *simplesocial.Comment) error {
	doc, err := commentToDoc(comment)
	if err != nil {
		return fmt.Errorf("invalid id on comment: %w", err)
	}

	res, err := r.db.Collection(simplesocial.CollectionComments).InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	comment.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *Repository) GetComment(ctx context.Context, id string) (*simplesocial.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, simplesocial.ErrCommentNotFound
	}

	var doc commentDoc
	err = r.db.Collection(simplesocial.CollectionComments).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, simplesocial.ErrCommentNotFound
		}
		return nil, err
	}
	return docToComment(doc), nil
}

func (r *Repository) UpdateComment(ctx context.Context, id string, fields map[string]interface{}) (*simplesocial.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, simplesocial.ErrCommentNotFound
	}

	res, err := r.db.Collection(simplesocial.CollectionComments).UpdateOne(ctx,
		bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, simplesocial.ErrCommentNotFound
	}

	return r.GetComment(ctx, id)
}

func (r *Repository) DeleteComment(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return simplesocial.ErrCommentNotFound
	}

	res, err := r.db.Collection(simplesocial.CollectionComments).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return simplesocial.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) DeleteCommentsForPost(ctx context.Context, postID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return 0, nil
	}

	res, err := r.db.Collection(simplesocial.CollectionComments).DeleteMany(ctx, bson.M{"post_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *Repository) ListCommentsForPost(ctx context.Context, postID string, page simplesocial.Page) ([]simplesocial.EnrichedComment, error) {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return []simplesocial.EnrichedComment{}, nil
	}

	match := bson.D{{Key: "post_id", Value: oid}}
	pipeline := listPipeline(match, bson.D{{Key: "created_at", Value: 1}}, page)
	cursor, err := r.db.Collection(simplesocial.CollectionComments).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var docs []commentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]simplesocial.EnrichedComment, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, docToEnrichedComment(doc))
	}
	return rows, nil
}

// listPipeline builds the shared listing aggregation: filter, order, and
// paginate first, then left-join the page against users to backfill the
// author sub-document. A join miss leaves the denormalized fields as-is.
func listPipeline(match, sortOrder bson.D, page simplesocial.Page) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sortOrder}})
	if page.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(page.Skip)}})
	}
	if page.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(page.Limit)}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: simplesocial.CollectionUsers},
			{Key: "localField", Value: "author_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	)
	return pipeline
}
