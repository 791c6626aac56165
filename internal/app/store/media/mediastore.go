// internal/app/store/media/mediastore.go
package mediastore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no media item matches the ID.
var ErrNotFound = errors.New("media not found")

// Store provides access to the media collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new media store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("media")}
}

// Create records an uploaded file.
func (s *Store) Create(ctx context.Context, m models.Media) (models.Media, error) {
	m.ID = primitive.NewObjectID()
	if m.UploadedAt.IsZero() {
		m.UploadedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Media{}, err
	}
	return m, nil
}

// GetByID retrieves a media item by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Media, error) {
	var m models.Media
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Media{}, ErrNotFound
	}
	if err != nil {
		return models.Media{}, err
	}
	return m, nil
}

// List returns all media, most recent upload first.
func (s *Store) List(ctx context.Context) ([]models.Media, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Media{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetAlt sets or clears (nil) the alt text.
func (s *Store) SetAlt(ctx context.Context, id primitive.ObjectID, alt *string) (models.Media, error) {
	update := bson.M{"$unset": bson.M{"alt": ""}}
	if alt != nil {
		update = bson.M{"$set": bson.M{"alt": *alt}}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.Media
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Media{}, ErrNotFound
	}
	if err != nil {
		return models.Media{}, err
	}
	return m, nil
}

// Delete removes a media record. The stored file is removed by the caller.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
