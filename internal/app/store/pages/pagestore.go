// internal/app/store/pages/pagestore.go
package pagestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratasite/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no page matches the slug.
var ErrNotFound = errors.New("page not found")

// ErrDuplicateSlug is returned when a page with the same slug already exists.
var ErrDuplicateSlug = errors.New("page slug already exists")

// Store provides access to the pages collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new page store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("pages")}
}

// Create inserts a new page. ID and timestamps are filled in when zero.
func (s *Store) Create(ctx context.Context, page models.Page) (models.Page, error) {
	if page.ID.IsZero() {
		page.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	if page.UpdatedAt.IsZero() {
		page.UpdatedAt = now
	}
	if _, err := s.c.InsertOne(ctx, page); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Page{}, ErrDuplicateSlug
		}
		return models.Page{}, err
	}
	return page, nil
}

// GetBySlug returns a page by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Page, error) {
	var page models.Page
	err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&page)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Page{}, ErrNotFound
	}
	if err != nil {
		return models.Page{}, err
	}
	return page, nil
}

// GetAll returns all pages in creation order.
func (s *Store) GetAll(ctx context.Context) ([]models.Page, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, bson.M{}, opts)
}

// ListNav returns the pages flagged for navigation ordered by nav_order.
func (s *Store) ListNav(ctx context.Context) ([]models.Page, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "nav_order", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	return s.find(ctx, bson.M{"show_in_nav": true}, opts)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Page, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	pages := []models.Page{}
	if err := cur.All(ctx, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// Count returns the number of pages.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Exists checks if a page with the given slug exists.
func (s *Store) Exists(ctx context.Context, slug string) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"slug": slug})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies set/unset to the page with the given slug, stamping
// updated_at with at, and returns the updated page.
func (s *Store) Update(ctx context.Context, slug string, set bson.M, unset []string, at time.Time) (models.Page, error) {
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = at.UTC()
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		u := bson.M{}
		for _, f := range unset {
			u[f] = ""
		}
		update["$unset"] = u
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var page models.Page
	err := s.c.FindOneAndUpdate(ctx, bson.M{"slug": slug}, update, opts).Decode(&page)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Page{}, ErrNotFound
	}
	if err != nil {
		return models.Page{}, err
	}
	return page, nil
}

// Touch bumps updated_at on a page.
func (s *Store) Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"updated_at": at}})
	return err
}

// Delete removes a page by ID. Sections are removed by the caller.
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
