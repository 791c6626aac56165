// internal/app/store/settings/settingsstore.go
package settingsstore

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

// ErrNotFound is returned by Find when the settings record has never been saved.
var ErrNotFound = errors.New("site settings not found")

// Store provides access to the site_settings collection.
// There is a single settings document per site, addressed by {singleton: true}.
type Store struct {
	c *mongo.Collection
}

// New creates a new settings store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("site_settings")}
}

var singleton = bson.M{"singleton": true}

// Find returns the persisted settings or ErrNotFound.
func (s *Store) Find(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := s.c.FindOne(ctx, singleton).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Get returns the site settings.
// If no settings exist, returns defaults without persisting them.
func (s *Store) Get(ctx context.Context) (*models.SiteSettings, error) {
	settings, err := s.Find(ctx)
	if errors.Is(err, ErrNotFound) {
		d := models.DefaultSiteSettings(time.Now().UTC())
		return &d, nil
	}
	return settings, err
}

// GetOrCreate returns the settings record, inserting the defaults first when
// none exists. Concurrent first calls converge on one document.
func (s *Store) GetOrCreate(ctx context.Context) (*models.SiteSettings, error) {
	d := models.DefaultSiteSettings(time.Now().UTC())
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"general":    d.General,
			"contact":    d.Contact,
			"hours":      d.Hours,
			"social":     d.Social,
			"booking":    d.Booking,
			"appearance": d.Appearance,
			"footer":     d.Footer,
			"navigation": d.Navigation,
			"updated_at": d.UpdatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var settings models.SiteSettings
	if err := s.c.FindOneAndUpdate(ctx, singleton, update, opts).Decode(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save writes every namespace of settings. Uses upsert so it works whether
// settings exist or not. UpdatedAt is stored as given.
func (s *Store) Save(ctx context.Context, settings models.SiteSettings) error {
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now().UTC()
	}
	update := bson.M{
		"$set": bson.M{
			"singleton":       true,
			"general":         settings.General,
			"contact":         settings.Contact,
			"hours":           settings.Hours,
			"social":          settings.Social,
			"booking":         settings.Booking,
			"appearance":      settings.Appearance,
			"footer":          settings.Footer,
			"navigation":      settings.Navigation,
			"updated_at":      settings.UpdatedAt,
			"updated_by_id":   settings.UpdatedByID,
			"updated_by_name": settings.UpdatedByName,
		},
		"$setOnInsert": bson.M{
			"_id": primitive.NewObjectID(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, singleton, update, opts)
	return err
}

// Exists checks if settings have been saved.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	count, err := s.c.CountDocuments(ctx, singleton)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
