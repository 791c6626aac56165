// internal/app/store/services/servicestore.go
package servicestore

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

// ErrNotFound is returned when no service matches the ID.
var ErrNotFound = errors.New("service not found")

// Store provides access to the services collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new service store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("services")}
}

// CreateInput contains the input for creating a service.
type CreateInput struct {
	Category    string
	Name        string
	Description string
	Prices      []any
	Highlight   bool
	SortOrder   int
}

// Create creates a new service.
func (s *Store) Create(ctx context.Context, input CreateInput) (models.Service, error) {
	now := time.Now().UTC()
	prices := input.Prices
	if prices == nil {
		prices = []any{}
	}
	svc := models.Service{
		ID:          primitive.NewObjectID(),
		Category:    input.Category,
		Name:        input.Name,
		Description: input.Description,
		Prices:      prices,
		Highlight:   input.Highlight,
		SortOrder:   input.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, svc); err != nil {
		return models.Service{}, err
	}
	return svc, nil
}

// GetByID retrieves a service by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Service, error) {
	var svc models.Service
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&svc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Service{}, ErrNotFound
	}
	if err != nil {
		return models.Service{}, err
	}
	svc.Prices = plainList(svc.Prices)
	return svc, nil
}

// List returns all services ordered by sort_order, then creation.
func (s *Store) List(ctx context.Context) ([]models.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Service{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Prices = plainList(out[i].Prices)
	}
	return out, nil
}

// Count returns the number of services.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// UpdateInput contains the input for updating a service. Nil fields are left untouched.
type UpdateInput struct {
	Category    *string
	Name        *string
	Description *string
	Prices      []any // nil leaves prices untouched
	Highlight   *bool
	SortOrder   *int
}

// Update updates a service and returns the stored result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) (models.Service, error) {
	set := bson.M{"updated_at": time.Now().UTC()}

	if input.Category != nil {
		set["category"] = *input.Category
	}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Prices != nil {
		set["prices"] = input.Prices
	}
	if input.Highlight != nil {
		set["highlight"] = *input.Highlight
	}
	if input.SortOrder != nil {
		set["sort_order"] = *input.SortOrder
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var svc models.Service
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&svc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Service{}, ErrNotFound
	}
	if err != nil {
		return models.Service{}, err
	}
	svc.Prices = plainList(svc.Prices)
	return svc, nil
}

// Delete removes a service.
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

// plainList turns decoded BSON documents inside prices into plain maps.
func plainList(in []any) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		switch t := v.(type) {
		case primitive.D:
			out = append(out, t.Map())
		case primitive.M:
			out = append(out, map[string]any(t))
		default:
			out = append(out, v)
		}
	}
	return out
}
