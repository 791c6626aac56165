// internal/app/store/reservations/reservationstore.go
package reservationstore

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

// ErrNotFound is returned when no reservation request matches the ID.
var ErrNotFound = errors.New("reservation request not found")

// Store provides access to the reservation_requests collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new reservation request store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reservation_requests")}
}

// Create stores a new request with status "new".
func (s *Store) Create(ctx context.Context, req models.ReservationRequest) (models.ReservationRequest, error) {
	req.ID = primitive.NewObjectID()
	req.Status = models.ReservationNew
	req.ReadAt = nil
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, req); err != nil {
		return models.ReservationRequest{}, err
	}
	return req, nil
}

// GetByID retrieves a request by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ReservationRequest, error) {
	var req models.ReservationRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ReservationRequest{}, ErrNotFound
	}
	if err != nil {
		return models.ReservationRequest{}, err
	}
	return req, nil
}

// List returns all requests, newest first.
func (s *Store) List(ctx context.Context) ([]models.ReservationRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ReservationRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountNew returns the number of unread requests.
func (s *Store) CountNew(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": models.ReservationNew})
}

// SetStatus changes the status of a request. Moving to "read" stamps read_at
// when it is unset; moving back to "new" clears it.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (models.ReservationRequest, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return models.ReservationRequest{}, err
	}

	update := bson.M{"$set": bson.M{"status": status}}
	switch status {
	case models.ReservationRead:
		if current.ReadAt == nil {
			update["$set"].(bson.M)["read_at"] = time.Now().UTC()
		}
	case models.ReservationNew:
		update["$unset"] = bson.M{"read_at": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var req models.ReservationRequest
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ReservationRequest{}, ErrNotFound
	}
	if err != nil {
		return models.ReservationRequest{}, err
	}
	return req, nil
}
