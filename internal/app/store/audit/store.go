// Package audit persists the security and back-office event trail in the
// audit_logs collection.
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "audit_logs"

// DefaultLimit caps Query when Filter.Limit is unset.
const DefaultLimit = 100

type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	Category  string             `bson:"category" json:"category"`
	EventType string             `bson:"event_type" json:"eventType"`

	// UserID is the account the event is about; ActorID is the admin who
	// acted. Sign-in events only carry UserID.
	UserID  *primitive.ObjectID `bson:"user_id,omitempty" json:"userId,omitempty"`
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty" json:"actorId,omitempty"`

	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"userAgent,omitempty"`

	Success       bool              `bson:"success" json:"success"`
	FailureReason string            `bson:"failure_reason,omitempty" json:"failureReason,omitempty"`
	Details       map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// Filter selects events. Zero fields match everything; From and To are
// inclusive.
type Filter struct {
	ActorID   *primitive.ObjectID
	Category  string
	EventType string
	Success   *bool
	From, To  *time.Time
	Limit     int64
	Offset    int64
}

func (f Filter) query() bson.D {
	q := bson.D{}
	add := func(k string, v any) { q = append(q, bson.E{Key: k, Value: v}) }

	if f.ActorID != nil {
		add("actor_id", *f.ActorID)
	}
	if f.Category != "" {
		add("category", f.Category)
	}
	if f.EventType != "" {
		add("event_type", f.EventType)
	}
	if f.Success != nil {
		add("success", *f.Success)
	}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = *f.From
		}
		if f.To != nil {
			rng["$lte"] = *f.To
		}
		add("created_at", rng)
	}
	return q
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Log inserts e, filling in the id and timestamp when unset.
func (s *Store) Log(ctx context.Context, e Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// Query returns one page of matching events, newest first.
func (s *Store) Query(ctx context.Context, f Filter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(f.Offset).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, err
	}
	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Count ignores Limit and Offset.
func (s *Store) Count(ctx context.Context, f Filter) (int64, error) {
	return s.c.CountDocuments(ctx, f.query())
}

func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
