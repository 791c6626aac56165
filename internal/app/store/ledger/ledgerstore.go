// Package ledgerstore persists the request ledger: one document per failed
// call to the public API.
package ledgerstore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "ledger_entries"

// List page sizes.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type Entry struct {
	ID primitive.ObjectID `bson:"_id" json:"id"`

	RequestID string `bson:"request_id" json:"requestId"`
	// ClientRequestID echoes the caller's X-Request-ID header.
	ClientRequestID string `bson:"client_request_id,omitempty" json:"clientRequestId,omitempty"`

	Method    string `bson:"method" json:"method"`
	Path      string `bson:"path" json:"path"`
	Query     string `bson:"query,omitempty" json:"query,omitempty"`
	RemoteIP  string `bson:"remote_ip" json:"remoteIp"`
	UserAgent string `bson:"user_agent,omitempty" json:"userAgent,omitempty"`

	ActorType string `bson:"actor_type" json:"actorType"` // session, api_key or anonymous
	ActorID   string `bson:"actor_id,omitempty" json:"actorId,omitempty"`

	// The body is kept as its size, a short hash and a redacted preview.
	RequestBodySize    int64  `bson:"request_body_size" json:"requestBodySize"`
	RequestBodyHash    string `bson:"request_body_hash,omitempty" json:"requestBodyHash,omitempty"`
	RequestBodyPreview string `bson:"request_body_preview,omitempty" json:"requestBodyPreview,omitempty"`

	StatusCode   int    `bson:"status_code" json:"statusCode"`
	ResponseSize int64  `bson:"response_size" json:"responseSize"`
	ErrorClass   string `bson:"error_class,omitempty" json:"errorClass,omitempty"`

	DurationMs  float64   `bson:"duration_ms" json:"durationMs"`
	StartedAt   time.Time `bson:"started_at" json:"startedAt"`
	CompletedAt time.Time `bson:"completed_at" json:"completedAt"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

func (s *Store) Create(ctx context.Context, e Entry) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// GetByRequestID returns mongo.ErrNoDocuments for unknown ids.
func (s *Store) GetByRequestID(ctx context.Context, requestID string) (*Entry, error) {
	var e Entry
	if err := s.c.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListFilter narrows List. Since and Before bound started_at; Before is
// exclusive so the oldest entry of one page can fetch the next.
type ListFilter struct {
	Since         *time.Time
	Before        *time.Time
	PathPrefix    string
	StatusCodeMin int
	ErrorClass    string
	Limit         int
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	started := bson.M{}
	if f.Since != nil {
		started["$gte"] = *f.Since
	}
	if f.Before != nil {
		started["$lt"] = *f.Before
	}
	if len(started) > 0 {
		q["started_at"] = started
	}
	if f.PathPrefix != "" {
		q["path"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.PathPrefix)}
	}
	if f.StatusCodeMin > 0 {
		q["status_code"] = bson.M{"$gte": f.StatusCodeMin}
	}
	if f.ErrorClass != "" {
		q["error_class"] = f.ErrorClass
	}
	return q
}

// List returns matching entries newest first, at most MaxLimit.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Entry, error) {
	limit := f.Limit
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, err
	}
	entries := []Entry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByErrorClass counts entries since the given time per error class;
// entries without a class count as "ok".
func (s *Store) CountByErrorClass(ctx context.Context, since time.Time) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"started_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$ifNull": bson.A{"$error_class", "ok"}},
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Class string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Class] = r.Count
	}
	return counts, nil
}

func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"started_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
