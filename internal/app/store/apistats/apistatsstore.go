// Package apistats keeps request counters for the public site API in
// fixed-width time buckets, one document per bucket and endpoint group.
package apistats

import (
	"context"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "api_stats"

// StatType names a group of public endpoints.
type StatType string

const (
	StatTypePages        StatType = "pages"
	StatTypeNavigation   StatType = "navigation"
	StatTypeSettings     StatType = "settings"
	StatTypeServices     StatType = "services"
	StatTypeReservations StatType = "reservations"
	StatTypeContact      StatType = "contact"
	StatTypeMedia        StatType = "media"
	StatTypeImages       StatType = "images"
)

var statTypes = []StatType{
	StatTypePages, StatTypeNavigation, StatTypeSettings, StatTypeServices,
	StatTypeReservations, StatTypeContact, StatTypeMedia, StatTypeImages,
}

func IsStatType(v string) bool {
	return slices.Contains(statTypes, StatType(v))
}

// Bucket is one bucket of counters. Errors counts responses >= 400.
type Bucket struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Bucket         time.Time          `bson:"bucket" json:"bucket"`
	BucketDuration string             `bson:"bucket_duration" json:"bucketDuration"`
	StatType       StatType           `bson:"stat_type" json:"type"`
	Requests       int64              `bson:"requests" json:"requests"`
	Errors         int64              `bson:"errors" json:"errors"`
	TotalMs        int64              `bson:"total_ms" json:"totalMs"`
	MinMs          int64              `bson:"min_ms" json:"minMs"`
	MaxMs          int64              `bson:"max_ms" json:"maxMs"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (b *Bucket) AvgMs() float64 {
	if b.Requests == 0 {
		return 0
	}
	return float64(b.TotalMs) / float64(b.Requests)
}

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName), now: time.Now}
}

// Record adds one request to the current bucket of statType, creating the
// bucket on first use. Buckets of different widths never mix.
func (s *Store) Record(ctx context.Context, statType StatType, width time.Duration, durationMs int64, isError bool) error {
	now := s.now().UTC()
	key := bson.D{
		{Key: "bucket", Value: now.Truncate(width)},
		{Key: "stat_type", Value: statType},
		{Key: "bucket_duration", Value: width.String()},
	}

	var errInc int64
	if isError {
		errInc = 1
	}
	// $min and $max seed min_ms and max_ms on insert.
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "requests", Value: 1}, {Key: "errors", Value: errInc}, {Key: "total_ms", Value: durationMs}}},
		{Key: "$min", Value: bson.D{{Key: "min_ms", Value: durationMs}}},
		{Key: "$max", Value: bson.D{{Key: "max_ms", Value: durationMs}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: now}}},
	}
	_, err := s.c.UpdateOne(ctx, key, update, options.Update().SetUpsert(true))
	return err
}

func between(from, to time.Time) bson.M {
	return bson.M{"$gte": from.UTC(), "$lte": to.UTC()}
}

// GetRange returns statType's buckets starting within [from, to], oldest
// first.
func (s *Store) GetRange(ctx context.Context, statType StatType, from, to time.Time) ([]Bucket, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"stat_type": statType, "bucket": between(from, to)},
		options.Find().SetSort(bson.D{{Key: "bucket", Value: 1}}))
	if err != nil {
		return nil, err
	}
	buckets := []Bucket{}
	if err := cur.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// DeleteOlderThan removes buckets starting before cutoff, limited to one
// width when width is not empty.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time, width string) (int64, error) {
	filter := bson.M{"bucket": bson.M{"$lt": cutoff.UTC()}}
	if width != "" {
		filter["bucket_duration"] = width
	}
	res, err := s.c.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Summary totals one endpoint group over a range.
type Summary struct {
	StatType      StatType  `bson:"_id" json:"type"`
	TotalRequests int64     `bson:"requests" json:"requests"`
	TotalErrors   int64     `bson:"errors" json:"errors"`
	AvgMs         float64   `bson:"avg_ms" json:"avgMs"`
	MinMs         int64     `bson:"min_ms" json:"minMs"`
	MaxMs         int64     `bson:"max_ms" json:"maxMs"`
	FirstBucket   time.Time `bson:"first_bucket" json:"firstBucket"`
	LastBucket    time.Time `bson:"last_bucket" json:"lastBucket"`
}

// ErrorRate is the failed share of requests, in percent.
func (s Summary) ErrorRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.TotalErrors) / float64(s.TotalRequests) * 100
}

// GetSummary aggregates every group with buckets in [from, to], sorted by
// group name.
func (s *Store) GetSummary(ctx context.Context, from, to time.Time) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bucket": between(from, to)}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$stat_type",
			"requests":     bson.M{"$sum": "$requests"},
			"errors":       bson.M{"$sum": "$errors"},
			"total_ms":     bson.M{"$sum": "$total_ms"},
			"min_ms":       bson.M{"$min": "$min_ms"},
			"max_ms":       bson.M{"$max": "$max_ms"},
			"first_bucket": bson.M{"$min": "$bucket"},
			"last_bucket":  bson.M{"$max": "$bucket"},
		}}},
		{{Key: "$set", Value: bson.M{"avg_ms": bson.M{"$cond": bson.A{
			bson.M{"$gt": bson.A{"$requests", 0}},
			bson.M{"$divide": bson.A{"$total_ms", "$requests"}},
			0,
		}}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	sums := []Summary{}
	if err := cur.All(ctx, &sums); err != nil {
		return nil, err
	}
	return sums, nil
}
