// Package ratelimit counts attempts per scoped key in the rate_limits
// collection. Login failures are keyed by email, contact submissions by
// client IP.
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is shared by every scope.
const CollectionName = "rate_limits"

// Scopes used by the application.
const (
	ScopeLogin   = "login"
	ScopeContact = "contact"
)

// Attempt is the counter document of one key.
type Attempt struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Key          string             `bson:"key"` // scope:subject
	AttemptCount int                `bson:"attempt_count"`
	WindowStart  time.Time          `bson:"window_start"`
	LockedUntil  *time.Time         `bson:"locked_until"`
	LastAttempt  time.Time          `bson:"last_attempt"` // TTL field
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// Store limits one scope: after max attempts inside window, the key is
// locked for lockout.
type Store struct {
	c       *mongo.Collection
	scope   string
	max     int
	window  time.Duration
	lockout time.Duration
	now     func() time.Time
}

func New(db *mongo.Database, scope string, maxAttempts int, window, lockout time.Duration) *Store {
	return &Store{
		c:       db.Collection(CollectionName),
		scope:   scope,
		max:     maxAttempts,
		window:  window,
		lockout: lockout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Key returns the stored key of subject within the store's scope.
func (s *Store) Key(subject string) string {
	return s.scope + ":" + strings.ToLower(strings.TrimSpace(subject))
}

// CheckAllowed reports whether subject may try again, how many attempts
// are left in the window (-1 while locked) and, while locked, until when.
// Lookup failures allow the attempt.
func (s *Store) CheckAllowed(ctx context.Context, subject string) (allowed bool, remaining int, lockedUntil *time.Time) {
	a, err := s.GetAttempt(ctx, subject)
	if err != nil || a == nil {
		return true, s.max, nil
	}
	now := s.now()
	if a.LockedUntil != nil && now.Before(*a.LockedUntil) {
		return false, -1, a.LockedUntil
	}
	if s.windowExpired(a.WindowStart, now) {
		return true, s.max, nil
	}
	if remaining = s.max - a.AttemptCount; remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

func (s *Store) windowExpired(start, now time.Time) bool {
	return now.After(start.Add(s.window))
}

// Record counts one attempt for subject in a single atomic upsert and
// reports whether the key is now locked. Write failures never lock.
func (s *Store) Record(ctx context.Context, subject string) (lockedOut bool, lockedUntil *time.Time) {
	a, err := s.increment(ctx, s.Key(subject))
	if wafflemongo.IsDup(err) {
		// Two first attempts raced on the unique key; the loser retries as an update.
		a, err = s.increment(ctx, s.Key(subject))
	}
	if err != nil || a.AttemptCount < s.max {
		return false, nil
	}
	return true, a.LockedUntil
}

func (s *Store) increment(ctx context.Context, key string) (*Attempt, error) {
	now := s.now()
	expired := bson.M{"$or": bson.A{
		bson.M{"$eq": bson.A{bson.M{"$type": "$window_start"}, "missing"}},
		bson.M{"$lt": bson.A{"$window_start", now.Add(-s.window)}},
	}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"_expired": expired}}},
		{{Key: "$set", Value: bson.M{
			"attempt_count": bson.M{"$cond": bson.A{"$_expired", 1, bson.M{"$add": bson.A{"$attempt_count", 1}}}},
			"window_start":  bson.M{"$cond": bson.A{"$_expired", now, "$window_start"}},
			"locked_until":  bson.M{"$cond": bson.A{"$_expired", nil, bson.M{"$ifNull": bson.A{"$locked_until", nil}}}},
			"created_at":    bson.M{"$ifNull": bson.A{"$created_at", now}},
			"last_attempt":  now,
			"updated_at":    now,
		}}},
		{{Key: "$set", Value: bson.M{
			"locked_until": bson.M{"$cond": bson.A{
				bson.M{"$gte": bson.A{"$attempt_count", s.max}},
				now.Add(s.lockout),
				"$locked_until",
			}},
		}}},
		{{Key: "$unset", Value: "_expired"}},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var a Attempt
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"key": key}, pipeline, opts).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ClearOnSuccess forgets subject, typically after a successful login.
func (s *Store) ClearOnSuccess(ctx context.Context, subject string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"key": s.Key(subject)})
	return err
}

// GetAttempt returns the counter of subject, or nil when there is none.
func (s *Store) GetAttempt(ctx context.Context, subject string) (*Attempt, error) {
	var a Attempt
	err := s.c.FindOne(ctx, bson.M{"key": s.Key(subject)}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteStale removes unlocked keys of every scope whose last attempt is
// before olderThan.
func DeleteStale(ctx context.Context, db *mongo.Database, olderThan time.Time) (int64, error) {
	res, err := db.Collection(CollectionName).DeleteMany(ctx, bson.M{
		"last_attempt": bson.M{"$lt": olderThan},
		"$or": bson.A{
			bson.M{"locked_until": nil},
			bson.M{"locked_until": bson.M{"$lt": time.Now().UTC()}},
		},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
