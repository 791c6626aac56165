package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/stratasite/internal/app/system/auth"
	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/app/system/status"
	"github.com/dalemusser/stratasite/internal/app/system/timeouts"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// sessionFields is all the session middleware reads; the password hash
// never leaves the database on this path.
var sessionFields = bson.D{
	{Key: "full_name", Value: 1},
	{Key: "email", Value: 1},
	{Key: "role", Value: 1},
	{Key: "status", Value: 1},
}

// Fetcher resolves session cookies to users. It implements
// auth.UserFetcher.
type Fetcher struct {
	store  *Store
	logger *zap.Logger
}

var _ auth.UserFetcher = (*Fetcher)(nil)

func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	return &Fetcher{store: New(db), logger: logger}
}

// FetchUser returns nil for malformed ids, unknown users and accounts
// that may not sign in. Lookup failures are logged and treated the same.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	err = f.store.c.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(sessionFields)).Decode(&u)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil
	case err != nil:
		f.logger.Warn("session user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	case !status.CanSignIn(normalize.Status(u.Status)):
		return nil
	}
	return &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  normalize.Role(u.Role),
	}
}
