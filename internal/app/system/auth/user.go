// Package auth provides cookie sessions for back-office users and the
// middleware guarding the admin API.
package auth

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionUser is the signed-in back-office user attached to a request.
// It is rebuilt from the users collection on every request, so a role
// change or a disabled account takes effect immediately.
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  string

	// SignedInAt is when the session cookie was issued. Zero for users
	// injected without a cookie.
	SignedInAt time.Time
}

// UserID parses ID, returning the zero ObjectID when it is malformed.
func (u *SessionUser) UserID() primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// UserFetcher loads the current state of a user. It returns nil when the
// user is gone or may no longer sign in.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey struct{}

// CurrentUser returns the signed-in user of r, if any.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(ctxKey{}).(*SessionUser)
	return u, ok && u != nil
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, u))
}

// WithTestUser attaches u to r without a cookie round trip.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}
