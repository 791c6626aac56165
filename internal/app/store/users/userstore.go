// Package userstore persists back-office accounts in the users collection.
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/app/system/status"
	"github.com/dalemusser/stratasite/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "users"

var (
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrLastAdmin refuses to disable the only active administrator.
	ErrLastAdmin = errors.New("cannot disable the last active admin")

	errBadRole   = errors.New("invalid role")
	errBadStatus = errors.New(`status must be "active" or "disabled"`)
	errNoEmail   = errors.New("email is required")
)

// withoutSecrets keeps password hashes out of list queries.
var withoutSecrets = bson.M{"password_hash": 0}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

func (s *Store) one(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns mongo.ErrNoDocuments for unknown ids.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.one(ctx, bson.M{"_id": id})
}

// GetByEmail matches ignoring case, accents and surrounding space.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.one(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))})
}

// GetByIDs skips unknown ids.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.list(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(withoutSecrets))
}

// ListAll orders accounts by name.
func (s *Store) ListAll(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(withoutSecrets).
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	return s.list(ctx, bson.M{}, opts)
}

func (s *Store) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type CreateInput struct {
	FullName     string
	Email        string
	Role         string
	PasswordHash string // bcrypt
}

// Create normalizes the name, email and role and inserts an active
// account. A taken email gives ErrDuplicateEmail.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.User, error) {
	email := normalize.Email(in.Email)
	role := normalize.Role(in.Role)
	switch {
	case email == "":
		return models.User{}, errNoEmail
	case !models.IsValidRole(role):
		return models.User{}, errBadRole
	}

	now := time.Now().UTC()
	name := normalize.Name(in.FullName)
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     name,
		FullNameCI:   text.Fold(name),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: in.PasswordHash,
		Role:         role,
		Status:       status.Default(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Count covers every role and status.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

func (s *Store) CountActiveAdmins(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": models.RoleAdmin, "status": status.Active})
}

// SetStatus enables or disables an account. Disabling the last active
// admin fails with ErrLastAdmin.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, st string) error {
	st = normalize.Status(st)
	if !status.IsValid(st) {
		return errBadStatus
	}
	if st == status.Disabled {
		u, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u.Role == models.RoleAdmin && u.Status == status.Active {
			n, err := s.CountActiveAdmins(ctx)
			if err != nil {
				return err
			}
			if n <= 1 {
				return ErrLastAdmin
			}
		}
	}
	return s.set(ctx, id, bson.M{"status": st})
}

// UpdatePassword stores a new bcrypt hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return s.set(ctx, id, bson.M{"password_hash": passwordHash})
}

func (s *Store) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// TouchLastLogin leaves updated_at alone.
func (s *Store) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login_at": at.UTC()}})
	return err
}
