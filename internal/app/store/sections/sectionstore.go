// internal/app/store/sections/sectionstore.go
package sectionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratasite/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no section matches.
var ErrNotFound = errors.New("section not found")

// ErrDuplicateKey is returned when the page already has a section with the key.
var ErrDuplicateKey = errors.New("section key already exists on page")

// Store provides access to the page_sections collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new section store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("page_sections")}
}

var orderSort = bson.D{{Key: "sort_order", Value: 1}, {Key: "_id", Value: 1}}

// Create inserts a section. (page_id, section_key) is unique.
func (s *Store) Create(ctx context.Context, sec models.Section) (models.Section, error) {
	if sec.ID.IsZero() {
		sec.ID = primitive.NewObjectID()
	}
	if sec.UpdatedAt.IsZero() {
		sec.UpdatedAt = time.Now().UTC()
	}
	if sec.Content == nil {
		sec.Content = map[string]any{}
	}
	if _, err := s.c.InsertOne(ctx, sec); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Section{}, ErrDuplicateKey
		}
		return models.Section{}, err
	}
	return sec, nil
}

// ListByPage returns the sections of a page in render order.
func (s *Store) ListByPage(ctx context.Context, pageID primitive.ObjectID) ([]models.Section, error) {
	return s.find(ctx, bson.M{"page_id": pageID})
}

// ListByPageAndType returns the page's sections whose type is one of types.
func (s *Store) ListByPageAndType(ctx context.Context, pageID primitive.ObjectID, types ...string) ([]models.Section, error) {
	return s.find(ctx, bson.M{"page_id": pageID, "type": bson.M{"$in": types}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Section, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(orderSort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Section{}
	for cur.Next(ctx) {
		var sec models.Section
		if err := cur.Decode(&sec); err != nil {
			return nil, err
		}
		sec.Content = PlainContent(sec.Content)
		out = append(out, sec)
	}
	return out, cur.Err()
}

// Get returns the section with key on the page.
func (s *Store) Get(ctx context.Context, pageID primitive.ObjectID, key string) (models.Section, error) {
	return s.findOne(ctx, bson.M{"page_id": pageID, "section_key": key}, nil)
}

// FindFirst returns the first section in render order matching any of the
// given keys or types. Either list may be empty.
func (s *Store) FindFirst(ctx context.Context, pageID primitive.ObjectID, keys, types []string) (models.Section, error) {
	var or bson.A
	if len(keys) > 0 {
		or = append(or, bson.M{"section_key": bson.M{"$in": keys}})
	}
	if len(types) > 0 {
		or = append(or, bson.M{"type": bson.M{"$in": types}})
	}
	if len(or) == 0 {
		return models.Section{}, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"page_id": pageID, "$or": or}, options.FindOne().SetSort(orderSort))
}

func (s *Store) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (models.Section, error) {
	if opts == nil {
		opts = options.FindOne()
	}
	var sec models.Section
	err := s.c.FindOne(ctx, filter, opts).Decode(&sec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Section{}, ErrNotFound
	}
	if err != nil {
		return models.Section{}, err
	}
	sec.Content = PlainContent(sec.Content)
	return sec, nil
}

// MaxSortOrder returns the largest sort_order on the page, or -1 when the page
// has no sections.
func (s *Store) MaxSortOrder(ctx context.Context, pageID primitive.ObjectID) (int, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "sort_order", Value: -1}}).
		SetProjection(bson.M{"sort_order": 1})
	var doc struct {
		SortOrder int `bson:"sort_order"`
	}
	err := s.c.FindOne(ctx, bson.M{"page_id": pageID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.SortOrder, nil
}

// Update applies set/unset to a section, bumping updated_at, and returns the result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset []string) (models.Section, error) {
	if set == nil {
		set = bson.M{}
	}
	if _, ok := set["updated_at"]; !ok {
		set["updated_at"] = time.Now().UTC()
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		u := bson.M{}
		for _, f := range unset {
			u[f] = ""
		}
		update["$unset"] = u
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var sec models.Section
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&sec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Section{}, ErrNotFound
	}
	if err != nil {
		return models.Section{}, err
	}
	sec.Content = PlainContent(sec.Content)
	return sec, nil
}

// Delete removes one section.
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

// DeleteByPage removes every section of a page.
func (s *Store) DeleteByPage(ctx context.Context, pageID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"page_id": pageID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PlainContent converts decoded BSON containers (primitive.A, primitive.M,
// primitive.D) into plain []any and map[string]any so content trees compare
// and type-assert the same way as freshly decoded JSON.
func PlainContent(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case primitive.M:
		return PlainContent(t)
	case map[string]any:
		return PlainContent(t)
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	default:
		return v
	}
}
