// Package validators creates the site collections and attaches JSON-Schema
// validators to the ones whose shape the API relies on.
package validators

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// collection pairs a collection name with its optional validator.
type collection struct {
	name   string
	schema func() bson.M
}

var collections = []collection{
	{"users", usersSchema},
	{"pages", pagesSchema},
	{"page_sections", sectionsSchema},
	{"site_settings", nil},
	{"services", servicesSchema},
	{"reservation_requests", reservationsSchema},
	{"media", mediaSchema},
	{"audit_logs", nil},
}

// EnsureAll creates missing collections and (re)applies validators.
// Deployments without collMod support, such as some DocumentDB versions,
// keep their collections and skip the validators.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	var errs []error
	for _, c := range collections {
		if !have[c.name] {
			if err := db.CreateCollection(ctx, c.name); err != nil && !isNamespaceExists(err) {
				errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
				continue
			}
			zap.L().Info("created collection", zap.String("collection", c.name))
		}
		if c.schema == nil {
			continue
		}
		switch err := applySchema(ctx, db, c.name, c.schema()); {
		case err == nil:
		case isUnsupported(err):
			zap.L().Info("validator skipped (unsupported)", zap.String("collection", c.name))
		default:
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}

// applySchema uses moderate validation so documents written before a schema
// change can still be updated.
func applySchema(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	return db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}).Err()
}

// commandErrorIs matches a server error by code or, for proxies that
// rewrite codes, by message.
func commandErrorIs(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func isNamespaceExists(err error) bool {
	return commandErrorIs(err, []int32{48}, "already exists", "namespace exists")
}

func isUnsupported(err error) bool {
	return commandErrorIs(err, []int32{59, 115}, "no such command", "not implemented", "not supported")
}

func jsonSchema(required []string, props bson.M) bson.M {
	req := make(bson.A, len(required))
	for i, r := range required {
		req[i] = r
	}
	return bson.M{"$jsonSchema": bson.M{
		"bsonType":   "object",
		"required":   req,
		"properties": props,
	}}
}

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	integer  = bson.M{"bsonType": bson.A{"int", "long"}}
)

func usersSchema() bson.M {
	return jsonSchema([]string{"full_name", "email", "email_ci", "role", "status"}, bson.M{
		"full_name": nonBlank,
		"email":     bson.M{"bsonType": "string", "minLength": 3},
		"email_ci":  bson.M{"bsonType": "string", "minLength": 3},
		"role":      bson.M{"enum": bson.A{"admin"}},
		"status":    bson.M{"enum": bson.A{"active", "disabled"}},
	})
}

func pagesSchema() bson.M {
	return jsonSchema([]string{"slug", "title"}, bson.M{
		"slug":        bson.M{"bsonType": "string", "minLength": 1},
		"title":       nonBlank,
		"show_in_nav": bson.M{"bsonType": "bool"},
		"nav_order":   integer,
	})
}

func sectionsSchema() bson.M {
	return jsonSchema([]string{"page_id", "section_key", "type", "content"}, bson.M{
		"page_id":     bson.M{"bsonType": "objectId"},
		"section_key": bson.M{"bsonType": "string", "pattern": "^[a-z0-9]+(-[a-z0-9]+)*$"},
		"type":        bson.M{"bsonType": "string", "pattern": "^[a-z0-9-]+$"},
		"content":     bson.M{"bsonType": "object"},
		"sort_order":  integer,
	})
}

func servicesSchema() bson.M {
	return jsonSchema([]string{"category", "name"}, bson.M{
		"category": nonBlank,
		"name":     nonBlank,
		"prices":   bson.M{"bsonType": "array"},
	})
}

func reservationsSchema() bson.M {
	return jsonSchema([]string{"name", "email", "message", "status"}, bson.M{
		"status": bson.M{"enum": bson.A{"new", "read", "archived"}},
	})
}

func mediaSchema() bson.M {
	return jsonSchema([]string{"filename", "mime_type"}, bson.M{
		"filename":   bson.M{"bsonType": "string", "minLength": 1},
		"mime_type":  bson.M{"bsonType": "string", "pattern": "^image/"},
		"size_bytes": integer,
	})
}
