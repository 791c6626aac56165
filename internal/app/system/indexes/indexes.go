// Package indexes reconciles the MongoDB indexes the site relies on. It is
// run at startup, by sitectl seed and by test database setup.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// spec is one desired index.
type spec struct {
	name   string
	keys   bson.D
	unique bool
	ttl    time.Duration
}

func (s spec) model() mongo.IndexModel {
	opts := options.Index().SetName(s.name)
	if s.unique {
		opts.SetUnique(true)
	}
	if s.ttl > 0 {
		opts.SetExpireAfterSeconds(int32(s.ttl / time.Second))
	}
	return mongo.IndexModel{Keys: s.keys, Options: opts}
}

func asc(fields ...string) bson.D {
	d := make(bson.D, len(fields))
	for i, f := range fields {
		d[i] = bson.E{Key: f, Value: 1}
	}
	return d
}

func newestFirst(prefix ...string) bson.D {
	return append(asc(prefix...), bson.E{Key: "created_at", Value: -1})
}

// plan lists every collection's indexes, in the order they are ensured.
var plan = []struct {
	collection string
	specs      []spec
}{
	{"users", []spec{
		{name: "uniq_users_email_ci", keys: asc("email_ci"), unique: true},
		// counting active admins gates registration
		{name: "idx_users_role_status", keys: asc("role", "status")},
	}},
	{"pages", []spec{
		{name: "uniq_pages_slug", keys: asc("slug"), unique: true},
		{name: "idx_pages_nav", keys: asc("show_in_nav", "nav_order", "created_at")},
	}},
	{"page_sections", []spec{
		{name: "uniq_sections_page_key", keys: asc("page_id", "section_key"), unique: true},
		{name: "idx_sections_page_sort", keys: asc("page_id", "sort_order", "_id")},
		// contact sync finds the infos and map sections by type
		{name: "idx_sections_page_type", keys: asc("page_id", "type")},
	}},
	{"site_settings", []spec{
		{name: "uniq_sitesettings_singleton", keys: asc("singleton"), unique: true},
	}},
	{"services", []spec{
		{name: "idx_services_sort", keys: asc("sort_order", "_id")},
	}},
	{"reservation_requests", []spec{
		{name: "idx_reservations_created", keys: newestFirst()},
		{name: "idx_reservations_status_created", keys: newestFirst("status")},
	}},
	{"media", []spec{
		{name: "uniq_media_filename", keys: asc("filename"), unique: true},
		{name: "idx_media_uploaded", keys: bson.D{{Key: "uploaded_at", Value: -1}}},
	}},
	{"audit_logs", []spec{
		{name: "idx_audit_created", keys: newestFirst()},
		{name: "idx_audit_category_created", keys: newestFirst("category")},
		{name: "idx_audit_actor_created", keys: newestFirst("actor_id")},
	}},
	{"rate_limits", []spec{
		{name: "idx_ratelimit_key", keys: asc("key"), unique: true},
		{name: "idx_ratelimit_ttl", keys: asc("last_attempt"), ttl: 24 * time.Hour},
	}},
	{"api_stats", []spec{
		{name: "idx_apistats_bucket_type_duration", keys: asc("bucket", "stat_type", "bucket_duration"), unique: true},
		{name: "idx_apistats_type_bucket", keys: asc("stat_type", "bucket")},
	}},
	{"ledger_entries", []spec{
		{name: "uniq_ledger_request_id", keys: asc("request_id"), unique: true},
		{name: "idx_ledger_started_desc", keys: bson.D{{Key: "started_at", Value: -1}}},
		{name: "idx_ledger_status_started", keys: bson.D{{Key: "status_code", Value: 1}, {Key: "started_at", Value: -1}}},
	}},
}

// EnsureAll reconciles every collection and reports all failures together.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var errs []error
	for _, p := range plan {
		if err := reconcile(ctx, db.Collection(p.collection), p.specs); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.collection, err))
		}
	}
	return errors.Join(errs...)
}

// existing is the part of listIndexes output compared against a spec.
type existing struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique"`
	TTL    *int32 `bson:"expireAfterSeconds"`
}

func (e existing) matches(s spec) bool {
	ttl := time.Duration(0)
	if e.TTL != nil {
		ttl = time.Duration(*e.TTL) * time.Second
	}
	return e.Unique == s.unique && ttl == s.ttl
}

func keySig(keys bson.D) string {
	parts := make([]string, len(keys))
	for i, kv := range keys {
		parts[i] = fmt.Sprintf("%s:%v", kv.Key, kv.Value)
	}
	return strings.Join(parts, ", ")
}

// reconcile keeps an index with the same keys and options whatever its
// name, and rebuilds one whose options drifted.
func reconcile(ctx context.Context, c *mongo.Collection, specs []spec) error {
	have, err := list(ctx, c)
	if err != nil {
		return err
	}

	log := zap.L().With(zap.String("collection", c.Name()))
	var errs []error
	for _, s := range specs {
		sig := keySig(s.keys)
		if ex, ok := have[sig]; ok {
			if ex.matches(s) {
				log.Debug("index present", zap.String("name", ex.Name), zap.String("keys", sig))
				continue
			}
			if _, err := c.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Errorf("%s: drop stale %s: %w", s.name, ex.Name, err))
				continue
			}
			log.Info("dropped index with stale options", zap.String("name", ex.Name), zap.String("keys", sig))
		}

		start := time.Now()
		if _, err := c.Indexes().CreateOne(ctx, s.model()); err != nil {
			if s.unique && wafflemongo.IsDup(err) {
				err = errors.New("duplicates present, cannot enforce uniqueness")
			}
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		log.Info("index created",
			zap.String("name", s.name),
			zap.String("keys", sig),
			zap.Duration("took", time.Since(start)))
	}
	return errors.Join(errs...)
}

func list(ctx context.Context, c *mongo.Collection) (map[string]existing, error) {
	cur, err := c.Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	defer cur.Close(ctx)

	out := map[string]existing{}
	for cur.Next(ctx) {
		var ex existing
		if err := cur.Decode(&ex); err != nil {
			return nil, fmt.Errorf("decode index: %w", err)
		}
		out[keySig(ex.Key)] = ex
	}
	return out, cur.Err()
}
