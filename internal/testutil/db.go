// Package testutil holds the Mongo and HTTP helpers shared by package tests.
package testutil

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/stratasite/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultMongoURI is used when STRATASITE_TEST_MONGO_URI is unset.
	DefaultMongoURI = "mongodb://localhost:27017"

	// dbPrefix starts every per-test database name.
	dbPrefix = "stratasite_test_"

	// Mongo database names are capped at 63 bytes.
	maxDBName = 63
)

var (
	sharedOnce   sync.Once
	sharedClient *mongo.Client
	sharedErr    error
)

func mongoURI() string {
	if uri := os.Getenv("STRATASITE_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return DefaultMongoURI
}

// connect dials once per test binary; packages run in parallel so the pool
// is sized generously.
func connect() (*mongo.Client, error) {
	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(mongoURI()).
			SetMaxPoolSize(100).
			SetMaxConnIdleTime(30 * time.Second).
			SetServerSelectionTimeout(10 * time.Second)

		sharedClient, sharedErr = mongo.Connect(ctx, opts)
		if sharedErr == nil {
			sharedErr = sharedClient.Ping(ctx, nil)
		}
	})
	return sharedClient, sharedErr
}

// SetupTestDB hands the test an empty database named after it, with the
// production indexes in place. The database is dropped on cleanup. The test
// is skipped when MongoDB is unreachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := connect()
	if skipUnavailable(t, err) {
		return nil
	}

	db := client.Database(DBName(t.Name()))

	ctx, cancel := TestContext()
	defer cancel()
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop %s: %v", db.Name(), err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("drop %s on cleanup: %v", db.Name(), err)
		}
	})
	return db
}

// skipUnavailable skips tb when the test MongoDB could not be reached.
func skipUnavailable(tb testing.TB, err error) bool {
	tb.Helper()
	if err == nil {
		return false
	}
	tb.Skipf("test MongoDB at %s unavailable: %v", mongoURI(), err)
	return true
}

// DBName maps a test name onto a valid, unique database name. Long names
// keep their head and gain a short hash of the full name.
func DBName(testName string) string {
	var b strings.Builder
	b.WriteString(dbPrefix)
	for _, r := range testName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if len(name) <= maxDBName {
		return name
	}
	sum := sha1.Sum([]byte(testName))
	suffix := "_" + hex.EncodeToString(sum[:])[:8]
	return name[:maxDBName-len(suffix)] + suffix
}

// TestContext returns a context bounded for test database calls.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
