package tasks_test

import (
	"testing"
	"time"

	"github.com/dalemusser/stratasite/internal/app/store/audit"
	ledgerstore "github.com/dalemusser/stratasite/internal/app/store/ledger"
	"github.com/dalemusser/stratasite/internal/app/store/ratelimit"
	"github.com/dalemusser/stratasite/internal/app/system/tasks"
	"github.com/dalemusser/stratasite/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestRateLimitCleanupJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	old := time.Now().UTC().Add(-2 * time.Hour)
	future := time.Now().UTC().Add(time.Hour)
	_, err := db.Collection("rate_limits").InsertMany(ctx, []any{
		bson.M{"key": "contact:203.0.113.1", "last_attempt": old},
		bson.M{"key": "login:a@example.com", "last_attempt": old, "locked_until": future},
		bson.M{"key": "contact:203.0.113.2", "last_attempt": time.Now().UTC()},
	})
	require.NoError(t, err)

	job := tasks.RateLimitCleanupJob(db, zap.NewNop(), 15*time.Minute)
	require.NoError(t, job.Run(ctx))

	n, err := db.Collection("rate_limits").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "locked and recent keys survive")

	limiter := ratelimit.New(db, ratelimit.ScopeLogin, 5, 15*time.Minute, 15*time.Minute)
	allowed, _, _ := limiter.CheckAllowed(ctx, "a@example.com")
	assert.False(t, allowed)
}

func TestAuditRetentionJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := audit.New(db)
	require.NoError(t, store.Log(ctx, audit.Event{
		CreatedAt: time.Now().UTC().Add(-400 * 24 * time.Hour),
		Category:  audit.CategoryAdmin, EventType: audit.EventSettingsUpdated, Success: true,
	}))
	require.NoError(t, store.Log(ctx, audit.Event{
		CreatedAt: time.Now().UTC(),
		Category:  audit.CategoryAdmin, EventType: audit.EventSettingsUpdated, Success: true,
	}))

	require.NoError(t, tasks.AuditRetentionJob(db, zap.NewNop(), 0).Run(ctx))
	n, err := store.Count(ctx, audit.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "zero retention keeps everything")

	require.NoError(t, tasks.AuditRetentionJob(db, zap.NewNop(), 365*24*time.Hour).Run(ctx))
	n, err = store.Count(ctx, audit.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLedgerRetentionJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := ledgerstore.New(db)
	require.NoError(t, store.Create(ctx, ledgerstore.Entry{RequestID: "old", StatusCode: 500, StartedAt: time.Now().UTC().Add(-40 * 24 * time.Hour)}))
	require.NoError(t, store.Create(ctx, ledgerstore.Entry{RequestID: "new", StatusCode: 500, StartedAt: time.Now().UTC()}))

	require.NoError(t, tasks.LedgerRetentionJob(db, zap.NewNop(), 30*24*time.Hour).Run(ctx))

	entries, err := store.List(ctx, ledgerstore.ListFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].RequestID)
}
