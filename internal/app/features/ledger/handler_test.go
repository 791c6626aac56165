package ledgerfeature

import (
	"net/http"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	ledgerstore "github.com/dalemusser/stratasite/internal/app/store/ledger"
	"github.com/dalemusser/stratasite/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLedgerRoutes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	store := ledgerstore.New(db)
	for _, e := range []ledgerstore.Entry{
		{RequestID: "r-old", Method: "POST", Path: "/api/contact", StatusCode: 429, ErrorClass: "rate_limited", StartedAt: now.Add(-48 * time.Hour)},
		{RequestID: "r-login", Method: "POST", Path: "/api/login", StatusCode: 401, ErrorClass: "bad_credentials", StartedAt: now.Add(-2 * time.Hour)},
		{RequestID: "r-contact", Method: "POST", Path: "/api/contact", StatusCode: 422, ErrorClass: "validation", StartedAt: now.Add(-time.Hour)},
	} {
		require.NoError(t, store.Create(ctx, e))
	}

	logger := zap.NewNop()
	h := NewHandler(db, errorsfeature.NewErrorLogger(logger), logger)
	h.now = func() time.Time { return now }
	get := func(target string, status int) map[string]any {
		rec := testutil.NewRecorder()
		Routes(h).ServeHTTP(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, target), testutil.AdminUser()))
		rec.AssertStatus(t, status)
		return rec.DecodeJSON(t)
	}

	items := get("/", http.StatusOK)["items"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, "r-contact", items[0].(map[string]any)["requestId"])

	items = get("/?path=/api/contact&since=24h", http.StatusOK)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "validation", items[0].(map[string]any)["errorClass"])

	items = get("/?class=bad_credentials", http.StatusOK)["items"].([]any)
	require.Len(t, items, 1)

	page := get("/?limit=2", http.StatusOK)
	require.Len(t, page["items"], 2)
	older := get("/?limit=2&before="+page["nextBefore"].(string), http.StatusOK)["items"].([]any)
	require.Len(t, older, 1)
	assert.Equal(t, "r-old", older[0].(map[string]any)["requestId"])
	get("/?before=yesterday", http.StatusBadRequest)

	assert.Len(t, get("/?status=429", http.StatusOK)["items"], 1)
	get("/?status=abc", http.StatusBadRequest)
	get("/?since=soon", http.StatusBadRequest)

	counts := get("/summary?since=24h", http.StatusOK)["counts"].(map[string]any)
	assert.Equal(t, map[string]any{"bad_credentials": float64(1), "validation": float64(1)}, counts)

	entry := get("/r-login", http.StatusOK)
	assert.Equal(t, "/api/login", entry["path"])
	get("/nope", http.StatusNotFound)

	deleted, err := store.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
