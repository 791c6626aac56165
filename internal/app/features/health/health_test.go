package health

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/stratasite/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context, *readpref.ReadPref) error { return f.err }

var down = fakeDB{err: errors.New("server selection timeout")}

func check(h *Handler) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.Check(rec, testutil.NewRequest(http.MethodGet, "/health"))
	return rec
}

func TestCheck_AllHealthy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db.Client(), zap.NewNop(), Probe{Name: "site_settings", Check: func(context.Context) error { return nil }})

	rec := check(h)
	rec.AssertStatus(t, http.StatusOK)
	body := rec.DecodeJSON(t)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["uptime"])
	assert.Equal(t, map[string]any{"mongodb": "ok", "site_settings": "ok"}, body["services"])
}

func TestCheck_ProbeDegrades(t *testing.T) {
	h := NewHandler(fakeDB{}, zap.NewNop(), Probe{Name: "site_settings", Check: func(context.Context) error {
		return errors.New("settings not seeded")
	}})

	rec := check(h)
	rec.AssertStatus(t, http.StatusOK)
	body := rec.DecodeJSON(t)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "settings not seeded", body["services"].(map[string]any)["site_settings"])
}

func TestCheck_DatabaseDown(t *testing.T) {
	probed := false
	h := NewHandler(down, zap.NewNop(), Probe{Name: "site_settings", Check: func(context.Context) error {
		probed = true
		return nil
	}})

	rec := check(h)
	rec.AssertStatus(t, http.StatusServiceUnavailable)
	assert.Equal(t, "unavailable", rec.DecodeJSON(t)["status"])
	assert.False(t, probed, "probes are skipped without a database")
}

func TestReadyAndLive(t *testing.T) {
	r := chi.NewRouter()
	MountRootEndpoints(r, NewHandler(down, zap.NewNop()))
	r.Mount("/health", Routes(NewHandler(fakeDB{}, zap.NewNop())))

	tests := map[string]int{
		"/ready":        http.StatusServiceUnavailable,
		"/readyz":       http.StatusServiceUnavailable,
		"/live":         http.StatusOK,
		"/livez":        http.StatusOK,
		"/health":       http.StatusOK,
		"/health/ready": http.StatusOK,
		"/health/live":  http.StatusOK,
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, path))
			rec.AssertStatus(t, want)
		})
	}
}
