package services

import (
	"net/http"
	"testing"

	errorsfeature "github.com/dalemusser/stratasite/internal/app/features/errors"
	"github.com/dalemusser/stratasite/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return NewHandler(db, errorsfeature.NewErrorLogger(logger), nil, logger)
}

func admin(t *testing.T, h *Handler, method, target string, body any) *testutil.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = testutil.NewRequest(method, target)
	} else {
		req = testutil.NewJSONRequest(t, method, target, body)
	}
	rec := testutil.NewRecorder()
	AdminRoutes(h).ServeHTTP(rec, testutil.WithUser(req, testutil.AdminUser()))
	return rec
}

func create(t *testing.T, h *Handler, name string, sortOrder int) string {
	t.Helper()
	rec := admin(t, h, http.MethodPost, "/", map[string]any{
		"category":    "Massages",
		"name":        name,
		"description": "Un soin complet",
		"prices":      []any{map[string]any{"duration": "60 min", "price": "70 €"}},
		"sortOrder":   sortOrder,
	})
	rec.AssertStatus(t, http.StatusCreated)
	return rec.DecodeJSON(t)["id"].(string)
}

func TestCreate(t *testing.T) {
	h := newHandler(t)

	rec := admin(t, h, http.MethodPost, "/", map[string]any{
		"category":    "  Massages ",
		"name":        "Abhyanga",
		"description": "Massage a l'huile chaude",
		"prices":      []any{map[string]any{"duration": "60 min", "price": "70 €"}},
		"highlight":   "1",
	})
	rec.AssertStatus(t, http.StatusCreated)
	body := rec.DecodeJSON(t)
	assert.Equal(t, "Massages", body["category"])
	assert.Equal(t, true, body["highlight"])
	assert.Equal(t, float64(0), body["sortOrder"])
	assert.NotEmpty(t, body["createdAt"])
}

func TestCreate_Validation(t *testing.T) {
	h := newHandler(t)

	rec := admin(t, h, http.MethodPost, "/", map[string]any{"name": " ", "prices": "70 €"})
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	errs := rec.DecodeJSON(t)["errors"].(map[string]any)
	want := map[string]any{
		"category":    "Category is required.",
		"name":        "Name is required.",
		"description": "Description is required.",
		"prices":      "Prices must be an array.",
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}

	admin(t, h, http.MethodPost, "/", "not json").AssertStatus(t, http.StatusBadRequest)
}

func TestListOrder(t *testing.T) {
	h := newHandler(t)
	create(t, h, "Kobido", 2)
	create(t, h, "Shirodhara", 1)
	create(t, h, "Reflexologie", 2)

	items := admin(t, h, http.MethodGet, "/", nil).DecodeJSON(t)["items"].([]any)
	require.Len(t, items, 3)
	var names []string
	for _, it := range items {
		names = append(names, it.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"Shirodhara", "Kobido", "Reflexologie"}, names)

	rec := testutil.NewRecorder()
	PublicRoutes(h).ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusOK)
	public := rec.DecodeJSON(t)["items"].([]any)
	require.Len(t, public, 3)
	first := public[0].(map[string]any)
	assert.Equal(t, "Shirodhara", first["name"])
	assert.NotContains(t, first, "createdAt")
	assert.Len(t, first["prices"], 1)
}

func TestShowUpdateDelete(t *testing.T) {
	h := newHandler(t)
	id := create(t, h, "Kobido", 0)

	admin(t, h, http.MethodGet, "/"+id, nil).AssertStatus(t, http.StatusOK)
	admin(t, h, http.MethodGet, "/not-an-id", nil).AssertStatus(t, http.StatusNotFound)
	admin(t, h, http.MethodGet, "/65a000000000000000000000", nil).AssertStatus(t, http.StatusNotFound)

	// Only the keys present are validated and applied.
	rec := admin(t, h, http.MethodPut, "/"+id, map[string]any{"name": " Kobido lifting ", "sortOrder": "5"})
	rec.AssertStatus(t, http.StatusOK)
	body := rec.DecodeJSON(t)
	assert.Equal(t, "Kobido lifting", body["name"])
	assert.Equal(t, "Massages", body["category"])
	assert.Equal(t, float64(5), body["sortOrder"])

	rec = admin(t, h, http.MethodPost, "/"+id, map[string]any{"description": ""})
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	rec.AssertContains(t, "Description is required.")

	admin(t, h, http.MethodPut, "/"+id, map[string]any{"prices": map[string]any{"a": 1}}).
		AssertStatus(t, http.StatusUnprocessableEntity)

	admin(t, h, http.MethodDelete, "/"+id, nil).AssertStatus(t, http.StatusNoContent)
	admin(t, h, http.MethodDelete, "/"+id, nil).AssertStatus(t, http.StatusNotFound)
	admin(t, h, http.MethodPut, "/"+id, map[string]any{"name": "x"}).AssertStatus(t, http.StatusNotFound)
}
