package pagestore

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/stratasite/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func strPtr(s string) *string { return &s }

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	page, err := store.Create(ctx, models.Page{
		Slug:      "team",
		Title:     "Team",
		MetaTitle: strPtr("Team"),
		ShowInNav: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if page.ID.IsZero() {
		t.Error("Create() should assign an ID")
	}
	if page.CreatedAt.IsZero() || page.UpdatedAt.IsZero() {
		t.Error("Create() should set timestamps")
	}

	got, err := store.GetBySlug(ctx, "team")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if got.Title != "Team" {
		t.Errorf("Title = %q, want %q", got.Title, "Team")
	}
	if got.MetaTitle == nil || *got.MetaTitle != "Team" {
		t.Errorf("MetaTitle = %v, want Team", got.MetaTitle)
	}
	if got.MetaDescription != nil {
		t.Errorf("MetaDescription = %v, want nil", *got.MetaDescription)
	}
}

func TestStore_Create_DuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Page{Slug: "dup", Title: "One"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := store.Create(ctx, models.Page{Slug: "dup", Title: "Two"})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("Create() duplicate error = %v, want %v", err, ErrDuplicateSlug)
	}
}

func TestStore_GetBySlug_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetBySlug(ctx, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBySlug() error = %v, want %v", err, ErrNotFound)
	}
}

func TestStore_GetAll_CreationOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	for i, slug := range []string{"b", "a", "c"} {
		if _, err := store.Create(ctx, models.Page{Slug: slug, Title: slug, CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("Create(%s) error = %v", slug, err)
		}
	}

	pages, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	var slugs []string
	for _, p := range pages {
		slugs = append(slugs, p.Slug)
	}
	want := []string{"b", "a", "c"}
	for i := range want {
		if i >= len(slugs) || slugs[i] != want[i] {
			t.Fatalf("GetAll() slugs = %v, want %v", slugs, want)
		}
	}

	count, err := store.Count(ctx)
	if err != nil || count != 3 {
		t.Errorf("Count() = %d, %v; want 3", count, err)
	}
}

func TestStore_ListNav(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.Create(ctx, models.Page{Slug: "contact", Title: "Contact", ShowInNav: true, NavOrder: 4})
	store.Create(ctx, models.Page{Slug: "home", Title: "Accueil", ShowInNav: true, NavOrder: 0})
	store.Create(ctx, models.Page{Slug: "hidden", Title: "Hidden", ShowInNav: false, NavOrder: 1})

	pages, err := store.ListNav(ctx)
	if err != nil {
		t.Fatalf("ListNav() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("ListNav() returned %d pages, want 2", len(pages))
	}
	if pages[0].Slug != "home" || pages[1].Slug != "contact" {
		t.Errorf("ListNav() order = [%s %s], want [home contact]", pages[0].Slug, pages[1].Slug)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, models.Page{Slug: "about", Title: "About", NavTitle: strPtr("Qui")})
	at := created.UpdatedAt.Add(time.Hour).Truncate(time.Millisecond)

	updated, err := store.Update(ctx, "about", bson.M{"title": "A propos", "nav_order": 3}, []string{"nav_title"}, at)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "A propos" {
		t.Errorf("Title = %q, want %q", updated.Title, "A propos")
	}
	if updated.NavOrder != 3 {
		t.Errorf("NavOrder = %d, want 3", updated.NavOrder)
	}
	if updated.NavTitle != nil {
		t.Errorf("NavTitle = %q, want nil", *updated.NavTitle)
	}
	if !updated.UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, at)
	}

	if _, err := store.Update(ctx, "missing", bson.M{"title": "x"}, nil, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() missing error = %v, want %v", err, ErrNotFound)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	page, _ := store.Create(ctx, models.Page{Slug: "gone", Title: "Gone"})
	if err := store.Delete(ctx, page.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	exists, _ := store.Exists(ctx, "gone")
	if exists {
		t.Error("page should be deleted")
	}
	if err := store.Delete(ctx, page.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want %v", err, ErrNotFound)
	}
}
